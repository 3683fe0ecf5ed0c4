package vfat

import (
	"fmt"
	"log/slog"
)

// Read reads up to len(buf) bytes starting at d's current offset,
// advancing the offset by the number of bytes read. A short count is
// not an error: it means the read hit end of file. The only error
// returned is a precondition violation (bad descriptor) or a device
// failure; in the latter case bytes already copied into buf are valid.
func (fs *FileSystem) Read(d fd, buf []byte) (int, error) {
	slot, idx, res := fs.resolve(d)
	if res != resOK {
		return 0, res.err()
	}
	entry := fs.root.entries[idx]
	offset := fs.openFiles[slot].offset
	remaining := int64(entry.size) - offset
	if remaining <= 0 || len(buf) == 0 {
		return 0, nil
	}
	if int64(len(buf)) > remaining {
		buf = buf[:remaining]
	}

	scratch := make([]byte, BlockSize)
	total := 0
	for total < len(buf) {
		block, intraOff, ok := fs.translate(entry.firstBlock, offset+int64(total))
		if !ok {
			break // reached EOC before expected; stop short, not an error
		}
		n := BlockSize - intraOff
		if rem := len(buf) - total; n > rem {
			n = rem
		}
		if err := fs.device.ReadBlock(int(fs.sb.dataStart)+int(block), scratch); err != nil {
			fs.logerror("read: device error", slog.String("err", err.Error()))
			return total, fmt.Errorf("vfat: reading block %d: %w", block, err)
		}
		copy(buf[total:total+n], scratch[intraOff:intraOff+n])
		total += n
	}
	fs.openFiles[slot].offset += int64(total)
	return total, nil
}

// Write writes buf starting at d's current offset, extending the file's
// block chain as needed, and advances the offset by the number of bytes
// written. A short count indicates the device ran out of free blocks
// partway through; it is not an error. The only errors returned are a
// precondition violation or a device failure, in which case the blocks
// written before the failure are not rolled back.
func (fs *FileSystem) Write(d fd, buf []byte) (int, error) {
	slot, idx, res := fs.resolve(d)
	if res != resOK {
		return 0, res.err()
	}
	if len(buf) == 0 {
		return 0, nil
	}
	entry := &fs.root.entries[idx]
	offset := fs.openFiles[slot].offset

	scratch := make([]byte, BlockSize)
	total := 0
	for total < len(buf) {
		block, intraOff, ok := fs.translate(entry.firstBlock, offset+int64(total))
		if !ok {
			newBlock, allocated := fs.allocateNext(entry)
			if !allocated {
				break // disk full: stop short, not an error
			}
			block = newBlock
			intraOff = 0
			// The FAT changed shape (a new link, possibly a new first
			// block): persist it now rather than deferring to Unmount,
			// so a reader of the backing device sees the chain as soon
			// as Write does.
			if err := fs.persistFAT(); err != nil {
				fs.logerror("write: persist fat", slog.String("err", err.Error()))
				return total, fmt.Errorf("vfat: persisting FAT after allocation: %w", err)
			}
		}
		n := BlockSize - intraOff
		if rem := len(buf) - total; n > rem {
			n = rem
		}
		if n < BlockSize {
			if err := fs.device.ReadBlock(int(fs.sb.dataStart)+int(block), scratch); err != nil {
				fs.logerror("write: device error reading for rmw", slog.String("err", err.Error()))
				return total, fmt.Errorf("vfat: reading block %d for partial write: %w", block, err)
			}
			copy(scratch[intraOff:intraOff+n], buf[total:total+n])
		} else {
			copy(scratch, buf[total:total+n])
		}
		if err := fs.device.WriteBlock(int(fs.sb.dataStart)+int(block), scratch); err != nil {
			fs.logerror("write: device error", slog.String("err", err.Error()))
			return total, fmt.Errorf("vfat: writing block %d: %w", block, err)
		}
		total += n

		if newSize := offset + int64(total); newSize > int64(entry.size) {
			entry.size = uint32(newSize)
			fs.openFiles[slot].offset += int64(n)
			if err := fs.persistRootDirectory(); err != nil {
				fs.logerror("write: persist root directory", slog.String("err", err.Error()))
				return total, fmt.Errorf("vfat: persisting root directory after growth: %w", err)
			}
		} else {
			fs.openFiles[slot].offset += int64(n)
		}
	}

	return total, nil
}

// allocateNext extends entry's block chain by one block, appending it
// after the chain's current last block (or making it the first block, if
// the chain was empty). Returns the new block's data-block index and
// whether allocation succeeded (false means no free blocks remain).
func (fs *FileSystem) allocateNext(entry *dirEntry) (uint16, bool) {
	free := fs.fat.findFree()
	if free < 0 {
		return 0, false
	}
	newBlock := uint16(free)
	fs.fat.entries[newBlock] = fatEOC

	last, hasBlock := fs.fat.lastBlock(entry.firstBlock)
	if !hasBlock {
		entry.firstBlock = newBlock
	} else {
		fs.fat.entries[last] = newBlock
	}
	return newBlock, true
}
