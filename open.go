package vfat

import "log/slog"

// fd is a file descriptor: an index into the open-file table, paired
// with the generation the slot had when Open returned it, so a stale
// descriptor from a file that was since deleted and recreated can be
// detected rather than silently operating on the wrong file.
type fd struct {
	slot       int
	generation uint32
}

// Open opens name for reading and writing at offset 0, returning a
// descriptor valid until Close. It fails if not mounted, if name does
// not exist, or if the open-file table is full.
func (fs *FileSystem) Open(name string) (fd, error) {
	fs.trace("open", slog.String("name", name))
	if !fs.mounted {
		return fd{}, ErrNotMounted
	}
	idx := fs.root.indexOf(name)
	if idx < 0 {
		return fd{}, ErrNotFound
	}
	slot := fs.firstFreeDescriptor()
	if slot < 0 {
		return fd{}, ErrTooManyOpenFiles
	}
	fs.openFiles[slot] = openFile{used: true, entryIdx: idx, offset: 0}
	fs.openCount++
	return fd{slot: slot, generation: fs.generation[idx]}, nil
}

// resolve validates d against the current open-file table and returns
// the slot and directory entry index it refers to.
func (fs *FileSystem) resolve(d fd) (slot int, entryIdx int, res result) {
	if !fs.mounted {
		return 0, 0, resNotMounted
	}
	if d.slot < 0 || d.slot >= MaxOpenFiles || !fs.openFiles[d.slot].used {
		return 0, 0, resBadDescriptor
	}
	idx := fs.openFiles[d.slot].entryIdx
	if fs.generation[idx] != d.generation {
		return 0, 0, resBadDescriptor
	}
	return d.slot, idx, resOK
}

// Close releases the descriptor. It fails if not mounted or if d is not
// a currently-open descriptor.
func (fs *FileSystem) Close(d fd) error {
	fs.trace("close", slog.Int("slot", d.slot))
	slot, _, res := fs.resolve(d)
	if res != resOK {
		return res.err()
	}
	fs.openFiles[slot] = openFile{}
	fs.openCount--
	return nil
}

// Stat returns the size in bytes of the file referenced by d.
func (fs *FileSystem) Stat(d fd) (int, error) {
	_, idx, res := fs.resolve(d)
	if res != resOK {
		return -1, res.err()
	}
	return int(fs.root.entries[idx].size), nil
}

// Seek repositions d's byte offset to offset. It fails if offset is
// negative or greater than the file's current size.
func (fs *FileSystem) Seek(d fd, offset int64) error {
	slot, idx, res := fs.resolve(d)
	if res != resOK {
		return res.err()
	}
	if offset < 0 || offset > int64(fs.root.entries[idx].size) {
		return ErrOffsetOutOfRange
	}
	fs.openFiles[slot].offset = offset
	return nil
}

// Tell returns d's current byte offset.
func (fs *FileSystem) Tell(d fd) (int64, error) {
	slot, _, res := fs.resolve(d)
	if res != resOK {
		return 0, res.err()
	}
	return fs.openFiles[slot].offset, nil
}
