package vfat

import "encoding/binary"

// signature identifies a block 0 as belonging to this filesystem.
var signature = [8]byte{'E', 'C', 'S', '1', '5', '0', 'F', 'S'}

// superblock is the decoded contents of disk block 0.
type superblock struct {
	totalBlocks uint16
	rootBlock   uint16
	dataStart   uint16
	dataBlocks  uint16
	fatBlocks   uint8
}

// fatBlocksFor returns the number of FAT blocks needed to index dataBlocks
// data blocks, each FAT entry being 2 bytes wide.
func fatBlocksFor(dataBlocks int) int {
	return (dataBlocks + entriesPerBlock - 1) / entriesPerBlock
}

// FATBlocksFor returns the number of FAT blocks needed to index
// dataBlocks data blocks. Exported for use by package diskfmt, which
// must size a blank image without a mounted FileSystem to ask.
func FATBlocksFor(dataBlocks int) int {
	return fatBlocksFor(dataBlocks)
}

// EncodeBlankSuperblock writes a valid, zeroed superblock for a disk
// holding dataBlocks data blocks into buf, which must be at least
// BlockSize bytes. Exported for use by package diskfmt.
func EncodeBlankSuperblock(buf []byte, dataBlocks int) {
	newSuperblock(dataBlocks).encode(buf)
}

func newSuperblock(dataBlocks int) superblock {
	f := fatBlocksFor(dataBlocks)
	root := 1 + f
	return superblock{
		totalBlocks: uint16(1 + f + 1 + dataBlocks),
		rootBlock:   uint16(root),
		dataStart:   uint16(root + 1),
		dataBlocks:  uint16(dataBlocks),
		fatBlocks:   uint8(f),
	}
}

func (sb superblock) encode(buf []byte) {
	if len(buf) < BlockSize {
		panic("vfat: short superblock buffer")
	}
	for i := range buf {
		buf[i] = 0
	}
	copy(buf[0:8], signature[:])
	binary.LittleEndian.PutUint16(buf[8:10], sb.totalBlocks)
	binary.LittleEndian.PutUint16(buf[10:12], sb.rootBlock)
	binary.LittleEndian.PutUint16(buf[12:14], sb.dataStart)
	binary.LittleEndian.PutUint16(buf[14:16], sb.dataBlocks)
	buf[16] = sb.fatBlocks
}

func decodeSuperblock(buf []byte) (superblock, result) {
	if len(buf) < BlockSize {
		return superblock{}, resBadGeometry
	}
	var sig [8]byte
	copy(sig[:], buf[0:8])
	if sig != signature {
		return superblock{}, resBadSignature
	}
	sb := superblock{
		totalBlocks: binary.LittleEndian.Uint16(buf[8:10]),
		rootBlock:   binary.LittleEndian.Uint16(buf[10:12]),
		dataStart:   binary.LittleEndian.Uint16(buf[12:14]),
		dataBlocks:  binary.LittleEndian.Uint16(buf[14:16]),
		fatBlocks:   buf[16],
	}
	wantTotal := 1 + int(sb.fatBlocks) + 1 + int(sb.dataBlocks)
	if int(sb.rootBlock) != 1+int(sb.fatBlocks) ||
		int(sb.dataStart) != int(sb.rootBlock)+1 ||
		int(sb.totalBlocks) != wantTotal ||
		int(sb.fatBlocks) < fatBlocksFor(int(sb.dataBlocks)) ||
		sb.dataBlocks == 0 {
		return superblock{}, resBadGeometry
	}
	return sb, resOK
}
