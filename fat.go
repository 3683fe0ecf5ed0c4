package vfat

import "encoding/binary"

const (
	fatFree         uint16 = 0x0000
	fatEOC          uint16 = 0xFFFF
	noPrevious      uint16 = 0xFFFF // sentinel: link goes into the directory entry, not the FAT
	entriesPerBlock        = BlockSize / 2
)

// fatTable is the in-memory projection of the on-disk FAT region: a flat
// array of 16-bit block links covering every data block in data-block
// space (index 0..D), regardless of how many FAT disk blocks back it.
type fatTable struct {
	entries []uint16
}

func newFATTable(dataBlocks int, fatBlocks int) fatTable {
	n := dataBlocks
	if n < 0 {
		n = 0
	}
	return fatTable{entries: make([]uint16, fatBlocks*entriesPerBlock)[:n]}
}

func decodeFATBlock(dst []uint16, buf []byte) {
	for i := range dst {
		dst[i] = binary.LittleEndian.Uint16(buf[i*2 : i*2+2])
	}
}

func encodeFATBlock(buf []byte, src []uint16) {
	for i := range buf {
		buf[i] = 0
	}
	for i, v := range src {
		binary.LittleEndian.PutUint16(buf[i*2:i*2+2], v)
	}
}

// findFree returns the lowest-indexed free data block, or -1 if none.
func (t fatTable) findFree() int {
	for i, v := range t.entries {
		if v == fatFree {
			return i
		}
	}
	return -1
}

// freeCount returns the number of free data blocks.
func (t fatTable) freeCount() int {
	n := 0
	for _, v := range t.entries {
		if v == fatFree {
			n++
		}
	}
	return n
}

// chainLength walks the chain starting at first and returns the number
// of blocks in it. first == fatEOC means an empty chain.
func (t fatTable) chainLength(first uint16) int {
	n := 0
	b := first
	for b != fatEOC {
		n++
		b = t.entries[b]
	}
	return n
}

// freeChain walks and frees every block in the chain starting at first.
// Returns the number of blocks freed.
func (t fatTable) freeChain(first uint16) int {
	n := 0
	b := first
	for b != fatEOC {
		next := t.entries[b]
		t.entries[b] = fatFree
		b = next
		n++
	}
	return n
}

// blockAt returns the data block index holding file-relative block number
// n in the chain starting at first, and fatEOC if the chain is shorter
// than n+1 blocks.
func (t fatTable) blockAt(first uint16, n int) uint16 {
	b := first
	for ; n > 0 && b != fatEOC; n-- {
		b = t.entries[b]
	}
	return b
}

// lastBlock returns the final block of the chain starting at first and
// true, or (noPrevious, false) if the chain is empty.
func (t fatTable) lastBlock(first uint16) (last uint16, hasBlock bool) {
	if first == fatEOC {
		return noPrevious, false
	}
	b := first
	for t.entries[b] != fatEOC {
		b = t.entries[b]
	}
	return b, true
}
