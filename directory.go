package vfat

import (
	"bytes"
	"encoding/binary"
)

const (
	MaxFiles  = 128
	MaxName   = 16 // including the terminating NUL
	entrySize = 32
)

// dirEntry mirrors the 32-byte on-disk file entry.
type dirEntry struct {
	name       [MaxName]byte
	size       uint32
	firstBlock uint16
}

func (e dirEntry) empty() bool {
	return e.name[0] == 0
}

func (e dirEntry) nameString() string {
	n := bytes.IndexByte(e.name[:], 0)
	if n < 0 {
		n = len(e.name)
	}
	return string(e.name[:n])
}

func decodeDirEntry(buf []byte) dirEntry {
	var e dirEntry
	copy(e.name[:], buf[0:MaxName])
	e.size = binary.LittleEndian.Uint32(buf[16:20])
	e.firstBlock = binary.LittleEndian.Uint16(buf[20:22])
	return e
}

func encodeDirEntry(buf []byte, e dirEntry) {
	for i := range buf[:entrySize] {
		buf[i] = 0
	}
	copy(buf[0:MaxName], e.name[:])
	binary.LittleEndian.PutUint32(buf[16:20], e.size)
	binary.LittleEndian.PutUint16(buf[20:22], e.firstBlock)
}

// rootDirectory is the in-memory projection of the single root directory
// block: a fixed array of MaxFiles file entries.
type rootDirectory struct {
	entries [MaxFiles]dirEntry
}

func decodeRootDirectory(buf []byte) rootDirectory {
	var d rootDirectory
	for i := range d.entries {
		d.entries[i] = decodeDirEntry(buf[i*entrySize : (i+1)*entrySize])
	}
	return d
}

func encodeRootDirectory(buf []byte, d rootDirectory) {
	for i := range d.entries {
		encodeDirEntry(buf[i*entrySize:(i+1)*entrySize], d.entries[i])
	}
}

func validFileName(name string) bool {
	if name == "" || len(name) >= MaxName {
		return false
	}
	for i := 0; i < len(name); i++ {
		if name[i] == 0 {
			return false
		}
	}
	return true
}

// indexOf returns the entry index whose name matches, or -1.
func (d *rootDirectory) indexOf(name string) int {
	for i := range d.entries {
		if !d.entries[i].empty() && d.entries[i].nameString() == name {
			return i
		}
	}
	return -1
}

// firstFree returns the lowest-indexed empty slot, or -1 if the
// directory is full.
func (d *rootDirectory) firstFree() int {
	for i := range d.entries {
		if d.entries[i].empty() {
			return i
		}
	}
	return -1
}

// count returns the number of occupied entries.
func (d *rootDirectory) count() int {
	n := 0
	for i := range d.entries {
		if !d.entries[i].empty() {
			n++
		}
	}
	return n
}
