package vfat

const MaxOpenFiles = 32

// openFile is one slot of the open-file table: a descriptor's current
// file entry and byte offset within it.
type openFile struct {
	used     bool
	entryIdx int
	offset   int64
}

// firstFreeDescriptor returns the lowest-indexed unused slot, or -1 if
// the open-file table is full.
func (fs *FileSystem) firstFreeDescriptor() int {
	for i := range fs.openFiles {
		if !fs.openFiles[i].used {
			return i
		}
	}
	return -1
}
