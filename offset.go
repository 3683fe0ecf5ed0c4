package vfat

// blockEOC marks "no current block": either the file is empty or the
// offset sits exactly at a block boundary at end-of-file, in which case
// there is no block to read from yet and write must allocate one.
const blockEOC = fatEOC

// translate walks the chain starting at first and returns the data block
// index containing byte offset, along with the intra-block offset. If
// offset lands exactly on a block boundary at (or past) the end of the
// chain, it returns (blockEOC, 0, false): there is no block to read.
func (fs *FileSystem) translate(first uint16, offset int64) (block uint16, intraOffset int, ok bool) {
	blockNum := int(offset / BlockSize)
	intraOffset = int(offset % BlockSize)
	b := first
	for n := blockNum; n > 0; n-- {
		if b == fatEOC {
			return blockEOC, 0, false
		}
		b = fs.fat.entries[b]
	}
	if b == fatEOC {
		return blockEOC, 0, false
	}
	return b, intraOffset, true
}
