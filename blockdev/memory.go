package blockdev

import (
	"errors"
	"fmt"

	"github.com/arnemq/vfat"
)

// Memory is a vfat.BlockDevice backed by a plain byte slice. It never
// touches the filesystem, making it suitable for embedding vfat in a
// single process without a file descriptor, and for fast tests.
type Memory struct {
	blocks []byte
	open   bool
}

var _ vfat.BlockDevice = (*Memory)(nil)

// NewMemory allocates a zero-initialized in-memory device of blockCount
// blocks.
func NewMemory(blockCount int) *Memory {
	return &Memory{blocks: make([]byte, blockCount*vfat.BlockSize)}
}

func (d *Memory) Open() error {
	d.open = true
	return nil
}

func (d *Memory) Close() error {
	d.open = false
	return nil
}

func (d *Memory) BlockCount() (int, error) {
	return len(d.blocks) / vfat.BlockSize, nil
}

func (d *Memory) ReadBlock(index int, buf []byte) error {
	if !d.open {
		return errors.New("blockdev: device not open")
	}
	off, err := d.offset(index, len(buf))
	if err != nil {
		return err
	}
	copy(buf, d.blocks[off:off+vfat.BlockSize])
	return nil
}

func (d *Memory) WriteBlock(index int, buf []byte) error {
	if !d.open {
		return errors.New("blockdev: device not open")
	}
	off, err := d.offset(index, len(buf))
	if err != nil {
		return err
	}
	copy(d.blocks[off:off+vfat.BlockSize], buf)
	return nil
}

func (d *Memory) offset(index, bufLen int) (int, error) {
	if bufLen != vfat.BlockSize {
		return 0, fmt.Errorf("blockdev: buffer must be %d bytes, got %d", vfat.BlockSize, bufLen)
	}
	off := index * vfat.BlockSize
	if index < 0 || off+vfat.BlockSize > len(d.blocks) {
		return 0, fmt.Errorf("blockdev: block %d out of range (%d blocks total)", index, len(d.blocks)/vfat.BlockSize)
	}
	return off, nil
}
