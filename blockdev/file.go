// Package blockdev provides BlockDevice implementations: one backed by a
// real file on disk, one backed by an in-memory byte slice.
package blockdev

import (
	"errors"
	"fmt"
	"os"

	"github.com/arnemq/vfat"
)

// File is a vfat.BlockDevice backed by an *os.File. All reads and writes
// use ReadAt/WriteAt rather than the file's shared offset, so it is safe
// to use even if something else seeks the same *os.File between calls.
type File struct {
	f        *os.File
	path     string
	readOnly bool
}

var _ vfat.BlockDevice = (*File)(nil)

// OpenFile returns a device for an existing disk image at path. The file
// itself is opened by Open, which is where a missing file is reported.
// If readOnly is true, WriteBlock always fails.
func OpenFile(path string, readOnly bool) (*File, error) {
	return &File{path: path, readOnly: readOnly}, nil
}

// CreateFile creates a new disk image at path sized to blockCount blocks,
// all zero-initialized. It does not format the image; pair with
// package diskfmt to write a valid superblock/FAT/root directory.
func CreateFile(path string, blockCount int) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("blockdev: creating %s: %w", path, err)
	}
	if err := f.Truncate(int64(blockCount) * vfat.BlockSize); err != nil {
		f.Close()
		return nil, fmt.Errorf("blockdev: sizing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("blockdev: closing %s: %w", path, err)
	}
	return &File{path: path}, nil
}

func (d *File) Open() error {
	if d.f != nil {
		return nil
	}
	flag := os.O_RDWR
	if d.readOnly {
		flag = os.O_RDONLY
	}
	f, err := os.OpenFile(d.path, flag, 0)
	if err != nil {
		return fmt.Errorf("blockdev: opening %s: %w", d.path, err)
	}
	d.f = f
	return nil
}

func (d *File) Close() error {
	if d.f == nil {
		return nil
	}
	err := d.f.Close()
	d.f = nil
	return err
}

func (d *File) BlockCount() (int, error) {
	if d.f == nil {
		return 0, errors.New("blockdev: device not open")
	}
	fi, err := d.f.Stat()
	if err != nil {
		return 0, err
	}
	return int(fi.Size() / vfat.BlockSize), nil
}

func (d *File) ReadBlock(index int, buf []byte) error {
	if d.f == nil {
		return errors.New("blockdev: device not open")
	}
	if len(buf) != vfat.BlockSize {
		return fmt.Errorf("blockdev: buffer must be %d bytes, got %d", vfat.BlockSize, len(buf))
	}
	_, err := d.f.ReadAt(buf, int64(index)*vfat.BlockSize)
	return err
}

func (d *File) WriteBlock(index int, buf []byte) error {
	if d.readOnly {
		return errors.New("blockdev: device is read-only")
	}
	if d.f == nil {
		return errors.New("blockdev: device not open")
	}
	if len(buf) != vfat.BlockSize {
		return fmt.Errorf("blockdev: buffer must be %d bytes, got %d", vfat.BlockSize, len(buf))
	}
	_, err := d.f.WriteAt(buf, int64(index)*vfat.BlockSize)
	return err
}
