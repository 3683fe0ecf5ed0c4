package vfat_test

import (
	"fmt"

	"github.com/arnemq/vfat"
	"github.com/arnemq/vfat/blockdev"
	"github.com/arnemq/vfat/diskfmt"
)

func ExampleFileSystem_basicUsage() {
	// device could be a disk image, or anything implementing BlockDevice.
	device := blockdev.NewMemory(1 + vfat.FATBlocksFor(64) + 1 + 64)
	if err := diskfmt.Format(device, 64); err != nil {
		panic(err)
	}

	var fs vfat.FileSystem
	if err := fs.Mount(device); err != nil {
		panic(err)
	}

	if err := fs.Create("newfile.txt"); err != nil {
		panic(err)
	}
	d, err := fs.Open("newfile.txt")
	if err != nil {
		panic(err)
	}
	if _, err := fs.Write(d, []byte("Hello, World!")); err != nil {
		panic(err)
	}
	if err := fs.Close(d); err != nil {
		panic(err)
	}

	// Read it back:
	d, err = fs.Open("newfile.txt")
	if err != nil {
		panic(err)
	}
	buf := make([]byte, 64)
	n, err := fs.Read(d, buf)
	if err != nil {
		panic(err)
	}
	fmt.Println(string(buf[:n]))
	fs.Close(d)
	// Output:
	// Hello, World!
}
