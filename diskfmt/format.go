// Package diskfmt formats a vfat.BlockDevice with a blank disk image: a
// valid superblock, an all-free FAT, and an empty root directory. It
// never touches a mounted vfat.FileSystem; formatting is a separate step
// from mounting, the way mkfs is separate from a filesystem driver.
package diskfmt

import (
	"fmt"

	"github.com/arnemq/vfat"
)

// Format writes a blank filesystem image for dataBlocks data blocks to
// bd. bd must already report at least enough blocks to hold the
// resulting superblock, FAT, and root directory plus dataBlocks data
// blocks; Format does not resize the device.
func Format(bd vfat.BlockDevice, dataBlocks int) error {
	if dataBlocks <= 0 {
		return fmt.Errorf("diskfmt: dataBlocks must be positive, got %d", dataBlocks)
	}
	if err := bd.Open(); err != nil {
		return fmt.Errorf("diskfmt: opening device: %w", err)
	}
	defer bd.Close()

	total, err := bd.BlockCount()
	if err != nil {
		return fmt.Errorf("diskfmt: querying block count: %w", err)
	}
	fatBlocks := vfat.FATBlocksFor(dataBlocks)
	required := 1 + fatBlocks + 1 + dataBlocks
	if total < required {
		return fmt.Errorf("diskfmt: device has %d blocks, need at least %d", total, required)
	}

	buf := make([]byte, vfat.BlockSize)
	vfat.EncodeBlankSuperblock(buf, dataBlocks)
	if err := bd.WriteBlock(0, buf); err != nil {
		return fmt.Errorf("diskfmt: writing superblock: %w", err)
	}

	for i := range buf {
		buf[i] = 0
	}
	for i := 0; i < fatBlocks; i++ {
		if err := bd.WriteBlock(1+i, buf); err != nil {
			return fmt.Errorf("diskfmt: writing fat block %d: %w", i, err)
		}
	}

	if err := bd.WriteBlock(1+fatBlocks, buf); err != nil {
		return fmt.Errorf("diskfmt: writing root directory: %w", err)
	}
	return nil
}
