package diskfmt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnemq/vfat"
	"github.com/arnemq/vfat/blockdev"
	"github.com/arnemq/vfat/diskfmt"
)

func TestFormatProducesMountableDisk(t *testing.T) {
	const dataBlocks = 32
	total := 1 + vfat.FATBlocksFor(dataBlocks) + 1 + dataBlocks
	dev := blockdev.NewMemory(total)
	require.NoError(t, diskfmt.Format(dev, dataBlocks))

	var fs vfat.FileSystem
	require.NoError(t, fs.Mount(dev))
	info, err := fs.Info()
	require.NoError(t, err)
	assert.Equal(t, dataBlocks, info.DataBlocks)
	assert.Equal(t, 0, info.FilesUsed)
	assert.Equal(t, dataBlocks, info.BlocksFree)
}

func TestFormatRejectsUndersizedDevice(t *testing.T) {
	dev := blockdev.NewMemory(2)
	err := diskfmt.Format(dev, 32)
	assert.Error(t, err)
}
