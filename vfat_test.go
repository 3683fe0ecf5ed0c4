package vfat_test

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arnemq/vfat"
	"github.com/arnemq/vfat/blockdev"
	"github.com/arnemq/vfat/diskfmt"
)

// attachLogger returns a logger that writes trace-level output to stderr
// when VFAT_TEST_LOG is set, and a no-op logger otherwise, mirroring the
// opt-in verbose logging used throughout this codebase's test suite.
func attachLogger(t *testing.T) *slog.Logger {
	t.Helper()
	if os.Getenv("VFAT_TEST_LOG") == "" {
		return nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug - 2}))
}

// newMountedFS formats and mounts a fresh in-memory disk with dataBlocks
// data blocks, returning the mounted handle and its backing device.
func newMountedFS(t *testing.T, dataBlocks int) (*vfat.FileSystem, *blockdev.Memory) {
	t.Helper()
	fatBlocks := vfat.FATBlocksFor(dataBlocks)
	total := 1 + fatBlocks + 1 + dataBlocks
	dev := blockdev.NewMemory(total)
	require.NoError(t, diskfmt.Format(dev, dataBlocks))

	fs := vfat.NewFileSystem(attachLogger(t))
	require.NoError(t, fs.Mount(dev))
	return fs, dev
}
