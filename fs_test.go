package vfat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnemq/vfat"
	"github.com/arnemq/vfat/blockdev"
	"github.com/arnemq/vfat/diskfmt"
)

func TestMountRejectsBadSignature(t *testing.T) {
	dev := blockdev.NewMemory(16)
	fs := vfat.NewFileSystem(attachLogger(t))
	err := fs.Mount(dev)
	require.ErrorIs(t, err, vfat.ErrBadSignature)
}

func TestMountRejectsDoubleMount(t *testing.T) {
	fs, _ := newMountedFS(t, 8)
	dev2 := blockdev.NewMemory(16)
	err := fs.Mount(dev2)
	require.ErrorIs(t, err, vfat.ErrAlreadyMounted)
}

func TestUnmountRequiresMount(t *testing.T) {
	var fs vfat.FileSystem
	require.ErrorIs(t, fs.Unmount(), vfat.ErrNotMounted)
}

func TestInfoAccounting(t *testing.T) {
	fs, _ := newMountedFS(t, 8)
	info, err := fs.Info()
	require.NoError(t, err)
	assert.Equal(t, 8, info.DataBlocks)
	assert.Equal(t, 0, info.FilesUsed)
	assert.Equal(t, 128, info.FilesFree)
	assert.Equal(t, 0, info.BlocksUsed)
	assert.Equal(t, 8, info.BlocksFree)

	require.NoError(t, fs.Create("a.txt"))
	d, err := fs.Open("a.txt")
	require.NoError(t, err)
	_, err = fs.Write(d, make([]byte, 4096+10))
	require.NoError(t, err)
	require.NoError(t, fs.Close(d))

	info, err = fs.Info()
	require.NoError(t, err)
	assert.Equal(t, 1, info.FilesUsed)
	assert.Equal(t, 2, info.BlocksUsed)
	assert.Equal(t, 6, info.BlocksFree)
}

func TestPersistenceAcrossRemount(t *testing.T) {
	fs, dev := newMountedFS(t, 8)
	require.NoError(t, fs.Create("hello.txt"))
	d, err := fs.Open("hello.txt")
	require.NoError(t, err)
	_, err = fs.Write(d, []byte("hello world"))
	require.NoError(t, err)
	require.NoError(t, fs.Close(d))
	require.NoError(t, fs.Unmount())

	fs2 := vfat.NewFileSystem(attachLogger(t))
	require.NoError(t, fs2.Mount(dev))
	entries, err := fs2.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "hello.txt", entries[0].Name)
	assert.Equal(t, 11, entries[0].Size)

	d2, err := fs2.Open("hello.txt")
	require.NoError(t, err)
	buf := make([]byte, 11)
	n, err := fs2.Read(d2, buf)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(buf[:n]))
}

func TestCreateValidation(t *testing.T) {
	fs, _ := newMountedFS(t, 8)
	require.ErrorIs(t, fs.Create(""), vfat.ErrInvalidName)
	require.ErrorIs(t, fs.Create("thisnameiswaytoolongforafatentry"), vfat.ErrInvalidName)
	require.NoError(t, fs.Create("dup.txt"))
	require.ErrorIs(t, fs.Create("dup.txt"), vfat.ErrNameExists)
}

func TestCreateDirectoryFull(t *testing.T) {
	fs, _ := newMountedFS(t, 8)
	for i := 0; i < vfat.MaxFiles; i++ {
		require.NoError(t, fs.Create(nthName(i)))
	}
	require.ErrorIs(t, fs.Create("onemore"), vfat.ErrDirectoryFull)
}

func nthName(i int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	return string([]byte{letters[i/26%26], letters[i%26]}) + ".f"
}

func TestDeleteFreesBlocksAndSlot(t *testing.T) {
	fs, _ := newMountedFS(t, 4)
	require.NoError(t, fs.Create("a.txt"))
	d, err := fs.Open("a.txt")
	require.NoError(t, err)
	_, err = fs.Write(d, make([]byte, 4096*2))
	require.NoError(t, err)
	require.NoError(t, fs.Close(d))

	info, _ := fs.Info()
	assert.Equal(t, 2, info.BlocksUsed)

	require.NoError(t, fs.Delete("a.txt"))
	info, _ = fs.Info()
	assert.Equal(t, 0, info.BlocksUsed)
	assert.Equal(t, 0, info.FilesUsed)

	_, err = fs.Open("a.txt")
	require.ErrorIs(t, err, vfat.ErrNotFound)
}

func TestDeleteNotFound(t *testing.T) {
	fs, _ := newMountedFS(t, 4)
	require.ErrorIs(t, fs.Delete("missing.txt"), vfat.ErrNotFound)
}

func TestStaleDescriptorAfterRecreate(t *testing.T) {
	fs, _ := newMountedFS(t, 4)
	require.NoError(t, fs.Create("a.txt"))
	d, err := fs.Open("a.txt")
	require.NoError(t, err)
	require.NoError(t, fs.Close(d))
	require.NoError(t, fs.Delete("a.txt"))
	require.NoError(t, fs.Create("a.txt"))

	// d was issued before delete+recreate; it must not silently operate
	// on the slot's new occupant.
	_, err = fs.Stat(d)
	require.ErrorIs(t, err, vfat.ErrBadDescriptor)
}

func TestOpenTooManyFiles(t *testing.T) {
	fs, _ := newMountedFS(t, 4)
	for i := 0; i < vfat.MaxOpenFiles; i++ {
		name := nthName(i)
		require.NoError(t, fs.Create(name))
		_, err := fs.Open(name)
		require.NoError(t, err)
	}
	require.NoError(t, fs.Create("onemore"))
	_, err := fs.Open("onemore")
	require.ErrorIs(t, err, vfat.ErrTooManyOpenFiles)
}

func TestSeekBounds(t *testing.T) {
	fs, _ := newMountedFS(t, 4)
	require.NoError(t, fs.Create("a.txt"))
	d, err := fs.Open("a.txt")
	require.NoError(t, err)
	_, err = fs.Write(d, []byte("0123456789"))
	require.NoError(t, err)

	require.NoError(t, fs.Seek(d, 5))
	off, err := fs.Tell(d)
	require.NoError(t, err)
	assert.EqualValues(t, 5, off)

	require.ErrorIs(t, fs.Seek(d, -1), vfat.ErrOffsetOutOfRange)
	require.ErrorIs(t, fs.Seek(d, 11), vfat.ErrOffsetOutOfRange)
	require.NoError(t, fs.Seek(d, 10))
}

func TestTwoDescriptorsShareFileState(t *testing.T) {
	fs, _ := newMountedFS(t, 4)
	require.NoError(t, fs.Create("shared.txt"))
	writer, err := fs.Open("shared.txt")
	require.NoError(t, err)
	reader, err := fs.Open("shared.txt")
	require.NoError(t, err)

	_, err = fs.Write(writer, []byte("abcdef"))
	require.NoError(t, err)

	buf := make([]byte, 6)
	n, err := fs.Read(reader, buf)
	require.NoError(t, err)
	assert.Equal(t, "abcdef", string(buf[:n]))
}
