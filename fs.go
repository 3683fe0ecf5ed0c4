package vfat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

const slogLevelTrace = slog.LevelDebug - 2

// FileSystem is a mounted handle over a single backing BlockDevice. The
// zero value is usable; call Mount before any other method. Exactly one
// FileSystem should be mounted against a given BlockDevice at a time —
// there is no locking against a second process or a second handle.
type FileSystem struct {
	mounted bool
	device  BlockDevice
	sb      superblock
	fat     fatTable
	root    rootDirectory
	// generation is bumped by every Create and Delete of a directory
	// slot, so a descriptor opened against a file that was
	// since deleted and replaced is detected rather than silently
	// operating on the wrong file.
	generation [MaxFiles]uint32
	openFiles  [MaxOpenFiles]openFile
	openCount  int

	sessionID uuid.UUID
	log       *slog.Logger
}

// NewFileSystem returns a FileSystem that logs to log. log may be nil,
// in which case logging is a no-op.
func NewFileSystem(log *slog.Logger) *FileSystem {
	return &FileSystem{log: log}
}

// SetLogger attaches or replaces the logger used for tracing.
func (fs *FileSystem) SetLogger(log *slog.Logger) {
	fs.log = log
}

func (fs *FileSystem) logattrs(level slog.Level, msg string, attrs ...slog.Attr) {
	if fs.log != nil {
		fs.log.LogAttrs(context.Background(), level, msg, attrs...)
	}
}

func (fs *FileSystem) trace(msg string, attrs ...slog.Attr) { fs.logattrs(slogLevelTrace, msg, attrs...) }
func (fs *FileSystem) debug(msg string, attrs ...slog.Attr) { fs.logattrs(slog.LevelDebug, msg, attrs...) }
func (fs *FileSystem) info(msg string, attrs ...slog.Attr)  { fs.logattrs(slog.LevelInfo, msg, attrs...) }
func (fs *FileSystem) warn(msg string, attrs ...slog.Attr)  { fs.logattrs(slog.LevelWarn, msg, attrs...) }
func (fs *FileSystem) logerror(msg string, attrs ...slog.Attr) {
	fs.logattrs(slog.LevelError, msg, attrs...)
}

// Mount opens device and loads the superblock, FAT, and root directory
// into memory. It fails if device cannot be opened, if the disk's
// signature or geometry is invalid, or if this handle is already mounted.
func (fs *FileSystem) Mount(device BlockDevice) error {
	fs.trace("mount")
	if fs.mounted {
		fs.warn("mount: already mounted")
		return ErrAlreadyMounted
	}
	if err := device.Open(); err != nil {
		fs.logerror("mount: open device", slog.String("err", err.Error()))
		return fmt.Errorf("vfat: opening device: %w", err)
	}

	buf := make([]byte, BlockSize)
	if err := device.ReadBlock(0, buf); err != nil {
		fs.logerror("mount: read superblock", slog.String("err", err.Error()))
		return fmt.Errorf("vfat: reading superblock: %w", err)
	}
	sb, res := decodeSuperblock(buf)
	if res != resOK {
		fs.logerror("mount: bad superblock", slog.Any("result", res))
		return res.err()
	}
	count, err := device.BlockCount()
	if err != nil {
		fs.logerror("mount: block count", slog.String("err", err.Error()))
		return fmt.Errorf("vfat: querying block count: %w", err)
	}
	if count < int(sb.totalBlocks) {
		fs.logerror("mount: device smaller than superblock declares")
		return ErrDiskTooSmall
	}

	fat := newFATTable(int(sb.dataBlocks), int(sb.fatBlocks))
	for i := 0; i < int(sb.fatBlocks); i++ {
		if err := device.ReadBlock(1+i, buf); err != nil {
			fs.logerror("mount: read fat block", slog.Int("block", i), slog.String("err", err.Error()))
			return fmt.Errorf("vfat: reading FAT block %d: %w", i, err)
		}
		lo := i * entriesPerBlock
		hi := lo + entriesPerBlock
		if hi > len(fat.entries) {
			hi = len(fat.entries)
		}
		if hi > lo {
			decodeFATBlock(fat.entries[lo:hi], buf)
		}
	}

	if err := device.ReadBlock(int(sb.rootBlock), buf); err != nil {
		fs.logerror("mount: read root directory", slog.String("err", err.Error()))
		return fmt.Errorf("vfat: reading root directory: %w", err)
	}
	root := decodeRootDirectory(buf)

	fs.device = device
	fs.sb = sb
	fs.fat = fat
	fs.root = root
	fs.generation = [MaxFiles]uint32{}
	fs.openFiles = [MaxOpenFiles]openFile{}
	fs.openCount = 0
	fs.sessionID = uuid.New()
	fs.mounted = true
	fs.info("mounted", slog.String("session", fs.sessionID.String()),
		slog.Int("data_blocks", int(sb.dataBlocks)), slog.Int("fat_blocks", int(sb.fatBlocks)))
	return nil
}

// Unmount persists the superblock, root directory, and FAT, then closes
// the device. It fails if not mounted, or if any write or the close
// fails; a failed Unmount leaves the handle mounted. On success the
// handle is reset to its zero value, keeping only its logger, so a stale
// reference cannot observe mounted state afterwards.
func (fs *FileSystem) Unmount() error {
	fs.trace("unmount")
	if !fs.mounted {
		return ErrNotMounted
	}
	if fs.openCount != 0 {
		fs.warn("unmount: files still open", slog.Int("count", fs.openCount))
	}

	buf := make([]byte, BlockSize)
	fs.sb.encode(buf)
	if err := fs.device.WriteBlock(0, buf); err != nil {
		fs.logerror("unmount: write superblock", slog.String("err", err.Error()))
		return fmt.Errorf("vfat: writing superblock: %w", err)
	}

	// FAT and root directory are also persisted at the point of every
	// mutation (create/delete/allocate/grow); these are a final flush in
	// case nothing has changed since, not the only time they are written.
	if err := fs.persistFAT(); err != nil {
		fs.logerror("unmount: write fat", slog.String("err", err.Error()))
		return fmt.Errorf("vfat: writing FAT: %w", err)
	}
	if err := fs.persistRootDirectory(); err != nil {
		fs.logerror("unmount: write root directory", slog.String("err", err.Error()))
		return fmt.Errorf("vfat: writing root directory: %w", err)
	}

	if err := fs.device.Close(); err != nil {
		fs.logerror("unmount: close device", slog.String("err", err.Error()))
		return fmt.Errorf("vfat: closing device: %w", err)
	}

	fs.info("unmounted")
	*fs = FileSystem{log: fs.log}
	return nil
}

// persistFAT writes every FAT disk block to the device. Mirrors the
// original's fs_save_FAT, which always rewrites the whole FAT region
// rather than tracking which block changed.
func (fs *FileSystem) persistFAT() error {
	buf := make([]byte, BlockSize)
	for i := 0; i < int(fs.sb.fatBlocks); i++ {
		lo := i * entriesPerBlock
		hi := lo + entriesPerBlock
		if hi > len(fs.fat.entries) {
			hi = len(fs.fat.entries)
		}
		encodeFATBlock(buf, fs.fat.entries[lo:hi])
		if err := fs.device.WriteBlock(1+i, buf); err != nil {
			return err
		}
	}
	return nil
}

// persistRootDirectory writes the root directory block to the device.
func (fs *FileSystem) persistRootDirectory() error {
	buf := make([]byte, BlockSize)
	encodeRootDirectory(buf, fs.root)
	return fs.device.WriteBlock(int(fs.sb.rootBlock), buf)
}

// Info describes mount-time geometry and usage.
type Info struct {
	TotalBlocks int
	DataBlocks  int
	FATBlocks   int
	FilesUsed   int
	FilesFree   int
	BlocksUsed  int
	BlocksFree  int
}

// Info reports geometry and usage statistics for the mounted disk.
func (fs *FileSystem) Info() (Info, error) {
	if !fs.mounted {
		return Info{}, ErrNotMounted
	}
	used := int(fs.sb.dataBlocks) - fs.fat.freeCount()
	return Info{
		TotalBlocks: int(fs.sb.totalBlocks),
		DataBlocks:  int(fs.sb.dataBlocks),
		FATBlocks:   int(fs.sb.fatBlocks),
		FilesUsed:   fs.root.count(),
		FilesFree:   MaxFiles - fs.root.count(),
		BlocksUsed:  used,
		BlocksFree:  int(fs.sb.dataBlocks) - used,
	}, nil
}
