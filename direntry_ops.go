package vfat

import (
	"fmt"
	"log/slog"
)

// DirEntry is a snapshot of one root directory entry, returned by List.
type DirEntry struct {
	Name       string
	Size       int
	FirstBlock int // data-block index, or -1 if the file is empty
}

// Create adds an empty file named name to the root directory. It fails
// if not mounted, if name is empty or longer than MaxName-1 bytes, if a
// file with that name already exists, or if the root directory is full.
func (fs *FileSystem) Create(name string) error {
	fs.trace("create", slog.String("name", name))
	if !fs.mounted {
		return ErrNotMounted
	}
	if !validFileName(name) {
		return ErrInvalidName
	}
	if fs.root.indexOf(name) >= 0 {
		return ErrNameExists
	}
	idx := fs.root.firstFree()
	if idx < 0 {
		return ErrDirectoryFull
	}
	var e dirEntry
	copy(e.name[:], name)
	e.size = 0
	e.firstBlock = fatEOC
	fs.root.entries[idx] = e
	fs.generation[idx]++
	if err := fs.persistRootDirectory(); err != nil {
		fs.logerror("create: persist root directory", slog.String("err", err.Error()))
		return fmt.Errorf("vfat: persisting root directory after create: %w", err)
	}
	fs.debug("created", slog.String("name", name), slog.Int("entry", idx))
	return nil
}

// Delete removes name from the root directory and frees its data block
// chain. It fails if not mounted, or if no file named name exists.
func (fs *FileSystem) Delete(name string) error {
	fs.trace("delete", slog.String("name", name))
	if !fs.mounted {
		return ErrNotMounted
	}
	idx := fs.root.indexOf(name)
	if idx < 0 {
		return ErrNotFound
	}
	freed := fs.fat.freeChain(fs.root.entries[idx].firstBlock)
	fs.root.entries[idx] = dirEntry{}
	fs.root.entries[idx].firstBlock = fatEOC
	fs.generation[idx]++
	if err := fs.persistRootDirectory(); err != nil {
		fs.logerror("delete: persist root directory", slog.String("err", err.Error()))
		return fmt.Errorf("vfat: persisting root directory after delete: %w", err)
	}
	if err := fs.persistFAT(); err != nil {
		fs.logerror("delete: persist fat", slog.String("err", err.Error()))
		return fmt.Errorf("vfat: persisting FAT after delete: %w", err)
	}
	fs.debug("deleted", slog.String("name", name), slog.Int("blocks_freed", freed))
	return nil
}

// List returns every file currently present in the root directory, in
// directory-slot order.
func (fs *FileSystem) List() ([]DirEntry, error) {
	if !fs.mounted {
		return nil, ErrNotMounted
	}
	out := make([]DirEntry, 0, fs.root.count())
	for _, e := range fs.root.entries {
		if e.empty() {
			continue
		}
		first := -1
		if e.firstBlock != fatEOC {
			first = int(e.firstBlock)
		}
		out = append(out, DirEntry{Name: e.nameString(), Size: int(e.size), FirstBlock: first})
	}
	return out, nil
}
