// Command vfatctl is a line-oriented harness for exercising a mounted
// vfat disk image from the shell. It contains no filesystem logic of
// its own: every subcommand is a thin call into package vfat.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/arnemq/vfat"
	"github.com/arnemq/vfat/blockdev"
	"github.com/arnemq/vfat/diskfmt"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:   "vfatctl",
		Short: "inspect and manipulate a vfat disk image",
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable trace logging")

	root.AddCommand(
		newMakeCmd(),
		newInfoCmd(&verbose),
		newLsCmd(&verbose),
		newCreateCmd(&verbose),
		newDeleteCmd(&verbose),
		newCatCmd(&verbose),
		newWriteCmd(&verbose),
	)
	return root
}

func logger(verbose bool) *slog.Logger {
	if !verbose {
		return nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug - 2}))
}

func openMounted(path string, verbose bool) (*vfat.FileSystem, error) {
	dev, err := blockdev.OpenFile(path, false)
	if err != nil {
		return nil, err
	}
	fs := vfat.NewFileSystem(logger(verbose))
	if err := fs.Mount(dev); err != nil {
		return nil, fmt.Errorf("mounting %s: %w", path, err)
	}
	return fs, nil
}

func newMakeCmd() *cobra.Command {
	var blocks int
	cmd := &cobra.Command{
		Use:   "make disk.img",
		Short: "create a blank disk image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fatBlocks := vfat.FATBlocksFor(blocks)
			total := 1 + fatBlocks + 1 + blocks
			dev, err := blockdev.CreateFile(args[0], total)
			if err != nil {
				return err
			}
			return diskfmt.Format(dev, blocks)
		},
	}
	cmd.Flags().IntVar(&blocks, "data-blocks", 8192, "number of 4096-byte data blocks")
	return cmd
}

func newInfoCmd(verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "info disk.img",
		Short: "print disk geometry and usage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := openMounted(args[0], *verbose)
			if err != nil {
				return err
			}
			defer fs.Unmount()
			info, err := fs.Info()
			if err != nil {
				return err
			}
			fmt.Printf("total_blocks=%d data_blocks=%d fat_blocks=%d\n", info.TotalBlocks, info.DataBlocks, info.FATBlocks)
			fmt.Printf("files=%d/%d blocks_used=%d blocks_free=%d\n", info.FilesUsed, info.FilesUsed+info.FilesFree, info.BlocksUsed, info.BlocksFree)
			return nil
		},
	}
}

func newLsCmd(verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "ls disk.img",
		Short: "list files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := openMounted(args[0], *verbose)
			if err != nil {
				return err
			}
			defer fs.Unmount()
			entries, err := fs.List()
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Printf("%-16s %8d\n", e.Name, e.Size)
			}
			return nil
		},
	}
}

func newCreateCmd(verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "create disk.img name",
		Short: "create an empty file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := openMounted(args[0], *verbose)
			if err != nil {
				return err
			}
			defer fs.Unmount()
			return fs.Create(args[1])
		},
	}
}

func newDeleteCmd(verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "rm disk.img name",
		Short: "delete a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := openMounted(args[0], *verbose)
			if err != nil {
				return err
			}
			defer fs.Unmount()
			return fs.Delete(args[1])
		},
	}
}

func newCatCmd(verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "cat disk.img name",
		Short: "print a file's contents to stdout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := openMounted(args[0], *verbose)
			if err != nil {
				return err
			}
			defer fs.Unmount()
			d, err := fs.Open(args[1])
			if err != nil {
				return err
			}
			defer fs.Close(d)
			buf := make([]byte, 4096)
			for {
				n, err := fs.Read(d, buf)
				if err != nil {
					return err
				}
				if n == 0 {
					return nil
				}
				os.Stdout.Write(buf[:n])
			}
		},
	}
}

func newWriteCmd(verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "write disk.img name contents",
		Short: "write contents over the start of a file",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := openMounted(args[0], *verbose)
			if err != nil {
				return err
			}
			defer fs.Unmount()
			d, err := fs.Open(args[1])
			if err != nil {
				return err
			}
			defer fs.Close(d)
			_, err = fs.Write(d, []byte(args[2]))
			return err
		},
	}
}
