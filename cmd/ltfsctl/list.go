package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oplancelot/ltfsgo/internal/ltfsindex"
	"github.com/oplancelot/ltfsgo/pkg/ltfs"
)

var listCmd = &cobra.Command{
	Use:                   "list",
	Short:                 "List every file recorded in the current index",
	Args:                  cobra.NoArgs,
	DisableFlagsInUseLine: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		vol, err := ltfs.Open(ctx, "ltfsctl", openOptions()...)
		if err != nil {
			return fmt.Errorf("open volume: %w", err)
		}
		defer vol.Close(ctx)

		idx := vol.Index()
		if idx == nil || idx.Root == nil {
			return nil
		}
		listDirectory(idx.Root, "")
		return nil
	},
}

func listDirectory(d *ltfsindex.DirectoryNode, prefix string) {
	path := prefix
	if d.Name != "" {
		if prefix == "" {
			path = d.Name
		} else {
			path = prefix + "/" + d.Name
		}
	}

	for _, f := range d.Files {
		filePath := f.Name
		if path != "" {
			filePath = path + "/" + f.Name
		}
		fmt.Printf("%s\t%d\n", filePath, f.Length)
	}
	for _, child := range d.Directories {
		listDirectory(child, path)
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
}
