package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oplancelot/ltfsgo/pkg/ltfs"
)

var syncCmd = &cobra.Command{
	Use:                   "sync",
	Short:                 "Force an index synchronization to both tape partitions",
	Args:                  cobra.NoArgs,
	DisableFlagsInUseLine: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		vol, err := ltfs.Open(ctx, "ltfsctl", openOptions()...)
		if err != nil {
			return fmt.Errorf("open volume: %w", err)
		}
		defer vol.Close(ctx)

		result, err := vol.Sync(ctx)
		if err != nil {
			return fmt.Errorf("sync: %w", err)
		}

		if result.Partial() {
			fmt.Printf("partial sync: data partition committed at generation %d, index partition refresh failed\n", result.Generation)
			return nil
		}
		fmt.Printf("synced generation %d (data=%v index=%v)\n", result.Generation, result.DataPartitionSynced, result.IndexPartitionSynced)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
