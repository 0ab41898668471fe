package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oplancelot/ltfsgo/pkg/ltfs"
)

var capacityCmd = &cobra.Command{
	Use:                   "capacity",
	Short:                 "Report remaining and maximum capacity for the mounted cartridge",
	Args:                  cobra.NoArgs,
	DisableFlagsInUseLine: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		vol, err := ltfs.Open(ctx, "ltfsctl", openOptions()...)
		if err != nil {
			return fmt.Errorf("open volume: %w", err)
		}
		defer vol.Close(ctx)

		info, err := vol.Capacity(ctx)
		if err != nil {
			return fmt.Errorf("capacity: %w", err)
		}

		if info.DualPartition {
			fmt.Printf("partition 0: %d/%d KiB remaining\n", info.P0.RemainingKB, info.P0.MaximumKB)
			fmt.Printf("partition 1: %d/%d KiB remaining\n", info.P1.RemainingKB, info.P1.MaximumKB)
		}
		fmt.Printf("total: %d/%d KiB remaining\n", info.TotalRemainingKB(), info.TotalMaximumKB())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(capacityCmd)
}
