package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oplancelot/ltfsgo/pkg/ltfs"
	"github.com/oplancelot/ltfsgo/pkg/options"
)

var writeSpeedLimit uint64

var writeCmd = &cobra.Command{
	Use:                   "write SOURCE TARGET_PATH",
	Short:                 "Write a file or directory tree to tape",
	Args:                  cobra.ExactArgs(2),
	DisableFlagsInUseLine: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		source, targetPath := args[0], args[1]

		opts := openOptions()
		if writeSpeedLimit > 0 {
			opts = append(opts, options.WithSpeedLimit(writeSpeedLimit))
		}

		ctx := context.Background()
		vol, err := ltfs.Open(ctx, "ltfsctl", opts...)
		if err != nil {
			return fmt.Errorf("open volume: %w", err)
		}
		defer vol.Close(ctx)

		info, err := os.Stat(source)
		if err != nil {
			return fmt.Errorf("stat source: %w", err)
		}

		if info.IsDir() {
			if err := vol.WriteDirectory(ctx, source, targetPath); err != nil {
				return fmt.Errorf("write directory: %w", err)
			}
			fmt.Printf("wrote directory tree %s -> %s\n", source, targetPath)
			return nil
		}

		f, err := os.Open(source)
		if err != nil {
			return fmt.Errorf("open source: %w", err)
		}
		defer f.Close()

		result, err := vol.WriteFile(ctx, f, targetPath)
		if err != nil {
			return fmt.Errorf("write file: %w", err)
		}

		fmt.Printf("wrote %d bytes in %d blocks starting at partition %d block %d\n",
			result.BytesWritten, result.BlocksWritten, result.StartPosition.Partition, result.StartPosition.StartBlock)
		return nil
	},
}

func init() {
	writeCmd.Flags().Uint64Var(&writeSpeedLimit, "speed-limit", 0, "write rate limit in MiB/s (0 disables limiting)")
	rootCmd.AddCommand(writeCmd)
}
