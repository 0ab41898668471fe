package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oplancelot/ltfsgo/pkg/filesys"
	"github.com/oplancelot/ltfsgo/pkg/ltfs"
)

var extractCmd = &cobra.Command{
	Use:                   "extract TARGET_PATH DEST",
	Short:                 "Extract a file from tape to a local path",
	Args:                  cobra.ExactArgs(2),
	DisableFlagsInUseLine: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		targetPath, dest := args[0], args[1]

		ctx := context.Background()
		vol, err := ltfs.Open(ctx, "ltfsctl", openOptions()...)
		if err != nil {
			return fmt.Errorf("open volume: %w", err)
		}
		defer vol.Close(ctx)

		out, err := os.Create(dest)
		if err != nil {
			return fmt.Errorf("create destination: %w", err)
		}

		result, err := vol.ExtractFile(ctx, targetPath, out)
		out.Close()
		if err != nil {
			// Verification failures (and any other extract error) can
			// leave a partially-written file behind; don't leave it on
			// disk masquerading as a complete extraction.
			if rmErr := filesys.DeleteFile(dest); rmErr != nil {
				return fmt.Errorf("extract: %w (also failed to remove partial destination: %v)", err, rmErr)
			}
			return fmt.Errorf("extract: %w", err)
		}

		if result.Verified {
			fmt.Printf("extracted %d bytes, verification %s\n", result.BytesWritten, verdict(result.VerificationPass))
		} else {
			fmt.Printf("extracted %d bytes (no verification requested)\n", result.BytesWritten)
		}
		return nil
	},
}

func verdict(pass bool) string {
	if pass {
		return "passed"
	}
	return "FAILED"
}

func init() {
	rootCmd.AddCommand(extractCmd)
}
