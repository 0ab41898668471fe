package main

import (
	"github.com/spf13/cobra"

	"github.com/oplancelot/ltfsgo/pkg/options"
)

var devicePath string
var snapshotDir string
var spillDir string

var rootCmd = &cobra.Command{
	Use:   "ltfsctl",
	Short: "Direct-access operator CLI for LTFS tape cartridges",
	Long:  `ltfsctl writes, extracts, and inspects files on a mounted LTFS cartridge without going through the OS filesystem layer.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&devicePath, "device", "d", "/dev/nst0", "tape device node")
	rootCmd.PersistentFlags().StringVar(&snapshotDir, "snapshot-dir", "", "directory to receive local LTFSIndex_*.schema snapshots (disabled if empty)")
	rootCmd.PersistentFlags().StringVar(&spillDir, "discovery-spill-dir", "", "directory to receive raw index discovery candidate blocks (disabled if empty)")
}

// openOptions builds the functional options shared by every subcommand's
// ltfs.Open call from the persistent flags.
func openOptions() []options.OptionFunc {
	opts := []options.OptionFunc{options.WithDevicePath(devicePath)}
	if snapshotDir != "" {
		opts = append(opts, options.WithIndexSnapshotDir(snapshotDir))
	}
	if spillDir != "" {
		opts = append(opts, options.WithDiscoverySpillDir(spillDir))
	}
	return opts
}
