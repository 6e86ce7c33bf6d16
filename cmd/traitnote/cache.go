package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"traitnote/internal/driver"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the on-disk check cache",
}

var cacheDropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Discard every cached check outcome",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := driver.OpenDiskCache("traitnote")
		if err != nil {
			return fmt.Errorf("failed to open disk cache: %w", err)
		}
		if err := cache.DropAll(); err != nil {
			return fmt.Errorf("failed to drop cache: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "cache dropped")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheDropCmd)
}
