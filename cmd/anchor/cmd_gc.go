package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var gcCmd = &cobra.Command{
	Use:   "gc",
	Short: "Report the objects reachable from local branches",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		report, err := repo.GC(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("branches:            %d\n", report.Branches)
		fmt.Printf("reachable snapshots: %d\n", report.ReachableSnapshots)
		fmt.Printf("reachable trees:     %d\n", report.ReachableTrees)
		fmt.Printf("reachable blobs:     %d\n", report.ReachableBlobs)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(gcCmd)
}
