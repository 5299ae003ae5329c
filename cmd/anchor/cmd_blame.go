package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var blameCmd = &cobra.Command{
	Use:   "blame <path>",
	Short: "Show the most recent snapshot that changed a path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		entry, err := repo.Blame(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s %s %s\n", entry.SnapshotID[:12], entry.Timestamp, entry.Message)
		return nil
	},
}

var reflogCmd = &cobra.Command{
	Use:   "reflog",
	Short: "Show the local HEAD movement history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		entries, err := repo.Reflog()
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Println(e)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(blameCmd)
	rootCmd.AddCommand(reflogCmd)
}
