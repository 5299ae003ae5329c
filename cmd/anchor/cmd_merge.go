package main

import (
	"github.com/spf13/cobra"
)

var mergeCmd = &cobra.Command{
	Use:   "merge <branch>",
	Short: "Fast-forward the current branch to another branch's snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		if err := repo.Merge(cmd.Context(), args[0]); err != nil {
			return err
		}
		printSuccess("merged %s", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}
