package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var commitMessage string
var commitAll bool

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Record a snapshot of the index",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if commitMessage == "" {
			return fmt.Errorf("a commit message is required (-m)")
		}
		repo, err := openRepo()
		if err != nil {
			return err
		}
		id, err := repo.Commit(cmd.Context(), commitMessage, commitAll)
		if err != nil {
			return err
		}
		printSuccess("committed %s", id[:12])
		return nil
	},
}

func init() {
	commitCmd.Flags().StringVarP(&commitMessage, "message", "m", "", "commit message")
	commitCmd.Flags().BoolVarP(&commitAll, "all", "a", false, "stage all tracked modifications before committing")
	rootCmd.AddCommand(commitCmd)
}
