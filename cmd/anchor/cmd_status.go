package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show modified, untracked, and deleted paths",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		st, err := repo.Status()
		if err != nil {
			return err
		}

		printGroup := func(label string, paths []string) {
			if len(paths) == 0 {
				return
			}
			printMuted(label + ":")
			for _, p := range paths {
				fmt.Println("  " + p)
			}
		}
		printGroup("modified", st.Modified)
		printGroup("deleted", st.Deleted)
		printGroup("untracked", st.Untracked)

		if len(st.Modified) == 0 && len(st.Deleted) == 0 && len(st.Untracked) == 0 {
			printMuted("nothing to commit, working tree clean")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
