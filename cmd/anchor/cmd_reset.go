package main

import (
	"github.com/spf13/cobra"

	"github.com/anchorvcs/anchor/internal/client"
)

var resetHard bool
var resetSoft bool

var resetCmd = &cobra.Command{
	Use:   "reset [ref] [path]",
	Short: "Move HEAD, or restore a single path's index entry, to ref",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rev := "HEAD"
		path := ""
		switch len(args) {
		case 1:
			rev = args[0]
		case 2:
			rev = args[0]
			path = args[1]
		}

		mode := client.ResetMixed
		switch {
		case resetHard:
			mode = client.ResetHard
		case resetSoft:
			mode = client.ResetSoft
		}

		repo, err := openRepo()
		if err != nil {
			return err
		}
		return repo.Reset(cmd.Context(), rev, mode, path)
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetHard, "hard", false, "also rewrite the working tree")
	resetCmd.Flags().BoolVar(&resetSoft, "soft", false, "move only HEAD, leaving the index and working tree untouched")
	rootCmd.AddCommand(resetCmd)
}
