package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cleanDryRun bool

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove untracked files from the working tree",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		removed, err := repo.Clean(cleanDryRun)
		if err != nil {
			return err
		}
		for _, path := range removed {
			if cleanDryRun {
				fmt.Println("would remove " + path)
			} else {
				fmt.Println("removed " + path)
			}
		}
		return nil
	},
}

func init() {
	cleanCmd.Flags().BoolVarP(&cleanDryRun, "dry-run", "n", false, "show what would be removed without removing it")
	rootCmd.AddCommand(cleanCmd)
}
