package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var diffStaged bool

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show unified diffs against the index or HEAD",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		diffs, err := repo.Diff(cmd.Context(), diffStaged)
		if err != nil {
			return err
		}
		for _, d := range diffs {
			fmt.Println(styleBold.Render("--- " + d.Path))
			fmt.Print(d.Text)
		}
		return nil
	},
}

func init() {
	diffCmd.Flags().BoolVar(&diffStaged, "staged", false, "diff the index against HEAD instead of the working tree")
	rootCmd.AddCommand(diffCmd)
}
