package main

import (
	"github.com/spf13/cobra"
)

var restoreCmd = &cobra.Command{
	Use:   "restore <path>",
	Short: "Overwrite a working tree path from the index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		return repo.Restore(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(restoreCmd)
}
