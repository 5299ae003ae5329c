package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var branchDelete bool
var checkoutCreate bool

var branchCmd = &cobra.Command{
	Use:   "branch [name]",
	Short: "List, create, or delete branches",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}

		if len(args) == 0 {
			branches, err := repo.Branches()
			if err != nil {
				return err
			}
			for _, b := range branches {
				fmt.Println(b.Name)
			}
			return nil
		}

		if branchDelete {
			return repo.DeleteBranch(args[0])
		}
		return repo.CreateBranch(args[0])
	},
}

var checkoutCmd = &cobra.Command{
	Use:   "checkout <branch>",
	Short: "Switch the current branch, optionally creating it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		return repo.Checkout(args[0], checkoutCreate)
	},
}

func init() {
	branchCmd.Flags().BoolVarP(&branchDelete, "delete", "d", false, "delete the named branch")
	checkoutCmd.Flags().BoolVarP(&checkoutCreate, "create", "b", false, "create the branch before switching to it")
	rootCmd.AddCommand(branchCmd)
	rootCmd.AddCommand(checkoutCmd)
}
