package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var remoteVerbose bool

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Manage remote server URLs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		for _, rm := range repo.Config.Remotes() {
			if remoteVerbose {
				fmt.Printf("%s\t%s\n", rm.Name, rm.URL)
			} else {
				fmt.Println(rm.Name)
			}
		}
		return nil
	},
}

var remoteAddCmd = &cobra.Command{
	Use:   "add <name> <url>",
	Short: "Add a remote",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		repo.Config.SetRemote(args[0], args[1])
		return repo.Config.Save(repo.AnchorDir)
	},
}

func init() {
	remoteCmd.Flags().BoolVarP(&remoteVerbose, "verbose", "v", false, "show remote URLs")
	remoteCmd.AddCommand(remoteAddCmd)
	rootCmd.AddCommand(remoteCmd)
}
