package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/anchorvcs/anchor/internal/client"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a new replica in the current directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		if _, err := client.Init(wd); err != nil {
			return err
		}
		printSuccess("initialized an empty replica in %s", wd)
		return nil
	},
}

var cloneCmd = &cobra.Command{
	Use:   "clone <url> [dest]",
	Short: "Clone a repository from a server",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		url := args[0]
		dest := "."
		if len(args) == 2 {
			dest = args[1]
		}

		session, err := loadSession()
		token := ""
		if err == nil {
			token, _ = session.Get("server.token")
		}

		if _, err := client.Clone(cmd.Context(), url, dest, token); err != nil {
			return err
		}
		printSuccess("cloned into %s", dest)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(cloneCmd)
}
