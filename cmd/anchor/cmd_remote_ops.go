package main

import (
	"github.com/spf13/cobra"
)

var pushMessage string
var pushRemote string

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload the working tree to a remote as a new snapshot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		id, err := repo.Push(cmd.Context(), pushRemote, pushMessage)
		if err != nil {
			return err
		}
		printSuccess("pushed %s", id[:12])
		return nil
	},
}

var pullRemote string

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Fetch and extract a remote's archive over the working tree",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		if err := repo.Pull(cmd.Context(), pullRemote); err != nil {
			return err
		}
		printSuccess("pulled from %s", pullRemote)
		return nil
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [remote]",
	Short: "Download a remote's history without touching the working tree",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		remoteName := "origin"
		if len(args) == 1 {
			remoteName = args[0]
		}
		repo, err := openRepo()
		if err != nil {
			return err
		}
		if err := repo.Fetch(cmd.Context(), remoteName); err != nil {
			return err
		}
		printSuccess("fetched %s", remoteName)
		return nil
	},
}

func init() {
	pushCmd.Flags().StringVarP(&pushMessage, "message", "m", "", "snapshot message")
	pushCmd.Flags().StringVar(&pushRemote, "remote", "origin", "remote name")
	pullCmd.Flags().StringVar(&pullRemote, "remote", "origin", "remote name")
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(pullCmd)
	rootCmd.AddCommand(fetchCmd)
}
