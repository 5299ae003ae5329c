package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anchorvcs/anchor/internal/client"
)

func sessionAccountClient() (*client.AccountClient, error) {
	session, err := loadSession()
	if err != nil {
		return nil, err
	}
	serverURL, ok := session.Get("server.url")
	if !ok {
		return nil, fmt.Errorf("not logged in: run `anchor login` first")
	}
	token, _ := session.Get("server.token")
	return client.NewAccountClient(serverURL, token), nil
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every repository on the logged-in server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		acct, err := sessionAccountClient()
		if err != nil {
			return err
		}
		repos, err := acct.ListRepos(cmd.Context())
		if err != nil {
			return err
		}
		for _, r := range repos {
			fmt.Println(r.Name)
		}
		return nil
	},
}

var sysCmd = &cobra.Command{
	Use:   "sys <name>",
	Short: "Probe a server repository's identity and reachability",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		acct, err := sessionAccountClient()
		if err != nil {
			return err
		}
		meta, err := acct.Sys(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("name:       %s\n", meta.Name)
		fmt.Printf("public:     %v\n", meta.IsPublic)
		fmt.Printf("favorite:   %v\n", meta.IsFavorite)
		return nil
	},
}

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new, empty repository on the logged-in server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		acct, err := sessionAccountClient()
		if err != nil {
			return err
		}
		if err := acct.CreateRepo(cmd.Context(), args[0]); err != nil {
			return err
		}
		printSuccess("created %s", args[0])
		return nil
	},
}

var favoriteUnset bool

var favoriteCmd = &cobra.Command{
	Use:   "favorite <name>",
	Short: "Toggle a server repository's favorite flag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		acct, err := sessionAccountClient()
		if err != nil {
			return err
		}
		return acct.SetFavorite(cmd.Context(), args[0], !favoriteUnset)
	},
}

func init() {
	favoriteCmd.Flags().BoolVar(&favoriteUnset, "unset", false, "clear the favorite flag instead of setting it")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(sysCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(favoriteCmd)
}
