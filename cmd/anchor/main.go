// Command anchor is the offline-capable working-copy client: init,
// clone, status, add, commit, push/pull/fetch, log, diff, branch,
// merge, reset, blame, and the account-level login/list/create surface.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anchorvcs/anchor/internal/client"
)

var (
	// Version is set at build time via -ldflags.
	Version = "dev"
)

var rootCmd = &cobra.Command{
	Use:           "anchor",
	Short:         "Anchor version control client",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printErr(err)
		os.Exit(1)
	}
}

// openRepo opens the .anchor replica rooted at the current directory,
// the same way every working-copy subcommand expects to find one.
func openRepo() (*client.Repo, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("determine working directory: %w", err)
	}
	return client.Open(wd)
}
