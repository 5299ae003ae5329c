package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anchorvcs/anchor/cmd/anchor/tui"
)

var logOneline bool
var logInteractive bool

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the commit history reachable from HEAD",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		history, err := repo.Log(cmd.Context())
		if err != nil {
			return err
		}

		if logInteractive {
			return tui.Run(history)
		}

		for _, snap := range history {
			if logOneline {
				fmt.Printf("%s %s\n", snap.SnapshotID[:12], snap.Message)
				continue
			}
			fmt.Println(styleBold.Render("snapshot " + snap.SnapshotID))
			fmt.Printf("Date:   %s\n", snap.Timestamp)
			fmt.Println()
			fmt.Printf("    %s\n\n", snap.Message)
		}
		return nil
	},
}

func init() {
	logCmd.Flags().BoolVar(&logOneline, "oneline", false, "show one commit per line")
	logCmd.Flags().BoolVar(&logInteractive, "interactive", false, "browse history in a scrollable terminal UI")
	rootCmd.AddCommand(logCmd)
}
