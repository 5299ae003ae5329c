package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <object>",
	Short: "Print a snapshot, tree, or blob by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		obj, err := repo.Show(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		switch obj.Kind {
		case "snapshot":
			fmt.Printf("snapshot %s\n", obj.Snapshot.SnapshotID)
			fmt.Printf("tree:    %s\n", obj.Snapshot.RootTree)
			fmt.Printf("\n    %s\n", obj.Snapshot.Message)
		case "tree":
			for path, entry := range obj.Tree.Entries {
				fmt.Printf("%s\t%s\n", entry.ID, path)
			}
		case "blob":
			os.Stdout.Write(obj.Blob)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
