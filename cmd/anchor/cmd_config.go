package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configList bool

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set replica configuration",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}

		if configList || len(args) == 0 {
			for _, kv := range repo.Config.All() {
				fmt.Printf("%s = %s\n", kv.Key, kv.Value)
			}
			return nil
		}

		if len(args) == 1 {
			value, ok := repo.Config.Get(args[0])
			if !ok {
				return fmt.Errorf("no such key %q", args[0])
			}
			fmt.Println(value)
			return nil
		}

		repo.Config.Set(args[0], args[1])
		return repo.Config.Save(repo.AnchorDir)
	},
}

func init() {
	configCmd.Flags().BoolVar(&configList, "list", false, "list all configuration entries")
	rootCmd.AddCommand(configCmd)
}
