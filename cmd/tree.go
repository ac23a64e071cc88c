package cmd

import (
	"github.com/spf13/cobra"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Show the project tree with selection markers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		return renderTree(cmd, s)
	},
}

func init() {
	RootCmd.AddCommand(treeCmd)
}
