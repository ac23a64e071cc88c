package cmd

import (
	"fmt"
	"sort"

	"ctxpack/pkg/tree"
	"ctxpack/pkg/workspace"

	"github.com/spf13/cobra"
)

// blockCmd hides paths from the tree; unlike an exclude it also removes them
// from the selection on the next scan.
var blockCmd = &cobra.Command{
	Use:   "block <path>...",
	Short: "Hide files or directories from the project tree",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editPaths(args, false, func(s *session, p string) {
			s.state.Block(p)
		})
	},
}

var unblockCmd = &cobra.Command{
	Use:   "unblock <path>...",
	Short: "Show previously blocked paths again",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editPaths(args, false, func(s *session, p string) {
			if !s.state.Unblock(p) {
				logger.Sugar().Warnf("%s was not blocked", p)
			}
		})
	},
}

var blockedCmd = &cobra.Command{
	Use:   "blocked",
	Short: "List blocked paths",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		paths := make([]string, 0, len(s.state.Blocked))
		for p := range s.state.Blocked {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		for _, p := range paths {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}

// listRoots shows the category directories found under the base, which
// cannot be removed, followed by the custom roots.
func listRoots(st *workspace.State) []string {
	var out []string
	for _, p := range tree.DefaultRoots(st.BasePath, nil) {
		out = append(out, p+" (category)")
	}
	return append(out, st.CustomRoots...)
}

func init() {
	roots := pathListCmd("roots", "Manage the directories the tree is built from",
		listRoots,
		(*workspace.State).AddRoot, (*workspace.State).RemoveRoot, true)
	RootCmd.AddCommand(roots)
	RootCmd.AddCommand(blockCmd)
	RootCmd.AddCommand(unblockCmd)
	RootCmd.AddCommand(blockedCmd)
}
