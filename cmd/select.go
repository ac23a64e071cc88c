package cmd

import (
	"fmt"
	"io"

	"ctxpack/pkg/tree"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// toggleCmd flips the selection of nodes; directories propagate their new
// state to every descendant.
var toggleCmd = &cobra.Command{
	Use:   "toggle <path>...",
	Short: "Toggle the selection of files or directories",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editSelection(cmd, args, func(f *tree.Forest, id tree.NodeID) {
			f.Toggle(id)
		})
	},
}

var selectCmd = &cobra.Command{
	Use:   "select <path>...",
	Short: "Select files or directories (use --off to deselect)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		off, err := cmd.Flags().GetBool("off")
		if err != nil {
			return fmt.Errorf("error reading flags: %w", err)
		}
		return editSelection(cmd, args, func(f *tree.Forest, id tree.NodeID) {
			f.Set(id, !off)
		})
	},
}

func init() {
	selectCmd.Flags().Bool("off", false, "Deselect instead of select")
	RootCmd.AddCommand(toggleCmd)
	RootCmd.AddCommand(selectCmd)
}

// editSelection applies edit to the node of every path, then persists the
// resulting selection. Paths must be present in the scanned tree.
func editSelection(cmd *cobra.Command, args []string, edit func(*tree.Forest, tree.NodeID)) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	paths, err := absArgs(args)
	if err != nil {
		return err
	}

	forest := s.scan()
	ids := make([]tree.NodeID, 0, len(paths))
	for _, p := range paths {
		id, ok := forest.Lookup(p)
		if !ok {
			return fmt.Errorf("path is not in the project tree: %s", p)
		}
		ids = append(ids, id)
	}
	for _, id := range ids {
		edit(forest, id)
		n := forest.Node(id)
		logger.Debug("Selection changed", zap.String("path", n.Path), zap.Bool("selected", n.Selected))
	}

	s.state.CaptureSelection(forest)
	if err := s.save(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d files selected\n", len(forest.SelectedFiles()))
	return nil
}

// renderTree scans and prints the project tree.
func renderTree(cmd *cobra.Command, s *session) error {
	return writeTree(cmd.OutOrStdout(), s.scan())
}

func writeTree(w io.Writer, f *tree.Forest) error {
	if f.Len() == 0 {
		_, err := fmt.Fprintln(w, "(no roots)")
		return err
	}
	return tree.Render(w, f)
}
