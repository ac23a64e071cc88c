package cmd

import (
	"fmt"
	"os"

	"ctxpack/pkg/workspace"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// pathListCmd builds the add/rm/list trio shared by the include, exclude
// and roots commands.
func pathListCmd(use, short string, list func(*workspace.State) []string,
	add func(*workspace.State, string) bool, rm func(*workspace.State, string) bool,
	mustExist bool) *cobra.Command {
	parent := &cobra.Command{Use: use, Short: short}

	parent.AddCommand(&cobra.Command{
		Use:   "add <path>...",
		Short: "Add paths",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editPaths(args, mustExist, func(s *session, p string) {
				if !add(s.state, p) {
					logger.Info("Already present", zap.String("list", use), zap.String("path", p))
				}
			})
		},
	})
	parent.AddCommand(&cobra.Command{
		Use:     "rm <path>...",
		Aliases: []string{"remove"},
		Short:   "Remove paths",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editPaths(args, false, func(s *session, p string) {
				if !rm(s.state, p) {
					logger.Warn("Not present", zap.String("list", use), zap.String("path", p))
				}
			})
		},
	})
	parent.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			for _, p := range list(s.state) {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	})
	return parent
}

func editPaths(args []string, mustExist bool, edit func(*session, string)) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	paths, err := absArgs(args)
	if err != nil {
		return err
	}
	for _, p := range paths {
		if mustExist {
			if _, err := os.Stat(p); err != nil {
				return fmt.Errorf("cannot add %s: %w", p, err)
			}
		}
		edit(s, p)
	}
	return s.save()
}

func init() {
	RootCmd.AddCommand(pathListCmd("include", "Manage files exported regardless of rules",
		func(st *workspace.State) []string { return st.Overrides.Includes },
		(*workspace.State).AddInclude, (*workspace.State).RemoveInclude, true))

	RootCmd.AddCommand(pathListCmd("exclude", "Manage files and directories never exported",
		func(st *workspace.State) []string { return st.Overrides.Excludes },
		(*workspace.State).AddExclude, (*workspace.State).RemoveExclude, false))
}
