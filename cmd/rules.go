package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"ctxpack/pkg/rules"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// rulesCmd groups the rule map editing commands. Without --scope they act on
// the global map; with --scope on the map of that directory.
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and edit extension rules",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the rules that apply to a scope",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		scope, err := scopeFlag(cmd)
		if err != nil {
			return err
		}
		m, own := s.state.RulesFor(scope)
		out := cmd.OutOrStdout()
		switch {
		case scope == "":
			fmt.Fprintln(out, "Global rules:")
		case own:
			fmt.Fprintf(out, "Rules for %s:\n", scope)
		default:
			fmt.Fprintf(out, "%s has no rules of its own, showing global rules:\n", scope)
		}
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			suffix := ""
			if m[k] {
				suffix = " (+" + rules.BundleSuffix + ")"
			}
			fmt.Fprintf(out, "  %s%s\n", k, suffix)
		}
		if len(keys) == 0 {
			fmt.Fprintln(out, "  (none, nothing is exported by rule)")
		}
		return nil
	},
}

var rulesSetCmd = &cobra.Command{
	Use:   "set <key>...",
	Short: "Add or update rule keys (e.g. rb, .go, Dockerfile)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		suffix, err := cmd.Flags().GetBool("suffix")
		if err != nil {
			return fmt.Errorf("error reading flags: %w", err)
		}
		return editRules(cmd, args, func(s *session, scope, key string) {
			s.state.SetRule(scope, key, suffix)
			logger.Debug("Rule set", zap.String("scope", scope), zap.String("key", key), zap.Bool("suffix", suffix))
		})
	},
}

var rulesRmCmd = &cobra.Command{
	Use:     "rm <key>...",
	Aliases: []string{"remove"},
	Short:   "Remove rule keys",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editRules(cmd, args, func(s *session, scope, key string) {
			if !s.state.RemoveRule(scope, key) {
				logger.Warn("Rule not present", zap.String("scope", scope), zap.String("key", key))
			}
		})
	},
}

var rulesClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Give --scope an empty rule map so nothing below it is exported by rule",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, scope, err := scopedSession(cmd, true)
		if err != nil {
			return err
		}
		s.state.SaveScope(scope, rules.RuleMap{})
		return s.save()
	},
}

var rulesRevertCmd = &cobra.Command{
	Use:   "revert",
	Short: "Drop the rule map of --scope so the global rules apply again",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, scope, err := scopedSession(cmd, true)
		if err != nil {
			return err
		}
		if !s.state.RevertScope(scope) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s has no rules of its own\n", scope)
			return nil
		}
		return s.save()
	},
}

var rulesExplainCmd = &cobra.Command{
	Use:   "explain <file>...",
	Short: "Show how each file would be treated by an export",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		paths, err := absArgs(args)
		if err != nil {
			return err
		}
		resolver, err := s.state.Resolver()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, p := range paths {
			d := resolver.Resolve(p)
			verdict := "skip"
			if d.Include {
				verdict = "export"
				if d.AppendSuffix {
					verdict += " +" + rules.BundleSuffix
				}
			}
			scope := d.Scope
			if scope == "" {
				scope = "global"
			}
			name := p
			if rel, err := filepath.Rel(resolver.Base(), p); err == nil {
				name = rel
			}
			fmt.Fprintf(out, "%s: %s (reason: %s, key: %q, rules: %s)\n", name, verdict, d.Reason, d.Key, scope)
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{rulesListCmd, rulesSetCmd, rulesRmCmd, rulesClearCmd, rulesRevertCmd} {
		c.Flags().String("scope", "", "Directory whose rule map is used (default: global rules)")
		rulesCmd.AddCommand(c)
	}
	rulesSetCmd.Flags().Bool("suffix", false, "Append "+rules.BundleSuffix+" to matching output names")
	rulesCmd.AddCommand(rulesExplainCmd)
	RootCmd.AddCommand(rulesCmd)
}

// scopeFlag returns --scope as an absolute path, or "" for the global map.
func scopeFlag(cmd *cobra.Command) (string, error) {
	scope, err := cmd.Flags().GetString("scope")
	if err != nil {
		return "", fmt.Errorf("error reading flags: %w", err)
	}
	if scope == "" {
		return "", nil
	}
	abs, err := absArgs([]string{scope})
	if err != nil {
		return "", err
	}
	return abs[0], nil
}

func scopedSession(cmd *cobra.Command, required bool) (*session, string, error) {
	scope, err := scopeFlag(cmd)
	if err != nil {
		return nil, "", err
	}
	if required && scope == "" {
		return nil, "", errors.New("--scope is required")
	}
	s, err := openSession()
	if err != nil {
		return nil, "", err
	}
	return s, scope, nil
}

// editRules normalizes every key, applies edit, then saves the workspace.
func editRules(cmd *cobra.Command, args []string, edit func(s *session, scope, key string)) error {
	s, scope, err := scopedSession(cmd, false)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(args))
	for _, a := range args {
		key, err := rules.NormalizeKey(a)
		if err != nil {
			return fmt.Errorf("invalid rule key %q: %w", a, err)
		}
		keys = append(keys, key)
	}
	for _, key := range keys {
		edit(s, scope, key)
	}
	return s.save()
}
