package cmd

import (
	"fmt"
	"os"

	"ctxpack/pkg/logging"
	"ctxpack/pkg/version"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Environment variables consulted when the matching flag is not given.
const (
	envBase   = "CTXPACK_BASE"
	envConfig = "CTXPACK_CONFIG"
	envOutput = "CTXPACK_OUTPUT"
)

var (
	logger = zap.NewNop()

	basePath   string
	configPath string
	debug      bool
)

// RootCmd is the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "ctxpack",
	Short: "ctxpack bundles a curated set of project files into text",
	Long: `ctxpack keeps a persistent selection of project files, per-directory extension
rules and forced include/exclude lists, and exports the result as flattened,
optionally cleaned text files or one merged bundle for AI context windows.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if debug {
			l, err := logging.Setup(true, version.AppName, version.Version)
			if err != nil {
				return fmt.Errorf("failed to initialize debug logger: %w", err)
			}
			logger = l
		}
		return nil
	},
}

// Execute loads .env, then runs the command tree with the given logger.
func Execute(l *zap.Logger) error {
	if l != nil {
		logger = l
	}
	// A missing .env file is not an error.
	_ = godotenv.Load()

	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&basePath, "base", "b", "", "Project base path (default $"+envBase+" or the current directory)")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Workspace document (default $"+envConfig+" or <base>/ctxpack.json)")
	RootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
}

// firstNonEmpty returns the first non-empty value.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
