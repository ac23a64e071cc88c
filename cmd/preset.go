package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// presetCmd manages named snapshots of the whole workspace document.
var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Save, load and list named workspace presets",
}

var presetSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save the current workspace as a preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		s.state.CaptureSelection(s.scan())
		if err := s.store.SavePreset(args[0], s.state); err != nil {
			return err
		}
		logger.Info("Preset saved", zap.String("name", args[0]))
		return nil
	},
}

var presetLoadCmd = &cobra.Command{
	Use:   "load <name>",
	Short: "Replace the workspace with a preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		st, err := s.store.LoadPreset(s.base, args[0])
		if err != nil {
			return err
		}
		s.state = st
		if err := s.save(); err != nil {
			return err
		}
		logger.Info("Preset loaded", zap.String("name", args[0]))
		return nil
	},
}

var presetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		names, err := s.store.ListPresets()
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Fprintln(cmd.OutOrStdout(), n)
		}
		return nil
	},
}

func init() {
	presetCmd.AddCommand(presetSaveCmd, presetLoadCmd, presetListCmd)
	RootCmd.AddCommand(presetCmd)
}
