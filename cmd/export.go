package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"ctxpack/pkg/export"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/term"
)

const progressInterval = 100 * time.Millisecond

// exportCmd runs the export pipeline over the current selection.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the selected files",
	Long: `Export rescans the project, saves the current state, and writes every selected
file (plus forced includes) that passes the rules into the export directory.
The export directory is deleted and recreated on every run.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	f := exportCmd.Flags()
	f.Bool("merge", false, "Merge all files into one bundle ("+export.MergedFileName+")")
	f.Bool("flatten", true, "Flatten paths (apps/web/main.ts -> apps_web_main.ts)")
	f.Bool("strip-comments", false, "Remove comments for known languages")
	f.Bool("strip-blank", false, "Remove empty lines")
	f.Bool("trim", false, "Trim trailing whitespace")
	f.StringP("output", "o", "", "Export directory (default $"+envOutput+" or <base>/"+export.DefaultDirName+")")
	f.StringP("preset", "p", "", "Use a named preset instead of the workspace document")
	f.Bool("copy", false, "Copy the merged bundle to the clipboard")

	RootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}

	preset, err := cmd.Flags().GetString("preset")
	if err != nil {
		return fmt.Errorf("error reading flags: %w", err)
	}
	if preset != "" {
		st, err := s.store.LoadPreset(s.base, preset)
		if err != nil {
			return err
		}
		s.state = st
		logger.Info("Loaded preset", zap.String("preset", preset))
	}

	if err := applyExportFlags(cmd, &s.state.Export); err != nil {
		return err
	}

	forest := s.scan()
	s.state.CaptureSelection(forest)
	if preset == "" {
		if err := s.save(); err != nil {
			return err
		}
	}

	resolver, err := s.state.Resolver()
	if err != nil {
		return err
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("error reading flags: %w", err)
	}
	outDir := firstNonEmpty(output, os.Getenv(envOutput), filepath.Join(s.base, export.DefaultDirName))

	var runner export.Runner
	job, err := runner.Start(forest.SelectedFiles(), s.state.Overrides.Includes, export.Options{
		BasePath:  s.base,
		OutputDir: outDir,
		Config:    s.state.Export,
		Resolver:  resolver,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	res, err := waitWithProgress(job, os.Stderr)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	if res.Err != nil {
		logger.Warn("Some files were skipped", zap.Int("count", len(multierr.Errors(res.Err))), zap.Error(res.Err))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d files to:\n%s\n", res.Written, res.Location)

	copyBundle, err := cmd.Flags().GetBool("copy")
	if err != nil {
		return fmt.Errorf("error reading flags: %w", err)
	}
	if copyBundle {
		return copyToClipboard(res, s.state.Export)
	}
	return nil
}

// applyExportFlags overrides persisted switches with flags set on the command line.
func applyExportFlags(cmd *cobra.Command, cfg *export.Config) error {
	flags := []struct {
		name string
		dst  *bool
	}{
		{"merge", &cfg.Merge},
		{"flatten", &cfg.Flatten},
		{"strip-comments", &cfg.StripComments},
		{"strip-blank", &cfg.StripBlankLines},
		{"trim", &cfg.TrimTrailing},
	}
	for _, fl := range flags {
		if !cmd.Flags().Changed(fl.name) {
			continue
		}
		v, err := cmd.Flags().GetBool(fl.name)
		if err != nil {
			return fmt.Errorf("error reading flags: %w", err)
		}
		*fl.dst = v
	}
	return nil
}

// waitWithProgress blocks until job finishes, drawing a percentage on w when
// it is a terminal.
func waitWithProgress(job *export.Job, w *os.File) (export.Result, error) {
	if !term.IsTerminal(int(w.Fd())) {
		return job.Wait()
	}
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()
	for {
		select {
		case <-job.Done():
			drawProgress(w, 1)
			fmt.Fprintln(w)
			return job.Wait()
		case <-ticker.C:
			drawProgress(w, job.Progress())
		}
	}
}

func drawProgress(w io.Writer, frac float64) {
	fmt.Fprintf(w, "\rExporting... %3.0f%%", frac*100)
}

func copyToClipboard(res export.Result, cfg export.Config) error {
	if !cfg.Merge {
		return fmt.Errorf("--copy requires merge mode")
	}
	data, err := os.ReadFile(filepath.Join(res.Location, export.MergedFileName))
	if err != nil {
		return fmt.Errorf("failed to read bundle: %w", err)
	}
	if err := clipboard.WriteAll(string(data)); err != nil {
		return fmt.Errorf("failed to copy bundle to clipboard: %w", err)
	}
	logger.Info("Copied bundle to clipboard", zap.Int("bytes", len(data)))
	return nil
}
