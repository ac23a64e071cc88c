// File: pkg/export/export.go
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var (
	// ErrOutputDir indicates the export directory could not be cleared or created.
	ErrOutputDir = errors.New("export directory unavailable")
	// ErrUnsafeOutputDir indicates an export directory that contains the base path.
	ErrUnsafeOutputDir = errors.New("export directory must not contain the base path")
	// ErrNoResolver indicates Options without a rule resolver.
	ErrNoResolver = errors.New("export requires a resolver")
)

// Run exports the union of selected files and existing forced includes.
//
// The export directory is replaced wholesale before anything is written.
// Failures to prepare it are returned as errors; failures on individual files
// are logged, collected in Result.Err and do not stop the run.
func Run(selected, includes []string, opts Options) (Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Resolver == nil {
		return Result{}, ErrNoResolver
	}
	startTime := time.Now()

	base, err := filepath.Abs(opts.BasePath)
	if err != nil {
		return Result{}, fmt.Errorf("failed to get absolute base path: %w", err)
	}
	outDir, err := filepath.Abs(opts.OutputDir)
	if err != nil {
		return Result{}, fmt.Errorf("failed to get absolute output path: %w", err)
	}
	if opts.OutputDir == "" || contains(outDir, base) {
		return Result{}, fmt.Errorf("%w: %s", ErrUnsafeOutputDir, outDir)
	}

	logger.Info("Starting export",
		zap.String("basePath", base),
		zap.String("outputDir", outDir),
		zap.Bool("merge", opts.Config.Merge),
		zap.Bool("flatten", opts.Config.Flatten))

	if err := recreateDirectory(outDir, logger); err != nil {
		return Result{}, err
	}

	var merged *mergeWriter
	if opts.Config.Merge {
		merged, err = newMergeWriter(filepath.Join(outDir, MergedFileName), logger)
		if err != nil {
			return Result{}, err
		}
	}

	files := Candidates(selected, includes, logger)
	res := Result{Total: len(files), Location: outDir}
	names := make(map[string]string)

	for i, path := range files {
		progress(opts.Progress, i, len(files))

		d := opts.Resolver.Resolve(path)
		if !d.Include {
			logger.Debug("Skipping file", zap.String("filePath", path), zap.Stringer("reason", d.Reason))
			res.Skipped++
			continue
		}

		e, err := readEntry(path, base, d, opts.Config, logger)
		if err == nil {
			if merged != nil {
				err = merged.Write(e)
			} else {
				name := OutputName(e.Rel, opts.Config.Flatten, d.AppendSuffix)
				if prev, ok := names[name]; ok {
					logger.Warn("Output name collision, overwriting",
						zap.String("name", name),
						zap.String("previous", prev),
						zap.String("current", e.Rel))
				}
				names[name] = e.Rel
				err = writeArtifact(outDir, name, e, logger)
			}
		}
		if err != nil {
			logger.Warn("Skipped file", zap.String("filePath", path), zap.Error(err))
			res.Err = multierr.Append(res.Err, err)
			res.Skipped++
			continue
		}
		res.Written++
	}

	if merged != nil {
		if err := merged.Close(); err != nil {
			return res, err
		}
	}
	progress(opts.Progress, len(files), len(files))

	logger.Info("Export completed",
		zap.String("outputDir", outDir),
		zap.Int("written", res.Written),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", len(multierr.Errors(res.Err))),
		zap.Duration("elapsed", time.Since(startTime)))
	return res, nil
}

// Candidates returns the sorted, deduplicated union of selected paths and
// the forced includes that exist on disk. All paths are made absolute.
func Candidates(selected, includes []string, logger *zap.Logger) []string {
	if logger == nil {
		logger = zap.NewNop()
	}
	seen := make(map[string]struct{}, len(selected)+len(includes))
	add := func(p string) {
		abs, err := filepath.Abs(p)
		if err != nil {
			logger.Warn("Failed to resolve path", zap.String("path", p), zap.Error(err))
			return
		}
		seen[abs] = struct{}{}
	}
	for _, p := range selected {
		add(p)
	}
	for _, p := range includes {
		if _, err := os.Stat(p); err != nil {
			logger.Debug("Forced include does not exist", zap.String("path", p))
			continue
		}
		add(p)
	}

	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// recreateDirectory deletes path and creates it again empty.
func recreateDirectory(path string, logger *zap.Logger) error {
	if err := os.RemoveAll(path); err != nil {
		logger.Error("Failed to clear directory", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrOutputDir, err)
	}
	if err := os.MkdirAll(path, os.ModePerm); err != nil {
		logger.Error("Failed to create directory", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrOutputDir, err)
	}
	logger.Debug("Recreated export directory", zap.String("path", path))
	return nil
}

// contains reports whether dir is path or one of its ancestors.
func contains(dir, path string) bool {
	if dir == path {
		return true
	}
	prefix := dir
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(path, prefix)
}

func progress(fn func(done, total int), done, total int) {
	if fn != nil {
		fn(done, total)
	}
}
