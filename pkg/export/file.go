package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ctxpack/pkg/rules"

	"go.uber.org/zap"
)

// entry is one file ready to be written.
type entry struct {
	Path     string // Absolute source path.
	Rel      string // Path relative to the base, OS separators.
	Decision rules.Decision
	Content  string // Cleaned content.
}

// readEntry reads and cleans a single file. Undecodable bytes are dropped.
func readEntry(path, base string, d rules.Decision, cfg Config, logger *zap.Logger) (entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return entry{}, fmt.Errorf("error reading file %s: %w", path, err)
	}

	rel, err := filepath.Rel(base, path)
	if err != nil {
		logger.Warn("Unable to determine relative path, using absolute path",
			zap.String("filePath", path),
			zap.String("basePath", base),
			zap.Error(err))
		rel = path
	}

	content := Clean(normalizeText(data), rules.Extension(filepath.Base(path)), cfg)
	logger.Debug("Read file content",
		zap.String("filePath", path),
		zap.Int("sizeBytes", len(data)),
		zap.Int("cleanedBytes", len(content)))

	return entry{Path: path, Rel: rel, Decision: d, Content: content}, nil
}

// OutputName computes the artifact name for rel in non-merge mode.
// Flattening replaces path separators with '_' and drops ':'; a relative
// path that leaves the base is always flattened.
func OutputName(rel string, flatten, appendSuffix bool) string {
	name := rel
	if flatten || escapes(rel) {
		name = strings.ReplaceAll(rel, string(filepath.Separator), "_")
		name = strings.ReplaceAll(name, ":", "")
	}
	if appendSuffix && !strings.HasSuffix(name, rules.BundleSuffix) {
		name += rules.BundleSuffix
	}
	return name
}

func escapes(rel string) bool {
	return filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// writeArtifact writes e as its own file under outDir with a one-line header.
func writeArtifact(outDir, name string, e entry, logger *zap.Logger) error {
	target := filepath.Join(outDir, name)
	if err := os.MkdirAll(filepath.Dir(target), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", target, err)
	}
	data := HeaderPrefix + e.Rel + "\n" + e.Content
	if err := os.WriteFile(target, []byte(data), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	logger.Debug("Successfully wrote file", zap.String("path", target))
	return nil
}
