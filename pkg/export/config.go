// File: pkg/export/config.go
package export

import (
	"strings"

	"ctxpack/pkg/rules"

	"go.uber.org/zap"
)

// Output layout constants.
const (
	DefaultDirName = "ai_context_export" // Export directory created under the base path.
	MergedFileName = "code.txt"          // Bundle written in merge mode.
	HeaderPrefix   = "// FILE: "         // First line of every per-file artifact.
	mergeLabel     = "FILE: "
)

// Delimiter frames every entry of the merged bundle.
var Delimiter = strings.Repeat("-", 60)

// Config holds the behavioral switches of an export.
type Config struct {
	Merge           bool // Write one bundle instead of one artifact per input.
	Flatten         bool // Collapse relative paths into a single file name.
	StripComments   bool // Remove line and block comments for known languages.
	StripBlankLines bool // Drop lines that are empty after trimming.
	TrimTrailing    bool // Right-trim every line.
}

// DefaultConfig returns the switches used when nothing is configured.
func DefaultConfig() Config {
	return Config{Flatten: true}
}

// Options configures a single Run.
type Options struct {
	BasePath  string          // Relative names are computed against this path.
	OutputDir string          // Deleted and recreated at the start of the run.
	Config    Config          // Export and cleaning switches.
	Resolver  *rules.Resolver // Decides inclusion and suffixing per file.
	Logger    *zap.Logger
	Progress  func(done, total int) // Optional; called from the running goroutine.
}

// Result summarizes a finished run.
type Result struct {
	Written  int    // Artifacts (or merged entries) written.
	Skipped  int    // Files rejected by rules or failed to read/write.
	Total    int    // Candidate files after union and dedup.
	Location string // Export directory.
	Err      error  // Per-file failures, combined; nil when none.
}
