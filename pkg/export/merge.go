// File: pkg/export/merge.go
package export

import (
	"bufio"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// mergeWriter appends framed entries to the single bundle file.
type mergeWriter struct {
	path   string
	file   *os.File
	writer *bufio.Writer
	logger *zap.Logger
}

func newMergeWriter(path string, logger *zap.Logger) (*mergeWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		logger.Error("Failed to create output file", zap.String("file", path), zap.Error(err))
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return &mergeWriter{path: path, file: f, writer: bufio.NewWriter(f), logger: logger}, nil
}

// Write appends one entry framed by delimiter and header lines.
func (m *mergeWriter) Write(e entry) error {
	_, err := fmt.Fprintf(m.writer, "%s\n%s%s\n%s\n%s\n%s\n\n",
		Delimiter, mergeLabel, e.Rel, Delimiter, e.Content, Delimiter)
	if err != nil {
		m.logger.Error("Failed to write content to combined file",
			zap.String("file", m.path),
			zap.String("contentPath", e.Rel),
			zap.Error(err))
		return fmt.Errorf("failed to write content: %w", err)
	}
	return nil
}

// Close flushes and closes the bundle.
func (m *mergeWriter) Close() error {
	if err := m.writer.Flush(); err != nil {
		m.file.Close()
		m.logger.Error("Failed to flush output file", zap.String("file", m.path), zap.Error(err))
		return fmt.Errorf("failed to flush output: %w", err)
	}
	if err := m.file.Close(); err != nil {
		m.logger.Error("Failed to close output file", zap.String("file", m.path), zap.Error(err))
		return fmt.Errorf("failed to close output: %w", err)
	}
	return nil
}
