package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"ctxpack/pkg/tree"
	"ctxpack/pkg/workspace"

	"go.uber.org/zap"
)

// session is the loaded workspace a command operates on.
type session struct {
	base  string
	store *workspace.Store
	state *workspace.State
}

// openSession resolves the base path and loads the workspace document.
// A corrupt document is reported and replaced by defaults on the next save.
func openSession() (*session, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	base, err := filepath.Abs(firstNonEmpty(basePath, os.Getenv(envBase), cwd))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base path: %w", err)
	}

	store := workspace.NewStore(base, logger)
	if p := firstNonEmpty(configPath, os.Getenv(envConfig)); p != "" {
		store.Path = p
	}

	state, err := store.Load(base)
	if err != nil {
		if !errors.Is(err, workspace.ErrCorruptDocument) {
			return nil, err
		}
		logger.Warn("Ignoring corrupt workspace document", zap.String("path", store.Path), zap.Error(err))
	}
	return &session{base: base, store: store, state: state}, nil
}

func (s *session) scan() *tree.Forest {
	return s.state.Scan(logger)
}

func (s *session) save() error {
	if err := s.store.Save(s.state); err != nil {
		return fmt.Errorf("failed to save workspace: %w", err)
	}
	return nil
}

// absArgs converts command arguments to absolute paths.
func absArgs(args []string) ([]string, error) {
	out := make([]string, 0, len(args))
	for _, a := range args {
		abs, err := filepath.Abs(a)
		if err != nil {
			return nil, fmt.Errorf("invalid path %q: %w", a, err)
		}
		out = append(out, abs)
	}
	return out, nil
}
