package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Default file locations, relative to the base path.
const (
	DefaultDocumentName = "ctxpack.json"
	DefaultPresetDir    = "ctxpack_presets"
	presetExt           = ".json"
)

// Sentinel errors for workspace persistence.
var (
	// ErrCorruptDocument indicates a document that is not valid JSON.
	ErrCorruptDocument = errors.New("corrupt workspace document")
	// ErrPresetNotFound indicates a preset name with no file behind it.
	ErrPresetNotFound = errors.New("preset not found")
	// ErrInvalidPresetName indicates an empty name or one containing a path separator.
	ErrInvalidPresetName = errors.New("invalid preset name")
)

// Store reads and writes the default document and named presets.
type Store struct {
	Path      string // Default document.
	PresetDir string // One "<name>.json" per preset.
	Logger    *zap.Logger
}

// NewStore returns a Store using the default locations under base.
func NewStore(base string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		Path:      filepath.Join(base, DefaultDocumentName),
		PresetDir: filepath.Join(base, DefaultPresetDir),
		Logger:    logger,
	}
}

// Load reads the default document. A missing file yields the default state.
// A corrupt file yields the default state together with ErrCorruptDocument.
func (s *Store) Load(base string) (*State, error) {
	return s.load(base, s.Path, false)
}

// Save writes st as the default document.
func (s *Store) Save(st *State) error {
	return s.write(s.Path, st)
}

// SavePreset writes st under name.
func (s *Store) SavePreset(name string, st *State) error {
	path, err := s.presetPath(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.PresetDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create preset directory: %w", err)
	}
	return s.write(path, st)
}

// LoadPreset reads the preset called name.
func (s *Store) LoadPreset(base, name string) (*State, error) {
	path, err := s.presetPath(name)
	if err != nil {
		return nil, err
	}
	return s.load(base, path, true)
}

// ListPresets returns preset names in sorted order. A missing preset
// directory has no presets.
func (s *Store) ListPresets() ([]string, error) {
	entries, err := os.ReadDir(s.PresetDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list presets: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), presetExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), presetExt))
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) presetPath(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPresetName, name)
	}
	return filepath.Join(s.PresetDir, name+presetExt), nil
}

func (s *Store) load(base, path string, mustExist bool) (*State, error) {
	logger := s.logger()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if mustExist {
				return nil, fmt.Errorf("%w: %s", ErrPresetNotFound, path)
			}
			logger.Debug("No workspace document, using defaults", zap.String("path", path))
			return New(base), nil
		}
		logger.Error("Failed to read workspace document", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	doc, err := Decode(data)
	if err != nil {
		logger.Warn("Workspace document is corrupt, using defaults", zap.String("path", path), zap.Error(err))
		return FromDocument(base, doc), err
	}
	logger.Debug("Loaded workspace document", zap.String("path", path))
	return FromDocument(base, doc), nil
}

func (s *Store) write(path string, st *State) error {
	data, err := Encode(st.Document())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.logger().Error("Failed to write workspace document", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	s.logger().Debug("Saved workspace document", zap.String("path", path))
	return nil
}

func (s *Store) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
