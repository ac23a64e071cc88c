package workspace

import (
	"encoding/json"
	"fmt"
	"sort"

	"ctxpack/pkg/rules"
)

// Document is the persisted form of a State. Field names match the
// on-disk JSON keys; absent keys decode to their defaults.
type Document struct {
	CustomRoots    []string                 `json:"custom_roots"`
	BlockedPaths   []string                 `json:"blocked_paths"`
	ForcedIncludes []string                 `json:"forced_includes"`
	ForcedExcludes []string                 `json:"forced_excludes"`
	GlobalRules    rules.RuleMap            `json:"global_ext_config"`
	ScopeRules     map[string]rules.RuleMap `json:"folder_configs"`
	Selection      map[string]bool          `json:"tree_selection_state"`

	MergeMode        bool `json:"merge_mode"`
	FlattenPaths     bool `json:"flatten_paths"`
	RemoveComments   bool `json:"remove_comments"`
	RemoveEmptyLines bool `json:"remove_empty_lines"`
	TrimTrailing     bool `json:"fix_indent"`
}

// DefaultDocument is what an empty or missing document decodes to.
func DefaultDocument() Document {
	d := Document{FlattenPaths: true}
	d.fillDefaults()
	return d
}

func (d *Document) fillDefaults() {
	if d.CustomRoots == nil {
		d.CustomRoots = []string{}
	}
	if d.BlockedPaths == nil {
		d.BlockedPaths = []string{}
	}
	if d.ForcedIncludes == nil {
		d.ForcedIncludes = []string{}
	}
	if d.ForcedExcludes == nil {
		d.ForcedExcludes = []string{}
	}
	if d.GlobalRules == nil {
		d.GlobalRules = rules.DefaultGlobal()
	}
	if d.ScopeRules == nil {
		d.ScopeRules = map[string]rules.RuleMap{}
	}
	for dir, m := range d.ScopeRules {
		if m == nil {
			d.ScopeRules[dir] = rules.RuleMap{}
		}
	}
	if d.Selection == nil {
		d.Selection = map[string]bool{}
	}
}

// Decode parses a document. Missing keys keep their defaults; an explicit
// empty global map stays empty.
func Decode(data []byte) (Document, error) {
	d := Document{FlattenPaths: true}
	if err := json.Unmarshal(data, &d); err != nil {
		return DefaultDocument(), fmt.Errorf("%w: %w", ErrCorruptDocument, err)
	}
	d.fillDefaults()
	return d, nil
}

// Encode renders a document with two-space indentation and a sorted
// blocked-path list.
func Encode(d Document) ([]byte, error) {
	d.fillDefaults()
	blocked := append([]string(nil), d.BlockedPaths...)
	sort.Strings(blocked)
	d.BlockedPaths = blocked

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return append(data, '\n'), nil
}
