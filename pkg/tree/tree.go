// Package tree models the scanned project as a forest of path nodes with a
// per-node selection flag.
//
// Nodes live in an arena owned by the Forest and are addressed by NodeID.
// A Forest is never patched: every rescan builds a new one, with selection
// restored from the persisted path-to-flag map.
package tree

// Kind distinguishes directories from files.
type Kind int

const (
	Dir Kind = iota
	File
)

func (k Kind) String() string {
	if k == Dir {
		return "dir"
	}
	return "file"
}

// NodeID indexes a node in its Forest.
type NodeID int

// NoParent is the Parent of a root node.
const NoParent NodeID = -1

// Node is one filesystem entry in the tree.
type Node struct {
	ID       NodeID
	Path     string // Absolute, cleaned.
	Name     string
	Kind     Kind
	Parent   NodeID
	Children []NodeID // Directories only; directories first, then files.
	Selected bool
}

// Forest is an ordered set of root trees.
type Forest struct {
	nodes  []Node
	roots  []NodeID
	byPath map[string]NodeID
}

func newForest() *Forest {
	return &Forest{byPath: make(map[string]NodeID)}
}

func (f *Forest) add(parent NodeID, path, name string, kind Kind, selected bool) NodeID {
	id := NodeID(len(f.nodes))
	f.nodes = append(f.nodes, Node{
		ID:       id,
		Path:     path,
		Name:     name,
		Kind:     kind,
		Parent:   parent,
		Selected: selected,
	})
	f.byPath[path] = id
	if parent == NoParent {
		f.roots = append(f.roots, id)
	} else {
		f.nodes[parent].Children = append(f.nodes[parent].Children, id)
	}
	return id
}

// Len returns the number of nodes.
func (f *Forest) Len() int {
	return len(f.nodes)
}

// Roots returns the root node IDs in scan order.
func (f *Forest) Roots() []NodeID {
	return append([]NodeID(nil), f.roots...)
}

// Node returns the node with the given ID, or nil when out of range.
func (f *Forest) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(f.nodes) {
		return nil
	}
	return &f.nodes[id]
}

// Lookup finds a node by absolute path.
func (f *Forest) Lookup(path string) (NodeID, bool) {
	id, ok := f.byPath[path]
	return id, ok
}

// Toggle flips the node's flag and propagates the new value to every descendant.
func (f *Forest) Toggle(id NodeID) bool {
	n := f.Node(id)
	if n == nil {
		return false
	}
	state := !n.Selected
	f.Set(id, state)
	return state
}

// Set assigns state to the node and all its descendants.
func (f *Forest) Set(id NodeID, state bool) {
	n := f.Node(id)
	if n == nil {
		return
	}
	n.Selected = state
	for _, c := range n.Children {
		f.Set(c, state)
	}
}

// Walk visits nodes in display order. Returning false from fn skips the
// node's children.
func (f *Forest) Walk(fn func(n *Node, depth int) bool) {
	for _, r := range f.roots {
		f.walk(r, 0, fn)
	}
}

func (f *Forest) walk(id NodeID, depth int, fn func(n *Node, depth int) bool) {
	n := &f.nodes[id]
	if !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		f.walk(c, depth+1, fn)
	}
}

// SelectedFiles returns the paths of selected file nodes in display order.
func (f *Forest) SelectedFiles() []string {
	var out []string
	f.Walk(func(n *Node, _ int) bool {
		if n.Kind == File && n.Selected {
			out = append(out, n.Path)
		}
		return true
	})
	return out
}

// Selection returns the flag of every node keyed by path.
func (f *Forest) Selection() map[string]bool {
	out := make(map[string]bool, len(f.nodes))
	for _, n := range f.nodes {
		out[n.Path] = n.Selected
	}
	return out
}
