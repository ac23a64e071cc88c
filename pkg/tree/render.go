// File: pkg/tree/render.go
package tree

import (
	"bufio"
	"fmt"
	"io"
)

const (
	markSelected   = "[x]"
	markUnselected = "[ ]"
)

// Render writes the forest as a box-drawing tree with selection markers.
// Each root is printed with its absolute path; directories end with '/'.
func Render(w io.Writer, f *Forest) error {
	bw := bufio.NewWriter(w)
	for _, id := range f.roots {
		n := &f.nodes[id]
		name := n.Path
		if n.Kind == Dir {
			name += "/"
		}
		fmt.Fprintf(bw, "%s %s\n", mark(n), name)
		renderChildren(bw, f, n, "")
	}
	return bw.Flush()
}

func renderChildren(w *bufio.Writer, f *Forest, n *Node, prefix string) {
	for i, c := range n.Children {
		connector := "├── "
		extension := "│   "
		if i == len(n.Children)-1 {
			connector = "└── "
			extension = "    "
		}
		child := &f.nodes[c]
		name := child.Name
		if child.Kind == Dir {
			name += "/"
		}
		fmt.Fprintf(w, "%s%s%s %s\n", prefix, connector, mark(child), name)
		renderChildren(w, f, child, prefix+extension)
	}
}

func mark(n *Node) string {
	if n.Selected {
		return markSelected
	}
	return markUnselected
}
