// Package nav holds the navigation state of the sidebar: which groups are
// expanded and whether the sidebar itself is collapsed. The node structure is
// read-only catalog data; only the expansion state lives here.
package nav

import (
	"github.com/plumber-cd/ez-masters/internal/domain"
)

// SelectionKind tells the caller what a selection resolved to.
type SelectionKind uint8

const (
	// SelectionNone means the reference did not match any node.
	SelectionNone SelectionKind = iota
	// SelectionToggled means a group was selected and its expansion flipped.
	SelectionToggled
	// SelectionLeaf means a leaf was selected; FormID names its target.
	SelectionLeaf
)

// Selection is the result of Tree.Select.
type Selection struct {
	Kind   SelectionKind
	Path   string
	FormID string
}

// VisibleNode is one row of the rendered sidebar.
type VisibleNode struct {
	Path     string
	Depth    int
	Node     *domain.NavNode
	Expanded bool
}

// Tree tracks expand state over an immutable set of navigation roots.
type Tree struct {
	roots            []*domain.NavNode
	index            map[string]*domain.NavNode
	expanded         map[string]struct{}
	sidebarCollapsed bool
}

// NewTree builds a tree with every group collapsed.
func NewTree(roots []*domain.NavNode) *Tree {
	t := &Tree{
		roots:    roots,
		index:    make(map[string]*domain.NavNode),
		expanded: make(map[string]struct{}),
	}
	var walk func(parent string, nodes []*domain.NavNode)
	walk = func(parent string, nodes []*domain.NavNode) {
		for _, node := range nodes {
			path := domain.JoinPath(parent, node.ID)
			t.index[path] = node
			walk(path, node.Children)
		}
	}
	walk("", roots)
	return t
}

// Roots returns the top-level nodes.
func (t *Tree) Roots() []*domain.NavNode { return t.roots }

// Resolve finds a node by path, or by bare id when no path matches. Bare ids
// resolve to the shallowest match in declaration order.
func (t *Tree) Resolve(ref string) (string, *domain.NavNode, bool) {
	if node, ok := t.index[ref]; ok {
		return ref, node, true
	}
	queue := make([]VisibleNode, 0, len(t.roots))
	for _, root := range t.roots {
		queue = append(queue, VisibleNode{Path: root.ID, Node: root})
	}
	for len(queue) > 0 {
		head := queue[0]
		queue = queue[1:]
		if head.Node.ID == ref {
			return head.Path, head.Node, true
		}
		for _, child := range head.Node.Children {
			queue = append(queue, VisibleNode{Path: domain.JoinPath(head.Path, child.ID), Node: child})
		}
	}
	return "", nil, false
}

// ToggleExpand flips membership of the referenced node in the expanded set.
// It reports false when the reference is unknown. Leaves are tracked too, so
// toggling twice is always the identity.
func (t *Tree) ToggleExpand(ref string) bool {
	path, _, ok := t.Resolve(ref)
	if !ok {
		return false
	}
	if _, expanded := t.expanded[path]; expanded {
		delete(t.expanded, path)
	} else {
		t.expanded[path] = struct{}{}
	}
	return true
}

// IsExpanded reports whether the referenced node is in the expanded set.
func (t *Tree) IsExpanded(ref string) bool {
	path, _, ok := t.Resolve(ref)
	if !ok {
		return false
	}
	_, expanded := t.expanded[path]
	return expanded
}

// Expanded returns a copy of the expanded set keyed by path.
func (t *Tree) Expanded() map[string]struct{} {
	out := make(map[string]struct{}, len(t.expanded))
	for k := range t.expanded {
		out[k] = struct{}{}
	}
	return out
}

// Select resolves a selection: groups toggle, leaves report their form id.
// Whether the form exists is the dispatcher's concern.
func (t *Tree) Select(ref string) Selection {
	path, node, ok := t.Resolve(ref)
	if !ok {
		return Selection{Kind: SelectionNone}
	}
	if !node.IsLeaf() {
		t.ToggleExpand(path)
		return Selection{Kind: SelectionToggled, Path: path}
	}
	return Selection{Kind: SelectionLeaf, Path: path, FormID: node.FormID()}
}

// SidebarCollapsed reports whether the sidebar is hidden.
func (t *Tree) SidebarCollapsed() bool { return t.sidebarCollapsed }

// SetSidebarCollapsed hides or shows the sidebar. Expand state is retained.
func (t *Tree) SetSidebarCollapsed(collapsed bool) { t.sidebarCollapsed = collapsed }

// ToggleSidebar flips the sidebar collapse state.
func (t *Tree) ToggleSidebar() { t.sidebarCollapsed = !t.sidebarCollapsed }

// Visible returns the rows a sidebar renders: roots plus the children of
// expanded groups. A collapsed sidebar renders nothing.
func (t *Tree) Visible() []VisibleNode {
	if t.sidebarCollapsed {
		return nil
	}
	var rows []VisibleNode
	var walk func(parent string, depth int, nodes []*domain.NavNode)
	walk = func(parent string, depth int, nodes []*domain.NavNode) {
		for _, node := range nodes {
			path := domain.JoinPath(parent, node.ID)
			_, expanded := t.expanded[path]
			rows = append(rows, VisibleNode{Path: path, Depth: depth, Node: node, Expanded: expanded})
			if expanded && !node.IsLeaf() {
				walk(path, depth+1, node.Children)
			}
		}
	}
	walk("", 0, t.roots)
	return rows
}
