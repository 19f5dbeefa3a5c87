package domain

import (
	"slices"
)

// Catalog is the load-once configuration: the registered form definitions and
// the navigation tree. It is not mutated after Validate succeeds.
type Catalog struct {
	forms map[string]*FormDefinition
	nav   []*NavNode
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{forms: make(map[string]*FormDefinition)}
}

// PutForm stores a definition without validation, replacing any with the same id.
func (c *Catalog) PutForm(def *FormDefinition) {
	c.forms[def.ID] = def
}

// SetNavigation replaces the navigation roots.
func (c *Catalog) SetNavigation(roots []*NavNode) {
	c.nav = roots
}

// Form returns the definition registered under id, or nil.
func (c *Catalog) Form(id string) *FormDefinition {
	return c.forms[id]
}

// HasForm reports whether id is a registered form.
func (c *Catalog) HasForm(id string) bool {
	_, ok := c.forms[id]
	return ok
}

// Forms returns all definitions in display order.
func (c *Catalog) Forms() []*FormDefinition {
	defs := make([]*FormDefinition, 0, len(c.forms))
	for _, def := range c.forms {
		defs = append(defs, def)
	}
	slices.SortStableFunc(defs, func(a, b *FormDefinition) int {
		return a.Compare(b)
	})
	return defs
}

// Navigation returns the navigation roots.
func (c *Catalog) Navigation() []*NavNode {
	return c.nav
}

// Walk visits every navigation node depth-first with its path. Returning false
// from visit stops the walk.
func (c *Catalog) Walk(visit func(path string, node *NavNode) bool) {
	var walk func(parent string, nodes []*NavNode) bool
	walk = func(parent string, nodes []*NavNode) bool {
		for _, node := range nodes {
			path := JoinPath(parent, node.ID)
			if !visit(path, node) {
				return false
			}
			if !walk(path, node.Children) {
				return false
			}
		}
		return true
	}
	walk("", c.nav)
}
