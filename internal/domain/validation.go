package domain

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the definition's invariants: declared shape, unique keys,
// a resolvable id field and type-consistent defaults and samples.
func (d *FormDefinition) Validate() error {
	if err := structValidator.Struct(d); err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidDefinition, d.ID, err)
	}

	seen := make(map[string]struct{}, len(d.Fields))
	for _, f := range d.Fields {
		if _, ok := seen[f.Key]; ok {
			return fmt.Errorf("%w %q: duplicate field key %q", ErrInvalidDefinition, d.ID, f.Key)
		}
		seen[f.Key] = struct{}{}

		if f.Kind == FieldKindSelect && len(f.Options) == 0 {
			return fmt.Errorf("%w %q: select field %q has no options", ErrInvalidDefinition, d.ID, f.Key)
		}
		if err := CheckValue(f, f.Default); err != nil {
			return fmt.Errorf("%w %q: default of %q %w", ErrInvalidDefinition, d.ID, f.Key, err)
		}
	}

	for _, key := range d.Search {
		if _, ok := d.Field(key); !ok {
			return fmt.Errorf("%w %q: search field %q is not declared", ErrInvalidDefinition, d.ID, key)
		}
	}
	for _, key := range d.Columns {
		if _, ok := d.Field(key); !ok && key != d.IDField {
			return fmt.Errorf("%w %q: column %q is not declared", ErrInvalidDefinition, d.ID, key)
		}
	}

	for i, rec := range d.SampleRecords {
		if err := d.ValidateRecord(rec); err != nil {
			return fmt.Errorf("%w %q: sample record %d: %w", ErrInvalidDefinition, d.ID, i+1, err)
		}
	}
	return nil
}

// ValidateRecord checks that every value of rec belongs to a declared field
// (or the id) and is consistent with that field's kind.
func (d *FormDefinition) ValidateRecord(rec Record) error {
	for key, value := range rec {
		if key == d.IDField && d.HasSyntheticID() {
			if strings.TrimSpace(value) == "" {
				continue
			}
			if _, err := ParsePositiveIntID(value); err != nil {
				return fmt.Errorf("%s %w", key, err)
			}
			continue
		}
		f, ok := d.Field(key)
		if !ok {
			return fmt.Errorf("unknown field %q", key)
		}
		if err := CheckValue(f, value); err != nil {
			return fmt.Errorf("%s %w", key, err)
		}
	}
	return nil
}

// Validate checks every definition and the navigation tree.
func (c *Catalog) Validate() error {
	for _, def := range c.Forms() {
		if err := def.Validate(); err != nil {
			return err
		}
	}

	var navErr error
	checkSiblings := func(parent string, nodes []*NavNode) {
		seen := make(map[string]struct{}, len(nodes))
		for _, node := range nodes {
			if _, ok := seen[node.ID]; ok {
				navErr = fmt.Errorf("duplicate navigation id %q under %q", node.ID, parent)
				return
			}
			seen[node.ID] = struct{}{}
		}
	}
	checkSiblings("", c.nav)
	c.Walk(func(path string, node *NavNode) bool {
		if navErr != nil {
			return false
		}
		if err := structValidator.Struct(node); err != nil {
			navErr = fmt.Errorf("navigation node %q: %w", path, err)
			return false
		}
		if !node.IsLeaf() && node.Form != "" {
			navErr = fmt.Errorf("navigation group %q cannot open form %q", path, node.Form)
			return false
		}
		checkSiblings(path, node.Children)
		return navErr == nil
	})
	return navErr
}
