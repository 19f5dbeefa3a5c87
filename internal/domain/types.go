package domain

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// FieldKind determines how a field value is entered, validated and matched.
type FieldKind string

const (
	FieldKindText    FieldKind = "text"
	FieldKindNumber  FieldKind = "number"
	FieldKindDate    FieldKind = "date"
	FieldKindBoolean FieldKind = "boolean"
	FieldKindSelect  FieldKind = "select"
)

// SelectAllOption is the search value that matches every record of a select field.
const SelectAllOption = "All"

// Record maps field keys to their textual values. Booleans are "true"/"false",
// dates use DateLayout and numbers are decimal strings.
type Record map[string]string

// Clone returns an independent copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// UnmarshalJSON accepts scalar values of any JSON type so that YAML catalogs
// may write numbers and booleans unquoted.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	out := make(Record, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case nil:
			out[key] = ""
		case string:
			out[key] = v
		case json.Number:
			out[key] = v.String()
		case bool:
			out[key] = strconv.FormatBool(v)
		default:
			return fmt.Errorf("field %q: unsupported value %v", key, v)
		}
	}
	*r = out
	return nil
}

// FieldSchema describes one input field of a master form.
type FieldSchema struct {
	Key         string    `json:"key" validate:"required"`
	Label       string    `json:"label" validate:"required"`
	Kind        FieldKind `json:"kind" validate:"required,oneof=text number date boolean select"`
	Required    bool      `json:"required,omitempty"`
	Options     []string  `json:"options,omitempty"`
	Default     string    `json:"default,omitempty"`
	Placeholder string    `json:"placeholder,omitempty"`
	Group       string    `json:"group,omitempty"`
	Multiline   bool      `json:"multiline,omitempty"`
}

// DisplayLabel decorates required fields with a trailing asterisk.
func (f FieldSchema) DisplayLabel() string {
	if f.Required {
		return f.Label + " *"
	}
	return f.Label
}

// FormDefinition describes one master-data entity.
type FormDefinition struct {
	ID            string        `json:"id" validate:"required"`
	Title         string        `json:"title" validate:"required"`
	Fields        []FieldSchema `json:"fields" validate:"required,min=1,dive"`
	IDField       string        `json:"idField" validate:"required"`
	Search        []string      `json:"search,omitempty"`
	Columns       []string      `json:"columns,omitempty"`
	SampleRecords []Record      `json:"sampleRecords,omitempty"`
	Index         int           `json:"index,omitempty"`
}

// Field returns the schema for key.
func (d *FormDefinition) Field(key string) (FieldSchema, bool) {
	for _, f := range d.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return FieldSchema{}, false
}

// HasSyntheticID reports whether records are identified by a store-assigned
// sequence number instead of one of the declared fields.
func (d *FormDefinition) HasSyntheticID() bool {
	_, ok := d.Field(d.IDField)
	return !ok
}

// DefaultValues returns a record holding every field's declared default.
func (d *FormDefinition) DefaultValues() Record {
	values := make(Record, len(d.Fields))
	for _, f := range d.Fields {
		values[f.Key] = f.Default
	}
	return values
}

// SearchFields returns the schemas offered in the search row.
func (d *FormDefinition) SearchFields() []FieldSchema {
	var fields []FieldSchema
	for _, key := range d.Search {
		if f, ok := d.Field(key); ok {
			fields = append(fields, f)
		}
	}
	return fields
}

// TableColumns returns the ordered column keys of the result table.
// The id column always comes first.
func (d *FormDefinition) TableColumns() []string {
	columns := []string{d.IDField}
	source := d.Columns
	if len(source) == 0 {
		for _, f := range d.Fields {
			if f.Multiline {
				continue
			}
			source = append(source, f.Key)
		}
	}
	for _, key := range source {
		if !slices.Contains(columns, key) {
			columns = append(columns, key)
		}
	}
	return columns
}

// ColumnLabel returns the header for a table column.
func (d *FormDefinition) ColumnLabel(key string) string {
	if f, ok := d.Field(key); ok {
		return f.Label
	}
	if key == d.IDField && d.HasSyntheticID() {
		return "Sl No"
	}
	return key
}

// Compare orders definitions by their declared index, then by id.
func (d *FormDefinition) Compare(other *FormDefinition) int {
	if other == nil {
		return 1
	}
	if c := cmp.Compare(d.Index, other.Index); c != 0 {
		return c
	}
	return cmp.Compare(d.ID, other.ID)
}

// NavNode is one entry of the navigation tree. Leaves name the form they open
// through Form, which defaults to the node id.
type NavNode struct {
	ID       string     `json:"id" validate:"required"`
	Label    string     `json:"label,omitempty"`
	Form     string     `json:"form,omitempty"`
	Badge    string     `json:"badge,omitempty"`
	Children []*NavNode `json:"children,omitempty" validate:"dive"`
}

// IsLeaf reports whether the node has no children.
func (n *NavNode) IsLeaf() bool { return len(n.Children) == 0 }

// DisplayLabel falls back to the id when no label is configured.
func (n *NavNode) DisplayLabel() string {
	if strings.TrimSpace(n.Label) == "" {
		return n.ID
	}
	return n.Label
}

// FormID returns the form a leaf dispatches to.
func (n *NavNode) FormID() string {
	if n.Form != "" {
		return n.Form
	}
	return n.ID
}

// JoinPath builds the tree path of a child node.
func JoinPath(parent, id string) string {
	if parent == "" {
		return id
	}
	return parent + PathSeparator + id
}

// PathSeparator separates node ids in a tree path.
const PathSeparator = " -> "
