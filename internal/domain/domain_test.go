package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// ---------- helpers.go ----------

func TestParsePositiveIntID(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"1", 1, false},
		{"42", 42, false},
		{" 7 ", 7, false},
		{"0", 0, true},
		{"-1", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePositiveIntID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParsePositiveIntID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("ParsePositiveIntID(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"01-Aug-2025", "01-Aug-2025", false},
		{" 2025-08-01 ", "01-Aug-2025", false},
		{"01 Aug 2025", "01-Aug-2025", false},
		{"01/08/2025", "01-Aug-2025", false},
		{"1-Aug-2025", "01-Aug-2025", false},
		{"Aug 1st", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && got.Format(DateLayout) != tt.want {
				t.Errorf("ParseDate(%q) = %s, want %s", tt.input, got.Format(DateLayout), tt.want)
			}
		})
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		input   string
		want    bool
		wantErr bool
	}{
		{"true", true, false},
		{"Yes", true, false},
		{"1", true, false},
		{"false", false, false},
		{" N ", false, false},
		{"maybe", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBool(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseBool(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseBool(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestCheckValue(t *testing.T) {
	selectField := FieldSchema{Key: "currency", Label: "Currency", Kind: FieldKindSelect, Options: []string{"USD", "EUR"}}
	tests := []struct {
		name    string
		field   FieldSchema
		value   string
		wantErr bool
	}{
		{"empty is always fine", FieldSchema{Kind: FieldKindNumber}, "  ", false},
		{"number", FieldSchema{Kind: FieldKindNumber}, "81.5", false},
		{"bad number", FieldSchema{Kind: FieldKindNumber}, "eighty", true},
		{"date", FieldSchema{Kind: FieldKindDate}, "23-Oct-2025", false},
		{"bad date", FieldSchema{Kind: FieldKindDate}, "yesterday", true},
		{"boolean", FieldSchema{Kind: FieldKindBoolean}, "false", false},
		{"bad boolean", FieldSchema{Kind: FieldKindBoolean}, "sometimes", true},
		{"option", selectField, "EUR", false},
		{"unknown option", selectField, "JPY", true},
		{"text accepts anything", FieldSchema{Kind: FieldKindText}, "anything at all", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckValue(tt.field, tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckValue(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestCheckRequired(t *testing.T) {
	f := FieldSchema{Key: "name", Label: "Name", Kind: FieldKindText, Required: true}
	if err := CheckRequired(f, "India"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := CheckRequired(f, "   ")
	if err == nil || err.Error() != "Name is required" {
		t.Fatalf("CheckRequired blank = %v, want \"Name is required\"", err)
	}
}

// ---------- types.go ----------

func countryDefinition() *FormDefinition {
	return &FormDefinition{
		ID:      "Country",
		Title:   "Country Master",
		IDField: "slNo",
		Search:  []string{"name"},
		Fields: []FieldSchema{
			{Key: "name", Label: "Name", Kind: FieldKindText, Required: true},
			{Key: "narration", Label: "Narration", Kind: FieldKindText, Multiline: true},
		},
	}
}

func TestFormDefinitionShape(t *testing.T) {
	def := countryDefinition()

	if !def.HasSyntheticID() {
		t.Error("expected slNo to be a synthetic id")
	}
	if diff := cmp.Diff([]string{"slNo", "name"}, def.TableColumns()); diff != "" {
		t.Errorf("TableColumns() mismatch (-want +got):\n%s", diff)
	}
	if got := def.ColumnLabel("slNo"); got != "Sl No" {
		t.Errorf("ColumnLabel(slNo) = %q", got)
	}
	if got := def.Fields[0].DisplayLabel(); got != "Name *" {
		t.Errorf("DisplayLabel() = %q", got)
	}
	if diff := cmp.Diff(Record{"name": "", "narration": ""}, def.DefaultValues()); diff != "" {
		t.Errorf("DefaultValues() mismatch (-want +got):\n%s", diff)
	}

	def.Columns = []string{"narration", "slNo"}
	if diff := cmp.Diff([]string{"slNo", "narration"}, def.TableColumns()); diff != "" {
		t.Errorf("explicit TableColumns() mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordUnmarshalJSON(t *testing.T) {
	var rec Record
	if err := json.Unmarshal([]byte(`{"slNo": 3, "name": "UAE", "isActive": true, "note": null}`), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := Record{"slNo": "3", "name": "UAE", "isActive": "true", "note": ""}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}

	if err := json.Unmarshal([]byte(`{"nested": {"a": 1}}`), &rec); err == nil {
		t.Error("expected nested values to be rejected")
	}
}

func TestNavNodeLabels(t *testing.T) {
	n := &NavNode{ID: "Masters", Badge: "12", Children: []*NavNode{{ID: "Country"}}}
	if n.IsLeaf() || n.DisplayLabel() != "Masters" {
		t.Errorf("unexpected group %+v", n)
	}
	leaf := &NavNode{ID: "Company Profile Register", Form: "Company Profile"}
	if leaf.FormID() != "Company Profile" {
		t.Errorf("FormID() = %q", leaf.FormID())
	}
	if got := JoinPath("Masters", "Country"); got != "Masters -> Country" {
		t.Errorf("JoinPath() = %q", got)
	}
}

// ---------- validation.go ----------

func TestFormDefinitionValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d *FormDefinition)
		wantErr string
	}{
		{"valid", func(d *FormDefinition) {}, ""},
		{"missing title", func(d *FormDefinition) { d.Title = "" }, "Title"},
		{"duplicate key", func(d *FormDefinition) {
			d.Fields = append(d.Fields, FieldSchema{Key: "name", Label: "Again", Kind: FieldKindText})
		}, "duplicate field key"},
		{"unknown kind", func(d *FormDefinition) { d.Fields[1].Kind = "color" }, "Kind"},
		{"select without options", func(d *FormDefinition) {
			d.Fields = append(d.Fields, FieldSchema{Key: "region", Label: "Region", Kind: FieldKindSelect})
		}, "has no options"},
		{"bad default", func(d *FormDefinition) {
			d.Fields = append(d.Fields, FieldSchema{Key: "rate", Label: "Rate", Kind: FieldKindNumber, Default: "high"})
		}, "default of"},
		{"undeclared search", func(d *FormDefinition) { d.Search = []string{"code"} }, "search field"},
		{"bad sample", func(d *FormDefinition) {
			d.SampleRecords = []Record{{"slNo": "zero", "name": "X"}}
		}, "sample record 1"},
		{"unknown sample key", func(d *FormDefinition) {
			d.SampleRecords = []Record{{"capital": "Delhi"}}
		}, "unknown field"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := countryDefinition()
			tt.mutate(def)
			err := def.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidDefinition) {
				t.Errorf("expected ErrInvalidDefinition, got %v", err)
			}
		})
	}
}

func TestCatalogValidateNavigation(t *testing.T) {
	tests := []struct {
		name    string
		nav     []*NavNode
		wantErr string
	}{
		{"valid", []*NavNode{{ID: "Masters", Children: []*NavNode{{ID: "Country"}}}, {ID: "Exit"}}, ""},
		{"duplicate root", []*NavNode{{ID: "Exit"}, {ID: "Exit"}}, "duplicate navigation id"},
		{"duplicate child", []*NavNode{{ID: "Masters", Children: []*NavNode{{ID: "Country"}, {ID: "Country"}}}}, "duplicate navigation id"},
		{"group with form", []*NavNode{{ID: "Masters", Form: "Country", Children: []*NavNode{{ID: "Country"}}}}, "cannot open form"},
		{"empty id", []*NavNode{{ID: ""}}, "navigation node"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCatalog()
			c.PutForm(countryDefinition())
			c.SetNavigation(tt.nav)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestCatalogWalkAndOrder(t *testing.T) {
	c := NewCatalog()
	c.PutForm(&FormDefinition{ID: "B", Index: 1})
	c.PutForm(&FormDefinition{ID: "A", Index: 1})
	c.PutForm(&FormDefinition{ID: "Z", Index: 0})

	var ids []string
	for _, def := range c.Forms() {
		ids = append(ids, def.ID)
	}
	if diff := cmp.Diff([]string{"Z", "A", "B"}, ids); diff != "" {
		t.Errorf("Forms() order mismatch (-want +got):\n%s", diff)
	}

	c.SetNavigation([]*NavNode{
		{ID: "Masters", Children: []*NavNode{{ID: "Currency"}, {ID: "Country"}}},
		{ID: "Exit"},
	})
	var paths []string
	c.Walk(func(path string, node *NavNode) bool {
		paths = append(paths, path)
		return node.ID != "Currency"
	})
	if diff := cmp.Diff([]string{"Masters", "Masters -> Currency"}, paths); diff != "" {
		t.Errorf("Walk() mismatch (-want +got):\n%s", diff)
	}
}

// ---------- errors.go ----------

func TestErrorsMatchSentinels(t *testing.T) {
	verr := &ValidationError{Fields: []FieldError{{Key: "name", Message: "Name is required"}, {Key: "symbol", Message: "Symbol is required"}}}
	if !errors.Is(verr, ErrValidationFailed) {
		t.Error("ValidationError should match ErrValidationFailed")
	}
	if diff := cmp.Diff([]string{"name", "symbol"}, verr.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}

	cause := errors.New("disk full")
	serr := &StoreError{Op: "upsert", FormID: "Country", Err: cause}
	if !errors.Is(serr, ErrStoreOperation) || !errors.Is(serr, cause) {
		t.Errorf("StoreError should match both the sentinel and its cause: %v", serr)
	}
}
