package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/plumber-cd/ez-masters/internal/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadDefaults(t *testing.T) {
	catalog, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	var ids []string
	for _, def := range catalog.Forms() {
		ids = append(ids, def.ID)
	}
	want := []string{"Company Profile", "HSN Master", "Currency", "EPCG License", "Exchange Rate", "Country"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("forms mismatch (-want +got):\n%s", diff)
	}

	roots := catalog.Navigation()
	if len(roots) != 8 {
		t.Fatalf("roots = %d, want 8", len(roots))
	}
	if roots[1].ID != "Masters" || len(roots[1].Children) != 12 || roots[1].Badge != "12" {
		t.Errorf("unexpected Masters node %+v", roots[1])
	}

	country := catalog.Form("Country")
	if len(country.SampleRecords) != 10 || country.SampleRecords[0]["slNo"] != "1" {
		t.Errorf("unexpected Country samples %v", country.SampleRecords)
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, DataDirName, "forms", "country.yaml"), `
id: Country
title: Countries
idField: code
fields:
  - {key: code, label: Code, kind: text, required: true}
  - {key: name, label: Name, kind: text}
sampleRecords:
  - {code: IN, name: India}
`)
	writeFile(t, filepath.Join(dir, DataDirName, NavigationFileName), `
items:
  - id: Country
  - id: Exit
`)

	catalog, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def := catalog.Form("Country")
	if def.Title != "Countries" || def.HasSyntheticID() {
		t.Errorf("override not applied: %+v", def)
	}
	if !catalog.HasForm("Currency") {
		t.Error("defaults without overrides must stay registered")
	}
	if len(catalog.Navigation()) != 2 {
		t.Errorf("navigation = %d roots, want 2", len(catalog.Navigation()))
	}
}

func TestLoadRejectsInvalidOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, DataDirName, "forms", "broken.yaml"), `
id: Broken
title: Broken
idField: slNo
fields:
  - {key: rate, label: Rate, kind: number, default: high}
`)
	if _, err := Load(dir); !errors.Is(err, domain.ErrInvalidDefinition) {
		t.Fatalf("Load() = %v, want ErrInvalidDefinition", err)
	}

	writeFile(t, filepath.Join(dir, DataDirName, "forms", "broken.yaml"), "id: [unterminated")
	if _, err := Load(dir); err == nil {
		t.Fatal("expected malformed YAML to fail")
	}
}

func TestLoadFS(t *testing.T) {
	fsys := fstest.MapFS{
		"forms/bank.yml": {Data: []byte(`
id: Bank
title: Bank Details
idField: slNo
fields:
  - {key: bank, label: Bank, kind: text, required: true}
`)},
		"forms/notes.txt": {Data: []byte("ignored")},
		NavigationFileName: {Data: []byte("items:\n  - id: Bank\n")},
	}
	catalog, err := LoadFS(fsys)
	if err != nil {
		t.Fatalf("LoadFS: %v", err)
	}
	if len(catalog.Forms()) != 1 || catalog.Form("Bank").Title != "Bank Details" {
		t.Errorf("unexpected catalog forms %v", catalog.Forms())
	}
}

func testCatalog(t *testing.T) *domain.Catalog {
	t.Helper()
	c := domain.NewCatalog()
	c.PutForm(&domain.FormDefinition{
		ID:      "Country",
		Title:   "Country Master",
		IDField: "slNo",
		Fields:  []domain.FieldSchema{{Key: "name", Label: "Name", Kind: domain.FieldKindText, Required: true}},
		SampleRecords: []domain.Record{
			{"slNo": "4", "name": "OMANE"},
			{"name": "India"},
		},
	})
	c.PutForm(&domain.FormDefinition{
		ID:      "Port",
		Title:   "Port",
		IDField: "code",
		Fields: []domain.FieldSchema{
			{Key: "code", Label: "Code", Kind: domain.FieldKindText, Required: true},
			{Key: "depth", Label: "Depth", Kind: domain.FieldKindNumber},
		},
	})
	return c
}

func TestMemorySeedsSequence(t *testing.T) {
	m := NewMemory(testCatalog(t))
	records, err := m.List("Country")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []domain.Record{{"slNo": "4", "name": "OMANE"}, {"slNo": "5", "name": "India"}}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("seeded records mismatch (-want +got):\n%s", diff)
	}

	saved, err := m.Upsert("Country", domain.Record{"name": "Nepal"})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if saved["slNo"] != "6" {
		t.Errorf("assigned id = %q, want 6", saved["slNo"])
	}

	records[0]["name"] = "mutated"
	again, _ := m.List("Country")
	if again[0]["name"] != "OMANE" {
		t.Error("List must return copies")
	}
}

func TestMemoryUpsertAndRemove(t *testing.T) {
	m := NewMemory(testCatalog(t))

	if _, err := m.Upsert("Port", domain.Record{"code": "INNSA", "depth": "14"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := m.Upsert("Port", domain.Record{"code": "INNSA", "depth": "15.5"}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if m.Count("Port") != 1 {
		t.Fatalf("count = %d, want 1", m.Count("Port"))
	}

	tests := []struct {
		name string
		rec  domain.Record
	}{
		{"missing natural id", domain.Record{"depth": "3"}},
		{"bad number", domain.Record{"code": "AEJEA", "depth": "deep"}},
		{"unknown field", domain.Record{"code": "AEJEA", "berths": "4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Upsert("Port", tt.rec); err == nil {
				t.Fatal("expected an error")
			}
		})
	}

	if err := m.Remove("Port", "INNSA"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := m.Remove("Port", "INNSA"); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("second Remove = %v, want ErrRecordNotFound", err)
	}
	if _, err := m.List("Nope"); !errors.Is(err, domain.ErrUnknownForm) {
		t.Fatalf("List(Nope) = %v, want ErrUnknownForm", err)
	}
}
