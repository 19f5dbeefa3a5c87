package store

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/plumber-cd/ez-masters/internal/domain"
)

// ErrRecordNotFound is returned by Remove for an id the form does not hold.
var ErrRecordNotFound = errors.New("record not found")

// Memory is an in-memory RecordStore seeded from the catalog's sample
// records. Records keep insertion order. It is not safe for concurrent use;
// the UI drives it from a single goroutine.
type Memory struct {
	catalog *domain.Catalog
	records map[string][]domain.Record
	seq     map[string]int
}

// NewMemory seeds a store with every form's sample records. Forms with a
// synthetic id get sequence numbers for samples that lack one.
func NewMemory(catalog *domain.Catalog) *Memory {
	m := &Memory{
		catalog: catalog,
		records: make(map[string][]domain.Record),
		seq:     make(map[string]int),
	}
	for _, def := range catalog.Forms() {
		for _, sample := range def.SampleRecords {
			rec := sample.Clone()
			if def.HasSyntheticID() {
				if id, err := domain.ParsePositiveIntID(rec[def.IDField]); err == nil {
					m.seq[def.ID] = max(m.seq[def.ID], id)
				} else {
					rec[def.IDField] = ""
				}
			}
			m.records[def.ID] = append(m.records[def.ID], rec)
		}
		if def.HasSyntheticID() {
			for _, rec := range m.records[def.ID] {
				if rec[def.IDField] == "" {
					m.seq[def.ID]++
					rec[def.IDField] = strconv.Itoa(m.seq[def.ID])
				}
			}
		}
	}
	return m
}

func (m *Memory) definition(formID string) (*domain.FormDefinition, error) {
	def := m.catalog.Form(formID)
	if def == nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownForm, formID)
	}
	return def, nil
}

// List returns copies of the form's records in insertion order.
func (m *Memory) List(formID string) ([]domain.Record, error) {
	if _, err := m.definition(formID); err != nil {
		return nil, err
	}
	records := m.records[formID]
	out := make([]domain.Record, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.Clone())
	}
	return out, nil
}

// Count returns the number of records a form holds.
func (m *Memory) Count(formID string) int {
	return len(m.records[formID])
}

// Upsert replaces the record with the same id or appends a new one.
func (m *Memory) Upsert(formID string, rec domain.Record) (domain.Record, error) {
	def, err := m.definition(formID)
	if err != nil {
		return nil, err
	}
	if err := def.ValidateRecord(rec); err != nil {
		return nil, err
	}

	stored := rec.Clone()
	id := strings.TrimSpace(stored[def.IDField])
	if id == "" {
		if !def.HasSyntheticID() {
			return nil, fmt.Errorf("%s must be set", def.ColumnLabel(def.IDField))
		}
		m.seq[formID]++
		id = strconv.Itoa(m.seq[formID])
	}
	stored[def.IDField] = id

	for i, existing := range m.records[formID] {
		if existing[def.IDField] == id {
			m.records[formID][i] = stored
			return stored.Clone(), nil
		}
	}
	if def.HasSyntheticID() {
		if n, err := domain.ParsePositiveIntID(id); err == nil {
			m.seq[formID] = max(m.seq[formID], n)
		}
	}
	m.records[formID] = append(m.records[formID], stored)
	return stored.Clone(), nil
}

// Remove deletes the record with the given id.
func (m *Memory) Remove(formID, id string) error {
	def, err := m.definition(formID)
	if err != nil {
		return err
	}
	records := m.records[formID]
	for i, existing := range records {
		if existing[def.IDField] == id {
			m.records[formID] = append(records[:i:i], records[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s %q", ErrRecordNotFound, def.ColumnLabel(def.IDField), id)
}
