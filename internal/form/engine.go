// Package form drives one open master-data form: its field values, search
// criteria, result rows and validation errors. Every entity shares this
// engine; what differs between them is only the FormDefinition.
package form

import (
	"fmt"
	"slices"
	"strings"

	"github.com/plumber-cd/ez-masters/internal/domain"
)

// State is the lifecycle state of an engine.
type State uint8

const (
	StateClosed State = iota
	StateClean
	StateDirty
)

func (s State) String() string {
	switch s {
	case StateClean:
		return "Open(Clean)"
	case StateDirty:
		return "Open(Dirty)"
	default:
		return "Closed"
	}
}

// Engine holds the state of one open form. It is owned by whoever opened it
// and is discarded on close.
type Engine struct {
	def   *domain.FormDefinition
	store domain.RecordStore

	state      State
	values     domain.Record
	search     domain.Record
	errors     map[string]string
	selectedID string
	results    []domain.Record
	listErr    error
}

// New opens a clean engine for def with default values and the full record
// list as its result set. A failing list leaves an empty result set and is
// returned as a StoreError; the engine is still usable.
func New(def *domain.FormDefinition, store domain.RecordStore) (*Engine, error) {
	e := &Engine{
		def:    def,
		store:  store,
		state:  StateClean,
		values: def.DefaultValues(),
		search: domain.Record{},
		errors: map[string]string{},
	}
	if _, err := e.ClearSearch(); err != nil {
		return e, err
	}
	return e, nil
}

// Definition returns the definition the engine was opened for.
func (e *Engine) Definition() *domain.FormDefinition { return e.def }

// State returns the lifecycle state.
func (e *Engine) State() State { return e.state }

// IsDirty reports unsaved edits.
func (e *Engine) IsDirty() bool { return e.state == StateDirty }

// Values returns a copy of the current field values.
func (e *Engine) Values() domain.Record { return e.values.Clone() }

// Value returns one field value.
func (e *Engine) Value(key string) string { return e.values[key] }

// SearchValues returns a copy of the current search criteria.
func (e *Engine) SearchValues() domain.Record { return e.search.Clone() }

// Errors returns a copy of the per-field messages of the last failed save.
func (e *Engine) Errors() map[string]string {
	out := make(map[string]string, len(e.errors))
	for k, v := range e.errors {
		out[k] = v
	}
	return out
}

// SelectedID returns the id of the loaded record, or "".
func (e *Engine) SelectedID() string { return e.selectedID }

// Results returns the current result rows.
func (e *Engine) Results() []domain.Record { return e.results }

// ListError returns the StoreError of the last failed record listing, or nil
// when the result rows are current.
func (e *Engine) ListError() error { return e.listErr }

// SetField records a value. Unknown keys are accepted here and rejected by
// the next save.
func (e *Engine) SetField(key, value string) error {
	if e.state == StateClosed {
		return domain.ErrFormClosed
	}
	e.values[key] = value
	e.state = StateDirty
	return nil
}

// SetSearch records one search criterion without running the search.
func (e *Engine) SetSearch(key, value string) error {
	if e.state == StateClosed {
		return domain.ErrFormClosed
	}
	e.search[key] = value
	return nil
}

// Validate returns the keys of every violated field, in form order followed
// by unknown keys. An empty result means the values can be saved.
func (e *Engine) Validate() []string {
	violations := e.violations()
	keys := make([]string, 0, len(violations))
	for _, v := range violations {
		keys = append(keys, v.Key)
	}
	return keys
}

func (e *Engine) violations() []domain.FieldError {
	var out []domain.FieldError
	for _, f := range e.def.Fields {
		value := e.values[f.Key]
		if f.Required {
			if err := domain.CheckRequired(f, value); err != nil {
				out = append(out, domain.FieldError{Key: f.Key, Message: err.Error()})
				continue
			}
		}
		if err := domain.CheckValue(f, value); err != nil {
			out = append(out, domain.FieldError{Key: f.Key, Message: f.Label + " " + err.Error()})
		}
	}

	var unknown []string
	for key := range e.values {
		if _, ok := e.def.Field(key); !ok {
			unknown = append(unknown, key)
		}
	}
	slices.Sort(unknown)
	for _, key := range unknown {
		out = append(out, domain.FieldError{Key: key, Message: fmt.Sprintf("unknown field %q", key)})
	}
	return out
}

// Save validates and upserts the current values. On validation failure the
// errors are populated and a *domain.ValidationError is returned with nothing
// written. On store failure the values are kept so the user can retry. A
// successful save leaves the form open and clean with the saved record
// selected.
func (e *Engine) Save() (domain.Record, error) {
	if e.state == StateClosed {
		return nil, domain.ErrFormClosed
	}

	if violations := e.violations(); len(violations) > 0 {
		e.errors = make(map[string]string, len(violations))
		for _, v := range violations {
			e.errors[v.Key] = v.Message
		}
		e.state = StateDirty
		return nil, &domain.ValidationError{Fields: violations}
	}

	e.errors = map[string]string{}

	rec := make(domain.Record, len(e.def.Fields)+1)
	for _, f := range e.def.Fields {
		rec[f.Key] = strings.TrimSpace(e.values[f.Key])
	}
	if e.def.HasSyntheticID() && e.selectedID != "" {
		rec[e.def.IDField] = e.selectedID
	}

	saved, err := e.store.Upsert(e.def.ID, rec)
	if err != nil {
		return nil, &domain.StoreError{Op: "upsert", FormID: e.def.ID, Err: err}
	}

	e.state = StateClean
	e.selectedID = saved[e.def.IDField]
	e.values = e.def.DefaultValues()
	for _, f := range e.def.Fields {
		e.values[f.Key] = saved[f.Key]
	}
	e.listErr = e.refresh()
	return saved, nil
}

// Clear resets values to their defaults, drops errors and the selection.
// Search criteria and results are untouched.
func (e *Engine) Clear() {
	if e.state == StateClosed {
		return
	}
	e.values = e.def.DefaultValues()
	e.errors = map[string]string{}
	e.selectedID = ""
	e.state = StateClean
}

// Load copies a result row into the values and selects it for update or
// delete.
func (e *Engine) Load(rec domain.Record) error {
	if e.state == StateClosed {
		return domain.ErrFormClosed
	}
	e.values = e.def.DefaultValues()
	for _, f := range e.def.Fields {
		if v, ok := rec[f.Key]; ok {
			e.values[f.Key] = v
		}
	}
	e.selectedID = rec[e.def.IDField]
	e.errors = map[string]string{}
	e.state = StateClean
	return nil
}

// Delete removes the selected record and clears the form.
func (e *Engine) Delete() (string, error) {
	if e.state == StateClosed {
		return "", domain.ErrFormClosed
	}
	if e.selectedID == "" {
		return "", domain.ErrNoRecordSelected
	}
	id := e.selectedID
	if err := e.store.Remove(e.def.ID, id); err != nil {
		return "", &domain.StoreError{Op: "remove", FormID: e.def.ID, Err: err}
	}
	e.Clear()
	e.listErr = e.refresh()
	return id, nil
}

// ApplySearch replaces the criteria and recomputes the result set.
func (e *Engine) ApplySearch(criteria domain.Record) ([]domain.Record, error) {
	if e.state == StateClosed {
		return nil, domain.ErrFormClosed
	}
	e.search = criteria.Clone()
	if e.listErr = e.refresh(); e.listErr != nil {
		return nil, e.listErr
	}
	return e.results, nil
}

// Search reruns the search with the criteria set through SetSearch.
func (e *Engine) Search() ([]domain.Record, error) {
	return e.ApplySearch(e.search)
}

// ClearSearch drops all criteria and restores the unfiltered result set.
func (e *Engine) ClearSearch() ([]domain.Record, error) {
	return e.ApplySearch(domain.Record{})
}

// Close discards all state. A closed engine rejects further edits.
func (e *Engine) Close() {
	e.state = StateClosed
	e.values = domain.Record{}
	e.search = domain.Record{}
	e.errors = map[string]string{}
	e.selectedID = ""
	e.results = nil
	e.listErr = nil
}

func (e *Engine) refresh() error {
	records, err := e.store.List(e.def.ID)
	if err != nil {
		e.results = nil
		return &domain.StoreError{Op: "list", FormID: e.def.ID, Err: err}
	}
	e.results = Filter(e.def, records, e.search)
	return nil
}
