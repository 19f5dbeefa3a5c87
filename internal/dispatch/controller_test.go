package dispatch

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/plumber-cd/ez-masters/internal/domain"
	"github.com/plumber-cd/ez-masters/internal/store"
)

func newController(t *testing.T, policy Policy) (*Controller, *observer.ObservedLogs) {
	t.Helper()
	catalog, err := store.Load(t.TempDir())
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	core, logs := observer.New(zapcore.DebugLevel)
	return New(catalog, store.NewMemory(catalog), policy, zap.New(core)), logs
}

// flakyStore fails the switched operations with errDiskFull.
type flakyStore struct {
	*store.Memory
	failUpsert bool
	failList   bool
}

var errDiskFull = errors.New("disk full")

func (s *flakyStore) List(formID string) ([]domain.Record, error) {
	if s.failList {
		return nil, errDiskFull
	}
	return s.Memory.List(formID)
}

func (s *flakyStore) Upsert(formID string, rec domain.Record) (domain.Record, error) {
	if s.failUpsert {
		return nil, errDiskFull
	}
	return s.Memory.Upsert(formID, rec)
}

func newFlakyController(t *testing.T) (*Controller, *flakyStore, *observer.ObservedLogs) {
	t.Helper()
	catalog, err := store.Load(t.TempDir())
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	records := &flakyStore{Memory: store.NewMemory(catalog)}
	core, logs := observer.New(zapcore.DebugLevel)
	return New(catalog, records, DefaultPolicy(), zap.New(core)), records, logs
}

func TestSelectLeafActivatesForm(t *testing.T) {
	c, _ := newController(t, DefaultPolicy())

	out := c.Dispatch(Select{Ref: "Masters"})
	if out.Kind != OutcomeToggled || !c.Tree().IsExpanded("Masters") {
		t.Fatalf("select group = %s", out.Kind)
	}

	out = c.Dispatch(Select{Ref: "Masters -> Currency"})
	if out.Kind != OutcomeActivated || out.FormID != "Currency" {
		t.Fatalf("select leaf = %s %q", out.Kind, out.FormID)
	}
	if len(out.Results) != 12 {
		t.Errorf("results = %d, want 12", len(out.Results))
	}

	out = c.Dispatch(Select{Ref: "Company Profile Register"})
	if out.Kind != OutcomeActivated || c.ActiveFormID() != "Company Profile" {
		t.Fatalf("aliased leaf opened %q", c.ActiveFormID())
	}
}

func TestSwitchingFormsLeaksNothing(t *testing.T) {
	c, _ := newController(t, DefaultPolicy())
	c.Dispatch(Activate{FormID: "Currency"})
	c.Dispatch(SetField{Key: "name", Value: "Euro"})
	c.Dispatch(SetSearch{Key: "name", Value: "ru"})
	previous := c.Active()

	out := c.Dispatch(Activate{FormID: "HSN Master"})
	if out.Kind != OutcomeActivated || c.ActiveFormID() != "HSN Master" {
		t.Fatalf("activate = %s %q", out.Kind, c.ActiveFormID())
	}
	if previous.State().String() != "Closed" {
		t.Error("previous engine must be closed")
	}
	engine := c.Active()
	if engine.IsDirty() || engine.Value("name") != "" || len(engine.SearchValues()) != 0 {
		t.Errorf("values leaked into HSN Master: %v / %v", engine.Values(), engine.SearchValues())
	}
}

func TestUnknownFormIsIgnoredAndLogged(t *testing.T) {
	c, logs := newController(t, DefaultPolicy())
	c.Dispatch(Activate{FormID: "Country"})
	c.Dispatch(SetField{Key: "name", Value: "Peru"})

	out := c.Dispatch(Select{Ref: "Exit"})
	if out.Kind != OutcomeIgnored || out.Message != "" {
		t.Fatalf("select Exit = %+v", out)
	}
	if c.ActiveFormID() != "Country" || c.Active().Value("name") != "Peru" {
		t.Error("unknown form must leave the active form untouched")
	}

	entries := logs.FilterMessage("ignoring unknown form").All()
	if len(entries) != 1 {
		t.Fatalf("logged %d entries, want 1", len(entries))
	}
	if got := entries[0].ContextMap()["form_id"]; got != "Exit" {
		t.Errorf("form_id = %v", got)
	}

	if err := c.Activate("Exit"); !errors.Is(err, domain.ErrUnknownForm) {
		t.Errorf("Activate(Exit) = %v", err)
	}
	if out := c.Dispatch(Select{Ref: "Nowhere"}); out.Kind != OutcomeIgnored {
		t.Errorf("select unknown node = %s", out.Kind)
	}
}

func TestRefusePolicyKeepsDirtyForm(t *testing.T) {
	c, _ := newController(t, Policy{Switch: SwitchRefuse})
	c.Dispatch(Activate{FormID: "Country"})

	// A clean form may be switched away from.
	if out := c.Dispatch(Activate{FormID: "Currency"}); out.Kind != OutcomeActivated {
		t.Fatalf("clean switch = %s", out.Kind)
	}

	c.Dispatch(SetField{Key: "name", Value: "Euro"})
	out := c.Dispatch(Activate{FormID: "Country"})
	if out.Kind != OutcomeRejected || !errors.Is(out.Err, domain.ErrUnsavedChanges) {
		t.Fatalf("dirty switch = %+v", out)
	}
	if out.Message != "Save or clear Currency Master first" {
		t.Errorf("message = %q", out.Message)
	}
	if c.ActiveFormID() != "Currency" || c.Active().Value("name") != "Euro" {
		t.Error("refused switch must keep the dirty form")
	}

	c.Dispatch(Clear{})
	if out := c.Dispatch(Activate{FormID: "Country"}); out.Kind != OutcomeActivated {
		t.Errorf("switch after clear = %s", out.Kind)
	}
}

func TestSaveOutcomes(t *testing.T) {
	c, logs := newController(t, DefaultPolicy())
	c.Dispatch(Activate{FormID: "Country"})

	out := c.Dispatch(Save{})
	if out.Kind != OutcomeValidationFailed || out.Message != "Please fill all required fields" {
		t.Fatalf("empty save = %+v", out)
	}

	c.Dispatch(SetField{Key: "name", Value: "Nepal"})
	out = c.Dispatch(Save{})
	if out.Kind != OutcomeSaved || out.Message != "Country Master saved successfully" {
		t.Fatalf("save = %+v", out)
	}
	if out.Record["slNo"] != "11" || len(out.Results) != 11 {
		t.Errorf("saved %v with %d results", out.Record, len(out.Results))
	}
	if c.Active() == nil {
		t.Fatal("form should stay open by default")
	}
	if logs.FilterMessage("record saved").Len() != 1 {
		t.Error("expected the save to be logged")
	}
}

func TestCloseOnSaveAndDelete(t *testing.T) {
	c, _ := newController(t, Policy{CloseOnSave: true, CloseOnDelete: true})

	c.Dispatch(Activate{FormID: "Country"})
	c.Dispatch(SetField{Key: "name", Value: "Nepal"})
	if out := c.Dispatch(Save{}); out.Kind != OutcomeSaved || c.Active() != nil {
		t.Fatalf("save = %s, active %q", out.Kind, c.ActiveFormID())
	}

	c.Dispatch(Activate{FormID: "Country"})
	rows := c.Active().Results()
	c.Dispatch(Load{Record: rows[0]})
	out := c.Dispatch(Delete{})
	if out.Kind != OutcomeDeleted || out.Message != "Country Master record deleted" {
		t.Fatalf("delete = %+v", out)
	}
	if c.Active() != nil {
		t.Error("form should close after delete")
	}
}

func TestDeleteWithoutSelection(t *testing.T) {
	c, _ := newController(t, DefaultPolicy())
	c.Dispatch(Activate{FormID: "Country"})

	out := c.Dispatch(Delete{})
	if out.Kind != OutcomeRejected || out.Message != "Select a record to delete" {
		t.Fatalf("delete = %+v", out)
	}
	if len(c.Active().Results()) != 10 {
		t.Error("rejected delete must not change the records")
	}
}

func TestSearchAndClear(t *testing.T) {
	c, _ := newController(t, DefaultPolicy())
	c.Dispatch(Activate{FormID: "Currency"})

	out := c.Dispatch(ApplySearch{Criteria: domain.Record{"name": "dollar"}})
	if out.Kind != OutcomeSearched || len(out.Results) != 2 {
		t.Fatalf("search = %s with %d rows", out.Kind, len(out.Results))
	}
	c.Dispatch(SetSearch{Key: "symbol", Value: "S$"})
	if out := c.Dispatch(Search{}); len(out.Results) != 1 {
		t.Errorf("narrowed search = %d rows", len(out.Results))
	}
	if out := c.Dispatch(ClearSearch{}); len(out.Results) != 12 {
		t.Errorf("cleared search = %d rows", len(out.Results))
	}

	c.Dispatch(SetField{Key: "name", Value: "Euro"})
	out = c.Dispatch(Clear{})
	if out.Kind != OutcomeCleared || c.Active().IsDirty() {
		t.Errorf("clear = %s, dirty %v", out.Kind, c.Active().IsDirty())
	}
}

func TestCommandsWithoutActiveForm(t *testing.T) {
	c, _ := newController(t, DefaultPolicy())
	for _, cmd := range []Command{SetField{Key: "name"}, Save{}, Delete{}, Search{}, Load{}} {
		out := c.Dispatch(cmd)
		if out.Kind != OutcomeIgnored || !errors.Is(out.Err, domain.ErrFormClosed) {
			t.Errorf("%T = %+v", cmd, out)
		}
	}

	if out := c.Dispatch(ToggleSidebar{}); out.Kind != OutcomeToggled || !c.Tree().SidebarCollapsed() {
		t.Errorf("toggle sidebar = %s", out.Kind)
	}
	if out := c.Dispatch(Close{}); out.Kind != OutcomeClosed {
		t.Errorf("close = %s", out.Kind)
	}
}

func TestParseSwitchPolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    SwitchPolicy
		wantErr bool
	}{
		{"discard", SwitchDiscard, false},
		{" Refuse ", SwitchRefuse, false},
		{"maybe", SwitchDiscard, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSwitchPolicy(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSwitchPolicy(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseSwitchPolicy(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestStoreFailureAfterValidationFailure(t *testing.T) {
	c, records, logs := newFlakyController(t)
	c.Dispatch(Activate{FormID: "Country"})

	if out := c.Dispatch(Save{}); out.Kind != OutcomeValidationFailed {
		t.Fatalf("empty save = %s", out.Kind)
	}
	if len(c.Active().Errors()) != 1 {
		t.Fatalf("errors = %v, want the name violation", c.Active().Errors())
	}

	c.Dispatch(SetField{Key: "name", Value: "India2"})
	records.failUpsert = true
	out := c.Dispatch(Save{})
	if out.Kind != OutcomeRejected || !errors.Is(out.Err, errDiskFull) {
		t.Fatalf("save = %+v", out)
	}
	if out.Message != "Could not upsert record: disk full" {
		t.Errorf("message = %q", out.Message)
	}
	if got := c.Active().Errors(); len(got) != 0 {
		t.Errorf("stale field errors kept: %v", got)
	}
	if c.Active().Value("name") != "India2" || !c.Active().IsDirty() {
		t.Error("failed save must keep the values")
	}

	entries := logs.FilterMessage("store operation failed").All()
	if len(entries) != 1 {
		t.Fatalf("logged %d entries, want 1", len(entries))
	}
	if entries[0].Level != zapcore.WarnLevel || entries[0].ContextMap()["op"] != "upsert" {
		t.Errorf("entry = %v %v", entries[0].Level, entries[0].ContextMap())
	}
}

func TestListFailureAfterWriteIsReported(t *testing.T) {
	c, records, logs := newFlakyController(t)
	c.Dispatch(Activate{FormID: "Country"})

	c.Dispatch(SetField{Key: "name", Value: "Nepal"})
	records.failList = true
	out := c.Dispatch(Save{})
	if out.Kind != OutcomeSaved {
		t.Fatalf("save = %+v", out)
	}
	if want := "Country Master saved successfully; could not list records: disk full"; out.Message != want {
		t.Errorf("message = %q, want %q", out.Message, want)
	}
	if !errors.Is(c.Active().ListError(), errDiskFull) {
		t.Errorf("ListError() = %v", c.Active().ListError())
	}

	records.failList = false
	c.Dispatch(Search{})
	c.Dispatch(Load{Record: c.Active().Results()[0]})
	records.failList = true
	out = c.Dispatch(Delete{})
	if out.Kind != OutcomeDeleted || !strings.HasSuffix(out.Message, "; could not list records: disk full") {
		t.Errorf("delete = %+v", out)
	}

	entries := logs.FilterMessage("store operation failed").All()
	if len(entries) != 2 {
		t.Fatalf("logged %d entries, want 2", len(entries))
	}
	for _, entry := range entries {
		if entry.ContextMap()["op"] != "list" {
			t.Errorf("op = %v, want list", entry.ContextMap()["op"])
		}
	}
}
