package dispatch

import "github.com/plumber-cd/ez-masters/internal/domain"

// Command is a user intent consumed by Controller.Dispatch.
type Command interface {
	command()
}

type (
	// Activate opens the named form, tearing down any active one.
	Activate struct{ FormID string }
	// Close collapses the active form without saving.
	Close struct{}
	// Select selects a navigation node by path or id.
	Select struct{ Ref string }
	// ToggleExpand flips a navigation group.
	ToggleExpand struct{ Ref string }
	// ToggleSidebar hides or shows the navigation sidebar.
	ToggleSidebar struct{}
	// SetField edits one value of the active form.
	SetField struct{ Key, Value string }
	// SetSearch edits one search criterion of the active form.
	SetSearch struct{ Key, Value string }
	// Search runs the search with the current criteria.
	Search struct{}
	// ApplySearch replaces all criteria and runs the search.
	ApplySearch struct{ Criteria domain.Record }
	// ClearSearch drops all criteria.
	ClearSearch struct{}
	// Load copies a result row into the form and selects it.
	Load struct{ Record domain.Record }
	// Save validates and stores the active form's values.
	Save struct{}
	// Clear resets the active form's values.
	Clear struct{}
	// Delete removes the selected record.
	Delete struct{}
)

func (Activate) command()      {}
func (Close) command()         {}
func (Select) command()        {}
func (ToggleExpand) command()  {}
func (ToggleSidebar) command() {}
func (SetField) command()      {}
func (SetSearch) command()     {}
func (Search) command()        {}
func (ApplySearch) command()   {}
func (ClearSearch) command()   {}
func (Load) command()          {}
func (Save) command()          {}
func (Clear) command()         {}
func (Delete) command()        {}

// OutcomeKind classifies the result of a command.
type OutcomeKind uint8

const (
	// OutcomeIgnored means the command changed nothing and nothing should be
	// shown, e.g. selecting a form that is not registered.
	OutcomeIgnored OutcomeKind = iota
	OutcomeActivated
	OutcomeClosed
	OutcomeToggled
	OutcomeEdited
	OutcomeSearched
	OutcomeLoaded
	OutcomeSaved
	OutcomeValidationFailed
	OutcomeCleared
	OutcomeDeleted
	// OutcomeRejected means the command failed with a user-visible message;
	// the active form keeps its state.
	OutcomeRejected
)

var outcomeNames = map[OutcomeKind]string{
	OutcomeIgnored:          "Ignored",
	OutcomeActivated:        "Activated",
	OutcomeClosed:           "Closed",
	OutcomeToggled:          "Toggled",
	OutcomeEdited:           "Edited",
	OutcomeSearched:         "Searched",
	OutcomeLoaded:           "Loaded",
	OutcomeSaved:            "Saved",
	OutcomeValidationFailed: "ValidationFailed",
	OutcomeCleared:          "Cleared",
	OutcomeDeleted:          "Deleted",
	OutcomeRejected:         "Rejected",
}

func (k OutcomeKind) String() string { return outcomeNames[k] }

// Outcome is what Dispatch reports back to the presentation layer.
type Outcome struct {
	Kind    OutcomeKind
	FormID  string
	Record  domain.Record
	Results []domain.Record
	Message string
	Err     error
}
