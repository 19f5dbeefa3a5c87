// Package dispatch maps navigation selections to the single active form and
// routes user commands to it.
package dispatch

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/plumber-cd/ez-masters/internal/domain"
	"github.com/plumber-cd/ez-masters/internal/form"
	"github.com/plumber-cd/ez-masters/internal/logging"
	"github.com/plumber-cd/ez-masters/internal/nav"
)

// SwitchPolicy decides what happens to unsaved edits when another form is
// activated.
type SwitchPolicy uint8

const (
	// SwitchDiscard tears down the active form and drops its edits.
	SwitchDiscard SwitchPolicy = iota
	// SwitchRefuse keeps a dirty form open and rejects the activation.
	SwitchRefuse
)

func (p SwitchPolicy) String() string {
	if p == SwitchRefuse {
		return "refuse"
	}
	return "discard"
}

// ParseSwitchPolicy parses "discard" or "refuse".
func ParseSwitchPolicy(s string) (SwitchPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "discard":
		return SwitchDiscard, nil
	case "refuse":
		return SwitchRefuse, nil
	default:
		return SwitchDiscard, fmt.Errorf("unknown switch policy %q, expected discard or refuse", s)
	}
}

// Policy controls when the active form collapses.
type Policy struct {
	Switch        SwitchPolicy
	CloseOnSave   bool
	CloseOnDelete bool
}

// DefaultPolicy discards on switch and keeps the form open after save and
// delete.
func DefaultPolicy() Policy {
	return Policy{Switch: SwitchDiscard}
}

// Controller owns the navigation state and at most one open form engine.
type Controller struct {
	catalog *domain.Catalog
	store   domain.RecordStore
	tree    *nav.Tree
	policy  Policy
	logger  *zap.Logger

	activeID string
	engine   *form.Engine
}

// New builds a controller with no active form.
func New(catalog *domain.Catalog, store domain.RecordStore, policy Policy, logger *zap.Logger) *Controller {
	return &Controller{
		catalog: catalog,
		store:   store,
		tree:    nav.NewTree(catalog.Navigation()),
		policy:  policy,
		logger:  logging.OrNop(logger),
	}
}

// Catalog returns the load-once configuration.
func (c *Controller) Catalog() *domain.Catalog { return c.catalog }

// Tree returns the navigation state.
func (c *Controller) Tree() *nav.Tree { return c.tree }

// Policy returns the collapse and switch policy.
func (c *Controller) Policy() Policy { return c.policy }

// ActiveFormID returns the id of the open form, or "" when none is open.
func (c *Controller) ActiveFormID() string { return c.activeID }

// Active returns the open form engine, or nil.
func (c *Controller) Active() *form.Engine { return c.engine }

// Activate opens formID. Unknown ids are logged and change nothing. The
// previous engine, if any, is closed before the new one is created.
func (c *Controller) Activate(formID string) error {
	def := c.catalog.Form(formID)
	if def == nil {
		c.logger.Info("ignoring unknown form", zap.String("form_id", formID))
		return fmt.Errorf("%w: %q", domain.ErrUnknownForm, formID)
	}
	if c.engine != nil && c.engine.IsDirty() && c.policy.Switch == SwitchRefuse {
		return fmt.Errorf("%w in %s", domain.ErrUnsavedChanges, c.engine.Definition().Title)
	}
	if c.engine != nil {
		c.logger.Debug("closing form", zap.String("form_id", c.activeID), zap.Bool("dirty", c.engine.IsDirty()))
	}
	c.Deactivate()

	engine, err := form.New(def, c.store)
	c.engine = engine
	c.activeID = def.ID
	c.logger.Debug("activated form", zap.String("form_id", def.ID))
	if err != nil {
		c.logger.Warn("listing records failed", zap.String("form_id", def.ID), zap.Error(err))
		return err
	}
	return nil
}

// Deactivate closes the active form unconditionally.
func (c *Controller) Deactivate() {
	if c.engine != nil {
		c.engine.Close()
	}
	c.engine = nil
	c.activeID = ""
}

// Dispatch applies one command and reports what happened.
func (c *Controller) Dispatch(cmd Command) Outcome {
	switch cmd := cmd.(type) {
	case Activate:
		return c.activate(cmd.FormID)
	case Close:
		id := c.activeID
		c.Deactivate()
		return Outcome{Kind: OutcomeClosed, FormID: id}
	case Select:
		sel := c.tree.Select(cmd.Ref)
		switch sel.Kind {
		case nav.SelectionToggled:
			return Outcome{Kind: OutcomeToggled}
		case nav.SelectionLeaf:
			return c.activate(sel.FormID)
		default:
			c.logger.Info("ignoring unknown navigation node", zap.String("ref", cmd.Ref))
			return Outcome{Kind: OutcomeIgnored}
		}
	case ToggleExpand:
		if !c.tree.ToggleExpand(cmd.Ref) {
			return Outcome{Kind: OutcomeIgnored}
		}
		return Outcome{Kind: OutcomeToggled}
	case ToggleSidebar:
		c.tree.ToggleSidebar()
		return Outcome{Kind: OutcomeToggled}
	}

	if c.engine == nil {
		c.logger.Debug("no active form", zap.String("command", fmt.Sprintf("%T", cmd)))
		return Outcome{Kind: OutcomeIgnored, Err: domain.ErrFormClosed}
	}
	def := c.engine.Definition()

	switch cmd := cmd.(type) {
	case SetField:
		if err := c.engine.SetField(cmd.Key, cmd.Value); err != nil {
			return c.rejected(err)
		}
		return Outcome{Kind: OutcomeEdited, FormID: def.ID}
	case SetSearch:
		if err := c.engine.SetSearch(cmd.Key, cmd.Value); err != nil {
			return c.rejected(err)
		}
		return Outcome{Kind: OutcomeEdited, FormID: def.ID}
	case Search:
		return c.searched(c.engine.Search())
	case ApplySearch:
		return c.searched(c.engine.ApplySearch(cmd.Criteria))
	case ClearSearch:
		return c.searched(c.engine.ClearSearch())
	case Load:
		if err := c.engine.Load(cmd.Record); err != nil {
			return c.rejected(err)
		}
		return Outcome{Kind: OutcomeLoaded, FormID: def.ID, Record: c.engine.Values()}
	case Save:
		return c.save(def)
	case Clear:
		c.engine.Clear()
		return Outcome{Kind: OutcomeCleared, FormID: def.ID, Message: "Form cleared"}
	case Delete:
		return c.delete(def)
	default:
		return Outcome{Kind: OutcomeIgnored, Err: fmt.Errorf("unsupported command %T", cmd)}
	}
}

func (c *Controller) activate(formID string) Outcome {
	err := c.Activate(formID)
	switch {
	case errors.Is(err, domain.ErrUnknownForm):
		return Outcome{Kind: OutcomeIgnored}
	case errors.Is(err, domain.ErrUnsavedChanges):
		return Outcome{
			Kind:    OutcomeRejected,
			FormID:  c.activeID,
			Message: "Save or clear " + c.engine.Definition().Title + " first",
			Err:     err,
		}
	case err != nil:
		return Outcome{
			Kind:    OutcomeActivated,
			FormID:  c.activeID,
			Message: "Could not load records: " + err.Error(),
			Err:     err,
		}
	}
	return Outcome{Kind: OutcomeActivated, FormID: c.activeID, Results: c.engine.Results()}
}

func (c *Controller) searched(results []domain.Record, err error) Outcome {
	if err != nil {
		return c.rejected(err)
	}
	return Outcome{Kind: OutcomeSearched, FormID: c.activeID, Results: results}
}

func (c *Controller) save(def *domain.FormDefinition) Outcome {
	saved, err := c.engine.Save()
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return Outcome{
			Kind:    OutcomeValidationFailed,
			FormID:  def.ID,
			Message: "Please fill all required fields",
			Err:     err,
		}
	case err != nil:
		return c.rejected(err)
	}

	c.logger.Info("record saved", zap.String("form_id", def.ID), zap.String("id", saved[def.IDField]))
	out := Outcome{
		Kind:    OutcomeSaved,
		FormID:  def.ID,
		Record:  saved,
		Results: c.engine.Results(),
		Message: def.Title + " saved successfully" + c.listWarning(),
	}
	if c.policy.CloseOnSave {
		c.Deactivate()
	}
	return out
}

func (c *Controller) delete(def *domain.FormDefinition) Outcome {
	id, err := c.engine.Delete()
	switch {
	case errors.Is(err, domain.ErrNoRecordSelected):
		return Outcome{
			Kind:    OutcomeRejected,
			FormID:  def.ID,
			Message: "Select a record to delete",
			Err:     err,
		}
	case err != nil:
		return c.rejected(err)
	}

	c.logger.Info("record deleted", zap.String("form_id", def.ID), zap.String("id", id))
	out := Outcome{
		Kind:    OutcomeDeleted,
		FormID:  def.ID,
		Record:  domain.Record{def.IDField: id},
		Results: c.engine.Results(),
		Message: def.Title + " record deleted" + c.listWarning(),
	}
	if c.policy.CloseOnDelete {
		c.Deactivate()
	}
	return out
}

// listWarning reports a record listing that failed after a successful write,
// as a suffix for the outcome message.
func (c *Controller) listWarning() string {
	var serr *domain.StoreError
	if !errors.As(c.engine.ListError(), &serr) {
		return ""
	}
	c.logStoreError(serr)
	return "; could not " + serr.Op + " records: " + serr.Err.Error()
}

func (c *Controller) logStoreError(serr *domain.StoreError) {
	c.logger.Warn("store operation failed",
		zap.String("form_id", serr.FormID),
		zap.String("op", serr.Op),
		zap.Error(serr.Err),
	)
}

func (c *Controller) rejected(err error) Outcome {
	var serr *domain.StoreError
	if errors.As(err, &serr) {
		c.logStoreError(serr)
		return Outcome{Kind: OutcomeRejected, FormID: c.activeID, Message: "Could not " + serr.Op + " record: " + serr.Err.Error(), Err: err}
	}
	return Outcome{Kind: OutcomeRejected, FormID: c.activeID, Message: err.Error(), Err: err}
}
