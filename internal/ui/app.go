package ui

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"

	"github.com/plumber-cd/ez-masters/internal/dispatch"
	"github.com/plumber-cd/ez-masters/internal/domain"
	"github.com/plumber-cd/ez-masters/internal/logging"
	"github.com/plumber-cd/ez-masters/internal/nav"
)

const (
	mainPageName = "*main*"
	quitPageName = "*quit*"
	helpPageName = "*help*"
	formPageName = "*form*"

	FormFieldWidth          = 42
	maxDialogViewportHeight = 40
)

var (
	GlobalKeys = []string{"<q> Quit", "<ctrl+b> Sidebar"}
	FormKeys   = []string{"<ctrl+s> Save", "<ctrl+r> Clear", "<ctrl+d> Delete", "<esc> Close"}
)

// Counter reports how many records a form holds.
type Counter interface {
	Count(formID string) int
}

// App holds all UI state. The form and navigation state itself lives in the
// dispatch controller; App only mirrors it on screen.
type App struct {
	Controller *dispatch.Controller
	Counter    Counter
	logger     *zap.Logger

	TviewApp *tview.Application
	Pages    *tview.Pages

	// Layout widgets.
	PositionLine *tview.TextView
	NavPanel     *tview.List
	MiddleFlex   *tview.Flex
	DetailsPanel *tview.TextView
	StatusLine   *tview.TextView
	KeysLine     *tview.TextView
	DetailsFlex  *tview.Flex

	// Active form page widgets, rebuilt on every activation.
	FormView    *tview.Form
	SearchView  *tview.Form
	ResultTable *tview.Table
	formFrame   *tview.Flex

	formFields   []domain.FieldSchema
	searchFields []domain.FieldSchema
	results      []domain.Record

	navRows []nav.VisibleNode

	// syncing suppresses change callbacks while widgets are refreshed from
	// the engine.
	syncing bool

	// mouseSelectArmed distinguishes single-click (highlight) from double-click
	// (navigate).
	mouseSelectArmed bool

	quitDialog *tview.Modal
}

// New creates the UI around an existing controller.
func New(controller *dispatch.Controller, counter Counter, logger *zap.Logger) *App {
	a := &App{
		Controller:       controller,
		Counter:          counter,
		logger:           logging.OrNop(logger),
		mouseSelectArmed: true,
	}
	a.setupLayout()
	a.setupModals()
	a.ReloadMenu("")
	a.renderDashboard()
	return a
}

// Run starts the tview application loop.
func (a *App) Run() error {
	return a.TviewApp.Run()
}

// Stop stops the application.
func (a *App) Stop() {
	if a.TviewApp != nil {
		a.TviewApp.Stop()
	}
}

// setStatus updates the status line text.
func (a *App) setStatus(text string) {
	a.StatusLine.Clear()
	a.StatusLine.SetText(text)
}

// Dispatch sends cmd to the controller and mirrors the outcome on screen.
func (a *App) Dispatch(cmd dispatch.Command) dispatch.Outcome {
	out := a.Controller.Dispatch(cmd)
	a.logger.Debug("dispatched",
		zap.String("outcome", out.Kind.String()),
		zap.String("form_id", out.FormID),
	)
	a.apply(out)
	return out
}

func (a *App) apply(out dispatch.Outcome) {
	if out.Message != "" {
		a.setStatus(out.Message)
	}

	switch out.Kind {
	case dispatch.OutcomeToggled:
		a.ReloadMenu(a.currentNavPath())
		return
	case dispatch.OutcomeActivated:
		a.showFormPage()
		return
	case dispatch.OutcomeEdited, dispatch.OutcomeIgnored, dispatch.OutcomeRejected:
		a.syncErrors()
		return
	}

	if a.Controller.Active() == nil {
		a.hideFormPage()
		a.renderDashboard()
		return
	}
	switch out.Kind {
	case dispatch.OutcomeSearched:
		a.renderResults()
	case dispatch.OutcomeValidationFailed:
		if messages := a.syncErrors(); len(messages) > 0 {
			a.setStatus(out.Message + "\n- " + strings.Join(messages, "\n- "))
		}
	default:
		a.syncForm()
		a.renderResults()
	}
	a.renderDashboard()
}

// ReloadMenu rebuilds the navigation list from the visible tree rows,
// keeping focus on focusPath when it is still visible.
func (a *App) ReloadMenu(focusPath string) {
	a.NavPanel.Clear()

	tree := a.Controller.Tree()
	a.navRows = tree.Visible()
	if tree.SidebarCollapsed() {
		a.MiddleFlex.ResizeItem(a.NavPanel, 0, 0)
		return
	}
	a.MiddleFlex.ResizeItem(a.NavPanel, 0, 1)

	fromIndex := -1
	for i, row := range a.navRows {
		if row.Path == focusPath {
			fromIndex = i
		}
		a.NavPanel.AddItem(navRowText(row), row.Path, 0, nil)
	}
	if fromIndex >= 0 {
		a.NavPanel.SetCurrentItem(fromIndex)
	}
}

func (a *App) currentNavPath() string {
	index := a.NavPanel.GetCurrentItem()
	if index < 0 || index >= len(a.navRows) {
		return ""
	}
	return a.navRows[index].Path
}

// UpdateKeysLine refreshes the keyboard shortcuts help line.
func (a *App) UpdateKeysLine() {
	if a.KeysLine == nil {
		return
	}

	mandatoryHelpKey := "<?> Help"
	keys := append([]string{}, GlobalKeys...)
	if a.Controller.Active() != nil {
		keys = append(keys, FormKeys...)
	} else {
		keys = append(keys, "<enter> Open", "<space> Expand")
	}
	visibleKeys := append(keys, mandatoryHelpKey)
	text := " " + strings.Join(visibleKeys, " | ")

	_, _, innerWidth, _ := a.KeysLine.GetInnerRect()
	if innerWidth > 0 {
		for len(visibleKeys) > 1 && len(text) > innerWidth {
			visibleKeys = visibleKeys[:len(visibleKeys)-2]
			visibleKeys = append(visibleKeys, mandatoryHelpKey)
			text = " " + strings.Join(visibleKeys, " | ")
		}
		if len(visibleKeys) == 1 {
			text = " " + mandatoryHelpKey
		}
	}

	a.KeysLine.SetText(text)
}

func (a *App) showHelpPopup() {
	var content strings.Builder
	content.WriteString("Full keyboard shortcuts\n\n")
	content.WriteString("Navigation\n")
	content.WriteString("- j / Down Arrow: Move down\n")
	content.WriteString("- k / Up Arrow: Move up\n")
	content.WriteString("- l / Enter: Open form or expand group\n")
	content.WriteString("- Space: Expand or collapse group\n")
	content.WriteString("- Ctrl+B: Hide or show the sidebar\n\n")
	content.WriteString("Form\n")
	content.WriteString("- Tab / Shift+Tab: Next or previous field\n")
	content.WriteString("- Ctrl+S: Save\n")
	content.WriteString("- Ctrl+R: Clear\n")
	content.WriteString("- Ctrl+D: Delete selected record\n")
	content.WriteString("- Ctrl+F: Jump to search\n")
	content.WriteString("- Ctrl+T: Jump to results\n")
	content.WriteString("- Esc: Close form\n\n")
	content.WriteString("Global\n")
	content.WriteString("- q: Quit (with confirmation)\n")
	content.WriteString("- Ctrl+Q: Force quit\n")
	content.WriteString("- ?: Show this help\n")

	helpText := tview.NewTextView().
		SetText(content.String()).
		SetScrollable(true).
		SetWrap(true).
		SetWordWrap(true)
	helpText.SetBorder(true).SetTitle("Keyboard Shortcuts (scroll: Up/Down, PgUp/PgDn)")
	helpText.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEscape, tcell.KeyEnter, tcell.KeyBS, tcell.KeyBackspace2:
			a.dismissHelpPopup()
			return nil
		}
		return event
	})

	a.Pages.RemovePage(helpPageName)
	a.Pages.AddPage(helpPageName, a.createDialogPage(helpText, 58, 24), true, true)
	a.Pages.ShowPage(helpPageName)
	a.TviewApp.SetFocus(helpText)
}

func (a *App) dismissHelpPopup() {
	a.Pages.RemovePage(helpPageName)
	a.restoreFocus()
}

// resizeStatusLine adjusts the status panel height to fit its text content.
func (a *App) resizeStatusLine() {
	if a.StatusLine == nil || a.DetailsFlex == nil {
		return
	}

	_, _, innerWidth, _ := a.StatusLine.GetInnerRect()
	if innerWidth <= 0 {
		a.DetailsFlex.ResizeItem(a.StatusLine, 3, 0)
		return
	}

	text := a.StatusLine.GetText(false)
	height := max(wrappedLineCount(text, innerWidth)+2, 3)
	a.DetailsFlex.ResizeItem(a.StatusLine, height, 0)
}

// wrappedLineCount returns the number of visual lines after word wrapping.
func wrappedLineCount(text string, width int) int {
	if width <= 0 {
		return 1
	}
	totalLines := 0
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			totalLines++
			continue
		}
		wrapped := tview.WordWrap(line, width)
		if len(wrapped) == 0 {
			totalLines++
			continue
		}
		totalLines += len(wrapped)
	}
	return max(totalLines, 1)
}

// hintedTextArea keeps a textarea and its hint in one FormItem.
type hintedTextArea struct {
	*tview.TextArea
	hint       string
	labelWidth int
}

func newHintedTextArea(label, text string, fieldHeight int, hint string) *hintedTextArea {
	textArea := tview.NewTextArea().SetLabel(label).SetSize(fieldHeight, FormFieldWidth)
	textArea.SetText(text, false)
	return &hintedTextArea{
		TextArea: textArea,
		hint:     hint,
	}
}

func (h *hintedTextArea) GetFieldHeight() int {
	return h.TextArea.GetFieldHeight() + 1
}

func (h *hintedTextArea) SetFormAttributes(labelWidth int, labelColor, bgColor, fieldTextColor, fieldBgColor tcell.Color) tview.FormItem {
	h.labelWidth = labelWidth
	h.TextArea.SetFormAttributes(labelWidth, labelColor, bgColor, fieldTextColor, fieldBgColor)
	return h
}

func (h *hintedTextArea) Draw(screen tcell.Screen) {
	x, y, width, height := h.GetRect()
	if height <= 0 {
		return
	}
	h.SetRect(x, y, width, max(height-1, 0))
	h.TextArea.Draw(screen)

	fieldX := x + h.labelWidth
	fieldW := max(width-h.labelWidth, 0)
	tview.Print(screen, h.hint, fieldX, y+height-1, fieldW, tview.AlignLeft, tcell.ColorGray)
}
