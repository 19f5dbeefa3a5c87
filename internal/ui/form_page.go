package ui

import (
	"fmt"
	"slices"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/plumber-cd/ez-masters/internal/dispatch"
	"github.com/plumber-cd/ez-masters/internal/domain"
)

const (
	multilineHint   = "Multi-line, Tab to leave"
	rangeSearchHint = "value or from..to"
	resultRowsShown = 10
)

// showFormPage builds the page of the active form from its definition and
// shows it on top of the main page.
func (a *App) showFormPage() {
	engine := a.Controller.Active()
	if engine == nil {
		return
	}
	def := engine.Definition()

	a.Pages.RemovePage(formPageName)
	a.formFields = orderedFields(def)
	a.searchFields = def.SearchFields()

	a.syncing = true
	a.FormView = tview.NewForm().SetButtonsAlign(tview.AlignCenter)
	for _, f := range a.formFields {
		a.FormView.AddFormItem(a.fieldItem(f, engine.Value(f.Key)))
	}
	a.FormView.
		AddButton("Save", func() { a.Dispatch(dispatch.Save{}) }).
		AddButton("Clear", func() { a.Dispatch(dispatch.Clear{}) }).
		AddButton("Delete", func() { a.Dispatch(dispatch.Delete{}) }).
		AddButton("Close", func() { a.Dispatch(dispatch.Close{}) })
	a.wireDialogFormKeys(a.FormView, func() { a.Dispatch(dispatch.Close{}) })

	a.SearchView = tview.NewForm().SetHorizontal(true)
	a.SearchView.SetBorder(true).SetTitle("Search")
	search := engine.SearchValues()
	for _, f := range a.searchFields {
		a.SearchView.AddFormItem(a.searchItem(f, search[f.Key]))
	}
	a.SearchView.AddButton("Reset", func() { a.Dispatch(dispatch.ClearSearch{}) })
	a.SearchView.SetCancelFunc(func() { a.Dispatch(dispatch.Close{}) })
	a.syncing = false

	a.ResultTable = tview.NewTable().SetBorders(false).SetSelectable(true, false).SetFixed(1, 0)
	a.ResultTable.SetBorder(true).SetTitle("Records")
	a.ResultTable.SetSelectedFunc(func(row, column int) {
		if row < 1 || row > len(a.results) {
			return
		}
		a.Dispatch(dispatch.Load{Record: a.results[row-1]})
		a.TviewApp.SetFocus(a.FormView)
	})
	a.ResultTable.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEscape {
			a.Dispatch(dispatch.Close{})
		}
	})

	formHeight := computeFormDialogHeight(a.FormView)
	tableHeight := resultRowsShown + 3
	a.formFrame = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.FormView, formHeight-2, 1, true).
		AddItem(a.SearchView, 3, 0, false).
		AddItem(a.ResultTable, 0, 1, false)
	a.formFrame.SetBorder(true)

	width := max(computeFormDialogWidth(a.FormView), 90)
	height := min(formHeight+3+tableHeight, maxDialogViewportHeight)
	a.Pages.AddPage(formPageName, a.createDialogPage(a.formFrame, width, height), true, true)
	a.TviewApp.SetFocus(a.FormView)

	a.syncErrors()
	a.renderResults()
	a.UpdateKeysLine()
}

// hideFormPage drops the form page and returns focus to the menu.
func (a *App) hideFormPage() {
	a.Pages.RemovePage(formPageName)
	a.FormView = nil
	a.SearchView = nil
	a.ResultTable = nil
	a.formFrame = nil
	a.formFields = nil
	a.searchFields = nil
	a.results = nil
	a.Pages.SwitchToPage(mainPageName)
	a.TviewApp.SetFocus(a.NavPanel)
	a.UpdateKeysLine()
}

// orderedFields groups fields by their group, keeping the first-seen order of
// groups and the declared order within each group.
func orderedFields(def *domain.FormDefinition) []domain.FieldSchema {
	groups := []string{}
	byGroup := map[string][]domain.FieldSchema{}
	for _, f := range def.Fields {
		if _, ok := byGroup[f.Group]; !ok {
			groups = append(groups, f.Group)
		}
		byGroup[f.Group] = append(byGroup[f.Group], f)
	}
	out := make([]domain.FieldSchema, 0, len(def.Fields))
	for _, g := range groups {
		out = append(out, byGroup[g]...)
	}
	return out
}

func (a *App) fieldItem(f domain.FieldSchema, value string) tview.FormItem {
	label := f.DisplayLabel()
	setField := func(v string) {
		if a.syncing {
			return
		}
		a.Dispatch(dispatch.SetField{Key: f.Key, Value: v})
	}

	switch f.Kind {
	case domain.FieldKindBoolean:
		checked, _ := domain.ParseBool(value)
		cb := tview.NewCheckbox().SetLabel(label).SetChecked(checked)
		cb.SetChangedFunc(func(checked bool) { setField(domain.FormatBool(checked)) })
		return cb
	case domain.FieldKindSelect:
		dd := tview.NewDropDown().SetLabel(label).SetFieldWidth(FormFieldWidth)
		dd.SetOptions(f.Options, nil)
		dd.SetCurrentOption(optionIndex(f.Options, value))
		dd.SetSelectedFunc(func(text string, index int) { setField(text) })
		return dd
	}

	if f.Multiline {
		ta := newHintedTextArea(label, value, 3, multilineHint)
		ta.SetPlaceholder(f.Placeholder)
		ta.SetChangedFunc(func() { setField(ta.GetText()) })
		return ta
	}

	input := tview.NewInputField().SetLabel(label).SetFieldWidth(FormFieldWidth).SetText(value)
	placeholder := f.Placeholder
	if placeholder == "" && f.Kind == domain.FieldKindDate {
		placeholder = domain.DateLayout
	}
	input.SetPlaceholder(placeholder)
	input.SetChangedFunc(setField)
	return input
}

func (a *App) searchItem(f domain.FieldSchema, value string) tview.FormItem {
	setSearch := func(v string) {
		if a.syncing {
			return
		}
		a.Dispatch(dispatch.SetSearch{Key: f.Key, Value: v})
		a.Dispatch(dispatch.Search{})
	}

	if f.Kind == domain.FieldKindSelect {
		options := append([]string{domain.SelectAllOption}, f.Options...)
		dd := tview.NewDropDown().SetLabel(f.Label + " ")
		dd.SetOptions(options, nil)
		dd.SetCurrentOption(max(optionIndex(options, value), 0))
		dd.SetSelectedFunc(func(text string, index int) { setSearch(text) })
		return dd
	}

	input := tview.NewInputField().SetLabel(f.Label + " ").SetFieldWidth(20).SetText(value)
	switch f.Kind {
	case domain.FieldKindNumber, domain.FieldKindDate:
		input.SetPlaceholder(rangeSearchHint)
	default:
		input.SetPlaceholder("Search " + f.Label)
	}
	input.SetChangedFunc(setSearch)
	return input
}

// syncForm copies the engine values into the form widgets without feeding
// the changes back as edits.
func (a *App) syncForm() {
	engine := a.Controller.Active()
	if engine == nil || a.FormView == nil {
		return
	}
	a.syncing = true
	defer func() { a.syncing = false }()

	for i, f := range a.formFields {
		value := engine.Value(f.Key)
		switch item := a.FormView.GetFormItem(i).(type) {
		case *tview.InputField:
			item.SetText(value)
		case *hintedTextArea:
			item.SetText(value, false)
		case *tview.Checkbox:
			checked, _ := domain.ParseBool(value)
			item.SetChecked(checked)
		case *tview.DropDown:
			item.SetCurrentOption(optionIndex(f.Options, value))
		}
	}

	search := engine.SearchValues()
	for i, f := range a.searchFields {
		value := search[f.Key]
		switch item := a.SearchView.GetFormItem(i).(type) {
		case *tview.InputField:
			item.SetText(value)
		case *tview.DropDown:
			item.SetCurrentOption(max(optionIndex(append([]string{domain.SelectAllOption}, f.Options...), value), 0))
		}
	}
	a.syncErrors()
}

// syncErrors marks violated fields and refreshes the frame title. It returns
// the messages of the marked fields in form order.
func (a *App) syncErrors() []string {
	engine := a.Controller.Active()
	if engine == nil || a.FormView == nil {
		return nil
	}
	errs := engine.Errors()
	messages := []string{}
	for i, f := range a.formFields {
		label := f.DisplayLabel()
		if msg, ok := errs[f.Key]; ok {
			label = "[red]" + label + "[-]"
			messages = append(messages, msg)
		}
		setItemLabel(a.FormView.GetFormItem(i), label)
	}

	def := engine.Definition()
	title := " " + def.Title + " "
	if id := engine.SelectedID(); id != "" {
		title = fmt.Sprintf(" %s [%s %s] ", def.Title, def.ColumnLabel(def.IDField), id)
	}
	if engine.IsDirty() {
		title += "* "
	}
	a.formFrame.SetTitle(tview.Escape(title))
	return messages
}

// renderResults refills the result table from the engine.
func (a *App) renderResults() {
	engine := a.Controller.Active()
	if engine == nil || a.ResultTable == nil {
		return
	}
	def := engine.Definition()
	a.results = engine.Results()
	columns := def.TableColumns()

	a.ResultTable.Clear()
	for c, key := range columns {
		a.ResultTable.SetCell(0, c, tview.NewTableCell(tview.Escape(def.ColumnLabel(key))).
			SetTextColor(tcell.ColorYellow).
			SetSelectable(false).
			SetExpansion(1))
	}
	selected := engine.SelectedID()
	for r, rec := range a.results {
		for c, key := range columns {
			cell := tview.NewTableCell(tview.Escape(rec[key])).SetExpansion(1)
			if selected != "" && rec[def.IDField] == selected {
				cell.SetTextColor(tcell.ColorGreen)
			}
			a.ResultTable.SetCell(r+1, c, cell)
		}
	}
	a.ResultTable.SetTitle(fmt.Sprintf("Records (%d)", len(a.results)))
}

func setItemLabel(item tview.FormItem, label string) {
	switch v := item.(type) {
	case *tview.InputField:
		v.SetLabel(label)
	case *tview.DropDown:
		v.SetLabel(label)
	case *tview.Checkbox:
		v.SetLabel(label)
	case *hintedTextArea:
		v.SetLabel(label)
	}
}

// optionIndex returns the index of value in options, or -1.
func optionIndex(options []string, value string) int {
	return slices.Index(options, value)
}
