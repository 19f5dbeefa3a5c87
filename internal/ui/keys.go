package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/plumber-cd/ez-masters/internal/dispatch"
)

// onGlobalKey handles shortcuts that work regardless of focus.
func (a *App) onGlobalKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyCtrlQ:
		a.Stop()
		return nil
	case tcell.KeyCtrlB:
		a.Dispatch(dispatch.ToggleSidebar{})
		return nil
	}

	if a.Controller.Active() == nil || !a.formPageVisible() {
		return event
	}
	return a.onFormKey(event)
}

// onFormKey handles the form page shortcuts.
func (a *App) onFormKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyCtrlS:
		a.Dispatch(dispatch.Save{})
		return nil
	case tcell.KeyCtrlR:
		a.Dispatch(dispatch.Clear{})
		return nil
	case tcell.KeyCtrlD:
		a.Dispatch(dispatch.Delete{})
		return nil
	case tcell.KeyCtrlF:
		if a.SearchView != nil {
			a.TviewApp.SetFocus(a.SearchView)
		}
		return nil
	case tcell.KeyCtrlT:
		if a.ResultTable != nil {
			a.TviewApp.SetFocus(a.ResultTable)
		}
		return nil
	}
	return event
}

func (a *App) formPageVisible() bool {
	name, _ := a.Pages.GetFrontPage()
	return name == formPageName
}

// SelectNav selects a navigation row by path or id, as Enter on the menu does.
func (a *App) SelectNav(ref string) dispatch.Outcome {
	return a.Dispatch(dispatch.Select{Ref: ref})
}

// findFormInPrimitive walks flex containers looking for the first form.
func findFormInPrimitive(p tview.Primitive) *tview.Form {
	switch v := p.(type) {
	case *tview.Form:
		return v
	case *tview.Flex:
		for i := range v.GetItemCount() {
			if form := findFormInPrimitive(v.GetItem(i)); form != nil {
				return form
			}
		}
	}
	return nil
}
