package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/plumber-cd/ez-masters/internal/dispatch"
)

func (a *App) setupLayout() {
	a.TviewApp = tview.NewApplication()
	a.Pages = tview.NewPages()
	rootFlex := tview.NewFlex().SetDirection(tview.FlexRow)

	a.PositionLine = tview.NewTextView()
	a.PositionLine.SetBorder(true)
	a.PositionLine.SetTitle("Navigation")
	a.PositionLine.SetText("Dashboard")
	rootFlex.AddItem(a.PositionLine, 3, 1, false)

	a.MiddleFlex = tview.NewFlex().SetDirection(tview.FlexColumn)
	rootFlex.AddItem(a.MiddleFlex, 0, 2, false)

	a.NavPanel = tview.NewList()
	a.NavPanel.ShowSecondaryText(false)
	a.NavPanel.SetBorder(true).SetTitle("Menu")
	a.MiddleFlex.AddItem(a.NavPanel, 0, 1, true)

	a.DetailsFlex = tview.NewFlex().SetDirection(tview.FlexRow)
	a.MiddleFlex.AddItem(a.DetailsFlex, 0, 2, false)

	a.DetailsPanel = tview.NewTextView()
	a.DetailsPanel.SetDynamicColors(true).SetScrollable(true)
	a.DetailsPanel.SetBorder(true).SetTitle("Dashboard")
	a.DetailsFlex.AddItem(a.DetailsPanel, 0, 1, false)

	a.KeysLine = tview.NewTextView()
	a.KeysLine.SetBorder(false)
	rootFlex.AddItem(a.KeysLine, 1, 1, false)

	a.StatusLine = tview.NewTextView()
	a.StatusLine.SetBorder(true)
	a.StatusLine.SetTitle("Status")
	a.StatusLine.SetWrap(true)
	a.StatusLine.SetWordWrap(true)
	a.StatusLine.SetChangedFunc(func() {
		a.resizeStatusLine()
	})
	a.DetailsFlex.AddItem(a.StatusLine, 3, 0, false)

	a.Pages.AddPage(mainPageName, rootFlex, true, true)
	a.TviewApp.SetRoot(a.Pages, true).SetFocus(a.NavPanel).EnableMouse(true)

	// Redirect focus from non-interactive panels to nav panel.
	a.PositionLine.SetFocusFunc(func() { a.TviewApp.SetFocus(a.NavPanel) })
	a.DetailsPanel.SetFocusFunc(func() { a.TviewApp.SetFocus(a.NavPanel) })
	a.StatusLine.SetFocusFunc(func() { a.TviewApp.SetFocus(a.NavPanel) })
	a.KeysLine.SetFocusFunc(func() { a.TviewApp.SetFocus(a.NavPanel) })

	// Mouse capture: single click only highlights, double click navigates.
	a.NavPanel.SetMouseCapture(func(action tview.MouseAction, event *tcell.EventMouse) (tview.MouseAction, *tcell.EventMouse) {
		switch action {
		case tview.MouseLeftClick:
			a.mouseSelectArmed = false
		case tview.MouseLeftDoubleClick:
			a.mouseSelectArmed = true
			return tview.MouseLeftClick, event
		}
		return action, event
	})

	a.NavPanel.SetChangedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		a.onNavChanged(secondaryText)
	})

	a.NavPanel.SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		if !a.mouseSelectArmed {
			a.mouseSelectArmed = true
			return
		}
		a.SelectNav(secondaryText)
	})

	a.NavPanel.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlU:
			return tcell.NewEventKey(tcell.KeyPgUp, 0, tcell.ModNone)
		case tcell.KeyCtrlD:
			return tcell.NewEventKey(tcell.KeyPgDn, 0, tcell.ModNone)
		case tcell.KeyRune:
			switch event.Rune() {
			case 'j':
				return tcell.NewEventKey(tcell.KeyDown, tcell.RuneDArrow, tcell.ModNone)
			case 'k':
				return tcell.NewEventKey(tcell.KeyUp, tcell.RuneUArrow, tcell.ModNone)
			case 'l':
				return tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone)
			case ' ':
				if path := a.currentNavPath(); path != "" {
					a.Dispatch(dispatch.ToggleExpand{Ref: path})
				}
				return nil
			case 'q':
				a.Pages.ShowPage(quitPageName)
				a.quitDialog.SetFocus(1)
				a.TviewApp.SetFocus(a.quitDialog)
				return nil
			case '?':
				a.showHelpPopup()
				return nil
			}
		}
		return event
	})

	a.TviewApp.SetInputCapture(a.onGlobalKey)
	a.UpdateKeysLine()
}

func (a *App) setupModals() {
	a.quitDialog = tview.NewModal().SetText("Quit EZ-Masters? Unsaved edits are lost.").AddButtons([]string{"Yes", "No"})
	a.quitDialog.SetDoneFunc(func(buttonIndex int, buttonLabel string) {
		if buttonLabel == "Yes" {
			a.Stop()
			return
		}
		a.Pages.HidePage(quitPageName)
		a.restoreFocus()
	})
	a.Pages.AddPage(quitPageName, a.quitDialog, true, false)
}

// restoreFocus puts focus back on the open form, or on the menu.
func (a *App) restoreFocus() {
	if a.Controller.Active() != nil && a.formFrame != nil {
		if form := findFormInPrimitive(a.formFrame); form != nil {
			a.TviewApp.SetFocus(form)
			return
		}
	}
	a.TviewApp.SetFocus(a.NavPanel)
}

// mouseBlocker returns a box that absorbs mouse events (prevents clicking through dialog overlays).
func mouseBlocker() *tview.Box {
	box := tview.NewBox()
	box.SetMouseCapture(func(action tview.MouseAction, event *tcell.EventMouse) (tview.MouseAction, *tcell.EventMouse) {
		return action, nil
	})
	return box
}

// createDialogPage wraps a form or content primitive in a centered dialog overlay.
func (a *App) createDialogPage(content tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(mouseBlocker(), 0, 1, false).
		AddItem(
			tview.NewFlex().SetDirection(tview.FlexRow).
				AddItem(mouseBlocker(), 0, 1, false).
				AddItem(content, height, 1, true).
				AddItem(mouseBlocker(), 0, 1, false),
			width, 1, true).
		AddItem(mouseBlocker(), 0, 1, false)
}

// submitPrimaryFormButton programmatically activates the first button in a form.
func submitPrimaryFormButton(form *tview.Form, setFocus func(p tview.Primitive)) {
	if form.GetButtonCount() == 0 {
		return
	}
	handler := form.GetButton(0).InputHandler()
	if handler == nil {
		return
	}
	handler(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), setFocus)
}

// wireDialogFormKeys sets up standard keyboard handling for a dialog form.
func (a *App) wireDialogFormKeys(form *tview.Form, onCancel func()) {
	form.SetCancelFunc(onCancel)
	form.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		formItemIndex, _ := form.GetFocusedItemIndex()
		var focusedFormItem tview.FormItem
		if formItemIndex >= 0 {
			focusedFormItem = form.GetFormItem(formItemIndex)
			if _, ok := focusedFormItem.(*tview.DropDown); ok {
				return event
			}
		}

		switch event.Key() {
		case tcell.KeyEscape:
			onCancel()
			return nil
		case tcell.KeyEnter:
			if formItemIndex >= 0 {
				if _, ok := focusedFormItem.(*hintedTextArea); ok {
					return event
				}
				if _, ok := focusedFormItem.(*tview.Checkbox); ok {
					// Toggle checkbox on Enter for better UX.
					return tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone)
				}
			}
			if formItemIndex < 0 {
				return event
			}
			submitPrimaryFormButton(form, func(p tview.Primitive) {
				a.TviewApp.SetFocus(p)
			})
			return nil
		}
		return event
	})
}
