package ui

import (
	"github.com/rivo/tview"
)

func computeFormDialogHeight(form *tview.Form) int {
	itemCount := form.GetFormItemCount()
	totalItemHeight := 0
	for i := range itemCount {
		itemHeight := form.GetFormItem(i).GetFieldHeight()
		if itemHeight <= 0 {
			itemHeight = tview.DefaultFormFieldHeight
		}
		totalItemHeight += itemHeight
	}

	paddingBetweenItems := 0
	if itemCount > 1 {
		paddingBetweenItems = itemCount - 1
	}

	buttonRows := 0
	if form.GetButtonCount() > 0 {
		buttonRows = 2
	}

	borderRows := 2
	paddingRows := 2
	totalRows := borderRows + paddingRows + totalItemHeight + paddingBetweenItems + buttonRows
	return min(totalRows, maxDialogViewportHeight)
}

func computeFormDialogWidth(form *tview.Form) int {
	maxLabelWidth := 0
	for i := range form.GetFormItemCount() {
		formItem := form.GetFormItem(i)
		if formItem == nil {
			continue
		}
		labelWidth := tview.TaggedStringWidth(formItem.GetLabel())
		if labelWidth > maxLabelWidth {
			maxLabelWidth = labelWidth
		}
	}

	return 2 + 2 + maxLabelWidth + 1 + FormFieldWidth
}
