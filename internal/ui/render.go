package ui

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/rivo/tview"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/plumber-cd/ez-masters/internal/domain"
	"github.com/plumber-cd/ez-masters/internal/nav"
)

const detailsTemplate = "%-16s: %s\n"

// navRowText renders one sidebar row with its indentation and expand marker.
func navRowText(row nav.VisibleNode) string {
	prefix := strings.Repeat("  ", row.Depth)
	switch {
	case row.Node.IsLeaf():
		prefix += "  "
	case row.Expanded:
		prefix += "▾ "
	default:
		prefix += "▸ "
	}
	label := prefix + row.Node.DisplayLabel()
	if row.Node.Badge != "" {
		label += " (" + row.Node.Badge + ")"
	}
	return label
}

// onNavChanged is called when nav panel focus moves to a new row.
func (a *App) onNavChanged(path string) {
	a.PositionLine.Clear()
	if path == "" {
		a.PositionLine.SetText("Dashboard")
	} else {
		a.PositionLine.SetText(path)
	}
	a.renderDetails(path)
}

// renderDashboard redraws the details panel for the focused menu row.
func (a *App) renderDashboard() {
	a.renderDetails(a.currentNavPath())
	a.UpdateKeysLine()
}

// renderDetails draws the record count chart followed by a description of the
// node at path.
func (a *App) renderDetails(path string) {
	a.DetailsPanel.Clear()
	w := tview.ANSIWriter(a.DetailsPanel)

	catalog := a.Controller.Catalog()
	p := message.NewPrinter(language.English)

	forms := catalog.Forms()
	total := 0
	bars := make([]pterm.Bar, 0, len(forms))
	for _, def := range forms {
		count := a.count(def.ID)
		total += count
		bars = append(bars, pterm.Bar{Label: def.ID, Value: count})
	}
	_, _ = fmt.Fprint(w, tview.Escape(p.Sprintf("%d records across %d forms\n\n", total, len(forms))))
	if len(bars) > 0 {
		_, _, width, _ := a.DetailsPanel.GetInnerRect()
		if width <= 0 {
			width = 60
		}
		_ = pterm.DefaultBarChart.
			WithBars(bars).
			WithHorizontal().
			WithWidth(max(width-24, 10)).
			WithShowValue().
			WithWriter(w).
			Render()
	}

	_, node, ok := a.Controller.Tree().Resolve(path)
	if path == "" || !ok {
		return
	}
	_, _ = fmt.Fprint(w, "\n"+tview.Escape(a.nodeDetails(p, node)))
}

func (a *App) nodeDetails(p *message.Printer, node *domain.NavNode) string {
	sb := new(strings.Builder)
	sb.WriteString(p.Sprintf(detailsTemplate, "Menu", node.DisplayLabel()))
	if !node.IsLeaf() {
		sb.WriteString(p.Sprintf(detailsTemplate, "Items", p.Sprintf("%d", len(node.Children))))
		return sb.String()
	}

	def := a.Controller.Catalog().Form(node.FormID())
	if def == nil {
		sb.WriteString(p.Sprintf(detailsTemplate, "Status", "Not available yet"))
		return sb.String()
	}
	sb.WriteString(p.Sprintf(detailsTemplate, "Form", def.Title))
	sb.WriteString(p.Sprintf(detailsTemplate, "Records", p.Sprintf("%d", a.count(def.ID))))
	required := []string{}
	for _, f := range def.Fields {
		if f.Required {
			required = append(required, f.Label)
		}
	}
	sb.WriteString(p.Sprintf(detailsTemplate, "Fields", p.Sprintf("%d", len(def.Fields))))
	if len(required) > 0 {
		sb.WriteString(p.Sprintf(detailsTemplate, "Required", strings.Join(required, ", ")))
	}
	return sb.String()
}

func (a *App) count(formID string) int {
	if a.Counter == nil {
		return 0
	}
	return a.Counter.Count(formID)
}
