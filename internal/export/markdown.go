package export

import (
	_ "embed"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"text/template"

	"github.com/plumber-cd/ez-masters/internal/domain"
)

//go:embed markdown.tmpl
var markdownTmpl string

var markdownTemplate = template.Must(template.New("markdown").Parse(markdownTmpl))

type summaryRow struct {
	Form    string
	Title   string
	Records string
}

type section struct {
	Title  string
	Header []string
	Rows   [][]string
}

// Lister is the read side of a record store.
type Lister interface {
	List(formID string) ([]domain.Record, error)
}

// RenderMarkdown renders an overview of every registered form followed by
// one table per form. When only is non-empty just those forms get a section.
func RenderMarkdown(catalog *domain.Catalog, records Lister, only ...string) (string, error) {
	summary := []summaryRow{}
	sections := []section{}

	for _, def := range catalog.Forms() {
		rows, err := records.List(def.ID)
		if err != nil {
			return "", fmt.Errorf("list %s: %w", def.ID, err)
		}
		summary = append(summary, summaryRow{
			Form:    markdownInline(def.ID),
			Title:   markdownInline(def.Title),
			Records: strconv.Itoa(len(rows)),
		})
		if len(only) > 0 && !slices.Contains(only, def.ID) {
			continue
		}
		sections = append(sections, buildSection(def, rows))
	}

	for _, id := range only {
		if !catalog.HasForm(id) {
			return "", fmt.Errorf("%w: %q", domain.ErrUnknownForm, id)
		}
	}

	var sb strings.Builder
	input := map[string]interface{}{
		"Summary":  summary,
		"Sections": sections,
	}
	if err := markdownTemplate.Execute(&sb, input); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return sb.String(), nil
}

func buildSection(def *domain.FormDefinition, records []domain.Record) section {
	columns := def.TableColumns()
	s := section{Title: markdownInline(def.Title)}
	for _, key := range columns {
		s.Header = append(s.Header, markdownInline(def.ColumnLabel(key)))
	}
	for _, rec := range records {
		row := make([]string, 0, len(columns))
		for i, key := range columns {
			value := defaultIfEmpty(rec[key], "-")
			if i == 0 {
				row = append(row, markdownCode(value))
				continue
			}
			row = append(row, markdownTableCell(value))
		}
		s.Rows = append(s.Rows, row)
	}
	return s
}

func markdownInline(value string) string {
	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	value = strings.ReplaceAll(value, "|", "\\|")
	return value
}

func markdownCode(value string) string {
	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	value = strings.ReplaceAll(value, "`", "'")
	return "`" + value + "`"
}

func markdownTableCell(value string) string {
	value = strings.ReplaceAll(value, "\r\n", "\n")
	value = strings.ReplaceAll(value, "\r", "\n")
	value = strings.ReplaceAll(value, "|", "\\|")
	value = strings.ReplaceAll(value, "\n", "<br>")
	return value
}

func defaultIfEmpty(value, fallback string) string { //nolint:unparam // fallback is always "-" today
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
