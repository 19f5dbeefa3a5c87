package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/plumber-cd/ez-masters/internal/domain"
	"github.com/plumber-cd/ez-masters/internal/export"
	"github.com/plumber-cd/ez-masters/internal/form"
)

func newFormsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "forms",
		Short: "List registered forms with their record counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, records, err := app.loadCatalog()
			if err != nil {
				return err
			}
			rows := [][]string{}
			for _, def := range catalog.Forms() {
				required := 0
				for _, f := range def.Fields {
					if f.Required {
						required++
					}
				}
				rows = append(rows, []string{
					def.ID,
					def.Title,
					strconv.Itoa(len(def.Fields)),
					strconv.Itoa(required),
					strconv.Itoa(records.Count(def.ID)),
				})
			}
			return export.RenderRows(cmd.OutOrStdout(), []string{"Form", "Title", "Fields", "Required", "Records"}, rows)
		},
	}
}

func newNavCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "nav",
		Short: "Print the navigation tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, _, err := app.loadCatalog()
			if err != nil {
				return err
			}
			list := pterm.LeveledList{}
			catalog.Walk(func(path string, node *domain.NavNode) bool {
				level := strings.Count(path, domain.PathSeparator)
				text := node.DisplayLabel()
				if node.IsLeaf() {
					if catalog.HasForm(node.FormID()) {
						text += " -> " + node.FormID()
					} else {
						text += " (not available)"
					}
				}
				list = append(list, pterm.LeveledListItem{Level: level, Text: text})
				return true
			})
			root := pterm.NewTreeFromLeveledList(list)
			return pterm.DefaultTree.WithRoot(root).WithWriter(cmd.OutOrStdout()).Render()
		},
	}
}

func newRecordsCmd(app *App) *cobra.Command {
	var where []string

	cmd := &cobra.Command{
		Use:   "records <form>",
		Short: "Print the records of a form, optionally filtered",
		Long: strings.TrimSpace(`
Print the records of a form as a table.

Filters use the same rules as the search row of the form: text fields match
case-insensitive substrings, select fields match exactly (All matches
everything), number and date fields accept a value or an inclusive range
written as from..to with either end optional.
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := app.logger(true)
			defer func() { _ = logger.Sync() }()

			catalog, records, err := app.loadCatalog()
			if err != nil {
				return err
			}
			def := catalog.Form(args[0])
			if def == nil {
				return fmt.Errorf("%w: %q", domain.ErrUnknownForm, args[0])
			}
			criteria, err := parseWhere(where)
			if err != nil {
				return err
			}
			rows, err := records.List(def.ID)
			if err != nil {
				return err
			}
			rows = form.Filter(def, rows, criteria)
			logger.Debug("records filtered", zap.String("form_id", def.ID), zap.Int("matches", len(rows)))
			return export.RenderTable(cmd.OutOrStdout(), def, rows)
		},
	}

	cmd.Flags().StringArrayVar(&where, "where", nil, "Filter as key=value (repeatable)")
	return cmd
}

func parseWhere(values []string) (domain.Record, error) {
	criteria := domain.Record{}
	for _, v := range values {
		key, value, ok := strings.Cut(v, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid filter %q, expected key=value", v)
		}
		criteria[strings.TrimSpace(key)] = value
	}
	return criteria, nil
}

func newExportCmd(app *App) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export [form...]",
		Short: "Render records as a markdown report",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, records, err := app.loadCatalog()
			if err != nil {
				return err
			}
			md, err := export.RenderMarkdown(catalog, records, args...)
			if err != nil {
				return err
			}
			if output == "" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), md)
				return err
			}
			if err := os.WriteFile(output, []byte(md), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output)
			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}

func newValidateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load and validate the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, _, err := app.loadCatalog()
			if err != nil {
				return err
			}
			leaves, unavailable := 0, 0
			catalog.Walk(func(path string, node *domain.NavNode) bool {
				if node.IsLeaf() {
					leaves++
					if !catalog.HasForm(node.FormID()) {
						unavailable++
					}
				}
				return true
			})
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Catalog OK: %d forms, %d menu items (%d not available)\n",
				len(catalog.Forms()), leaves, unavailable)
			return err
		},
	}
}
