// Package cli is the command tree. Without a sub-command it starts the
// terminal UI; the sub-commands print the catalog and records for scripts.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/plumber-cd/ez-masters/internal/config"
	"github.com/plumber-cd/ez-masters/internal/dispatch"
	"github.com/plumber-cd/ez-masters/internal/domain"
	"github.com/plumber-cd/ez-masters/internal/logging"
	"github.com/plumber-cd/ez-masters/internal/store"
	"github.com/plumber-cd/ez-masters/internal/ui"
)

type App struct {
	EnvFile          string
	Dir              string
	LogFile          string
	Debug            bool
	SwitchPolicy     string
	CloseOnSave      bool
	CloseOnDelete    bool
	SidebarCollapsed bool

	Config config.Config
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{})
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "ez-masters",
		Short:        "Master data entry dashboard",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  ez-masters

  # List registered forms with their record counts
  ez-masters forms

  # Print Currency records whose name contains "dollar"
  ez-masters records Currency --where name=dollar

  # Write a markdown report
  ez-masters export > MASTERS.md
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return cmd.Help()
			}
			return runTUI(app)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.loadConfig(cmd)
	}

	cmd.PersistentFlags().StringVar(&app.EnvFile, "env-file", ".env", "Optional dotenv file read before the environment")
	cmd.PersistentFlags().StringVar(&app.Dir, "dir", "", "Directory holding the .ez-masters catalog overrides (default: current directory)")
	cmd.PersistentFlags().StringVar(&app.LogFile, "log-file", "", "Log file path (default: $TMPDIR/"+config.DefaultLogFileName+")")
	cmd.PersistentFlags().BoolVar(&app.Debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&app.SwitchPolicy, "switch-policy", "", "What to do with unsaved edits when opening another form (discard|refuse)")
	cmd.PersistentFlags().BoolVar(&app.CloseOnSave, "close-on-save", false, "Close the form after a successful save")
	cmd.PersistentFlags().BoolVar(&app.CloseOnDelete, "close-on-delete", false, "Close the form after a successful delete")
	cmd.PersistentFlags().BoolVar(&app.SidebarCollapsed, "sidebar-collapsed", false, "Start with the menu sidebar hidden")

	cmd.AddCommand(newFormsCmd(app))
	cmd.AddCommand(newNavCmd(app))
	cmd.AddCommand(newRecordsCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newValidateCmd(app))

	return cmd
}

// loadConfig reads the environment and then applies the flags the user set
// explicitly, so flags win over the environment.
func (app *App) loadConfig(cmd *cobra.Command) error {
	cfg, err := config.Load(app.EnvFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("dir") {
		cfg.Dir = app.Dir
	}
	if flags.Changed("log-file") {
		cfg.LogFile = app.LogFile
	}
	if flags.Changed("debug") {
		cfg.LogDebug = app.Debug
	}
	if flags.Changed("switch-policy") {
		policy, err := dispatch.ParseSwitchPolicy(app.SwitchPolicy)
		if err != nil {
			return err
		}
		cfg.Policy.Switch = policy
	}
	if flags.Changed("close-on-save") {
		cfg.Policy.CloseOnSave = app.CloseOnSave
	}
	if flags.Changed("close-on-delete") {
		cfg.Policy.CloseOnDelete = app.CloseOnDelete
	}
	if flags.Changed("sidebar-collapsed") {
		cfg.SidebarCollapsed = app.SidebarCollapsed
	}
	app.Config = cfg
	return nil
}

func (app *App) logger(console bool) *zap.Logger {
	return logging.New(logging.Options{
		FilePath: app.Config.LogFile,
		Debug:    app.Config.LogDebug,
		Console:  console && app.Config.LogDebug,
	})
}

func (app *App) loadCatalog() (*domain.Catalog, *store.Memory, error) {
	catalog, err := store.Load(app.Config.Dir)
	if err != nil {
		return nil, nil, fmt.Errorf("load catalog: %w", err)
	}
	return catalog, store.NewMemory(catalog), nil
}

func runTUI(app *App) error {
	logger := app.logger(false)
	defer func() { _ = logger.Sync() }()

	catalog, records, err := app.loadCatalog()
	if err != nil {
		return err
	}
	logger.Info("starting",
		zap.String("dir", app.Config.Dir),
		zap.Int("forms", len(catalog.Forms())),
		zap.Stringer("switch_policy", app.Config.Policy.Switch),
	)

	controller := dispatch.New(catalog, records, app.Config.Policy, logger)
	controller.Tree().SetSidebarCollapsed(app.Config.SidebarCollapsed)
	return ui.New(controller, records, logger).Run()
}
