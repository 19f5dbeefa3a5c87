// Package config reads runtime settings from the environment. A .env file in
// the working directory is loaded first when present; real environment
// variables win over it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/plumber-cd/ez-masters/internal/dispatch"
)

const (
	EnvDir              = "EZ_MASTERS_DIR"
	EnvLogFile          = "EZ_MASTERS_LOG_FILE"
	EnvLogDebug         = "EZ_MASTERS_LOG_DEBUG"
	EnvSwitchPolicy     = "EZ_MASTERS_SWITCH_POLICY"
	EnvCloseOnSave      = "EZ_MASTERS_CLOSE_ON_SAVE"
	EnvCloseOnDelete    = "EZ_MASTERS_CLOSE_ON_DELETE"
	EnvSidebarCollapsed = "EZ_MASTERS_SIDEBAR_COLLAPSED"

	DefaultLogFileName = "ez-masters.log"
)

// Config holds the runtime settings.
type Config struct {
	Dir              string
	LogFile          string
	LogDebug         bool
	SidebarCollapsed bool
	Policy           dispatch.Policy
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	return Config{
		Dir:     wd,
		LogFile: filepath.Join(os.TempDir(), DefaultLogFileName),
		Policy:  dispatch.DefaultPolicy(),
	}
}

// Load reads envFile (ignored when missing) and then the environment.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from a lookup function, starting from Default.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if v, ok := lookup(EnvDir); ok && strings.TrimSpace(v) != "" {
		cfg.Dir = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvLogFile); ok {
		cfg.LogFile = strings.TrimSpace(v)
	}

	var err error
	if cfg.LogDebug, err = boolEnv(lookup, EnvLogDebug, cfg.LogDebug); err != nil {
		return Config{}, err
	}
	if cfg.SidebarCollapsed, err = boolEnv(lookup, EnvSidebarCollapsed, cfg.SidebarCollapsed); err != nil {
		return Config{}, err
	}
	if cfg.Policy.CloseOnSave, err = boolEnv(lookup, EnvCloseOnSave, cfg.Policy.CloseOnSave); err != nil {
		return Config{}, err
	}
	if cfg.Policy.CloseOnDelete, err = boolEnv(lookup, EnvCloseOnDelete, cfg.Policy.CloseOnDelete); err != nil {
		return Config{}, err
	}
	if v, ok := lookup(EnvSwitchPolicy); ok && strings.TrimSpace(v) != "" {
		policy, err := dispatch.ParseSwitchPolicy(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvSwitchPolicy, err)
		}
		cfg.Policy.Switch = policy
	}
	return cfg, nil
}

func boolEnv(lookup func(string) (string, bool), key string, fallback bool) (bool, error) {
	v, ok := lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	return b, nil
}
