package store

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/plumber-cd/ez-masters/internal/domain"
	"sigs.k8s.io/yaml"
)

const (
	DataDirName        = ".ez-masters"
	NavigationFileName = "navigation.yaml"

	formsDirName = "forms"
)

//go:embed defaults
var defaultsFS embed.FS

// navigationFile is the on-disk shape of navigation.yaml.
type navigationFile struct {
	Items []*domain.NavNode `json:"items"`
}

// Load builds the catalog from the embedded defaults, then applies any
// overrides found under dir/.ez-masters: forms/*.yaml replace definitions
// with the same id and navigation.yaml replaces the whole tree.
func Load(dir string) (*domain.Catalog, error) {
	defaults, err := fs.Sub(defaultsFS, "defaults")
	if err != nil {
		return nil, fmt.Errorf("open embedded defaults: %w", err)
	}

	catalog := domain.NewCatalog()
	if err := loadFS(defaults, catalog); err != nil {
		return nil, fmt.Errorf("load embedded defaults: %w", err)
	}

	if dir != "" {
		dataDir := filepath.Join(dir, DataDirName)
		info, err := os.Stat(dataDir)
		switch {
		case err == nil && info.IsDir():
			if err := loadFS(os.DirFS(dataDir), catalog); err != nil {
				return nil, fmt.Errorf("load %s: %w", dataDir, err)
			}
		case err != nil && !os.IsNotExist(err):
			return nil, fmt.Errorf("stat %s: %w", dataDir, err)
		}
	}

	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}
	return catalog, nil
}

// LoadFS builds and validates a catalog from fsys alone.
func LoadFS(fsys fs.FS) (*domain.Catalog, error) {
	catalog := domain.NewCatalog()
	if err := loadFS(fsys, catalog); err != nil {
		return nil, err
	}
	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}
	return catalog, nil
}

func loadFS(fsys fs.FS, catalog *domain.Catalog) error {
	files, err := fs.ReadDir(fsys, formsDirName)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read %s directory: %w", formsDirName, err)
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		if f.IsDir() || (path.Ext(f.Name()) != ".yaml" && path.Ext(f.Name()) != ".yml") {
			continue
		}
		names = append(names, f.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		bytes, err := fs.ReadFile(fsys, path.Join(formsDirName, name))
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		def := &domain.FormDefinition{}
		if err := yaml.Unmarshal(bytes, def); err != nil {
			return fmt.Errorf("unmarshal %s: %w", name, err)
		}
		catalog.PutForm(def)
	}

	bytes, err := fs.ReadFile(fsys, NavigationFileName)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", NavigationFileName, err)
	}
	nav := navigationFile{}
	if err := yaml.Unmarshal(bytes, &nav); err != nil {
		return fmt.Errorf("unmarshal %s: %w", NavigationFileName, err)
	}
	catalog.SetNavigation(nav.Items)
	return nil
}
