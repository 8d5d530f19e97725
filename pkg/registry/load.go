package registry

import (
	"io/fs"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/factline/registry/pkg/errors"
)

// Snapshot file names within a registry directory.
const (
	organizationsFile = "organizations.yaml"
	peopleFile        = "people.yaml"
	positionsFile     = "positions.yaml"
	holdingsFile      = "holdings.yaml"
)

// LoadFromPath loads a registry snapshot from a directory on disk.
func LoadFromPath(path string) (*Registry, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.WrapIO("stat", path, err)
	}
	return Load(os.DirFS(path))
}

// Load reads a registry snapshot from a filesystem. Missing files are
// fine; an empty directory yields an empty registry. Holdings are
// loaded last so cross-references resolve.
func Load(fsys fs.FS) (*Registry, error) {
	r := New()

	if err := loadFile(fsys, organizationsFile, func(orgs []*Organization) error {
		// Parents may appear after children in the file; insert in two
		// passes so the parent-chain check sees the whole set.
		for _, org := range orgs {
			parent := org.ParentID
			org.ParentID = ""
			if err := r.SetOrganization(org); err != nil {
				return err
			}
			org.ParentID = parent
		}
		for _, org := range orgs {
			if org.ParentID == "" {
				continue
			}
			if err := r.SetOrganization(org); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := loadFile(fsys, peopleFile, func(people []*Person) error {
		for _, p := range people {
			if err := r.SetPerson(p); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := loadFile(fsys, positionsFile, func(positions []*Position) error {
		for _, p := range positions {
			if err := r.AddPosition(p); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := loadFile(fsys, holdingsFile, func(holdings []*PositionHolding) error {
		for _, h := range holdings {
			if err := r.holdings.Put(h); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return r, nil
}

// loadFile reads and unmarshals one snapshot file, tolerating absence.
func loadFile[T any](fsys fs.FS, name string, apply func([]T) error) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil // File doesn't exist is okay
	}
	var items []T
	if err := yaml.Unmarshal(data, &items); err != nil {
		return errors.WrapParse("yaml", name, err)
	}
	return apply(items)
}

// SaveTo writes the registry snapshot to a directory, creating it if
// needed. Files are written whole; there is no partial update.
func (r *Registry) SaveTo(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return errors.WrapIO("create", path, err)
	}
	if err := saveFile(path, organizationsFile, r.organizations.List()); err != nil {
		return err
	}
	if err := saveFile(path, peopleFile, r.people.List()); err != nil {
		return err
	}
	if err := saveFile(path, positionsFile, r.positions.List()); err != nil {
		return err
	}
	return saveFile(path, holdingsFile, r.holdings.List())
}

func saveFile[T any](dir, name string, items []T) error {
	data, err := yaml.Marshal(items)
	if err != nil {
		return errors.WrapParse("yaml", name, err)
	}
	full := dir + string(os.PathSeparator) + name
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return errors.WrapIO("write", full, err)
	}
	return nil
}
