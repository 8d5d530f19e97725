package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/factline/registry/internal/store/sqlite"
	"github.com/factline/registry/pkg/registry"
)

// app bundles the store-backed registry a command operates on.
type app struct {
	reg   *registry.Registry
	store *sqlite.Store
}

// openApp loads the registry from the configured database. With no
// database configured the registry is in-memory and commands operate
// on an empty record set.
func openApp(ctx context.Context) (*app, error) {
	if cfg.DBPath == "" {
		return &app{reg: registry.New()}, nil
	}
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	reg, err := store.Load(ctx)
	if err != nil {
		store.Close()
		return nil, err
	}
	return &app{reg: reg, store: store}, nil
}

// commit persists the registry when a store is attached.
func (a *app) commit(ctx context.Context) error {
	if a.store == nil {
		return nil
	}
	return a.store.Save(ctx, a.reg)
}

// close releases the store handle.
func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
}

// emit renders a value in the configured output format.
func emit(v any) error {
	switch cfg.Output {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	default:
		fmt.Println(v)
		return nil
	}
}
