package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/factline/registry/internal/sources/fedreg"
	"github.com/factline/registry/internal/sources/govman"
	"github.com/factline/registry/internal/sources/legislators"
	"github.com/factline/registry/internal/sources/plum"
	"github.com/factline/registry/internal/syncer"
	"github.com/factline/registry/internal/transport"
	"github.com/factline/registry/internal/config"
	"github.com/factline/registry/pkg/errors"
	"github.com/factline/registry/pkg/sources"
)

var syncSources []string

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync upstream sources into the registry",
	Long: `Sync fetches each configured source, reconciles its records against
the canonical registry, and records position holdings. Sources run
concurrently; one source failing does not stop the others.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringSliceVar(&syncSources, "source", nil,
		"sources to sync (default all configured)")
	syncCmd.Flags().Int("workers", 0, "concurrent source fetches (overrides config)")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	adapters, err := buildAdapters()
	if err != nil {
		return err
	}
	if len(adapters) == 0 {
		return errors.NewValidationError("sources", syncSources, "no sources configured")
	}

	workers := cfg.Workers
	if n, _ := cmd.Flags().GetInt("workers"); n > 0 {
		workers = n
	}

	s := syncer.New(a.reg,
		syncer.WithWorkers(workers),
		syncer.WithSourceTimeout(cfg.SourceTimeout),
	)
	report := s.Run(ctx, adapters)

	if err := a.commit(ctx); err != nil {
		return err
	}
	if a.store != nil {
		if err := a.store.SaveFreshness(ctx, s.Freshness()); err != nil {
			return err
		}
	}

	if cfg.Output == "json" || cfg.Output == "yaml" {
		return emit(report.Sources())
	}
	for _, rep := range report.Sources() {
		fmt.Println(rep.Summary())
	}
	return nil
}

// buildAdapters assembles the adapter set the run will sync, honoring
// the --source filter.
func buildAdapters() ([]sources.Adapter, error) {
	wanted := make(map[sources.ID]bool, len(syncSources))
	for _, raw := range syncSources {
		id := sources.ID(raw)
		if !id.IsValid() {
			return nil, errors.NewValidationError("source", raw, "unknown source")
		}
		wanted[id] = true
	}
	include := func(id sources.ID) bool {
		return len(wanted) == 0 || wanted[id]
	}

	var adapters []sources.Adapter
	if include(sources.LegislatorsID) {
		adapters = append(adapters, legislatorsAdapter(cfg.Source(sources.LegislatorsID)))
	}
	if include(sources.PlumID) {
		if sc := cfg.Source(sources.PlumID); sc.URL != "" || sc.Path != "" {
			adapters = append(adapters, plumAdapter(sc))
		}
	}
	if include(sources.FedRegID) {
		adapters = append(adapters, fedregAdapter(cfg.Source(sources.FedRegID)))
	}
	if include(sources.GovManID) {
		if sc := cfg.Source(sources.GovManID); sc.URL != "" || sc.Path != "" {
			adapters = append(adapters, govmanAdapter(sc))
		}
	}
	return adapters, nil
}

func legislatorsAdapter(sc config.SourceConfig) sources.Adapter {
	opts := []legislators.Option{
		legislators.WithClient(newClient(sources.LegislatorsID, sc)),
	}
	if sc.URL != "" {
		opts = append(opts, legislators.WithURL(sc.URL))
	}
	if sc.Path != "" {
		opts = append(opts, legislators.WithPath(sc.Path))
	}
	return legislators.New(opts...)
}

func plumAdapter(sc config.SourceConfig) sources.Adapter {
	opts := []plum.Option{
		plum.WithClient(newClient(sources.PlumID, sc)),
	}
	if sc.URL != "" {
		opts = append(opts, plum.WithURL(sc.URL))
	}
	if sc.Path != "" {
		opts = append(opts, plum.WithPath(sc.Path))
	}
	return plum.New(opts...)
}

func fedregAdapter(sc config.SourceConfig) sources.Adapter {
	opts := []fedreg.Option{
		fedreg.WithClient(newClient(sources.FedRegID, sc)),
	}
	if sc.URL != "" {
		opts = append(opts, fedreg.WithBaseURL(sc.URL))
	}
	return fedreg.New(opts...)
}

func govmanAdapter(sc config.SourceConfig) sources.Adapter {
	opts := []govman.Option{
		govman.WithClient(newClient(sources.GovManID, sc)),
	}
	if sc.URL != "" {
		opts = append(opts, govman.WithURL(sc.URL))
	}
	if sc.Path != "" {
		opts = append(opts, govman.WithPath(sc.Path))
	}
	return govman.New(opts...)
}

func newClient(id sources.ID, sc config.SourceConfig) *transport.Client {
	opts := []transport.Option{transport.WithBudget(sc.Budget)}
	if sc.APIKey != "" {
		opts = append(opts, transport.WithAuth(&transport.QueryAuth{Param: "api_key"}, sc.APIKey))
	}
	return transport.New(id.String(), opts...)
}
