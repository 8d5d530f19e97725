package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/factline/registry/internal/store/sqlite"
	"github.com/factline/registry/pkg/errors"
	"github.com/factline/registry/pkg/sources"
)

var exportCmd = &cobra.Command{
	Use:   "export [dir]",
	Short: "Export the registry as YAML snapshot files",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cfg.DataDir
		if len(args) == 1 {
			dir = args[0]
		}
		if dir == "" {
			return errors.NewValidationError("dir", "", "no export directory given")
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.reg.SaveTo(dir); err != nil {
			return err
		}
		stats := a.reg.Stats()
		fmt.Printf("exported %d organizations, %d people, %d positions, %d holdings to %s\n",
			stats.Organizations, stats.People, stats.Positions, stats.Holdings, dir)
		return nil
	},
}

var freshnessCmd = &cobra.Command{
	Use:   "freshness",
	Short: "Show when each source last synced",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cfg.DBPath == "" {
			return errors.NewValidationError("db_path", "", "freshness requires a database")
		}
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		f, err := store.LoadFreshness(cmd.Context())
		if err != nil {
			return err
		}
		for _, id := range sources.IDs() {
			if at, ok := f.LastSynced(id); ok {
				fmt.Printf("%-18s %s\n", id, at.Format(time.RFC3339))
			} else {
				fmt.Printf("%-18s never\n", id)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd, freshnessCmd)
}
