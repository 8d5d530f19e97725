package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/factline/registry/pkg/registry"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed congressional seat positions",
	Long: `Seed creates the Senate and House organizations and one position per
congressional seat: two Senate seats per state by class, and one House
seat per district under the 2020 apportionment. Seeding is idempotent;
existing seats are left alone.`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	senate, house, err := ensureChamberOrgs(a.reg)
	if err != nil {
		return err
	}
	added, err := registry.SeedCongressionalSeats(a.reg, senate, house)
	if err != nil {
		return err
	}
	if err := a.commit(ctx); err != nil {
		return err
	}

	fmt.Printf("seeded %d seats (%d positions total)\n", added, a.reg.Positions().Len())
	return nil
}

// ensureChamberOrgs creates the two chamber organizations when absent
// and returns their ids.
func ensureChamberOrgs(reg *registry.Registry) (senate, house registry.OrgID, err error) {
	find := func(name string) (registry.OrgID, bool) {
		for _, org := range reg.ListOrganizations() {
			if org.OfficialName == name {
				return org.ID, true
			}
		}
		return "", false
	}
	ensure := func(id registry.OrgID, name string) (registry.OrgID, error) {
		if existing, ok := find(name); ok {
			return existing, nil
		}
		return id, reg.SetOrganization(&registry.Organization{
			ID:           id,
			OfficialName: name,
			Kind:         registry.OrgKindBranchOrg,
			Branch:       registry.BranchLegislative,
			DataQuality:  1.0,
			Provenance:   registry.Provenance{Source: "seed"},
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		})
	}

	senate, err = ensure("us-senate", "United States Senate")
	if err != nil {
		return "", "", err
	}
	house, err = ensure("us-house", "United States House of Representatives")
	if err != nil {
		return "", "", err
	}
	return senate, house, nil
}
