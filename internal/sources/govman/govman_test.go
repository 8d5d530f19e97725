package govman_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factline/registry/internal/sources/govman"
	"github.com/factline/registry/pkg/errors"
	"github.com/factline/registry/pkg/registry"
	"github.com/factline/registry/pkg/sources"
)

const chart = `organizations:
  - name: Department of Homeland Security
    acronym: DHS
    kind: department
    branch: executive
    mission: Safeguard the American people, our homeland, and our values.
    jurisdiction:
      - border security
      - emergency management
    website: https://www.dhs.gov
    established: "2002-11-25"
  - name: Federal Emergency Management Agency
    acronym: FEMA
    kind: agency
    branch: executive
    parent: Department of Homeland Security
  - name: Civil Aeronautics Board
    kind: board
    branch: executive
    established: "1938-06-23"
    dissolved: "1985-01-01"
`

func writeChart(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manual.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestFetch(t *testing.T) {
	a := govman.New(govman.WithPath(writeChart(t, chart)))
	assert.Equal(t, sources.GovManID, a.ID())

	batch, err := a.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, batch.Records, 3)
	assert.Empty(t, batch.Holdings)

	dhs := batch.Records[0]
	assert.Equal(t, registry.EntityOrganization, dhs.Kind)
	assert.Equal(t, "Department of Homeland Security", dhs.Name)
	assert.Equal(t, "DHS", dhs.Acronym)
	assert.Equal(t, registry.OrgKindDepartment, dhs.OrgKind)
	assert.Equal(t, registry.BranchExecutive, dhs.Branch)
	assert.Equal(t, []string{"border security", "emergency management"}, dhs.JurisdictionAreas)
	assert.Equal(t, registry.MustParseDate("2002-11-25"), dhs.EffectiveDate)
	assert.NotEmpty(t, dhs.MissionStatement)

	fema := batch.Records[1]
	assert.Equal(t, "Department of Homeland Security", fema.ParentName)
	assert.Equal(t, registry.OrgKindAgency, fema.OrgKind)

	cab := batch.Records[2]
	assert.Equal(t, registry.MustParseDate("1985-01-01"), cab.Dissolved)
}

func TestFetchRejectsNamelessOrganization(t *testing.T) {
	const bad = `organizations:
  - acronym: XYZ
    kind: agency
`
	a := govman.New(govman.WithPath(writeChart(t, bad)))
	_, err := a.Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestFetchRejectsBadDate(t *testing.T) {
	const bad = `organizations:
  - name: Test Agency
    established: "late 1970s"
`
	a := govman.New(govman.WithPath(writeChart(t, bad)))
	_, err := a.Fetch(context.Background())
	require.Error(t, err)
	var perr *errors.ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestFetchWithoutSource(t *testing.T) {
	_, err := govman.New().Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}
