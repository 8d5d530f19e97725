package plum_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factline/registry/internal/sources/plum"
	"github.com/factline/registry/pkg/errors"
	"github.com/factline/registry/pkg/registry"
	"github.com/factline/registry/pkg/sources"
)

const roll = `agency_name,position_title,appointment_type,incumbent_first,incumbent_last,start_date,end_date
Environmental Protection Agency,Administrator,appointed,Jane,Doe,2021-03-11,
Environmental Protection Agency,Deputy Administrator,appointed,John,Roe,2021-04-20,2023-06-30
Department of Transportation,Secretary,appointed,Jane,Doe,2017-01-31,2019-02-28
`

func writeRoll(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plum.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestFetch(t *testing.T) {
	a := plum.New(plum.WithPath(writeRoll(t, roll)))
	assert.Equal(t, sources.PlumID, a.ID())

	batch, err := a.Fetch(context.Background())
	require.NoError(t, err)

	// Jane Doe appears on two rows but is one person candidate.
	require.Len(t, batch.Records, 2)
	require.Len(t, batch.Holdings, 3)

	doe := batch.Records[0]
	assert.Equal(t, registry.EntityPerson, doe.Kind)
	assert.Equal(t, "Jane Doe", doe.Name)
	assert.Equal(t, "Jane", doe.GivenName)
	assert.Equal(t, "Doe", doe.FamilyName)

	admin := batch.Holdings[0]
	assert.Equal(t, "Jane Doe", admin.PersonName)
	assert.Equal(t, "Administrator", admin.PositionTitle)
	assert.Equal(t, registry.PositionAppointed, admin.PositionKind)
	assert.Equal(t, "Environmental Protection Agency", admin.OrganizationName)
	assert.Equal(t, registry.MustParseDate("2021-03-11"), admin.Start)
	assert.True(t, admin.End.IsZero())

	deputy := batch.Holdings[1]
	assert.Equal(t, registry.MustParseDate("2023-06-30"), deputy.End)
}

func TestFetchRejectsMissingColumn(t *testing.T) {
	const bad = `agency_name,position_title,incumbent_first,incumbent_last
EPA,Administrator,Jane,Doe
`
	a := plum.New(plum.WithPath(writeRoll(t, bad)))
	_, err := a.Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestFetchRejectsRowWithoutIncumbent(t *testing.T) {
	const bad = `agency_name,position_title,appointment_type,incumbent_first,incumbent_last,start_date,end_date
EPA,Administrator,appointed,,,2021-03-11,
`
	a := plum.New(plum.WithPath(writeRoll(t, bad)))
	_, err := a.Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestFetchRejectsBadDate(t *testing.T) {
	const bad = `agency_name,position_title,appointment_type,incumbent_first,incumbent_last,start_date,end_date
EPA,Administrator,appointed,Jane,Doe,March 2021,
`
	a := plum.New(plum.WithPath(writeRoll(t, bad)))
	_, err := a.Fetch(context.Background())
	require.Error(t, err)
	var perr *errors.ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestFetchWithoutSource(t *testing.T) {
	a := plum.New()
	_, err := a.Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}
