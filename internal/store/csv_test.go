package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trrebwatch/internal/config"
	"trrebwatch/pkg/contracts/domain"
)

func newTestStore(t *testing.T) *CSVStore {
	t.Helper()
	return NewCSVStore(&config.Paths{DataDir: t.TempDir()}, nil)
}

func sampleTable() *domain.RawTable {
	return &domain.RawTable{
		Columns: []string{"Region", "Sales", "Average Price"},
		Rows: [][]string{
			{"TRREB Total", "1,234", "$850,000"},
			{"Halton Region", "321", "$1,100,000"},
		},
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	date := time.Date(2023, time.October, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.WriteTable(domain.PropertyAllHomeTypes, date, sampleTable()))

	got, err := s.ReadTable(domain.PropertyAllHomeTypes, date)
	require.NoError(t, err)
	assert.Equal(t, sampleTable(), got)
}

func TestExists(t *testing.T) {
	s := newTestStore(t)
	date := time.Date(2023, time.October, 1, 0, 0, 0, 0, time.UTC)

	assert.False(t, s.Exists(domain.PropertyAllHomeTypes, date))
	require.NoError(t, s.WriteTable(domain.PropertyAllHomeTypes, date, sampleTable()))
	assert.True(t, s.Exists(domain.PropertyAllHomeTypes, date))
	assert.False(t, s.Exists(domain.PropertyDetached, date))
}

func TestWriteOverwrites(t *testing.T) {
	s := newTestStore(t)
	date := time.Date(2023, time.October, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.WriteTable(domain.PropertyAllHomeTypes, date, sampleTable()))

	updated := sampleTable()
	updated.Rows = updated.Rows[:1]
	require.NoError(t, s.WriteTable(domain.PropertyAllHomeTypes, date, updated))

	got, err := s.ReadTable(domain.PropertyAllHomeTypes, date)
	require.NoError(t, err)
	assert.Len(t, got.Rows, 1)
}

func TestReadMissingArtifact(t *testing.T) {
	s := newTestStore(t)

	_, err := s.ReadTable(domain.PropertyAllHomeTypes, time.Date(2023, time.October, 1, 0, 0, 0, 0, time.UTC))

	assert.Error(t, err)
}

func TestList(t *testing.T) {
	s := newTestStore(t)

	dates, err := s.List(domain.PropertyAllHomeTypes)
	require.NoError(t, err)
	assert.Empty(t, dates)

	for _, d := range []time.Time{
		time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, time.October, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	} {
		require.NoError(t, s.WriteTable(domain.PropertyAllHomeTypes, d, sampleTable()))
	}

	dates, err = s.List(domain.PropertyAllHomeTypes)
	require.NoError(t, err)
	require.Len(t, dates, 3)
	assert.Equal(t, "2023-10", dates[0].Format("2006-01"))
	assert.Equal(t, "2024-01", dates[1].Format("2006-01"))
	assert.Equal(t, "2024-03", dates[2].Format("2006-01"))
}
