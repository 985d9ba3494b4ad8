package loader_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"covid-dashboard/internal/domain/entity"
	"covid-dashboard/internal/infra/loader"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "covid.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCSVLoader_Load(t *testing.T) {
	t.Parallel()

	path := writeCSV(t, `date,location,total_cases,total_deaths,population
2021-01-01,Kenya,100,2,50000000
2021-01-02,Kenya,120,3,50000000
2021-01-01,Uganda,50,1,45000000
`)

	l := &loader.CSVLoader{}
	ds, stats, err := l.Load(path)
	require.NoError(t, err)

	require.Equal(t, 3, stats.Rows)
	require.Equal(t, 3, stats.Loaded)
	require.Equal(t, 0, stats.Skipped)
	require.Equal(t, 0, stats.Duplicates)

	want := []entity.Record{
		{Date: day("2021-01-01"), Country: "Kenya", Cases: 100, Deaths: 2, Population: 50_000_000},
		{Date: day("2021-01-02"), Country: "Kenya", Cases: 120, Deaths: 3, Population: 50_000_000},
		{Date: day("2021-01-01"), Country: "Uganda", Cases: 50, Deaths: 1, Population: 45_000_000},
	}
	if diff := cmp.Diff(want, ds.Records()); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestCSVLoader_Load_CoercesBadNumerics(t *testing.T) {
	t.Parallel()

	path := writeCSV(t, `date,location,total_cases,total_deaths,population
2021-01-01,Kenya,,n/a,-1
`)

	l := &loader.CSVLoader{}
	ds, _, err := l.Load(path)
	require.NoError(t, err)

	rec := ds.Records()[0]
	require.Equal(t, int64(0), rec.Cases)
	require.Equal(t, int64(0), rec.Deaths)
	require.Equal(t, int64(0), rec.Population)
}

func TestCSVLoader_Load_SkipsBadRows(t *testing.T) {
	t.Parallel()

	path := writeCSV(t, `date,location,total_cases,total_deaths,population
2021-01-01,Kenya,100,2,50000000
not-a-date,Kenya,110,2,50000000
2021-01-02,,120,3,50000000
2021-01-03,Kenya,130,4,50000000
`)

	l := &loader.CSVLoader{}
	ds, stats, err := l.Load(path)
	require.NoError(t, err)

	require.Equal(t, 4, stats.Rows)
	require.Equal(t, 2, stats.Loaded)
	require.Equal(t, 2, stats.Skipped)
	require.Equal(t, 2, ds.Len())
}

func TestCSVLoader_Load_DuplicateKeyFirstWins(t *testing.T) {
	t.Parallel()

	path := writeCSV(t, `date,location,total_cases,total_deaths,population
2021-01-01,Kenya,100,2,50000000
2021-01-01,Kenya,999,99,50000000
`)

	l := &loader.CSVLoader{}
	ds, stats, err := l.Load(path)
	require.NoError(t, err)

	require.Equal(t, 1, stats.Loaded)
	require.Equal(t, 1, stats.Duplicates)
	require.Equal(t, int64(100), ds.Records()[0].Cases)
}

func TestCSVLoader_Load_HeaderCaseAndOrderInsensitive(t *testing.T) {
	t.Parallel()

	path := writeCSV(t, `Location,Total_Deaths,DATE,population,total_cases
Kenya,2,2021-01-01,50000000,100
`)

	l := &loader.CSVLoader{}
	ds, _, err := l.Load(path)
	require.NoError(t, err)

	rec := ds.Records()[0]
	require.Equal(t, "Kenya", rec.Country)
	require.Equal(t, int64(100), rec.Cases)
	require.Equal(t, int64(2), rec.Deaths)
}

func TestCSVLoader_Load_MissingNumericColumnsDefaultZero(t *testing.T) {
	t.Parallel()

	path := writeCSV(t, `date,location
2021-01-01,Kenya
`)

	l := &loader.CSVLoader{}
	ds, _, err := l.Load(path)
	require.NoError(t, err)
	require.Equal(t, int64(0), ds.Records()[0].Cases)
}

func TestCSVLoader_Load_MissingRequiredHeader(t *testing.T) {
	t.Parallel()

	path := writeCSV(t, `date,total_cases
2021-01-01,100
`)

	l := &loader.CSVLoader{}
	_, _, err := l.Load(path)
	require.ErrorIs(t, err, loader.ErrMissingHeader)
}

func TestCSVLoader_Load_EmptyDataset(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "header only",
			content: "date,location,total_cases,total_deaths,population\n",
		},
		{
			name: "all rows skipped",
			content: `date,location,total_cases,total_deaths,population
bad-date,Kenya,100,2,50000000
2021-01-01,,100,2,50000000
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &loader.CSVLoader{}
			_, _, err := l.Load(writeCSV(t, tt.content))
			require.ErrorIs(t, err, entity.ErrEmptyDataset)
		})
	}
}

func TestCSVLoader_Load_FileNotFound(t *testing.T) {
	t.Parallel()

	l := &loader.CSVLoader{}
	_, _, err := l.Load(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func day(s string) time.Time {
	t, err := time.Parse(loader.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}
