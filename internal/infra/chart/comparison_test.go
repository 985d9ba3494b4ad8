package chart_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"covid-dashboard/internal/domain/entity"
	"covid-dashboard/internal/infra/chart"
)

func TestBuilder_ComparisonSeries(t *testing.T) {
	t.Parallel()

	b := &chart.Builder{}
	art, err := b.ComparisonSeries([]entity.CountrySeries{
		{
			Country: "Kenya",
			Records: []entity.Record{
				{Date: day("2021-01-01"), Cases: 100},
				{Date: day("2021-01-02"), Cases: 120},
			},
		},
		{
			Country: "Uganda",
			Records: []entity.Record{
				{Date: day("2021-01-01"), Cases: 50},
				{Date: day("2021-01-02"), Cases: 55},
			},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "comparison", art.Name)
	decodePNG(t, art)
}

func TestBuilder_ComparisonSeries_SkipsEmptySelections(t *testing.T) {
	t.Parallel()

	// One country with data, one unknown: the unknown is dropped and
	// the render still succeeds.
	b := &chart.Builder{}
	art, err := b.ComparisonSeries([]entity.CountrySeries{
		{Country: "Atlantis"},
		{
			Country: "Kenya",
			Records: []entity.Record{
				{Date: day("2021-01-01"), Cases: 100},
			},
		},
	})
	require.NoError(t, err)
	decodePNG(t, art)
}

func TestBuilder_ComparisonSeries_AllEmptyPlaceholder(t *testing.T) {
	t.Parallel()

	b := &chart.Builder{}
	art, err := b.ComparisonSeries([]entity.CountrySeries{
		{Country: "Atlantis"},
		{Country: "Lemuria"},
	})
	require.NoError(t, err)
	require.Equal(t, "comparison", art.Name)
	decodePNG(t, art)
}

func TestBuilder_ComparisonSeries_NoInputPlaceholder(t *testing.T) {
	t.Parallel()

	b := &chart.Builder{}
	art, err := b.ComparisonSeries(nil)
	require.NoError(t, err)
	decodePNG(t, art)
}
