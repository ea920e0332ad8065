package service

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"kindergarten_backend/internal/model"
	"kindergarten_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderChartPNG(t *testing.T) {
	series := model.ChartSeries{
		Labels: []string{"Q1", "Q2", "Q4"},
		Series: []model.MetricSeries{
			{MetricID: model.MetricHeight, Points: []float64{98, 101.5, 104}},
			{MetricID: model.MetricWeight, Points: []float64{15, 15.8, 16.4}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderChartPNG(series, "Child 1 - 2024", 0, 0, &buf))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, defaultChartWidth, img.Bounds().Dx())
	assert.Equal(t, defaultChartHeight, img.Bounds().Dy())
}

func TestRenderChartPNG_SingleQuarter(t *testing.T) {
	records := []model.AssessmentRecord{newRecord(1, 7, date(2024, time.March, 1), 6)}
	records[0].Height = 102
	series := BuildSeries(BuildIndexAt(records, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)), 2024)
	require.Equal(t, []string{"Q1"}, series.Labels)

	for _, s := range []model.ChartSeries{series, series.Filter(model.RatingMetrics), series.Filter(model.PhysicalMetrics)} {
		var buf bytes.Buffer
		require.NoError(t, RenderChartPNG(s, "Child 7 - 2024", 300, 150, &buf))

		img, err := png.Decode(&buf)
		require.NoError(t, err)
		assert.Equal(t, 300, img.Bounds().Dx())
	}
	assert.Len(t, series.Series[0].Points, 1)
}

func TestRenderChartPNG_Empty(t *testing.T) {
	err := RenderChartPNG(model.ChartSeries{}, "empty", 100, 100, &bytes.Buffer{})
	assert.ErrorIs(t, err, util.ErrNoChartData)

	labelsOnly := model.ChartSeries{Labels: []string{"Q1"}}
	err = RenderChartPNG(labelsOnly, "empty", 100, 100, &bytes.Buffer{})
	assert.ErrorIs(t, err, util.ErrNoChartData)
}

func TestYRange(t *testing.T) {
	ratings := model.ChartSeries{Series: []model.MetricSeries{{MetricID: model.MetricArtActivity, Points: []float64{3, 4}}}}
	r := yRange(ratings)
	assert.Equal(t, 0.0, r.Min)
	assert.Equal(t, 10.0, r.Max)

	physical := model.ChartSeries{Series: []model.MetricSeries{{MetricID: model.MetricHeight, Points: []float64{100, 120}}}}
	r = yRange(physical)
	assert.InDelta(t, 132.0, r.Max, 1e-9)
}
