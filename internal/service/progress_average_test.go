package service

import (
	"math"
	"testing"
	"time"

	"kindergarten_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordWith(m model.MetricID, v float64) *model.AssessmentRecord {
	rec := &model.AssessmentRecord{}
	rec.SetMetric(m, v)
	return rec
}

func TestAverageMetric(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single", []float64{7}, 7},
		{"plain mean", []float64{4, 6, 8}, 6},
		{"zero excluded", []float64{0, 4, 8}, 6},
		{"all zero", []float64{0, 0}, 0},
		{"negative excluded", []float64{-3, 5}, 5},
		{"nan excluded", []float64{math.NaN(), 3}, 3},
		{"inf excluded", []float64{math.Inf(1), 2, 4}, 3},
		{"not rounded", []float64{1, 2, 2}, 5.0 / 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := make([]*model.AssessmentRecord, 0, len(tt.values))
			for _, v := range tt.values {
				records = append(records, recordWith(model.MetricPlayActivity, v))
			}
			assert.InDelta(t, tt.want, AverageMetric(records, model.MetricPlayActivity), 1e-9)
		})
	}
}

func TestAverageMetric_IgnoresNilRecords(t *testing.T) {
	records := []*model.AssessmentRecord{nil, recordWith(model.MetricHeight, 110), nil}

	assert.Equal(t, 110.0, AverageMetric(records, model.MetricHeight))
}

func TestAverageAll_CoversEveryMetric(t *testing.T) {
	rec := &model.AssessmentRecord{Height: 105, Weight: 18}
	rec.ActiveSpeech = 6

	averages := AverageAll([]*model.AssessmentRecord{rec})

	assert.Len(t, averages, len(model.AllMetrics))
	assert.Equal(t, 6.0, averages[model.MetricActiveSpeech])
	assert.Equal(t, 0.0, averages[model.MetricArtActivity])
	assert.Equal(t, 105.0, averages[model.MetricHeight])
	assert.Equal(t, 18.0, averages[model.MetricWeight])
}

func TestSlotRecords_WeightsEveryChildOnce(t *testing.T) {
	now := time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC)
	// 班级 A 两个幼儿，班级 B 一个幼儿
	a1 := BuildIndexAt([]model.AssessmentRecord{newRecord(1, 1, date(2024, time.February, 1), 2)}, now)
	a2 := BuildIndexAt([]model.AssessmentRecord{newRecord(2, 2, date(2024, time.February, 1), 4)}, now)
	b1 := BuildIndexAt([]model.AssessmentRecord{newRecord(3, 3, date(2024, time.February, 1), 9)}, now)
	empty := BuildIndexAt(nil, now)

	records := SlotRecords([]model.ProgressIndex{a1, a2, b1, empty}, 2024, model.Q1)

	require.Len(t, records, 3)
	// (2+4+9)/3，而不是班级平均值 3 和 9 的平均 6
	assert.InDelta(t, 5.0, AverageMetric(records, model.MetricActiveSpeech), 1e-9)
}

func TestAggregateIndex(t *testing.T) {
	now := time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC)
	c1 := BuildIndexAt([]model.AssessmentRecord{
		newRecord(1, 1, date(2024, time.January, 10), 4),
		newRecord(2, 1, date(2024, time.July, 10), 6),
	}, now)
	c2 := BuildIndexAt([]model.AssessmentRecord{
		newRecord(3, 2, date(2024, time.February, 10), 8),
	}, now)

	agg := AggregateIndex([]model.ProgressIndex{c1, c2}, 2024)

	require.NotNil(t, agg.Slot(2024, model.Q1))
	assert.Equal(t, 6.0, agg.Slot(2024, model.Q1).ActiveSpeech)
	assert.Nil(t, agg.Slot(2024, model.Q2))
	assert.Equal(t, 6.0, agg.Slot(2024, model.Q3).MovementSkills)
	assert.Nil(t, agg.Slot(2024, model.Q4))
}

func TestRoundMetric(t *testing.T) {
	assert.Equal(t, 3.3, RoundMetric(10.0/3.0))
	assert.Equal(t, 6.7, RoundMetric(20.0/3.0))
	assert.Equal(t, 0.0, RoundMetric(0))
	assert.Equal(t, 112.5, RoundMetric(112.45000001))
}

func TestRoundSeries_DoesNotModifyInput(t *testing.T) {
	series := model.ChartSeries{
		Labels: []string{"Q1"},
		Series: []model.MetricSeries{{MetricID: model.MetricWeight, Points: []float64{17.26}}},
	}

	rounded := RoundSeries(series)

	assert.Equal(t, 17.3, rounded.Series[0].Points[0])
	assert.Equal(t, 17.26, series.Series[0].Points[0])
}
