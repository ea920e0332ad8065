package service

import (
	"testing"
	"time"

	"kindergarten_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func newRecord(id, childID uint, reportDate *time.Time, rating float64) model.AssessmentRecord {
	rec := model.AssessmentRecord{ChildID: childID, ReportDate: reportDate}
	rec.ID = id
	for _, m := range model.RatingMetrics {
		rec.SetMetric(m, rating)
	}
	return rec
}

func TestClassifyDate(t *testing.T) {
	tests := []struct {
		name        string
		date        *time.Time
		wantYear    int
		wantQuarter model.Quarter
	}{
		{"first day of year", date(2023, time.January, 1), 2023, model.Q1},
		{"end of march", date(2023, time.March, 31), 2023, model.Q1},
		{"start of april", date(2023, time.April, 1), 2023, model.Q2},
		{"june", date(2023, time.June, 15), 2023, model.Q2},
		{"july", date(2024, time.July, 1), 2024, model.Q3},
		{"end of september", date(2024, time.September, 30), 2024, model.Q3},
		{"october", date(2024, time.October, 1), 2024, model.Q4},
		{"last day of year", date(2024, time.December, 31), 2024, model.Q4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			year, q := ClassifyDate(*tt.date)
			assert.Equal(t, tt.wantYear, year)
			assert.Equal(t, tt.wantQuarter, q)
		})
	}
}

func TestBuildIndexAt_Empty(t *testing.T) {
	now := time.Date(2025, time.May, 10, 0, 0, 0, 0, time.UTC)

	idx := BuildIndexAt(nil, now)

	require.Len(t, idx, 1)
	slots, ok := idx[2025]
	require.True(t, ok)
	for _, q := range model.Quarters {
		assert.Nil(t, slots.Slot(q), q.String())
	}
}

func TestBuildIndexAt_PlacesRecordsByQuarter(t *testing.T) {
	now := time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC)
	records := []model.AssessmentRecord{
		newRecord(1, 7, date(2023, time.February, 3), 4),
		newRecord(2, 7, date(2023, time.November, 20), 6),
		newRecord(3, 7, date(2024, time.August, 8), 8),
	}

	idx := BuildIndexAt(records, now)

	assert.Equal(t, []int{2023, 2024, 2025}, idx.Years())
	require.NotNil(t, idx.Slot(2023, model.Q1))
	assert.Equal(t, uint(1), idx.Slot(2023, model.Q1).ID)
	assert.Nil(t, idx.Slot(2023, model.Q2))
	assert.Nil(t, idx.Slot(2023, model.Q3))
	assert.Equal(t, uint(2), idx.Slot(2023, model.Q4).ID)
	assert.Equal(t, uint(3), idx.Slot(2024, model.Q3).ID)
	assert.Nil(t, idx.Slot(2025, model.Q1))
}

func TestBuildIndexAt_LaterRecordWins(t *testing.T) {
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	records := []model.AssessmentRecord{
		newRecord(10, 1, date(2024, time.January, 5), 3),
		newRecord(11, 1, date(2024, time.March, 28), 9),
	}

	idx := BuildIndexAt(records, now)

	rec := idx.Slot(2024, model.Q1)
	require.NotNil(t, rec)
	assert.Equal(t, uint(11), rec.ID)
	assert.Equal(t, 9.0, rec.ActiveSpeech)
}

func TestBuildIndexAt_SkipsRecordsWithoutDate(t *testing.T) {
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	var zero time.Time
	records := []model.AssessmentRecord{
		newRecord(1, 1, nil, 5),
		newRecord(2, 1, &zero, 5),
		newRecord(3, 1, date(2024, time.May, 1), 5),
	}

	idx := BuildIndexAt(records, now)

	assert.Equal(t, []int{2024}, idx.Years())
	assert.Equal(t, uint(3), idx.Slot(2024, model.Q2).ID)
	assert.Nil(t, idx.Slot(2024, model.Q1))
}

func TestBuildIndexAt_CopiesRecords(t *testing.T) {
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	records := []model.AssessmentRecord{newRecord(1, 1, date(2024, time.April, 2), 5)}

	idx := BuildIndexAt(records, now)
	records[0].ActiveSpeech = 1

	assert.Equal(t, 5.0, idx.Slot(2024, model.Q2).ActiveSpeech)
}

func TestBuildIndex_UsesCurrentYear(t *testing.T) {
	old := timeNow
	timeNow = func() time.Time { return time.Date(2031, time.March, 1, 0, 0, 0, 0, time.UTC) }
	defer func() { timeNow = old }()

	idx := BuildIndex(nil)

	assert.Equal(t, []int{2031}, idx.Years())
}

func TestBuildIndexAt_Idempotent(t *testing.T) {
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	records := []model.AssessmentRecord{
		newRecord(1, 1, date(2023, time.December, 1), 4),
		newRecord(2, 1, date(2024, time.January, 5), 3),
		newRecord(3, 1, date(2024, time.February, 5), 6),
	}

	assert.Equal(t, BuildIndexAt(records, now), BuildIndexAt(records, now))
}

func TestBuildIndexAndSeries_TwoQuarters(t *testing.T) {
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	first := model.AssessmentRecord{ChildID: 1, ReportDate: date(2024, time.February, 10), ActiveSpeech: 7}
	second := model.AssessmentRecord{ChildID: 1, ReportDate: date(2024, time.May, 2), ActiveSpeech: 9}

	idx := BuildIndexAt([]model.AssessmentRecord{first, second}, now)

	assert.Equal(t, 7.0, idx.Slot(2024, model.Q1).ActiveSpeech)
	assert.Equal(t, 9.0, idx.Slot(2024, model.Q2).ActiveSpeech)
	assert.Nil(t, idx.Slot(2024, model.Q3))
	assert.Nil(t, idx.Slot(2024, model.Q4))

	series := BuildSeries(idx, 2024)
	assert.Equal(t, []string{"Q1", "Q2"}, series.Labels)
	speech, ok := series.Points(model.MetricActiveSpeech)
	require.True(t, ok)
	assert.Equal(t, []float64{7, 9}, speech)
}
