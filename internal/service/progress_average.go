package service

import (
	"kindergarten_backend/internal/model"
	"math"
)

// AverageMetric 计算一组记录某指标的平均值。
// 只有有限且大于 0 的值参与计算；没有可用值时返回 0。结果不做舍入。
func AverageMetric(records []*model.AssessmentRecord, m model.MetricID) float64 {
	var (
		sum   float64
		count int
	)
	for _, r := range records {
		if r == nil {
			continue
		}
		v := r.Metric(m)
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			continue
		}
		sum += v
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// AverageAll 计算全部八项指标的平均值
func AverageAll(records []*model.AssessmentRecord) model.MetricAverages {
	averages := make(model.MetricAverages, len(model.AllMetrics))
	for _, m := range model.AllMetrics {
		averages[m] = AverageMetric(records, m)
	}
	return averages
}

// SlotRecords 收集所有索引在 (year, quarter) 槽位上的记录，空槽位跳过。
// 全园统计直接对所有幼儿的记录取并集，每个幼儿权重相同，而不是对班级平均值再求平均。
func SlotRecords(indexes []model.ProgressIndex, year int, q model.Quarter) []*model.AssessmentRecord {
	records := make([]*model.AssessmentRecord, 0, len(indexes))
	for _, idx := range indexes {
		if rec := idx.Slot(year, q); rec != nil {
			records = append(records, rec)
		}
	}
	return records
}

// AggregateIndex 为一组幼儿构造 year 年的伪索引：
// 每个季度槽位是一条合成记录，指标为该季度有记录幼儿的平均值；没有任何幼儿有记录时槽位为空。
func AggregateIndex(indexes []model.ProgressIndex, year int) model.ProgressIndex {
	agg := make(model.ProgressIndex)
	slots := agg.EnsureYear(year)

	for _, q := range model.Quarters {
		records := SlotRecords(indexes, year, q)
		if len(records) == 0 {
			continue
		}
		synthetic := &model.AssessmentRecord{}
		for m, v := range AverageAll(records) {
			synthetic.SetMetric(m, v)
		}
		slots.SetSlot(q, synthetic)
	}

	return agg
}

// RoundMetric 保留一位小数，只在展示层使用
func RoundMetric(v float64) float64 {
	return math.Round(v*10) / 10
}

func RoundAverages(averages model.MetricAverages) model.MetricAverages {
	out := make(model.MetricAverages, len(averages))
	for m, v := range averages {
		out[m] = RoundMetric(v)
	}
	return out
}

func RoundSeries(series model.ChartSeries) model.ChartSeries {
	out := model.ChartSeries{
		Labels: series.Labels,
		Series: make([]model.MetricSeries, len(series.Series)),
	}
	for i, s := range series.Series {
		points := make([]float64, len(s.Points))
		for j, p := range s.Points {
			points[j] = RoundMetric(p)
		}
		out.Series[i] = model.MetricSeries{MetricID: s.MetricID, Points: points}
	}
	return out
}
