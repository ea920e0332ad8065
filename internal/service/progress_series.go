package service

import "kindergarten_backend/internal/model"

// BuildSeries 取 year 年中有记录的季度（按 Q1->Q4 顺序，空季度不占位），
// 为每个指标输出一个点序列。year 不存在或没有任何记录时返回空结果。
func BuildSeries(idx model.ProgressIndex, year int) model.ChartSeries {
	series := model.ChartSeries{
		Labels: []string{},
		Series: []model.MetricSeries{},
	}

	slots, ok := idx[year]
	if !ok || slots == nil {
		return series
	}

	var records []*model.AssessmentRecord
	for _, q := range model.Quarters {
		if rec := slots.Slot(q); rec != nil {
			series.Labels = append(series.Labels, q.String())
			records = append(records, rec)
		}
	}
	if len(records) == 0 {
		return series
	}

	for _, m := range model.AllMetrics {
		points := make([]float64, len(records))
		for i, rec := range records {
			points[i] = rec.Metric(m)
		}
		series.Series = append(series.Series, model.MetricSeries{MetricID: m, Points: points})
	}

	return series
}
