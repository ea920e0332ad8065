package service

import (
	"kindergarten_backend/internal/model"
	"kindergarten_backend/pkg/logger"
	"kindergarten_backend/pkg/monitoring"
	"time"

	"go.uber.org/zap"
)

var timeNow = time.Now

// ClassifyDate 返回日期所在的年份与季度，季度只取决于月份
func ClassifyDate(t time.Time) (int, model.Quarter) {
	return t.Year(), model.Quarter((int(t.Month())-1)/3 + 1)
}

// BuildIndex 把一个幼儿的评估记录折叠为 年 -> 季度 -> 记录 的索引
func BuildIndex(records []model.AssessmentRecord) model.ProgressIndex {
	return BuildIndexAt(records, timeNow())
}

// BuildIndexAt 同 BuildIndex，now 决定必须存在的当前年份。
// 按输入顺序折叠，同一季度后出现的记录覆盖先出现的；缺少日期的记录跳过。
func BuildIndexAt(records []model.AssessmentRecord, now time.Time) model.ProgressIndex {
	idx := make(model.ProgressIndex)

	for i := range records {
		rec := records[i]
		if rec.ReportDate == nil || rec.ReportDate.IsZero() {
			logger.Log.Warn("skip assessment record without report date",
				zap.Uint("recordId", rec.ID),
				zap.Uint("childId", rec.ChildID),
			)
			monitoring.ProgressRecordsSkipped.Inc()
			continue
		}

		year, quarter := ClassifyDate(*rec.ReportDate)
		idx.EnsureYear(year).SetSlot(quarter, &rec)
	}

	// 保证当前年份存在，前端有稳定的默认选择
	idx.EnsureYear(now.Year())

	return idx
}
