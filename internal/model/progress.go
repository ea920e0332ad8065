package model

import (
	"sort"
	"strconv"
	"strings"
)

// MetricID 指标标识，与 AssessmentRecord 的 json 字段名一致
type MetricID string

const (
	MetricActiveSpeech         MetricID = "activeSpeech"
	MetricPlayActivity         MetricID = "playActivity"
	MetricArtActivity          MetricID = "artActivity"
	MetricConstructiveActivity MetricID = "constructiveActivity"
	MetricSensoryDevelopment   MetricID = "sensoryDevelopment"
	MetricMovementSkills       MetricID = "movementSkills"
	MetricHeight               MetricID = "height"
	MetricWeight               MetricID = "weight"
)

var (
	// RatingMetrics 六项发展评分
	RatingMetrics = []MetricID{
		MetricActiveSpeech,
		MetricPlayActivity,
		MetricArtActivity,
		MetricConstructiveActivity,
		MetricSensoryDevelopment,
		MetricMovementSkills,
	}

	// PhysicalMetrics 身高体重
	PhysicalMetrics = []MetricID{MetricHeight, MetricWeight}

	AllMetrics = append(append([]MetricID{}, RatingMetrics...), PhysicalMetrics...)
)

const (
	MetricGroupRatings  = "ratings"
	MetricGroupPhysical = "physical"
)

// Max 指标允许的最大值
func (m MetricID) Max() float64 {
	switch m {
	case MetricHeight:
		return 200
	case MetricWeight:
		return 100
	}
	return 10
}

// MetricsForGroup 按展示分组取指标，空字符串表示全部
func MetricsForGroup(group string) ([]MetricID, bool) {
	switch strings.ToLower(strings.TrimSpace(group)) {
	case "":
		return AllMetrics, true
	case MetricGroupRatings:
		return RatingMetrics, true
	case MetricGroupPhysical:
		return PhysicalMetrics, true
	}
	return nil, false
}

// Quarter 季度，Q1 = 1-3 月 ... Q4 = 10-12 月
type Quarter int

const (
	Q1 Quarter = iota + 1
	Q2
	Q3
	Q4
)

var Quarters = []Quarter{Q1, Q2, Q3, Q4}

func (q Quarter) Valid() bool {
	return q >= Q1 && q <= Q4
}

func (q Quarter) String() string {
	if !q.Valid() {
		return "Q?"
	}
	return "Q" + strconv.Itoa(int(q))
}

// ParseQuarter 接受 "Q1"、"q1" 或 "1"
func ParseQuarter(s string) (Quarter, bool) {
	s = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "Q")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	q := Quarter(n)
	return q, q.Valid()
}

// QuarterSlots 一年四个季度的槽位，每个槽位为空或恰好一条记录
type QuarterSlots struct {
	Q1 *AssessmentRecord `json:"Q1"`
	Q2 *AssessmentRecord `json:"Q2"`
	Q3 *AssessmentRecord `json:"Q3"`
	Q4 *AssessmentRecord `json:"Q4"`
}

func (s *QuarterSlots) Slot(q Quarter) *AssessmentRecord {
	switch q {
	case Q1:
		return s.Q1
	case Q2:
		return s.Q2
	case Q3:
		return s.Q3
	case Q4:
		return s.Q4
	}
	return nil
}

func (s *QuarterSlots) SetSlot(q Quarter, r *AssessmentRecord) {
	switch q {
	case Q1:
		s.Q1 = r
	case Q2:
		s.Q2 = r
	case Q3:
		s.Q3 = r
	case Q4:
		s.Q4 = r
	}
}

// ProgressIndex 幼儿的 年 -> 季度 -> 记录 索引
// 缓存中的索引是共享的，调用方只读
type ProgressIndex map[int]*QuarterSlots

// EnsureYear 返回 year 的槽位，不存在时创建四个空槽位
func (idx ProgressIndex) EnsureYear(year int) *QuarterSlots {
	slots, ok := idx[year]
	if !ok || slots == nil {
		slots = &QuarterSlots{}
		idx[year] = slots
	}
	return slots
}

func (idx ProgressIndex) Slot(year int, q Quarter) *AssessmentRecord {
	slots, ok := idx[year]
	if !ok || slots == nil {
		return nil
	}
	return slots.Slot(q)
}

// Years 升序返回索引中的年份
func (idx ProgressIndex) Years() []int {
	years := make([]int, 0, len(idx))
	for y := range idx {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// MetricAverages 指标 -> 平均值
type MetricAverages map[MetricID]float64

// MetricSeries 单个指标的图表点，与 ChartSeries.Labels 一一对应
type MetricSeries struct {
	MetricID MetricID  `json:"metricId"`
	Points   []float64 `json:"points"`
}

// ChartSeries 某一年按季度压缩（不含空季度）的图表数据
type ChartSeries struct {
	Labels []string       `json:"labels"`
	Series []MetricSeries `json:"series"`
}

func (c ChartSeries) Empty() bool {
	return len(c.Labels) == 0
}

// Points 返回指定指标的点
func (c ChartSeries) Points(m MetricID) ([]float64, bool) {
	for _, s := range c.Series {
		if s.MetricID == m {
			return s.Points, true
		}
	}
	return nil, false
}

// Filter 只保留给定指标，按 metrics 的顺序输出
func (c ChartSeries) Filter(metrics []MetricID) ChartSeries {
	out := ChartSeries{
		Labels: c.Labels,
		Series: make([]MetricSeries, 0, len(metrics)),
	}
	for _, m := range metrics {
		if points, ok := c.Points(m); ok {
			out.Series = append(out.Series, MetricSeries{MetricID: m, Points: points})
		}
	}
	return out
}
