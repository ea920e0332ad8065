package service

import (
	"io"
	"kindergarten_backend/internal/model"
	"kindergarten_backend/internal/util"

	chart "github.com/wcharczuk/go-chart/v2"
)

const (
	defaultChartWidth  = 800
	defaultChartHeight = 400

	singlePointSpread = 0.15
)

// RenderChartPNG 把 ChartSeries 画成折线图写入 w，每个指标一条线，横轴为季度标签。
// 只含评分指标时纵轴固定为 0-10，否则按数据自动留白。
func RenderChartPNG(series model.ChartSeries, title string, width, height int, w io.Writer) error {
	if series.Empty() || len(series.Series) == 0 {
		return util.ErrNoChartData
	}
	if width <= 0 {
		width = defaultChartWidth
	}
	if height <= 0 {
		height = defaultChartHeight
	}

	xs := make([]float64, len(series.Labels))
	ticks := make([]chart.Tick, len(series.Labels))
	for i, label := range series.Labels {
		xs[i] = float64(i + 1)
		ticks[i] = chart.Tick{Value: xs[i], Label: label}
	}

	// go-chart 至少需要两个不同的横坐标，只有一个季度时把点拉成一小段水平线
	lineXs := xs
	if len(xs) == 1 {
		lineXs = []float64{xs[0] - singlePointSpread, xs[0] + singlePointSpread}
	}

	lines := make([]chart.Series, 0, len(series.Series))
	for i, s := range series.Series {
		color := chart.GetDefaultColor(i)
		ys := s.Points
		if len(xs) == 1 && len(ys) == 1 {
			ys = []float64{ys[0], ys[0]}
		}
		lines = append(lines, chart.ContinuousSeries{
			Name:    string(s.MetricID),
			XValues: lineXs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: color,
				StrokeWidth: 2,
				DotColor:    color,
				DotWidth:    4,
			},
		})
	}

	graph := chart.Chart{
		Title:  title,
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: chart.XAxis{
			Range: &chart.ContinuousRange{Min: 0.5, Max: float64(len(xs)) + 0.5},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Range: yRange(series),
		},
		Series: lines,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return graph.Render(chart.PNG, w)
}

func yRange(series model.ChartSeries) *chart.ContinuousRange {
	ratingsOnly := true
	maxValue := 0.0
	for _, s := range series.Series {
		if s.MetricID == model.MetricHeight || s.MetricID == model.MetricWeight {
			ratingsOnly = false
		}
		for _, p := range s.Points {
			if p > maxValue {
				maxValue = p
			}
		}
	}

	if ratingsOnly {
		return &chart.ContinuousRange{Min: 0, Max: 10}
	}
	if maxValue <= 0 {
		maxValue = 1
	}
	return &chart.ContinuousRange{Min: 0, Max: maxValue * 1.1}
}
