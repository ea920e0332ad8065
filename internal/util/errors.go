package util

import "errors"

var (
	ErrChildNotFound      = errors.New("幼儿不存在")
	ErrGroupNotFound      = errors.New("班级不存在")
	ErrRecordNotFound     = errors.New("评估记录不存在")
	ErrInvalidRecord      = errors.New("invalid assessment record")
	ErrMissingReportDate  = errors.New("assessment record has no report date")
	ErrInvalidQuarter     = errors.New("quarter must be one of Q1-Q4")
	ErrInvalidYear        = errors.New("invalid year")
	ErrInvalidMetricGroup = errors.New("metrics must be ratings or physical")
	ErrNoChartData        = errors.New("no chart data for the selected year")
	ErrStorageDisabled    = errors.New("chart storage is not configured")
)
