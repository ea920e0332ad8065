package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"kindergarten_backend/internal/config"
	"kindergarten_backend/internal/model"
	"kindergarten_backend/internal/util"
	"kindergarten_backend/pkg/logger"
	"kindergarten_backend/pkg/monitoring"
	"kindergarten_backend/pkg/tracing"
	"math"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// RecordSource 评估记录的外部数据源（持久化层）
type RecordSource interface {
	ListRecordsByChild(ctx context.Context, childID uint) ([]model.AssessmentRecord, error)
	ListChildIDsByGroup(ctx context.Context, groupID uint) ([]uint, error)
	ListGroups(ctx context.Context) ([]model.Group, error)
	// SaveRecord ID 为 0 时新建，否则更新
	SaveRecord(ctx context.Context, rec *model.AssessmentRecord) error
}

// FetchError 从数据源读取失败
type FetchError struct {
	ChildID uint
	GroupID uint
	Err     error
}

func (e *FetchError) Error() string {
	switch {
	case e.ChildID != 0:
		return fmt.Sprintf("读取幼儿 %d 的评估记录失败: %v", e.ChildID, e.Err)
	case e.GroupID != 0:
		return fmt.Sprintf("读取班级 %d 的幼儿名单失败: %v", e.GroupID, e.Err)
	}
	return fmt.Sprintf("读取班级列表失败: %v", e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

const defaultFetchConcurrency = 8

type ProgressService struct {
	Source      RecordSource
	Cache       ProgressCache
	Storage     *StorageService
	Selections  *SelectionTracker
	ChartWidth  int
	ChartHeight int

	flight      singleflight.Group
	concurrency atomic.Int64

	// 每次失效递增，读取期间发生失效时结果不写入缓存
	genMu       sync.Mutex
	generations map[uint]uint64
}

func NewProgressService(source RecordSource, cache ProgressCache, storage *StorageService, cfg *config.ProgressConfig) *ProgressService {
	s := &ProgressService{
		Source:      source,
		Cache:       cache,
		Storage:     storage,
		Selections:  NewSelectionTracker(),
		ChartWidth:  cfg.ChartWidth,
		ChartHeight: cfg.ChartHeight,
		generations: make(map[uint]uint64),
	}
	s.SetFetchConcurrency(cfg.FetchConcurrency)
	return s
}

// SetFetchConcurrency 配置热更新时调用
func (s *ProgressService) SetFetchConcurrency(n int) {
	if n <= 0 {
		n = defaultFetchConcurrency
	}
	s.concurrency.Store(int64(n))
}

func (s *ProgressService) FetchConcurrency() int {
	return int(s.concurrency.Load())
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracing.Tracer.Start(ctx, "ProgressService."+name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func flightKey(childID uint) string {
	return strconv.FormatUint(uint64(childID), 10)
}

func (s *ProgressService) generation(childID uint) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.generations[childID]
}

// GetIndex 返回幼儿的索引；未命中缓存时读取数据源并折叠，
// 同一幼儿的并发未命中只会读取一次。
func (s *ProgressService) GetIndex(ctx context.Context, childID uint) (model.ProgressIndex, error) {
	if idx, ok := s.Cache.Get(ctx, childID); ok {
		monitoring.ProgressCacheRequests.WithLabelValues("hit").Inc()
		return idx, nil
	}
	monitoring.ProgressCacheRequests.WithLabelValues("miss").Inc()

	v, err, _ := s.flight.Do(flightKey(childID), func() (interface{}, error) {
		return s.fetchAndWarm(ctx, childID)
	})
	if err != nil {
		// 共享的读取被其他调用方取消，而本调用方仍然有效
		if errors.Is(err, context.Canceled) && ctx.Err() == nil {
			return s.fetchAndWarm(ctx, childID)
		}
		return nil, err
	}
	return v.(model.ProgressIndex), nil
}

func (s *ProgressService) fetchAndWarm(ctx context.Context, childID uint) (model.ProgressIndex, error) {
	gen := s.generation(childID)

	records, err := s.Source.ListRecordsByChild(ctx, childID)
	if err != nil {
		return nil, &FetchError{ChildID: childID, Err: err}
	}

	idx := BuildIndex(records)

	if err := ctx.Err(); err != nil {
		monitoring.ProgressStaleDiscards.Inc()
		logger.Log.Debug("discard progress fetch of a superseded selection", zap.Uint("childId", childID))
		return nil, err
	}
	if gen != s.generation(childID) {
		monitoring.ProgressStaleDiscards.Inc()
		logger.Log.Debug("progress index invalidated while fetching, not caching", zap.Uint("childId", childID))
		return idx, nil
	}

	s.Cache.Put(ctx, childID, idx)
	// 写入期间发生了失效，撤回这次写入
	if gen != s.generation(childID) {
		monitoring.ProgressStaleDiscards.Inc()
		s.Cache.Invalidate(ctx, childID)
	}
	return idx, nil
}

// Warm 用调用方已读取的记录构建索引并写入缓存
func (s *ProgressService) Warm(ctx context.Context, childID uint, records []model.AssessmentRecord) model.ProgressIndex {
	idx := BuildIndex(records)
	s.Cache.Put(ctx, childID, idx)
	return idx
}

// Invalidate 丢弃幼儿的缓存索引，正在进行的读取结果也不会再写入。
// 必须先递增代数再删除缓存，fetchAndWarm 依赖这个顺序撤回过期写入。
func (s *ProgressService) Invalidate(ctx context.Context, childID uint) {
	s.genMu.Lock()
	s.generations[childID]++
	s.genMu.Unlock()

	s.flight.Forget(flightKey(childID))
	s.Cache.Invalidate(ctx, childID)
}

// Reload 强制重新读取并构建幼儿索引
func (s *ProgressService) Reload(ctx context.Context, childID uint) (model.ProgressIndex, error) {
	s.Invalidate(ctx, childID)
	return s.GetIndex(ctx, childID)
}

// loadIndexes 并发加载多个幼儿的索引。单个幼儿读取失败只记录日志，
// 该幼儿不参与后续统计；context 被取消时整体返回错误。
func (s *ProgressService) loadIndexes(ctx context.Context, childIDs []uint) ([]model.ProgressIndex, error) {
	var (
		mu      sync.Mutex
		indexes = make([]model.ProgressIndex, 0, len(childIDs))
		g       errgroup.Group
	)
	g.SetLimit(s.FetchConcurrency())

	for _, childID := range childIDs {
		g.Go(func() error {
			idx, err := s.GetIndex(ctx, childID)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				monitoring.ProgressFetchFailures.Inc()
				logger.Log.Warn("child progress left out of aggregate", zap.Uint("childId", childID), zap.Error(err))
				return nil
			}
			mu.Lock()
			indexes = append(indexes, idx)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return indexes, nil
}

func (s *ProgressService) groupIndexes(ctx context.Context, groupID uint) ([]model.ProgressIndex, error) {
	start := time.Now()
	defer func() {
		monitoring.ProgressLoadDuration.WithLabelValues("group").Observe(time.Since(start).Seconds())
	}()

	childIDs, err := s.Source.ListChildIDsByGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, util.ErrGroupNotFound) {
			return nil, err
		}
		return nil, &FetchError{GroupID: groupID, Err: err}
	}
	return s.loadIndexes(ctx, childIDs)
}

func (s *ProgressService) orgIndexes(ctx context.Context) ([]model.ProgressIndex, error) {
	start := time.Now()
	defer func() {
		monitoring.ProgressLoadDuration.WithLabelValues("org").Observe(time.Since(start).Seconds())
	}()

	groups, err := s.Source.ListGroups(ctx)
	if err != nil {
		return nil, &FetchError{Err: err}
	}

	seen := make(map[uint]bool)
	var childIDs []uint
	for _, g := range groups {
		ids, err := s.Source.ListChildIDsByGroup(ctx, g.ID)
		if err != nil {
			return nil, &FetchError{GroupID: g.ID, Err: err}
		}
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				childIDs = append(childIDs, id)
			}
		}
	}
	return s.loadIndexes(ctx, childIDs)
}

// GetChildIndex 返回幼儿的完整索引，用于年份选择
func (s *ProgressService) GetChildIndex(ctx context.Context, childID uint) (model.ProgressIndex, error) {
	ctx, span := startSpan(ctx, "GetChildIndex", attribute.Int("child.id", int(childID)))
	idx, err := s.GetIndex(ctx, childID)
	endSpan(span, err)
	return idx, err
}

// GetChildProgress 幼儿某一年的图表数据
func (s *ProgressService) GetChildProgress(ctx context.Context, childID uint, year int) (model.ChartSeries, error) {
	ctx, span := startSpan(ctx, "GetChildProgress",
		attribute.Int("child.id", int(childID)),
		attribute.Int("year", year),
	)
	idx, err := s.GetIndex(ctx, childID)
	endSpan(span, err)
	if err != nil {
		return model.ChartSeries{}, err
	}
	return BuildSeries(idx, year), nil
}

// GetGroupAverages 班级在 (year, quarter) 的各项指标平均值
func (s *ProgressService) GetGroupAverages(ctx context.Context, groupID uint, year int, quarter model.Quarter) (model.MetricAverages, error) {
	if !quarter.Valid() {
		return nil, util.ErrInvalidQuarter
	}
	ctx, span := startSpan(ctx, "GetGroupAverages",
		attribute.Int("group.id", int(groupID)),
		attribute.Int("year", year),
		attribute.String("quarter", quarter.String()),
	)
	indexes, err := s.groupIndexes(ctx, groupID)
	endSpan(span, err)
	if err != nil {
		return nil, err
	}
	return AverageAll(SlotRecords(indexes, year, quarter)), nil
}

// GetOrgAverages 全园在 (year, quarter) 的各项指标平均值，每个幼儿权重相同
func (s *ProgressService) GetOrgAverages(ctx context.Context, year int, quarter model.Quarter) (model.MetricAverages, error) {
	if !quarter.Valid() {
		return nil, util.ErrInvalidQuarter
	}
	ctx, span := startSpan(ctx, "GetOrgAverages",
		attribute.Int("year", year),
		attribute.String("quarter", quarter.String()),
	)
	indexes, err := s.orgIndexes(ctx)
	endSpan(span, err)
	if err != nil {
		return nil, err
	}
	return AverageAll(SlotRecords(indexes, year, quarter)), nil
}

// GetGroupProgress 班级某一年按季度的平均值图表
func (s *ProgressService) GetGroupProgress(ctx context.Context, groupID uint, year int) (model.ChartSeries, error) {
	ctx, span := startSpan(ctx, "GetGroupProgress",
		attribute.Int("group.id", int(groupID)),
		attribute.Int("year", year),
	)
	indexes, err := s.groupIndexes(ctx, groupID)
	endSpan(span, err)
	if err != nil {
		return model.ChartSeries{}, err
	}
	return BuildSeries(AggregateIndex(indexes, year), year), nil
}

// GetOrgProgress 全园某一年按季度的平均值图表
func (s *ProgressService) GetOrgProgress(ctx context.Context, year int) (model.ChartSeries, error) {
	ctx, span := startSpan(ctx, "GetOrgProgress", attribute.Int("year", year))
	indexes, err := s.orgIndexes(ctx)
	endSpan(span, err)
	if err != nil {
		return model.ChartSeries{}, err
	}
	return BuildSeries(AggregateIndex(indexes, year), year), nil
}

func (s *ProgressService) ListGroups(ctx context.Context) ([]model.Group, error) {
	groups, err := s.Source.ListGroups(ctx)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	return groups, nil
}

// SaveRecordRequest 新建或更新评估记录
type SaveRecordRequest struct {
	ID                   uint    `json:"id"`
	ChildID              uint    `json:"childId" binding:"required"`
	ReportDate           string  `json:"reportDate" binding:"required"` // 2006-01-02
	ActiveSpeech         float64 `json:"activeSpeech" binding:"gte=0,lte=10"`
	PlayActivity         float64 `json:"playActivity" binding:"gte=0,lte=10"`
	ArtActivity          float64 `json:"artActivity" binding:"gte=0,lte=10"`
	ConstructiveActivity float64 `json:"constructiveActivity" binding:"gte=0,lte=10"`
	SensoryDevelopment   float64 `json:"sensoryDevelopment" binding:"gte=0,lte=10"`
	MovementSkills       float64 `json:"movementSkills" binding:"gte=0,lte=10"`
	Height               float64 `json:"height" binding:"gte=0,lte=200"`
	Weight               float64 `json:"weight" binding:"gte=0,lte=100"`
	Notes                string  `json:"notes"`
}

func (r SaveRecordRequest) ToModel() (*model.AssessmentRecord, error) {
	date, err := util.ParseDate(r.ReportDate)
	if err != nil {
		return nil, fmt.Errorf("%w: reportDate must use %s", util.ErrInvalidRecord, util.DateFormat)
	}

	rec := &model.AssessmentRecord{
		ChildID:              r.ChildID,
		ReportDate:           &date,
		ActiveSpeech:         r.ActiveSpeech,
		PlayActivity:         r.PlayActivity,
		ArtActivity:          r.ArtActivity,
		ConstructiveActivity: r.ConstructiveActivity,
		SensoryDevelopment:   r.SensoryDevelopment,
		MovementSkills:       r.MovementSkills,
		Height:               r.Height,
		Weight:               r.Weight,
		Notes:                r.Notes,
	}
	rec.ID = r.ID
	return rec, nil
}

// ValidateRecord 检查日期存在以及各指标在允许范围内
func ValidateRecord(rec *model.AssessmentRecord) error {
	if rec.ChildID == 0 {
		return fmt.Errorf("%w: childId is required", util.ErrInvalidRecord)
	}
	if rec.ReportDate == nil || rec.ReportDate.IsZero() {
		return util.ErrMissingReportDate
	}
	for _, m := range model.AllMetrics {
		v := rec.Metric(m)
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > m.Max() {
			return fmt.Errorf("%w: %s must be within [0, %g]", util.ErrInvalidRecord, m, m.Max())
		}
	}
	return nil
}

// SaveRecord 保存记录后让该幼儿的缓存失效并立即重建
func (s *ProgressService) SaveRecord(ctx context.Context, rec *model.AssessmentRecord) (*model.AssessmentRecord, error) {
	if err := ValidateRecord(rec); err != nil {
		return nil, err
	}

	ctx, span := startSpan(ctx, "SaveRecord", attribute.Int("child.id", int(rec.ChildID)))
	err := s.Source.SaveRecord(ctx, rec)
	endSpan(span, err)
	if err != nil {
		return nil, err
	}

	s.Invalidate(ctx, rec.ChildID)
	if _, err := s.GetIndex(ctx, rec.ChildID); err != nil {
		logger.Log.Warn("rebuild progress index after save failed", zap.Uint("childId", rec.ChildID), zap.Error(err))
	}
	return rec, nil
}

// RenderChildChart 把幼儿某一年的图表以 PNG 写入 w，group 为 ratings / physical / 空（全部）
func (s *ProgressService) RenderChildChart(ctx context.Context, childID uint, year int, group string, w io.Writer) error {
	metrics, ok := model.MetricsForGroup(group)
	if !ok {
		return util.ErrInvalidMetricGroup
	}

	series, err := s.GetChildProgress(ctx, childID, year)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("Child %d - %d", childID, year)
	if group != "" {
		title += " (" + group + ")"
	}
	return RenderChartPNG(series.Filter(metrics), title, s.ChartWidth, s.ChartHeight, w)
}

// ExportChildChart 渲染图表并上传到存储，返回访问地址
func (s *ProgressService) ExportChildChart(ctx context.Context, childID uint, year int, group string) (string, error) {
	if s.Storage == nil || s.Storage.Provider == nil {
		return "", util.ErrStorageDisabled
	}

	var buf bytes.Buffer
	if err := s.RenderChildChart(ctx, childID, year, group, &buf); err != nil {
		return "", err
	}

	name := group
	if name == "" {
		name = "all"
	}
	filename := fmt.Sprintf("charts/child-%d/%d-%s-%s.png", childID, year, name, timeNow().Format("20060102150405"))
	size := int64(buf.Len())

	return s.Storage.Provider.Upload(ctx, filename, &buf, size, util.MimePNG)
}
