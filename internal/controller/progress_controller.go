package controller

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"kindergarten_backend/internal/model"
	"kindergarten_backend/internal/service"
	"kindergarten_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// ChildIndexResponse 幼儿有记录的年份及完整索引
type ChildIndexResponse struct {
	ChildID uint                `json:"childId"`
	Years   []int               `json:"years"`
	Index   model.ProgressIndex `json:"index"`
}

// AveragesResponse 某季度的指标平均值
type AveragesResponse struct {
	Year     int                  `json:"year"`
	Quarter  string               `json:"quarter"`
	Averages model.MetricAverages `json:"averages"`
}

func writeProgressError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrInvalidQuarter),
		errors.Is(err, util.ErrInvalidYear),
		errors.Is(err, util.ErrInvalidRecord),
		errors.Is(err, util.ErrMissingReportDate),
		errors.Is(err, util.ErrInvalidMetricGroup):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrChildNotFound),
		errors.Is(err, util.ErrGroupNotFound),
		errors.Is(err, util.ErrRecordNotFound),
		errors.Is(err, util.ErrNoChartData):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrStorageDisabled):
		util.Error(ctx, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, context.Canceled):
		// 同一视图已经开始了新的选择
		util.Error(ctx, http.StatusConflict, "selection superseded")
	default:
		var fetchErr *service.FetchError
		if errors.As(err, &fetchErr) {
			util.FetchFailed(ctx, err)
			return
		}
		util.LogInternalError(ctx, err)
	}
}

func parseChildID(ctx *gin.Context) (uint, bool) {
	id := util.MustParseUint(ctx.Param("childId"))
	if id == 0 {
		util.BadRequest(ctx, "invalid child id")
		return 0, false
	}
	return id, true
}

func parseYearQuarter(ctx *gin.Context) (int, model.Quarter, bool) {
	year, err := util.ParseYear(ctx.Query("year"))
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return 0, 0, false
	}
	q, ok := model.ParseQuarter(ctx.Query("quarter"))
	if !ok {
		util.BadRequest(ctx, util.ErrInvalidQuarter.Error())
		return 0, 0, false
	}
	return year, q, true
}

// @Summary 班级列表
// @Tags 发展评估
// @Produce json
// @Success 200 {object} util.Response
// @Router /progress/groups [get]
func (c *ProgressController) ListGroups(ctx *gin.Context) {
	groups, err := c.ProgressService.ListGroups(ctx.Request.Context())
	if err != nil {
		writeProgressError(ctx, err)
		return
	}
	util.Success(ctx, groups)
}

// @Summary 幼儿评估索引
// @Description 按年份、季度整理的全部评估记录，用于年份选择
// @Tags 发展评估
// @Produce json
// @Param childId path int true "幼儿ID"
// @Success 200 {object} util.Response{data=ChildIndexResponse}
// @Router /progress/children/{childId}/index [get]
func (c *ProgressController) GetChildIndex(ctx *gin.Context) {
	childID, ok := parseChildID(ctx)
	if !ok {
		return
	}

	idx, err := c.ProgressService.GetChildIndex(ctx.Request.Context(), childID)
	if err != nil {
		writeProgressError(ctx, err)
		return
	}
	util.Success(ctx, ChildIndexResponse{ChildID: childID, Years: idx.Years(), Index: idx})
}

// @Summary 幼儿年度发展曲线
// @Tags 发展评估
// @Produce json
// @Param childId path int true "幼儿ID"
// @Param year query int false "年份，默认今年"
// @Success 200 {object} util.Response{data=model.ChartSeries}
// @Router /progress/children/{childId} [get]
func (c *ProgressController) GetChildProgress(ctx *gin.Context) {
	childID, ok := parseChildID(ctx)
	if !ok {
		return
	}
	year, err := util.ParseYear(ctx.Query("year"))
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	series, err := c.ProgressService.GetChildProgress(ctx.Request.Context(), childID, year)
	if err != nil {
		writeProgressError(ctx, err)
		return
	}
	util.Success(ctx, service.RoundSeries(series))
}

// @Summary 幼儿年度发展曲线图
// @Tags 发展评估
// @Produce png
// @Param childId path int true "幼儿ID"
// @Param year query int false "年份，默认今年"
// @Param metrics query string false "ratings 或 physical，默认全部"
// @Success 200 {file} binary
// @Router /progress/children/{childId}/chart.png [get]
func (c *ProgressController) GetChildChart(ctx *gin.Context) {
	childID, ok := parseChildID(ctx)
	if !ok {
		return
	}
	year, err := util.ParseYear(ctx.Query("year"))
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	var buf bytes.Buffer
	err = c.ProgressService.RenderChildChart(ctx.Request.Context(), childID, year, ctx.Query("metrics"), &buf)
	if err != nil {
		writeProgressError(ctx, err)
		return
	}
	ctx.Data(http.StatusOK, util.MimePNG, buf.Bytes())
}

// @Summary 导出幼儿发展曲线图
// @Tags 发展评估
// @Produce json
// @Param childId path int true "幼儿ID"
// @Param year query int false "年份，默认今年"
// @Param metrics query string false "ratings 或 physical，默认全部"
// @Success 201 {object} util.Response
// @Router /progress/children/{childId}/chart/export [post]
func (c *ProgressController) ExportChildChart(ctx *gin.Context) {
	childID, ok := parseChildID(ctx)
	if !ok {
		return
	}
	year, err := util.ParseYear(ctx.Query("year"))
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	url, err := c.ProgressService.ExportChildChart(ctx.Request.Context(), childID, year, ctx.Query("metrics"))
	if err != nil {
		writeProgressError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"url": url})
}

// @Summary 重新加载幼儿评估数据
// @Tags 发展评估
// @Produce json
// @Param childId path int true "幼儿ID"
// @Success 200 {object} util.Response{data=ChildIndexResponse}
// @Router /progress/children/{childId}/reload [post]
func (c *ProgressController) ReloadChild(ctx *gin.Context) {
	childID, ok := parseChildID(ctx)
	if !ok {
		return
	}

	idx, err := c.ProgressService.Reload(ctx.Request.Context(), childID)
	if err != nil {
		writeProgressError(ctx, err)
		return
	}
	util.Success(ctx, ChildIndexResponse{ChildID: childID, Years: idx.Years(), Index: idx})
}

// @Summary 保存评估记录
// @Description id 为空时新建，否则更新
// @Tags 发展评估
// @Accept json
// @Produce json
// @Param record body service.SaveRecordRequest true "评估记录"
// @Success 200 {object} util.Response{data=model.AssessmentRecord}
// @Router /progress/records [post]
func (c *ProgressController) SaveRecord(ctx *gin.Context) {
	var req service.SaveRecordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	rec, err := req.ToModel()
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	created := rec.ID == 0
	saved, err := c.ProgressService.SaveRecord(ctx.Request.Context(), rec)
	if err != nil {
		writeProgressError(ctx, err)
		return
	}
	if created {
		util.Created(ctx, saved)
		return
	}
	util.Success(ctx, saved)
}

// @Summary 班级季度平均值
// @Tags 发展评估
// @Produce json
// @Param groupId path int true "班级ID"
// @Param year query int false "年份，默认今年"
// @Param quarter query string true "Q1-Q4"
// @Success 200 {object} util.Response{data=AveragesResponse}
// @Router /progress/groups/{groupId}/averages [get]
func (c *ProgressController) GetGroupAverages(ctx *gin.Context) {
	groupID := util.MustParseUint(ctx.Param("groupId"))
	if groupID == 0 {
		util.BadRequest(ctx, "invalid group id")
		return
	}
	year, q, ok := parseYearQuarter(ctx)
	if !ok {
		return
	}

	averages, err := c.ProgressService.GetGroupAverages(ctx.Request.Context(), groupID, year, q)
	if err != nil {
		writeProgressError(ctx, err)
		return
	}
	util.Success(ctx, AveragesResponse{Year: year, Quarter: q.String(), Averages: service.RoundAverages(averages)})
}

// @Summary 班级年度平均发展曲线
// @Tags 发展评估
// @Produce json
// @Param groupId path int true "班级ID"
// @Param year query int false "年份，默认今年"
// @Success 200 {object} util.Response{data=model.ChartSeries}
// @Router /progress/groups/{groupId} [get]
func (c *ProgressController) GetGroupProgress(ctx *gin.Context) {
	groupID := util.MustParseUint(ctx.Param("groupId"))
	if groupID == 0 {
		util.BadRequest(ctx, "invalid group id")
		return
	}
	year, err := util.ParseYear(ctx.Query("year"))
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	series, err := c.ProgressService.GetGroupProgress(ctx.Request.Context(), groupID, year)
	if err != nil {
		writeProgressError(ctx, err)
		return
	}
	util.Success(ctx, service.RoundSeries(series))
}

// @Summary 全园季度平均值
// @Tags 发展评估
// @Produce json
// @Param year query int false "年份，默认今年"
// @Param quarter query string true "Q1-Q4"
// @Success 200 {object} util.Response{data=AveragesResponse}
// @Router /progress/org/averages [get]
func (c *ProgressController) GetOrgAverages(ctx *gin.Context) {
	year, q, ok := parseYearQuarter(ctx)
	if !ok {
		return
	}

	averages, err := c.ProgressService.GetOrgAverages(ctx.Request.Context(), year, q)
	if err != nil {
		writeProgressError(ctx, err)
		return
	}
	util.Success(ctx, AveragesResponse{Year: year, Quarter: q.String(), Averages: service.RoundAverages(averages)})
}

// @Summary 全园年度平均发展曲线
// @Tags 发展评估
// @Produce json
// @Param year query int false "年份，默认今年"
// @Success 200 {object} util.Response{data=model.ChartSeries}
// @Router /progress/org [get]
func (c *ProgressController) GetOrgProgress(ctx *gin.Context) {
	year, err := util.ParseYear(ctx.Query("year"))
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	series, err := c.ProgressService.GetOrgProgress(ctx.Request.Context(), year)
	if err != nil {
		writeProgressError(ctx, err)
		return
	}
	util.Success(ctx, service.RoundSeries(series))
}
