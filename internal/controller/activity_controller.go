package controller

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"studybuddy_backend/internal/model"
	"studybuddy_backend/internal/repository"
	"studybuddy_backend/internal/service"
	"studybuddy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ActivityController struct {
	ActivityService *service.ActivityService
	IdentityService *service.IdentityService
}

func NewActivityController(activityService *service.ActivityService, identityService *service.IdentityService) *ActivityController {
	return &ActivityController{
		ActivityService: activityService,
		IdentityService: identityService,
	}
}

type LogActivityRequest struct {
	UserID       string          `json:"userId" binding:"required"`
	ActivityType string          `json:"activityType" binding:"required"`
	Metadata     json.RawMessage `json:"metadata"`
}

// @Summary 记录用户活动
// @Description 写入一条活动流水并触发连续天数与徽章的异步重算
// @Tags 活动流水
// @Accept json
// @Produce json
// @Param activity body LogActivityRequest true "活动信息"
// @Success 201 {object} util.Response
// @Router /api/activities [post]
func (c *ActivityController) LogActivity(ctx *gin.Context) {
	var req LogActivityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	logged, err := c.ActivityService.LogActivity(req.UserID, model.ActivityType(req.ActivityType), req.Metadata)
	if err != nil {
		if errors.Is(err, util.ErrUserIDRequired) || errors.Is(err, util.ErrActivityTypeRequired) {
			util.BadRequest(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{
		"activity":   logged.Event,
		"resolvedAs": logged.Resolution.Source,
		"userKey":    logged.Resolution.Key,
	})
}

// @Summary 查询活动流水
// @Description 按用户、类型和时间范围查询活动，默认新的在前
// @Tags 活动流水
// @Produce json
// @Param userId query string true "用户标识"
// @Param type query string false "活动类型"
// @Param since query string false "起始时间 RFC3339"
// @Param days query int false "最近N天"
// @Param order query string false "排序 asc/desc" default(desc)
// @Param limit query int false "返回数量" default(50)
// @Success 200 {object} util.Response
// @Router /api/activities [get]
func (c *ActivityController) ListActivities(ctx *gin.Context) {
	rawID := ctx.Query("userId")
	if rawID == "" {
		util.BadRequest(ctx, util.ErrUserIDRequired.Error())
		return
	}
	resolution := c.IdentityService.Resolve(rawID)

	filter := repository.ActivityFilter{Limit: 50}
	if t := ctx.Query("type"); t != "" {
		filter.Types = []model.ActivityType{model.ActivityType(t)}
	}
	if s := ctx.Query("since"); s != "" {
		since, err := time.Parse(time.RFC3339, s)
		if err != nil {
			util.BadRequest(ctx, "invalid since timestamp")
			return
		}
		filter.Since = &since
	}
	if d := ctx.Query("days"); d != "" {
		if n, err := strconv.Atoi(d); err == nil && n > 0 {
			since := time.Now().UTC().AddDate(0, 0, -n)
			filter.Since = &since
		}
	}
	if ctx.Query("order") == "asc" {
		filter.Ascending = true
	}
	if l := ctx.Query("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			filter.Limit = n
		}
	}

	events, err := c.ActivityService.Query(resolution.Key, filter)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"userKey":    resolution.Key,
		"activities": events,
	})
}

// @Summary 活动统计
// @Description 最近30天的活动总量和按类型分布
// @Tags 活动流水
// @Produce json
// @Param userId path string true "用户标识"
// @Success 200 {object} util.Response
// @Router /api/users/{userId}/activities/stats [get]
func (c *ActivityController) ActivityStats(ctx *gin.Context) {
	resolution := c.IdentityService.Resolve(ctx.Param("userId"))

	stats, err := c.ActivityService.Stats(resolution.Key)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, stats)
}
