package controller

import (
	"encoding/json"
	"errors"

	"studybuddy_backend/internal/service"
	"studybuddy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type BadgeController struct {
	BadgeService        *service.BadgeService
	NotificationService *service.NotificationService
	IdentityService     *service.IdentityService
}

func NewBadgeController(badgeService *service.BadgeService, notificationService *service.NotificationService, identityService *service.IdentityService) *BadgeController {
	return &BadgeController{
		BadgeService:        badgeService,
		NotificationService: notificationService,
		IdentityService:     identityService,
	}
}

// @Summary 获取用户徽章
// @Description 徽章目录和该用户的进度合并视图
// @Tags 徽章
// @Produce json
// @Param userId path string true "用户标识"
// @Success 200 {object} util.Response
// @Router /api/users/{userId}/badges [get]
func (c *BadgeController) ListBadges(ctx *gin.Context) {
	resolution := c.IdentityService.Resolve(ctx.Param("userId"))

	badges, err := c.BadgeService.ListForUser(resolution.Key)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"userKey": resolution.Key,
		"badges":  badges,
	})
}

// @Summary 评估徽章
// @Description 对全部徽章重算进度，返回新获得的徽章。单个徽章失败不影响其余
// @Tags 徽章
// @Produce json
// @Param userId path string true "用户标识"
// @Success 200 {object} util.Response
// @Router /api/users/{userId}/badges/check [post]
func (c *BadgeController) CheckBadges(ctx *gin.Context) {
	resolution := c.IdentityService.Resolve(ctx.Param("userId"))

	result, err := c.BadgeService.Evaluate(resolution.Key)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 评估单个徽章
// @Description 只重算指定徽章的进度
// @Tags 徽章
// @Produce json
// @Param id path int true "徽章ID"
// @Param userId query string true "用户标识"
// @Success 200 {object} util.Response
// @Router /api/badges/evaluate/{id} [post]
func (c *BadgeController) CheckBadge(ctx *gin.Context) {
	badgeID := util.MustParseUint(ctx.Param("id"))
	if badgeID == 0 {
		util.BadRequest(ctx, "invalid badge id")
		return
	}
	rawID := ctx.Query("userId")
	if rawID == "" {
		util.BadRequest(ctx, util.ErrUserIDRequired.Error())
		return
	}
	resolution := c.IdentityService.Resolve(rawID)

	row, err := c.BadgeService.EvaluateBadge(resolution.Key, badgeID)
	if err != nil {
		if errors.Is(err, util.ErrBadgeNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, row)
}

// @Summary 待展示的徽章通知
// @Description 已获得但尚未向用户展示过的徽章
// @Tags 徽章
// @Produce json
// @Param userId path string true "用户标识"
// @Success 200 {object} util.Response
// @Router /api/users/{userId}/badges/pending [get]
func (c *BadgeController) PendingNotifications(ctx *gin.Context) {
	resolution := c.IdentityService.Resolve(ctx.Param("userId"))

	pending, err := c.NotificationService.Pending(resolution.Key)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"pending": pending})
}

type AcknowledgeRequest struct {
	BadgeIDs []uint `json:"badgeIds" binding:"required"`
}

// @Summary 确认徽章通知
// @Description 标记徽章通知已展示，重复确认幂等
// @Tags 徽章
// @Accept json
// @Produce json
// @Param userId path string true "用户标识"
// @Param request body AcknowledgeRequest true "确认信息"
// @Success 200 {object} util.Response
// @Router /api/users/{userId}/badges/acknowledge [post]
func (c *BadgeController) AcknowledgeNotifications(ctx *gin.Context) {
	var req AcknowledgeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	resolution := c.IdentityService.Resolve(ctx.Param("userId"))

	if err := c.NotificationService.Acknowledge(resolution.Key, req.BadgeIDs); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"acknowledged": len(req.BadgeIDs)})
}

type LeaderboardAwardRequest struct {
	UserID   string          `json:"userId" binding:"required"`
	Metadata json.RawMessage `json:"metadata"`
}

// @Summary 排行榜徽章授予
// @Description 排行榜位置更新时触发的外部授予，前10%额外授予 Top Performer
// @Tags 徽章
// @Accept json
// @Produce json
// @Param request body LeaderboardAwardRequest true "排行榜信息"
// @Success 200 {object} util.Response
// @Router /api/badges/leaderboard [post]
func (c *BadgeController) LeaderboardAward(ctx *gin.Context) {
	var req LeaderboardAwardRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	resolution := c.IdentityService.Resolve(req.UserID)

	awarded, err := c.BadgeService.AwardLeaderboard(resolution.Key, req.Metadata)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"awarded": awarded})
}

type ForceAwardRequest struct {
	UserID  string `json:"userId" binding:"required"`
	BadgeID uint   `json:"badgeId" binding:"required"`
}

// @Summary 直授徽章
// @Description 运营后台绕过评估直接授予徽章
// @Tags 管理
// @Accept json
// @Produce json
// @Param request body ForceAwardRequest true "授予信息"
// @Success 200 {object} util.Response
// @Router /api/admin/badges/award [post]
func (c *BadgeController) ForceAward(ctx *gin.Context) {
	var req ForceAwardRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	resolution := c.IdentityService.Resolve(req.UserID)

	row, err := c.BadgeService.ForceAward(resolution.Key, req.BadgeID)
	if err != nil {
		if errors.Is(err, util.ErrBadgeNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, row)
}
