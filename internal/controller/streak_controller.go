package controller

import (
	"studybuddy_backend/internal/service"
	"studybuddy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type StreakController struct {
	StreakService   *service.StreakService
	IdentityService *service.IdentityService
}

func NewStreakController(streakService *service.StreakService, identityService *service.IdentityService) *StreakController {
	return &StreakController{
		StreakService:   streakService,
		IdentityService: identityService,
	}
}

// @Summary 获取连续学习状态
// @Description 当前连续天数、历史最长、今日是否已打卡、本周进度和等级
// @Tags 连续学习
// @Produce json
// @Param userId path string true "用户标识"
// @Success 200 {object} util.Response
// @Router /api/users/{userId}/streak [get]
func (c *StreakController) GetStreak(ctx *gin.Context) {
	resolution := c.IdentityService.Resolve(ctx.Param("userId"))

	summary, err := c.StreakService.GetStreak(resolution.Key)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, summary)
}

// @Summary 重算连续天数
// @Description 从活动流水全量重算连续学习天数，结果幂等
// @Tags 连续学习
// @Produce json
// @Param userId path string true "用户标识"
// @Success 200 {object} util.Response
// @Router /api/users/{userId}/streak/recompute [post]
func (c *StreakController) RecomputeStreak(ctx *gin.Context) {
	resolution := c.IdentityService.Resolve(ctx.Param("userId"))

	record, err := c.StreakService.Recompute(resolution.Key)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, record)
}
