package service

import (
	"studybuddy_backend/internal/model"
	"studybuddy_backend/internal/repository"
	"studybuddy_backend/pkg/logger"

	"go.uber.org/zap"
)

// NotificationService 徽章获得后的弹窗队列。
// 每条获得记录最多展示一次，确认后不再出现
type NotificationService struct {
	BadgeRepo *repository.BadgeRepository
}

func NewNotificationService(badgeRepo *repository.BadgeRepository) *NotificationService {
	return &NotificationService{BadgeRepo: badgeRepo}
}

// Pending 已获得且尚未展示过的徽章，按获得时间排序
func (s *NotificationService) Pending(userKey string) ([]model.UserBadge, error) {
	return s.BadgeRepo.FindPending(userKey)
}

// Acknowledge 标记已展示。重复确认和确认未获得的徽章都静默成功，
// 前端重试不会产生错误
func (s *NotificationService) Acknowledge(userKey string, badgeIDs []uint) error {
	if len(badgeIDs) == 0 {
		return nil
	}
	if err := s.BadgeRepo.MarkShown(userKey, badgeIDs); err != nil {
		logger.Log.Error("failed to acknowledge badge notifications",
			zap.String("userKey", userKey),
			zap.Int("count", len(badgeIDs)),
			zap.Error(err))
		return err
	}
	return nil
}
