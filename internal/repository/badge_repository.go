package repository

import (
	"studybuddy_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BadgeRepository struct {
	DB *gorm.DB
}

func NewBadgeRepository(db *gorm.DB) *BadgeRepository {
	return &BadgeRepository{DB: db}
}

func (r *BadgeRepository) FindAll() ([]model.Badge, error) {
	var badges []model.Badge
	err := r.DB.Order("id asc").Find(&badges).Error
	if err != nil {
		return nil, err
	}
	return badges, nil
}

func (r *BadgeRepository) FindByID(badgeID uint) (*model.Badge, error) {
	var badge model.Badge
	err := r.DB.First(&badge, badgeID).Error
	if err != nil {
		return nil, err
	}
	return &badge, nil
}

func (r *BadgeRepository) FindByName(name string) (*model.Badge, error) {
	var badge model.Badge
	err := r.DB.Where("name = ?", name).First(&badge).Error
	if err != nil {
		return nil, err
	}
	return &badge, nil
}

func (r *BadgeRepository) FindUserBadges(userKey string) ([]model.UserBadge, error) {
	var userBadges []model.UserBadge
	err := r.DB.Preload("Badge").
		Where("user_key = ?", userKey).
		Find(&userBadges).Error
	if err != nil {
		return nil, err
	}
	return userBadges, nil
}

func (r *BadgeRepository) FindUserBadge(userKey string, badgeID uint) (*model.UserBadge, error) {
	var userBadge model.UserBadge
	err := r.DB.Where("user_key = ? AND badge_id = ?", userKey, badgeID).First(&userBadge).Error
	if err != nil {
		return nil, err
	}
	return &userBadge, nil
}

// Upsert 写入或更新进度行。notification_shown 不在更新列里，
// 评估流程不允许碰已有的通知状态
func (r *BadgeRepository) Upsert(userBadge *model.UserBadge) error {
	if userBadge.ID != 0 {
		return r.DB.Model(&model.UserBadge{}).
			Where("id = ?", userBadge.ID).
			Updates(map[string]interface{}{
				"progress":  userBadge.Progress,
				"is_earned": userBadge.IsEarned,
				"earned_at": userBadge.EarnedAt,
			}).Error
	}
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_key"}, {Name: "badge_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"progress",
			"is_earned",
			"earned_at",
			"updated_at",
		}),
	}).Create(userBadge).Error
}

func (r *BadgeRepository) CountEarned(userKey string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.UserBadge{}).
		Where("user_key = ? AND is_earned = ?", userKey, true).
		Count(&count).Error
	return count, err
}

// FindPending 已获得但尚未展示通知的徽章
func (r *BadgeRepository) FindPending(userKey string) ([]model.UserBadge, error) {
	var userBadges []model.UserBadge
	err := r.DB.Preload("Badge").
		Where("user_key = ? AND is_earned = ? AND notification_shown = ?", userKey, true, false).
		Order("earned_at asc").
		Find(&userBadges).Error
	if err != nil {
		return nil, err
	}
	return userBadges, nil
}

// MarkShown 幂等：重复确认已展示的徽章不报错也不改变状态
func (r *BadgeRepository) MarkShown(userKey string, badgeIDs []uint) error {
	if len(badgeIDs) == 0 {
		return nil
	}
	return r.DB.Model(&model.UserBadge{}).
		Where("user_key = ? AND badge_id IN ?", userKey, badgeIDs).
		Update("notification_shown", true).Error
}
