package repository

import (
	"studybuddy_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StreakRepository struct {
	DB *gorm.DB
}

func NewStreakRepository(db *gorm.DB) *StreakRepository {
	return &StreakRepository{DB: db}
}

func (r *StreakRepository) FindByUserKey(userKey string) (*model.UserStreak, error) {
	var streak model.UserStreak
	err := r.DB.Where("user_key = ?", userKey).First(&streak).Error
	if err != nil {
		return nil, err
	}
	return &streak, nil
}

// Upsert 写入或更新，保证每个用户只有一行
func (r *StreakRepository) Upsert(streak *model.UserStreak) error {
	if streak.ID != 0 {
		return r.DB.Model(&model.UserStreak{}).
			Where("id = ?", streak.ID).
			Updates(map[string]interface{}{
				"current_streak":    streak.CurrentStreak,
				"longest_streak":    streak.LongestStreak,
				"last_activity_day": streak.LastActivityDay,
			}).Error
	}
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"current_streak",
			"longest_streak",
			"last_activity_day",
			"updated_at",
		}),
	}).Create(streak).Error
}
