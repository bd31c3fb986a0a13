package repository

import (
	"studybuddy_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type ActivityRepository struct {
	DB *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{DB: db}
}

// ActivityFilter 读路径的过滤条件，零值表示不过滤
type ActivityFilter struct {
	Types     []model.ActivityType
	Since     *time.Time
	Until     *time.Time
	Limit     int
	Ascending bool
}

func (r *ActivityRepository) Create(event *model.ActivityEvent) error {
	return r.DB.Create(event).Error
}

func (r *ActivityRepository) FindByUser(userKey string, filter ActivityFilter) ([]model.ActivityEvent, error) {
	query := r.DB.Where("user_key = ?", userKey)

	if len(filter.Types) > 0 {
		query = query.Where("activity_type IN ?", filter.Types)
	}
	if filter.Since != nil {
		query = query.Where("timestamp >= ?", *filter.Since)
	}
	if filter.Until != nil {
		query = query.Where("timestamp < ?", *filter.Until)
	}

	order := "timestamp DESC"
	if filter.Ascending {
		order = "timestamp ASC"
	}
	query = query.Order(order)

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var events []model.ActivityEvent
	if err := query.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *ActivityRepository) CountByUserAndTypes(userKey string, types []model.ActivityType, since *time.Time) (int64, error) {
	query := r.DB.Model(&model.ActivityEvent{}).
		Where("user_key = ? AND activity_type IN ?", userKey, types)
	if since != nil {
		query = query.Where("timestamp >= ?", *since)
	}

	var count int64
	err := query.Count(&count).Error
	return count, err
}

// CountsByType 按类型聚合某用户自since以来的事件数
func (r *ActivityRepository) CountsByType(userKey string, since time.Time) (map[model.ActivityType]int64, error) {
	type row struct {
		ActivityType model.ActivityType
		Total        int64
	}

	var rows []row
	err := r.DB.Model(&model.ActivityEvent{}).
		Select("activity_type, COUNT(*) as total").
		Where("user_key = ? AND timestamp >= ?", userKey, since).
		Group("activity_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[model.ActivityType]int64, len(rows))
	for _, r := range rows {
		counts[r.ActivityType] = r.Total
	}
	return counts, nil
}
