package model

import (
	"time"
)

// UserStreak 每个用户一行的连续学习天数记录，只由重算流程更新
// swagger:model UserStreak
type UserStreak struct {
	BaseModel
	UserKey       string `gorm:"size:36;uniqueIndex;not null" json:"userKey"`
	CurrentStreak int    `gorm:"default:0" json:"currentStreak"`
	LongestStreak int    `gorm:"default:0" json:"longestStreak"`
	// 最近一次符合条件活动的UTC日历日，无活动时为空
	LastActivityDay *time.Time `json:"lastActivityDay,omitempty"`
}

func (UserStreak) TableName() string {
	return "user_streaks"
}
