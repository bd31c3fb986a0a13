package model

import (
	"time"
)

// Badge 徽章目录，静态数据，启动时播种
// swagger:model Badge
type Badge struct {
	BaseModel
	Name        string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`
	ImageURL    string `gorm:"size:255" json:"imageUrl"`
	Category    string `gorm:"size:50" json:"category"`
}

func (Badge) TableName() string {
	return "badges"
}

// UserBadge 用户获取徽章的进度，(user_key, badge_id) 唯一
// swagger:model UserBadge
type UserBadge struct {
	BaseModel
	UserKey string `gorm:"size:36;uniqueIndex:idx_user_badge;not null" json:"userKey"`
	BadgeID uint   `gorm:"uniqueIndex:idx_user_badge;type:bigint unsigned;not null" json:"badgeId"`
	// 0-100，正常评估下单调不减
	Progress int  `gorm:"default:0" json:"progress"`
	IsEarned bool `gorm:"default:false" json:"isEarned"`
	// 首次达成时写入，之后不再变更
	EarnedAt          *time.Time `json:"earnedAt,omitempty"`
	NotificationShown bool       `gorm:"default:false" json:"notificationShown"`

	Badge Badge `gorm:"foreignKey:BadgeID" json:"badge,omitempty"`
}

func (UserBadge) TableName() string {
	return "user_badges"
}
