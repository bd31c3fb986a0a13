package model

import (
	"time"
)

// SentinelUserKey 身份解析失败时使用的全零兜底键
const SentinelUserKey = "00000000-0000-0000-0000-000000000000"

// swagger:model User
type User struct {
	UUIDBase
	Username string `gorm:"size:100;uniqueIndex;not null" json:"username"`
	Email    string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Name     string `gorm:"size:100" json:"name"`
	// 旧系统的自增数字ID，迁移用户才有
	LegacyID  *int64    `gorm:"uniqueIndex" json:"legacyId,omitempty"`
	XP        int       `gorm:"default:0" json:"xp"`
	Disabled  bool      `gorm:"default:false" json:"disabled"`
	LastLogin time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"lastLogin"`
	LastSeen  time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}
