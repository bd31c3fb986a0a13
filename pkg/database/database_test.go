package database

import (
	"testing"

	"studybuddy_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// 测试库走sqlite，建表语句必须同时兼容mysql和sqlite
func TestMigrateOnSQLite(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:migrate_test?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	for _, table := range []string{"users", "user_activities", "user_streaks", "badges", "user_badges"} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}

	// 用户表能正常写入，列默认值不依赖mysql方言
	user := &model.User{Username: "mig", Email: "mig@example.com"}
	require.NoError(t, db.Create(user).Error)

	// 徽章目录已播种且幂等
	var count int64
	require.NoError(t, db.Model(&model.Badge{}).Count(&count).Error)
	assert.EqualValues(t, 21, count)

	require.NoError(t, Migrate(db))
	require.NoError(t, db.Model(&model.Badge{}).Count(&count).Error)
	assert.EqualValues(t, 21, count)
}
