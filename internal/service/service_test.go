package service

import (
	"fmt"
	"os"
	"testing"
	"time"

	"studybuddy_backend/internal/model"
	"studybuddy_backend/internal/repository"
	"studybuddy_backend/pkg/database"
	"studybuddy_backend/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

var testDBCounter int

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDBCounter++
	dsn := fmt.Sprintf("file:svc_test_%d_%s?mode=memory&cache=shared", testDBCounter, t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func createUser(t *testing.T, db *gorm.DB, username, email string) *model.User {
	t.Helper()
	user := &model.User{Username: username, Email: email, Name: username}
	require.NoError(t, db.Create(user).Error)
	return user
}

// 写入一条 daysAgo 天前的活动事件
func createEvent(t *testing.T, db *gorm.DB, userKey string, activityType model.ActivityType, daysAgo int) {
	t.Helper()
	event := &model.ActivityEvent{
		UserKey:      userKey,
		ActivityType: activityType,
		Timestamp:    time.Now().UTC().AddDate(0, 0, -daysAgo),
	}
	require.NoError(t, db.Create(event).Error)
}

func newStreakServiceForTest(t *testing.T, db *gorm.DB) *StreakService {
	t.Helper()
	return NewStreakService(
		repository.NewStreakRepository(db),
		repository.NewActivityRepository(db),
		newTestRedis(t),
		30,
		time.Minute,
	)
}

func newBadgeServiceForTest(db *gorm.DB) *BadgeService {
	return NewBadgeService(
		repository.NewBadgeRepository(db),
		repository.NewActivityRepository(db),
		repository.NewStreakRepository(db),
	)
}
