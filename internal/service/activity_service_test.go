package service

import (
	"encoding/json"
	"testing"

	"studybuddy_backend/internal/model"
	"studybuddy_backend/internal/repository"
	"studybuddy_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingRecomputer struct {
	keys []string
}

func (r *recordingRecomputer) Enqueue(userKey string) {
	r.keys = append(r.keys, userKey)
}

func newActivityServiceForTest(db *gorm.DB) (*ActivityService, *recordingRecomputer) {
	rec := &recordingRecomputer{}
	svc := NewActivityService(
		repository.NewActivityRepository(db),
		NewIdentityService(repository.NewUserRepository(db), "gmail.com"),
		rec,
	)
	return svc, rec
}

func TestLogActivityResolvesAndEnqueues(t *testing.T) {
	db := newTestDB(t)
	svc, rec := newActivityServiceForTest(db)
	user := createUser(t, db, "alice", "alice@example.com")

	logged, err := svc.LogActivity("alice", model.ActivityQuizCompleted, nil)
	require.NoError(t, err)

	assert.Equal(t, user.ID, logged.Event.UserKey)
	assert.Equal(t, SourceUsername, logged.Resolution.Source)
	assert.Equal(t, []string{user.ID}, rec.keys)

	var count int64
	require.NoError(t, db.Model(&model.ActivityEvent{}).
		Where("user_key = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestLogActivityRejectsMissingFields(t *testing.T) {
	db := newTestDB(t)
	svc, rec := newActivityServiceForTest(db)

	_, err := svc.LogActivity("", model.ActivityLogin, nil)
	assert.ErrorIs(t, err, util.ErrUserIDRequired)

	_, err = svc.LogActivity("alice", "", nil)
	assert.ErrorIs(t, err, util.ErrActivityTypeRequired)

	assert.Empty(t, rec.keys)
}

func TestLogActivityUnknownUserStillLogged(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newActivityServiceForTest(db)

	// 空库：解析降级到全零键，但事件仍然落库
	logged, err := svc.LogActivity("ghost", model.ActivityLogin, nil)
	require.NoError(t, err)

	assert.Equal(t, model.SentinelUserKey, logged.Event.UserKey)
	assert.True(t, logged.Resolution.Fallback())
}

func TestLogActivityKeepsMetadata(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newActivityServiceForTest(db)

	metadata := json.RawMessage(`{"quizId": 12, "score": 90}`)
	logged, err := svc.LogActivity("u", model.ActivityQuizCompleted, metadata)
	require.NoError(t, err)

	var stored model.ActivityEvent
	require.NoError(t, db.First(&stored, logged.Event.ID).Error)
	assert.JSONEq(t, string(metadata), string(stored.Metadata))
}

func TestQueryReturnsEmptySlice(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newActivityServiceForTest(db)

	events, err := svc.Query(model.GenerateUUID(), repository.ActivityFilter{})
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestQueryFiltersAndOrders(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newActivityServiceForTest(db)
	userKey := model.GenerateUUID()

	createEvent(t, db, userKey, model.ActivityQuizCompleted, 2)
	createEvent(t, db, userKey, model.ActivityQuizCompleted, 0)
	createEvent(t, db, userKey, model.ActivityLogin, 1)

	events, err := svc.Query(userKey, repository.ActivityFilter{
		Types: []model.ActivityType{model.ActivityQuizCompleted},
	})
	require.NoError(t, err)
	require.Len(t, events, 2)
	// 新的在前
	assert.True(t, events[0].Timestamp.After(events[1].Timestamp))
}

func TestStatsBreakdown(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newActivityServiceForTest(db)
	userKey := model.GenerateUUID()

	createEvent(t, db, userKey, model.ActivityQuizCompleted, 0)
	createEvent(t, db, userKey, model.ActivityQuizCompleted, 1)
	createEvent(t, db, userKey, model.ActivityLogin, 0)
	// 窗口之外的事件不计入
	createEvent(t, db, userKey, model.ActivityLogin, 45)

	stats, err := svc.Stats(userKey)
	require.NoError(t, err)

	assert.EqualValues(t, 3, stats.TotalActivities)
	assert.EqualValues(t, 2, stats.ActivityBreakdown[model.ActivityQuizCompleted])
	assert.EqualValues(t, 1, stats.ActivityBreakdown[model.ActivityLogin])
}
