package service

import (
	"encoding/json"
	"testing"

	"studybuddy_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findEvaluated(result *EvaluationResult, name string) *model.UserBadge {
	for i := range result.Evaluated {
		if result.Evaluated[i].Badge.Name == name {
			return &result.Evaluated[i]
		}
	}
	return nil
}

func TestEvaluateFirstStepAfterLogin(t *testing.T) {
	db := newTestDB(t)
	svc := newBadgeServiceForTest(db)
	userKey := model.GenerateUUID()

	createEvent(t, db, userKey, model.ActivityLogin, 0)

	result, err := svc.Evaluate(userKey)
	require.NoError(t, err)
	require.Empty(t, result.Failures)

	firstStep := findEvaluated(result, "First Step")
	require.NotNil(t, firstStep)
	assert.Equal(t, 100, firstStep.Progress)
	assert.True(t, firstStep.IsEarned)
	require.NotNil(t, firstStep.EarnedAt)

	var names []string
	for _, b := range result.NewlyEarned {
		names = append(names, b.Badge.Name)
	}
	assert.Contains(t, names, "First Step")
}

func TestEvaluateQuizNoviceProgress(t *testing.T) {
	db := newTestDB(t)
	svc := newBadgeServiceForTest(db)
	userKey := model.GenerateUUID()

	createEvent(t, db, userKey, model.ActivityQuizCompleted, 0)
	createEvent(t, db, userKey, model.ActivityQuizCompleted, 1)

	result, err := svc.Evaluate(userKey)
	require.NoError(t, err)

	quizNovice := findEvaluated(result, "Quiz Novice")
	require.NotNil(t, quizNovice)
	assert.Equal(t, 66, quizNovice.Progress)
	assert.False(t, quizNovice.IsEarned)
	assert.Nil(t, quizNovice.EarnedAt)

	// 第三次完成后拿到徽章
	createEvent(t, db, userKey, model.ActivityQuizCompleted, 0)
	result, err = svc.Evaluate(userKey)
	require.NoError(t, err)

	quizNovice = findEvaluated(result, "Quiz Novice")
	require.NotNil(t, quizNovice)
	assert.Equal(t, 100, quizNovice.Progress)
	assert.True(t, quizNovice.IsEarned)
}

func TestEvaluateProgressIsMonotonic(t *testing.T) {
	db := newTestDB(t)
	svc := newBadgeServiceForTest(db)
	userKey := model.GenerateUUID()

	createEvent(t, db, userKey, model.ActivityQuizCompleted, 0)

	first, err := svc.Evaluate(userKey)
	require.NoError(t, err)
	require.NotNil(t, findEvaluated(first, "Quiz Novice"))
	assert.Equal(t, 33, findEvaluated(first, "Quiz Novice").Progress)

	// 手工抬高进度，之后的评估不会把它降回去
	badge, err := svc.BadgeRepo.FindByName("Quiz Novice")
	require.NoError(t, err)
	require.NoError(t, db.Model(&model.UserBadge{}).
		Where("user_key = ? AND badge_id = ?", userKey, badge.ID).
		Update("progress", 80).Error)

	second, err := svc.Evaluate(userKey)
	require.NoError(t, err)
	assert.Equal(t, 80, findEvaluated(second, "Quiz Novice").Progress)
}

func TestEvaluateIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := newBadgeServiceForTest(db)
	userKey := model.GenerateUUID()

	createEvent(t, db, userKey, model.ActivityLogin, 0)

	first, err := svc.Evaluate(userKey)
	require.NoError(t, err)
	assert.NotEmpty(t, first.NewlyEarned)

	// 再评估一次：不再是新获得，earned_at 不变
	earnedAt := findEvaluated(first, "First Step").EarnedAt

	second, err := svc.Evaluate(userKey)
	require.NoError(t, err)
	assert.Empty(t, second.NewlyEarned)

	firstStep := findEvaluated(second, "First Step")
	require.NotNil(t, firstStep)
	require.NotNil(t, firstStep.EarnedAt)
	assert.Equal(t, earnedAt.Unix(), firstStep.EarnedAt.Unix())
}

func TestEvaluateCountsActivityVariations(t *testing.T) {
	db := newTestDB(t)
	svc := newBadgeServiceForTest(db)
	userKey := model.GenerateUUID()

	// 新旧两种写法都计入音频上传
	createEvent(t, db, userKey, model.ActivityAudioUploaded, 0)
	createEvent(t, db, userKey, "audio_processed", 0)

	result, err := svc.Evaluate(userKey)
	require.NoError(t, err)

	enthusiast := findEvaluated(result, "Audio Enthusiast")
	require.NotNil(t, enthusiast)
	assert.Equal(t, 40, enthusiast.Progress)
}

func TestEvaluateStreakBadges(t *testing.T) {
	db := newTestDB(t)
	svc := newBadgeServiceForTest(db)
	userKey := model.GenerateUUID()

	require.NoError(t, db.Create(&model.UserStreak{
		UserKey:       userKey,
		CurrentStreak: 3,
		LongestStreak: 3,
	}).Error)

	result, err := svc.Evaluate(userKey)
	require.NoError(t, err)

	starter := findEvaluated(result, "Streak Starter")
	require.NotNil(t, starter)
	assert.True(t, starter.IsEarned)

	master := findEvaluated(result, "Streak Master")
	require.NotNil(t, master)
	assert.Equal(t, 30, master.Progress)
	assert.False(t, master.IsEarned)
}

func TestEvaluateCollectionBadgesCountEarned(t *testing.T) {
	db := newTestDB(t)
	svc := newBadgeServiceForTest(db)
	userKey := model.GenerateUUID()

	// 一轮评估内拿到5个徽章，收藏类在第二轮统计时能看到
	createEvent(t, db, userKey, model.ActivityLogin, 0)
	createEvent(t, db, userKey, model.ActivityGoalSet, 0)
	createEvent(t, db, userKey, model.ActivityGoalCompleted, 0)
	for i := 0; i < 3; i++ {
		createEvent(t, db, userKey, model.ActivityQuizCompleted, 0)
	}
	require.NoError(t, db.Create(&model.UserStreak{
		UserKey:       userKey,
		CurrentStreak: 3,
		LongestStreak: 3,
	}).Error)

	result, err := svc.Evaluate(userKey)
	require.NoError(t, err)
	require.Empty(t, result.Failures)

	// First Step + Goal Setter + Goal Achiever + Quiz Novice + Streak Starter
	collector := findEvaluated(result, "Badge Collector")
	require.NotNil(t, collector)
	assert.True(t, collector.IsEarned)
}

func TestEvaluateIsolatesPerBadgeFailures(t *testing.T) {
	db := newTestDB(t)
	svc := newBadgeServiceForTest(db)
	userKey := model.GenerateUUID()

	createEvent(t, db, userKey, model.ActivityLogin, 0)

	// 连续天数表读不了：依赖它的徽章失败，其余徽章照常评估落库
	require.NoError(t, db.Migrator().DropTable(&model.UserStreak{}))

	result, err := svc.Evaluate(userKey)
	require.NoError(t, err)
	require.NotEmpty(t, result.Failures)

	var failed []string
	for _, f := range result.Failures {
		failed = append(failed, f.Name)
	}
	assert.Contains(t, failed, "Streak Starter")
	assert.Contains(t, failed, "Streak Master")
	assert.Contains(t, failed, "Streak Specialist")

	firstStep := findEvaluated(result, "First Step")
	require.NotNil(t, firstStep)
	assert.True(t, firstStep.IsEarned)

	// 成功的徽章确实写库了
	badge, err := svc.BadgeRepo.FindByName("First Step")
	require.NoError(t, err)
	row, err := svc.BadgeRepo.FindUserBadge(userKey, badge.ID)
	require.NoError(t, err)
	assert.True(t, row.IsEarned)
}

func TestForceAwardBypassesEvaluation(t *testing.T) {
	db := newTestDB(t)
	svc := newBadgeServiceForTest(db)
	userKey := model.GenerateUUID()

	badge, err := svc.BadgeRepo.FindByName("Document Guru")
	require.NoError(t, err)

	row, err := svc.ForceAward(userKey, badge.ID)
	require.NoError(t, err)
	assert.True(t, row.IsEarned)
	assert.Equal(t, 100, row.Progress)
	require.NotNil(t, row.EarnedAt)

	// 重复直授幂等
	again, err := svc.ForceAward(userKey, badge.ID)
	require.NoError(t, err)
	assert.Equal(t, row.EarnedAt.Unix(), again.EarnedAt.Unix())
}

func TestForceAwardUnknownBadge(t *testing.T) {
	db := newTestDB(t)
	svc := newBadgeServiceForTest(db)

	_, err := svc.ForceAward(model.GenerateUUID(), 99999)
	assert.Error(t, err)
}

func TestAwardLeaderboardTopPerformer(t *testing.T) {
	db := newTestDB(t)
	svc := newBadgeServiceForTest(db)
	userKey := model.GenerateUUID()

	metadata, _ := json.Marshal(map[string]interface{}{
		"position":    5,
		"total_users": 100,
	})

	awarded, err := svc.AwardLeaderboard(userKey, metadata)
	require.NoError(t, err)

	var names []string
	for _, b := range awarded {
		names = append(names, b.Badge.Name)
	}
	assert.Contains(t, names, "Leaderboard Rookie")
	assert.Contains(t, names, "Top Performer")
}

func TestAwardLeaderboardOutsideTopTenPercent(t *testing.T) {
	db := newTestDB(t)
	svc := newBadgeServiceForTest(db)
	userKey := model.GenerateUUID()

	metadata, _ := json.Marshal(map[string]interface{}{
		"position":    50,
		"total_users": 100,
	})

	awarded, err := svc.AwardLeaderboard(userKey, metadata)
	require.NoError(t, err)

	var names []string
	for _, b := range awarded {
		names = append(names, b.Badge.Name)
	}
	assert.Contains(t, names, "Leaderboard Rookie")
	assert.NotContains(t, names, "Top Performer")
}

func TestAwardRecordsActivityEvent(t *testing.T) {
	db := newTestDB(t)
	svc := newBadgeServiceForTest(db)
	userKey := model.GenerateUUID()

	createEvent(t, db, userKey, model.ActivityLogin, 0)

	_, err := svc.Evaluate(userKey)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&model.ActivityEvent{}).
		Where("user_key = ? AND activity_type = ?", userKey, "badge_awarded_First Step").
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestListForUserIncludesWholeCatalog(t *testing.T) {
	db := newTestDB(t)
	svc := newBadgeServiceForTest(db)
	userKey := model.GenerateUUID()

	view, err := svc.ListForUser(userKey)
	require.NoError(t, err)
	assert.Len(t, view, 21)
	for _, row := range view {
		assert.Equal(t, 0, row.Progress)
		assert.False(t, row.IsEarned)
		assert.NotEmpty(t, row.Badge.Name)
	}
}

func TestMetadataIntTolerantParsing(t *testing.T) {
	assert.Equal(t, 7, metadataInt(json.RawMessage(`{"position": 7}`), "position"))
	assert.Equal(t, 7, metadataInt(json.RawMessage(`{"position": "7"}`), "position"))
	assert.Equal(t, 0, metadataInt(json.RawMessage(`{"position": "abc"}`), "position"))
	assert.Equal(t, 0, metadataInt(json.RawMessage(`not json`), "position"))
	assert.Equal(t, 0, metadataInt(nil, "position"))
}
