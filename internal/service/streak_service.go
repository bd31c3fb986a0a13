package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"studybuddy_backend/internal/model"
	"studybuddy_backend/internal/repository"
	"studybuddy_backend/pkg/logger"
	"studybuddy_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dayKeyLayout = "2006-01-02"

// QualifyingActivityTypes 计入连续学习天数的活动类型
var QualifyingActivityTypes = []model.ActivityType{
	model.ActivityQuizStarted,
	model.ActivityAssignmentGenerated,
	model.ActivityAssignmentCompleted,
	model.ActivityQuizCompleted,
	model.ActivityStudySessionEnd,
	model.ActivityMathProblemSolved,
	model.ActivityAudioUploaded,
	model.ActivityDocumentUploaded,
	model.ActivityTextSummarized,
	model.ActivityFlashcardsGenerated,
	model.ActivityGoalSet,
	model.ActivityGoalCompleted,
	model.ActivityQuestionAsked,
}

type StreakService struct {
	StreakRepo   *repository.StreakRepository
	ActivityRepo *repository.ActivityRepository
	Redis        *redis.Client
	EventWindow  int
	CacheTTL     time.Duration
}

func NewStreakService(streakRepo *repository.StreakRepository, activityRepo *repository.ActivityRepository, rdb *redis.Client, eventWindow int, cacheTTL time.Duration) *StreakService {
	if eventWindow <= 0 {
		eventWindow = 30
	}
	return &StreakService{
		StreakRepo:   streakRepo,
		ActivityRepo: activityRepo,
		Redis:        rdb,
		EventWindow:  eventWindow,
		CacheTTL:     cacheTTL,
	}
}

// StreakSummary 面向调用方的连续学习概览
type StreakSummary struct {
	Current        int    `json:"current"`
	Longest        int    `json:"longest"`
	TodayCompleted bool   `json:"todayCompleted"`
	WeeklyProgress int    `json:"weeklyProgress"`
	Level          string `json:"level"`
	NextMilestone  int    `json:"nextMilestone"`
}

// Recompute 从事件流水重新推导连续学习天数并幂等落库。
// 计算是事件日志的纯函数：相同日志重复调用得到相同记录
func (s *StreakService) Recompute(userKey string) (*model.UserStreak, error) {
	events, err := s.ActivityRepo.FindByUser(userKey, repository.ActivityFilter{
		Types: QualifyingActivityTypes,
		Limit: s.EventWindow,
	})
	if err != nil {
		return nil, err
	}

	previous, err := s.StreakRepo.FindByUserKey(userKey)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	streak := &model.UserStreak{UserKey: userKey}
	if previous != nil {
		streak.ID = previous.ID
		streak.CreatedAt = previous.CreatedAt
	}

	if len(events) == 0 {
		// 没有任何符合条件的活动：全部清零
		streak.CurrentStreak = 0
		streak.LongestStreak = 0
		streak.LastActivityDay = nil
	} else {
		days := uniqueDayKeys(events)
		current := consecutiveFromToday(days, time.Now().UTC())

		longest := current
		if previous != nil && previous.LongestStreak > longest {
			longest = previous.LongestStreak
		}

		lastDay, _ := time.ParseInLocation(dayKeyLayout, days[0], time.UTC)
		streak.CurrentStreak = current
		streak.LongestStreak = longest
		streak.LastActivityDay = &lastDay
	}

	if err := s.StreakRepo.Upsert(streak); err != nil {
		return nil, err
	}

	monitoring.StreakRecomputes.Inc()
	s.invalidateCache(userKey)

	return streak, nil
}

// GetStreak 读取连续学习概览，新用户得到零值而不是错误
func (s *StreakService) GetStreak(userKey string) (*StreakSummary, error) {
	if cached := s.cachedSummary(userKey); cached != nil {
		return cached, nil
	}

	var current, longest int
	record, err := s.StreakRepo.FindByUserKey(userKey)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		// 还没有记录：零值概览
	} else {
		current = record.CurrentStreak
		longest = record.LongestStreak
	}

	now := time.Now().UTC()
	todayCompleted, err := s.hasQualifyingActivity(userKey, startOfDay(now), startOfDay(now).AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	weekly, err := s.weeklyProgress(userKey, now)
	if err != nil {
		return nil, err
	}

	level, milestone := streakLevel(current)
	summary := &StreakSummary{
		Current:        current,
		Longest:        longest,
		TodayCompleted: todayCompleted,
		WeeklyProgress: weekly,
		Level:          level,
		NextMilestone:  milestone,
	}

	s.cacheSummary(userKey, summary)
	return summary, nil
}

// uniqueDayKeys 事件（新到旧）归并为去重后的UTC日历日序列，保持新到旧
func uniqueDayKeys(events []model.ActivityEvent) []string {
	seen := make(map[string]bool, len(events))
	days := make([]string, 0, len(events))
	for i := range events {
		key := events[i].DayKey()
		if !seen[key] {
			seen[key] = true
			days = append(days, key)
		}
	}
	return days
}

// consecutiveFromToday 从今天开始往回数连续命中的天数。
// 隔一天就断：严格连续语义，没有宽限日
func consecutiveFromToday(days []string, now time.Time) int {
	expected := startOfDay(now)
	count := 0
	for _, day := range days {
		if day != expected.Format(dayKeyLayout) {
			break
		}
		count++
		expected = expected.AddDate(0, 0, -1)
	}
	return count
}

// streakLevel 等级与下一里程碑的阶梯函数
func streakLevel(current int) (string, int) {
	switch {
	case current >= 30:
		return "platinum", 50
	case current >= 14:
		return "gold", 30
	case current >= 7:
		return "silver", 14
	case current >= 3:
		return "bronze", 7
	default:
		return "bronze", 3
	}
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *StreakService) hasQualifyingActivity(userKey string, since, until time.Time) (bool, error) {
	events, err := s.ActivityRepo.FindByUser(userKey, repository.ActivityFilter{
		Types: QualifyingActivityTypes,
		Since: &since,
		Until: &until,
		Limit: 1,
	})
	if err != nil {
		return false, err
	}
	return len(events) > 0, nil
}

// weeklyProgress 本周（周日起算）活跃天数占七天的百分比
func (s *StreakService) weeklyProgress(userKey string, now time.Time) (int, error) {
	today := startOfDay(now)
	weekStart := today.AddDate(0, 0, -int(today.Weekday()))
	until := today.AddDate(0, 0, 1)

	events, err := s.ActivityRepo.FindByUser(userKey, repository.ActivityFilter{
		Types: QualifyingActivityTypes,
		Since: &weekStart,
		Until: &until,
	})
	if err != nil {
		return 0, err
	}

	activeDays := len(uniqueDayKeys(events))
	return int(float64(activeDays)/7.0*100 + 0.5), nil
}

func streakCacheKey(userKey string) string {
	return "streak:summary:" + userKey
}

func (s *StreakService) cachedSummary(userKey string) *StreakSummary {
	if s.Redis == nil {
		return nil
	}

	val, err := s.Redis.Get(context.Background(), streakCacheKey(userKey)).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Log.Warn("streak cache read failed", zap.String("userKey", userKey), zap.Error(err))
		}
		return nil
	}

	var summary StreakSummary
	if err := json.Unmarshal([]byte(val), &summary); err != nil {
		return nil
	}
	return &summary
}

func (s *StreakService) cacheSummary(userKey string, summary *StreakSummary) {
	if s.Redis == nil || s.CacheTTL <= 0 {
		return
	}

	val, _ := json.Marshal(summary)
	if err := s.Redis.Set(context.Background(), streakCacheKey(userKey), val, s.CacheTTL).Err(); err != nil {
		logger.Log.Warn("streak cache write failed", zap.String("userKey", userKey), zap.Error(err))
	}
}

func (s *StreakService) invalidateCache(userKey string) {
	if s.Redis == nil {
		return
	}
	s.Redis.Del(context.Background(), streakCacheKey(userKey))
}
