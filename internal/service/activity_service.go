package service

import (
	"encoding/json"
	"time"

	"studybuddy_backend/internal/model"
	"studybuddy_backend/internal/repository"
	"studybuddy_backend/internal/util"
	"studybuddy_backend/pkg/monitoring"
)

// Recomputer 把派生状态（连续天数、徽章）的重算解耦出去。
// 生产环境是后台队列，测试里可以同步执行或替换为空实现
type Recomputer interface {
	Enqueue(userKey string)
}

type ActivityService struct {
	ActivityRepo *repository.ActivityRepository
	Identity     *IdentityService
	Recompute    Recomputer
}

func NewActivityService(activityRepo *repository.ActivityRepository, identity *IdentityService, recompute Recomputer) *ActivityService {
	return &ActivityService{
		ActivityRepo: activityRepo,
		Identity:     identity,
		Recompute:    recompute,
	}
}

// LoggedActivity 写入结果，带上身份解析的来源方便调用方观察降级
type LoggedActivity struct {
	Event      *model.ActivityEvent `json:"event"`
	Resolution Resolution           `json:"resolution"`
}

// LogActivity 追加一条行为事件。活动类型缺失时拒绝写入；
// 用户标识经身份解析归一化后才落库
func (s *ActivityService) LogActivity(rawUserID string, activityType model.ActivityType, metadata json.RawMessage) (*LoggedActivity, error) {
	if rawUserID == "" {
		return nil, util.ErrUserIDRequired
	}
	if activityType == "" {
		return nil, util.ErrActivityTypeRequired
	}

	res := s.Identity.Resolve(rawUserID)

	event := &model.ActivityEvent{
		UserKey:      res.Key,
		ActivityType: activityType,
		Timestamp:    time.Now().UTC(),
		Metadata:     metadata,
	}

	if err := s.ActivityRepo.Create(event); err != nil {
		return nil, err
	}

	monitoring.ActivitiesLogged.WithLabelValues(string(activityType)).Inc()

	// 写入成功后异步触发该用户的派生状态重算
	if s.Recompute != nil {
		s.Recompute.Enqueue(res.Key)
	}

	return &LoggedActivity{Event: event, Resolution: res}, nil
}

// Query 查询某用户的行为事件，空结果返回空切片而不是错误
func (s *ActivityService) Query(userKey string, filter repository.ActivityFilter) ([]model.ActivityEvent, error) {
	events, err := s.ActivityRepo.FindByUser(userKey, filter)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []model.ActivityEvent{}
	}
	return events, nil
}

// ActivityStats 近30天的活跃统计
type ActivityStats struct {
	TotalActivities   int64                        `json:"totalActivities"`
	ActivityBreakdown map[model.ActivityType]int64 `json:"activityBreakdown"`
	PeriodStart       time.Time                    `json:"periodStart"`
	PeriodEnd         time.Time                    `json:"periodEnd"`
}

func (s *ActivityService) Stats(userKey string) (*ActivityStats, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -30)

	counts, err := s.ActivityRepo.CountsByType(userKey, start)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &ActivityStats{
		TotalActivities:   total,
		ActivityBreakdown: counts,
		PeriodStart:       start,
		PeriodEnd:         end,
	}, nil
}
