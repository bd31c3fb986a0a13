package service

import (
	"encoding/json"
	"errors"
	"sort"
	"time"

	"studybuddy_backend/internal/model"
	"studybuddy_backend/internal/repository"
	"studybuddy_backend/internal/util"
	"studybuddy_backend/pkg/logger"
	"studybuddy_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// badgeCriterion 单个徽章的达成条件，只会设置其中一种
type badgeCriterion struct {
	// 活动类型 + 次数
	Activity model.ActivityType
	Count    int
	// 活动类型 + 连续天数（登录类徽章）
	ConsecutiveDays int
	// 连续学习天数门槛
	Streak int
	// 已获得徽章数量门槛（收藏类徽章）
	BadgeCount int
	// 只能由外部显式授予（排行榜类）
	External bool
}

// 徽章目录对应的达成条件，按名称对齐 pkg/database 播种的目录
var badgeCriteria = map[string]badgeCriterion{
	"First Step":         {Activity: model.ActivityLogin, Count: 1},
	"Daily Learner":      {Activity: model.ActivityLogin, ConsecutiveDays: 7},
	"Consistent Learner": {Activity: model.ActivityLogin, ConsecutiveDays: 30},
	"Streak Starter":     {Streak: 3},
	"Streak Master":      {Streak: 10},
	"Streak Specialist":  {Streak: 30},
	"Summarization Star": {Activity: model.ActivityTextSummarized, Count: 10},
	"Knowledge Seeker":   {Activity: model.ActivityTextSummarized, Count: 20},
	"Audio Enthusiast":   {Activity: model.ActivityAudioUploaded, Count: 5},
	"Audio Analyzer":     {Activity: model.ActivityAudioUploaded, Count: 15},
	"Document Guru":      {Activity: model.ActivityDocumentUploaded, Count: 10},
	"Document Pro":       {Activity: model.ActivityDocumentUploaded, Count: 20},
	"Quiz Novice":        {Activity: model.ActivityQuizCompleted, Count: 3},
	"Curious Learner":    {Activity: model.ActivityQuestionAsked, Count: 20},
	"Goal Setter":        {Activity: model.ActivityGoalSet, Count: 1},
	"Goal Achiever":      {Activity: model.ActivityGoalCompleted, Count: 1},
	"Leaderboard Rookie": {External: true},
	"Top Performer":      {External: true},
	"Badge Collector":    {BadgeCount: 5},
	"Super Collector":    {BadgeCount: 10},
	"Ultimate Learner":   {BadgeCount: 20},
}

// 历史数据里同一种行为存在多种写法，计数时全部算上
var activityVariations = map[model.ActivityType][]model.ActivityType{
	model.ActivityLogin:            {model.ActivityLogin, "user_login"},
	model.ActivityAudioUploaded:    {model.ActivityAudioUploaded, "audio_processed"},
	model.ActivityDocumentUploaded: {model.ActivityDocumentUploaded, "document_analyzed"},
	model.ActivityGoalSet:          {model.ActivityGoalSet, "goal_created"},
	model.ActivityGoalCompleted:    {model.ActivityGoalCompleted, "goal_achieved"},
}

func variationsOf(t model.ActivityType) []model.ActivityType {
	if v, ok := activityVariations[t]; ok {
		return v
	}
	return []model.ActivityType{t}
}

type BadgeService struct {
	BadgeRepo    *repository.BadgeRepository
	ActivityRepo *repository.ActivityRepository
	StreakRepo   *repository.StreakRepository
}

func NewBadgeService(badgeRepo *repository.BadgeRepository, activityRepo *repository.ActivityRepository, streakRepo *repository.StreakRepository) *BadgeService {
	return &BadgeService{
		BadgeRepo:    badgeRepo,
		ActivityRepo: activityRepo,
		StreakRepo:   streakRepo,
	}
}

// BadgeFailure 单个徽章评估失败，不影响其余徽章
type BadgeFailure struct {
	BadgeID uint   `json:"badgeId"`
	Name    string `json:"name"`
	Error   string `json:"error"`
}

// EvaluationResult 一次评估的完整结果。Failures 非空但 err 为 nil
// 表示部分成功，调用方可以区分局部失败和整体失败
type EvaluationResult struct {
	Evaluated   []model.UserBadge `json:"evaluated"`
	NewlyEarned []model.UserBadge `json:"newlyEarned"`
	Failures    []BadgeFailure    `json:"failures,omitempty"`
}

// Evaluate 对目录里的每个徽章重算该用户的进度并幂等落库。
// 进度在正常评估下单调不减；达到100时翻转 is_earned 并一次性盖上 earned_at
func (s *BadgeService) Evaluate(userKey string) (*EvaluationResult, error) {
	badges, err := s.BadgeRepo.FindAll()
	if err != nil {
		return nil, err
	}

	existing, err := s.userBadgeIndex(userKey)
	if err != nil {
		return nil, err
	}

	result := &EvaluationResult{}

	// 收藏类徽章依赖其余徽章的获得数量，放到第二轮
	var collection []model.Badge
	for _, badge := range badges {
		crit, ok := badgeCriteria[badge.Name]
		if !ok || crit.External {
			continue
		}
		if crit.BadgeCount > 0 {
			collection = append(collection, badge)
			continue
		}
		s.evaluateOne(userKey, badge, crit, existing, result)
	}

	for _, badge := range collection {
		s.evaluateOne(userKey, badge, badgeCriteria[badge.Name], existing, result)
	}

	return result, nil
}

// EvaluateBadge 只重算一个徽章
func (s *BadgeService) EvaluateBadge(userKey string, badgeID uint) (*model.UserBadge, error) {
	badge, err := s.BadgeRepo.FindByID(badgeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrBadgeNotFound
		}
		return nil, err
	}

	crit, ok := badgeCriteria[badge.Name]
	if !ok || crit.External {
		return nil, util.ErrBadgeNotFound
	}

	existing, err := s.userBadgeIndex(userKey)
	if err != nil {
		return nil, err
	}

	result := &EvaluationResult{}
	s.evaluateOne(userKey, *badge, crit, existing, result)
	if len(result.Failures) > 0 {
		return nil, errors.New(result.Failures[0].Error)
	}
	if len(result.Evaluated) == 0 {
		return nil, util.ErrBadgeNotFound
	}
	return &result.Evaluated[0], nil
}

// ListForUser 目录与用户进度合并后的完整视图，没有进度行的徽章补零值
func (s *BadgeService) ListForUser(userKey string) ([]model.UserBadge, error) {
	badges, err := s.BadgeRepo.FindAll()
	if err != nil {
		return nil, err
	}
	existing, err := s.userBadgeIndex(userKey)
	if err != nil {
		return nil, err
	}

	view := make([]model.UserBadge, 0, len(badges))
	for _, badge := range badges {
		if row, ok := existing[badge.ID]; ok {
			row.Badge = badge
			view = append(view, row)
			continue
		}
		view = append(view, model.UserBadge{
			UserKey: userKey,
			BadgeID: badge.ID,
			Badge:   badge,
		})
	}
	return view, nil
}

// ForceAward 管理后台的直授通道，绕过正常评估直接把徽章置为已获得。
// 这是单调进度不变式之外的显式运营手段
func (s *BadgeService) ForceAward(userKey string, badgeID uint) (*model.UserBadge, error) {
	badge, err := s.BadgeRepo.FindByID(badgeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrBadgeNotFound
		}
		return nil, err
	}

	row, newly, err := s.award(userKey, *badge)
	if err != nil {
		return nil, err
	}
	if newly {
		s.recordAward(userKey, *badge)
	}
	return row, nil
}

// AwardLeaderboard 排行榜位置更新时的外部授予路径。
// metadata 里的 position/total_users 解析失败按零处理，不让整次调用失败
func (s *BadgeService) AwardLeaderboard(userKey string, metadata json.RawMessage) ([]model.UserBadge, error) {
	position := metadataInt(metadata, "position")
	totalUsers := metadataInt(metadata, "total_users")
	if totalUsers <= 0 {
		totalUsers = 100
	}

	var awarded []model.UserBadge

	names := []string{"Leaderboard Rookie"}
	if position > 0 && position*100 <= totalUsers*10 {
		names = append(names, "Top Performer")
	}

	for _, name := range names {
		badge, err := s.BadgeRepo.FindByName(name)
		if err != nil {
			return awarded, err
		}
		row, newly, err := s.award(userKey, *badge)
		if err != nil {
			return awarded, err
		}
		if newly {
			s.recordAward(userKey, *badge)
			awarded = append(awarded, *row)
		}
	}
	return awarded, nil
}

func (s *BadgeService) userBadgeIndex(userKey string) (map[uint]model.UserBadge, error) {
	rows, err := s.BadgeRepo.FindUserBadges(userKey)
	if err != nil {
		return nil, err
	}
	index := make(map[uint]model.UserBadge, len(rows))
	for _, row := range rows {
		row.Badge = model.Badge{}
		index[row.BadgeID] = row
	}
	return index, nil
}

func (s *BadgeService) evaluateOne(userKey string, badge model.Badge, crit badgeCriterion, existing map[uint]model.UserBadge, result *EvaluationResult) {
	computed, err := s.progressFor(userKey, crit)
	if err != nil {
		// 局部失败：这个徽章放弃本轮，不影响其余徽章已写入的状态
		logger.Log.Error("badge evaluation failed",
			zap.String("userKey", userKey),
			zap.String("badge", badge.Name),
			zap.Error(err))
		result.Failures = append(result.Failures, BadgeFailure{
			BadgeID: badge.ID,
			Name:    badge.Name,
			Error:   err.Error(),
		})
		return
	}

	row, had := existing[badge.ID]
	if !had {
		row = model.UserBadge{UserKey: userKey, BadgeID: badge.ID}
	}

	// 单调不减：评估永远不会降低已有进度
	progress := row.Progress
	if computed > progress {
		progress = computed
	}

	newly := false
	if progress >= 100 {
		progress = 100
		if !row.IsEarned {
			row.IsEarned = true
			newly = true
		}
		if row.EarnedAt == nil {
			now := time.Now().UTC()
			row.EarnedAt = &now
		}
	}

	changed := !had || progress != row.Progress || newly
	row.Progress = progress

	if changed {
		if err := s.BadgeRepo.Upsert(&row); err != nil {
			result.Failures = append(result.Failures, BadgeFailure{
				BadgeID: badge.ID,
				Name:    badge.Name,
				Error:   err.Error(),
			})
			return
		}
		existing[badge.ID] = row
	}

	row.Badge = badge
	result.Evaluated = append(result.Evaluated, row)
	if newly {
		result.NewlyEarned = append(result.NewlyEarned, row)
		s.recordAward(userKey, badge)
	}
}

// progressFor 按达成条件推导 0-100 的进度
func (s *BadgeService) progressFor(userKey string, crit badgeCriterion) (int, error) {
	switch {
	case crit.Count > 0:
		count, err := s.ActivityRepo.CountByUserAndTypes(userKey, variationsOf(crit.Activity), nil)
		if err != nil {
			return 0, err
		}
		return percent(count, int64(crit.Count)), nil

	case crit.ConsecutiveDays > 0:
		days, err := s.maxConsecutiveDays(userKey, crit.Activity)
		if err != nil {
			return 0, err
		}
		return percent(int64(days), int64(crit.ConsecutiveDays)), nil

	case crit.Streak > 0:
		record, err := s.StreakRepo.FindByUserKey(userKey)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, nil
			}
			return 0, err
		}
		return percent(int64(record.CurrentStreak), int64(crit.Streak)), nil

	case crit.BadgeCount > 0:
		earned, err := s.BadgeRepo.CountEarned(userKey)
		if err != nil {
			return 0, err
		}
		return percent(earned, int64(crit.BadgeCount)), nil
	}
	return 0, nil
}

// maxConsecutiveDays 某类活动历史上最长的连续天数
func (s *BadgeService) maxConsecutiveDays(userKey string, activity model.ActivityType) (int, error) {
	events, err := s.ActivityRepo.FindByUser(userKey, repository.ActivityFilter{
		Types: variationsOf(activity),
		Limit: 365,
	})
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}

	days := uniqueDayKeys(events)
	sort.Strings(days)

	best, run := 1, 1
	for i := 1; i < len(days); i++ {
		prev, _ := time.ParseInLocation(dayKeyLayout, days[i-1], time.UTC)
		curr, _ := time.ParseInLocation(dayKeyLayout, days[i], time.UTC)
		if curr.Sub(prev) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}
	return best, nil
}

// award 直接置为已获得，进度拉满，earned_at 只在首次达成时写入
func (s *BadgeService) award(userKey string, badge model.Badge) (*model.UserBadge, bool, error) {
	row, err := s.BadgeRepo.FindUserBadge(userKey, badge.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, err
		}
		row = &model.UserBadge{UserKey: userKey, BadgeID: badge.ID}
	}

	newly := !row.IsEarned
	row.Progress = 100
	row.IsEarned = true
	if row.EarnedAt == nil {
		now := time.Now().UTC()
		row.EarnedAt = &now
	}

	if err := s.BadgeRepo.Upsert(row); err != nil {
		return nil, false, err
	}
	row.Badge = badge
	return row, newly, nil
}

// recordAward 授予本身也写回行为流水，并计一次指标
func (s *BadgeService) recordAward(userKey string, badge model.Badge) {
	monitoring.BadgesAwarded.WithLabelValues(badge.Name).Inc()

	event := &model.ActivityEvent{
		UserKey:      userKey,
		ActivityType: model.ActivityType("badge_awarded_" + badge.Name),
		Timestamp:    time.Now().UTC(),
	}
	if err := s.ActivityRepo.Create(event); err != nil {
		logger.Log.Warn("failed to record badge award activity",
			zap.String("userKey", userKey),
			zap.String("badge", badge.Name),
			zap.Error(err))
	}
}

// percent have/need 折算为 0-100，超出封顶
func percent(have, need int64) int {
	if need <= 0 {
		return 100
	}
	p := int(have * 100 / need)
	if p > 100 {
		p = 100
	}
	return p
}

// metadataInt 从开放的元数据里取整数，形态不对时按零处理而不是报错
func metadataInt(raw json.RawMessage, key string) int {
	if len(raw) == 0 {
		return 0
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return 0
	}
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case string:
		var n int
		for _, c := range v {
			if c < '0' || c > '9' {
				return 0
			}
			n = n*10 + int(c-'0')
		}
		return n
	}
	return 0
}
