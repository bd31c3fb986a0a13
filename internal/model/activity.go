package model

import (
	"encoding/json"
	"time"
)

type ActivityType string

const (
	ActivityLogin               ActivityType = "login"
	ActivityDocumentUploaded    ActivityType = "document_uploaded"
	ActivityAudioUploaded       ActivityType = "audio_uploaded"
	ActivityTextSummarized      ActivityType = "text_summarized"
	ActivityQuizStarted         ActivityType = "quiz_started"
	ActivityQuizCompleted       ActivityType = "quiz_completed"
	ActivityAssignmentGenerated ActivityType = "assignment_generated"
	ActivityAssignmentCompleted ActivityType = "assignment_completed"
	ActivityStudySessionEnd     ActivityType = "study_session_end"
	ActivityMathProblemSolved   ActivityType = "math_problem_solved"
	ActivityFlashcardsGenerated ActivityType = "flashcards_generated"
	ActivityGoalSet             ActivityType = "goal_set"
	ActivityGoalCompleted       ActivityType = "goal_completed"
	ActivityQuestionAsked       ActivityType = "question_asked"
	ActivityChatMessageSent     ActivityType = "chat_message_sent"
	ActivityLeaderboardUpdated  ActivityType = "leaderboard_updated"
)

// ActivityEvent 用户行为流水，只增不改
// swagger:model ActivityEvent
type ActivityEvent struct {
	BaseModel
	UserKey      string          `gorm:"size:36;index:idx_user_type;index:idx_user_time;not null" json:"userKey"`
	ActivityType ActivityType    `gorm:"size:64;index:idx_user_type;not null" json:"activityType"`
	Timestamp    time.Time       `gorm:"index:idx_user_time;not null" json:"timestamp"`
	Metadata     json.RawMessage `gorm:"type:json" json:"metadata,omitempty"`
}

func (ActivityEvent) TableName() string {
	return "user_activities"
}

// DayKey 事件所属的UTC日历日（YYYY-MM-DD）
func (e *ActivityEvent) DayKey() string {
	return e.Timestamp.UTC().Format("2006-01-02")
}
