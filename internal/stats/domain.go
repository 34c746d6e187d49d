package stats

import (
	"time"

	"jogapp-api/internal/common"
)

// UserStats is the one aggregate document per user. It is created lazily on
// first need and mutated exclusively through atomic increments and
// sibling-safe nested merges, never fully overwritten.
type UserStats struct {
	UserID    common.UserID `json:"user_id" bson:"_id"`
	PushToken string        `json:"push_token,omitempty" bson:"pushToken,omitempty"`

	JogStats      JogStats      `json:"jog_stats" bson:"jogStats"`
	SymptomStats  SymptomStats  `json:"symptom_stats" bson:"symptomStats"`
	AppUsageStats AppUsageStats `json:"app_usage_stats" bson:"appUsageStats"`

	CreatedAt time.Time `json:"created_at" bson:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" bson:"updatedAt"`
}

// JogStats holds the global jog counters plus per-day buckets
type JogStats struct {
	TotalJogsCreated          int64 `json:"total_jogs_created" bson:"totalJogsCreated"`
	TotalStepBasedJogsCreated int64 `json:"total_step_based_jogs_created" bson:"totalStepBasedJogsCreated"`
	TotalAIJogsCreated        int64 `json:"total_ai_jogs_created" bson:"totalAIJogsCreated"`
	DeletedJogCount           int64 `json:"deleted_jog_count" bson:"deletedJogCount"`

	JogCompletionRate CompletionRate   `json:"jog_completion_rate" bson:"jogCompletionRate"`
	JogCategories     map[string]int64 `json:"jog_categories" bson:"jogCategories"`

	CurrentStreak int64 `json:"current_streak" bson:"currentStreak"`
	BestStreak    int64 `json:"best_streak" bson:"bestStreak"`

	// LastStreakDate is the day key of the most recent streak rollup
	// applied to this user. It guards against double-applying a rollup.
	LastStreakDate string `json:"last_streak_date,omitempty" bson:"lastStreakDate,omitempty"`

	// DailyJogStats is keyed by calendar-date string and mirrors the
	// counter shape scoped to that day. Writes address one date's subtree
	// only; sibling dates are never touched.
	DailyJogStats map[string]DailyJogStats `json:"daily_jog_stats" bson:"dailyJogStats"`
}

// CompletionRate is the completion-rate counter bucket set
type CompletionRate struct {
	CompletedOnTimeTotal int64 `json:"completed_on_time_total" bson:"completedOnTimeTotal"`
	CompletedLateTotal   int64 `json:"completed_late_total" bson:"completedLateTotal"`
	MissedJogsTotal      int64 `json:"missed_jogs_total" bson:"missedJogsTotal"`
	TotalJogsCompleted   int64 `json:"total_jogs_completed" bson:"totalJogsCompleted"`
}

// DailyJogStats is the per-day counter bucket
type DailyJogStats struct {
	JogsCreated       int64          `json:"jogs_created" bson:"jogsCreated"`
	JogCompletionRate CompletionRate `json:"jog_completion_rate" bson:"jogCompletionRate"`
}

// SymptomStats holds questionnaire scheduling state and per-day logs
type SymptomStats struct {
	QuestionnaireTime    string              `json:"questionnaire_time" bson:"questionnaireTime"` // "HH:MM" canonical time
	QuestionnaireTimeSet bool                `json:"questionnaire_time_set" bson:"questionnaireTimeSet"`
	QuestionnaireReady   bool                `json:"questionnaire_ready" bson:"questionnaireReady"`
	DailyLogs            map[string]DailyLog `json:"daily_logs" bson:"dailyLogs"`
}

// DailyLog is one day's questionnaire entry
type DailyLog struct {
	Score    int       `json:"score" bson:"score"`
	LoggedAt time.Time `json:"logged_at" bson:"loggedAt"`
}

// AppUsageStats holds session and notification counters
type AppUsageStats struct {
	SessionCount        int64 `json:"session_count" bson:"sessionCount"`
	NotificationsSent   int64 `json:"notifications_sent" bson:"notificationsSent"`
	NotificationsFailed int64 `json:"notifications_failed" bson:"notificationsFailed"`
}

// NewUserStats returns a zeroed aggregate document for lazy initialisation
func NewUserStats(userID common.UserID, now time.Time) *UserStats {
	return &UserStats{
		UserID: userID,
		JogStats: JogStats{
			JogCategories: map[string]int64{},
			DailyJogStats: map[string]DailyJogStats{},
		},
		SymptomStats: SymptomStats{
			DailyLogs: map[string]DailyLog{},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
