package stats

import "fmt"

// Dotted document paths for atomic counter increments. Addressing a single
// leaf means concurrent increments compose and one date's subtree never
// clobbers a sibling date.

// Completion-rate counter field names
const (
	FieldCompletedOnTimeTotal = "completedOnTimeTotal"
	FieldCompletedLateTotal   = "completedLateTotal"
	FieldMissedJogsTotal      = "missedJogsTotal"
	FieldTotalJogsCompleted   = "totalJogsCompleted"
)

// Global jog counter paths
const (
	PathTotalJogsCreated          = "jogStats.totalJogsCreated"
	PathTotalStepBasedJogsCreated = "jogStats.totalStepBasedJogsCreated"
	PathTotalAIJogsCreated        = "jogStats.totalAIJogsCreated"
	PathDeletedJogCount           = "jogStats.deletedJogCount"
	PathCurrentStreak             = "jogStats.currentStreak"
	PathBestStreak                = "jogStats.bestStreak"
	PathLastStreakDate            = "jogStats.lastStreakDate"
	PathNotificationsSent         = "appUsageStats.notificationsSent"
	PathNotificationsFailed       = "appUsageStats.notificationsFailed"
	PathQuestionnaireReady        = "symptomStats.questionnaireReady"
)

// CompletionRatePath returns the global completion-rate path for a counter field
func CompletionRatePath(field string) string {
	return "jogStats.jogCompletionRate." + field
}

// DailyCompletionRatePath returns the per-day completion-rate path for a
// counter field, addressing only that date's subtree
func DailyCompletionRatePath(dayKey, field string) string {
	return fmt.Sprintf("jogStats.dailyJogStats.%s.jogCompletionRate.%s", dayKey, field)
}

// DailyJogsCreatedPath returns the per-day created-jogs counter path
func DailyJogsCreatedPath(dayKey string) string {
	return fmt.Sprintf("jogStats.dailyJogStats.%s.jogsCreated", dayKey)
}

// CategoryPath returns the counter path for one jog category
func CategoryPath(category string) string {
	return "jogStats.jogCategories." + category
}

// DailyLogPath returns the per-day questionnaire log path
func DailyLogPath(dayKey string) string {
	return "symptomStats.dailyLogs." + dayKey
}
