package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"jogapp-api/internal/common"
	"jogapp-api/internal/jog"
	"jogapp-api/internal/notification"
	"jogapp-api/internal/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// recordingEventBus records published events without delivering them
type recordingEventBus struct {
	mu        sync.RWMutex
	published map[string][]interface{}
}

func newRecordingEventBus() *recordingEventBus {
	return &recordingEventBus{published: make(map[string][]interface{})}
}

func (b *recordingEventBus) Publish(topic string, data interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published[topic] = append(b.published[topic], data)
	return nil
}

func (b *recordingEventBus) Subscribe(topic string, handler interface{}) error   { return nil }
func (b *recordingEventBus) Unsubscribe(topic string, handler interface{}) error { return nil }
func (b *recordingEventBus) Close() error                                        { return nil }

type jobFixture struct {
	repo       *jog.MockJogRepository
	stats      *stats.MockStatsRepository
	dispatcher *notification.MockDispatcher
	bus        *recordingEventBus
	clock      *common.MockClock
	deps       *JobDeps
}

func newJobFixture(t *testing.T, now time.Time) *jobFixture {
	repo := jog.NewMockJogRepository()
	statsRepo := stats.NewMockStatsRepository()
	dispatcher := notification.NewMockDispatcher()
	bus := newRecordingEventBus()
	clock := common.NewMockClock(now)
	logger := zaptest.NewLogger(t)

	jogService := jog.NewJogService(repo, statsRepo, bus, clock, time.UTC, logger)

	return &jobFixture{
		repo:       repo,
		stats:      statsRepo,
		dispatcher: dispatcher,
		bus:        bus,
		clock:      clock,
		deps: &JobDeps{
			Jogs:       repo,
			JogService: jogService,
			Stats:      statsRepo,
			Dispatcher: dispatcher,
			EventBus:   bus,
			Metrics:    NewSchedulerMetrics(),
			Location:   time.UTC,
			Logger:     logger,
		},
	}
}

// seedUser installs an aggregate document with a push token
func (f *jobFixture) seedUser(userID common.UserID, token string) *stats.UserStats {
	userStats := stats.NewUserStats(userID, f.clock.Now())
	userStats.PushToken = token
	f.stats.Seed(userStats)
	return userStats
}

// seedJog stores a jog directly, bypassing the service counters
func (f *jobFixture) seedJog(t *testing.T, j *jog.Jog) *jog.Jog {
	if j.ID == "" {
		j.ID = common.JogID(common.NewID())
	}
	require.NoError(t, f.repo.Create(context.Background(), j))
	return j
}

func TestReminderSweepJob(t *testing.T) {
	due := time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC)
	now := due.Add(-29 * time.Minute) // 30-minute offset, one-minute sweep shift
	f := newJobFixture(t, now)
	f.seedUser("user-1", "token-1")
	seeded := f.seedJog(t, &jog.Jog{
		UserID:          "user-1",
		Title:           "stretch",
		DueDate:         due,
		CompleteStatus:  common.StatusUpcoming,
		ReminderEnabled: true,
		ReminderIntervals: []jog.IntervalGroup{
			{Intervals: []int{30}, CountOfIntervals: 1},
		},
	})

	job := NewReminderSweepJob(f.deps, 1)
	require.NoError(t, job.Run(context.Background(), now))

	messages := f.dispatcher.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "token-1", messages[0].To)
	assert.Contains(t, messages[0].Body, "30 minutes")

	// trigger counters committed
	stored, err := f.repo.GetByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.True(t, stored.ReminderIntervals[0].HasTriggered)

	// per-user delivery counter
	assert.Equal(t, int64(1), f.stats.IncrementFor("user-1", stats.PathNotificationsSent))

	// same minute again: budget spent, no duplicate send
	require.NoError(t, job.Run(context.Background(), now))
	assert.Len(t, f.dispatcher.Messages(), 1)
}

func TestReminderSweepJob_NoTokenDropsMessage(t *testing.T) {
	due := time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC)
	now := due.Add(-29 * time.Minute)
	f := newJobFixture(t, now)
	seeded := f.seedJog(t, &jog.Jog{
		UserID:          "user-1",
		Title:           "stretch",
		DueDate:         due,
		CompleteStatus:  common.StatusUpcoming,
		ReminderEnabled: true,
		ReminderIntervals: []jog.IntervalGroup{
			{Intervals: []int{30}, CountOfIntervals: 1},
		},
	})

	job := NewReminderSweepJob(f.deps, 1)
	require.NoError(t, job.Run(context.Background(), now))

	assert.Empty(t, f.dispatcher.Messages())

	// the trigger budget is still spent: delivery is best-effort
	stored, err := f.repo.GetByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.True(t, stored.ReminderIntervals[0].HasTriggered)
}

func TestReminderSweepJob_DispatchFailureDoesNotBlockState(t *testing.T) {
	due := time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC)
	now := due.Add(-29 * time.Minute)
	f := newJobFixture(t, now)
	f.seedUser("user-1", "token-1")
	f.dispatcher.SetSendError(notification.NewDispatchError("gateway_request", assert.AnError))
	seeded := f.seedJog(t, &jog.Jog{
		UserID:          "user-1",
		Title:           "stretch",
		DueDate:         due,
		CompleteStatus:  common.StatusUpcoming,
		ReminderEnabled: true,
		ReminderIntervals: []jog.IntervalGroup{
			{Intervals: []int{30}, CountOfIntervals: 1},
		},
	})

	job := NewReminderSweepJob(f.deps, 1)
	require.NoError(t, job.Run(context.Background(), now))

	stored, err := f.repo.GetByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.True(t, stored.ReminderIntervals[0].HasTriggered)
	assert.Equal(t, int64(1), f.stats.IncrementFor("user-1", stats.PathNotificationsFailed))
}

func TestReminderSweepJob_OnlyUpcomingDueToday(t *testing.T) {
	now := time.Date(2025, 6, 15, 23, 31, 0, 0, time.UTC)
	f := newJobFixture(t, now)
	f.seedUser("user-1", "token-1")

	// due shortly after midnight: the 60-minute offset lands on this
	// evening's minute bucket but the jog belongs to tomorrow's sweep
	f.seedJog(t, &jog.Jog{
		UserID:          "user-1",
		Title:           "early jog",
		DueDate:         time.Date(2025, 6, 16, 0, 30, 0, 0, time.UTC),
		CompleteStatus:  common.StatusUpcoming,
		ReminderEnabled: true,
		ReminderIntervals: []jog.IntervalGroup{
			{Intervals: []int{60}, CountOfIntervals: 1},
		},
	})
	// not yet evaluated: only upcoming jogs carry reminders
	f.seedJog(t, &jog.Jog{
		UserID:          "user-1",
		Title:           "unevaluated jog",
		DueDate:         time.Date(2025, 6, 15, 23, 45, 0, 0, time.UTC),
		CompleteStatus:  common.StatusLoading,
		ReminderEnabled: true,
		ReminderIntervals: []jog.IntervalGroup{
			{Intervals: []int{15}, CountOfIntervals: 1},
		},
	})

	job := NewReminderSweepJob(f.deps, 1)
	require.NoError(t, job.Run(context.Background(), now))

	assert.Empty(t, f.dispatcher.Messages())
	assert.Equal(t, 0, f.repo.BatchCount())
}

func TestReminderSweepJob_SkipsMalformedJog(t *testing.T) {
	due := time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC)
	now := due.Add(-29 * time.Minute)
	f := newJobFixture(t, now)
	f.seedUser("user-1", "token-1")
	f.seedJog(t, &jog.Jog{
		UserID:          "", // malformed: no owner
		ID:              "broken",
		Title:           "broken",
		DueDate:         due,
		CompleteStatus:  common.StatusUpcoming,
		ReminderEnabled: true,
		ReminderIntervals: []jog.IntervalGroup{
			{Intervals: []int{30}, CountOfIntervals: 1},
		},
	})

	job := NewReminderSweepJob(f.deps, 1)
	require.NoError(t, job.Run(context.Background(), now))

	assert.Empty(t, f.dispatcher.Messages())
	assert.Equal(t, int64(1), f.deps.Metrics.GetMetricsSummary().JogsSkipped)
}

// shortResultDispatcher acknowledges only the first message of a batch
type shortResultDispatcher struct{}

func (shortResultDispatcher) SendBatch(ctx context.Context, messages []notification.Message) ([]notification.DeliveryResult, error) {
	if len(messages) == 0 {
		return nil, nil
	}
	return []notification.DeliveryResult{{To: messages[0].To, OK: true}}, nil
}

func TestNotifyUsers_ShortResultSliceCountsTailFailed(t *testing.T) {
	due := time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC)
	now := due.Add(-29 * time.Minute)
	f := newJobFixture(t, now)
	f.seedUser("user-1", "token-1")
	f.deps.Dispatcher = shortResultDispatcher{}

	for _, title := range []string{"first", "second"} {
		f.seedJog(t, &jog.Jog{
			UserID:          "user-1",
			Title:           title,
			DueDate:         due,
			CompleteStatus:  common.StatusUpcoming,
			ReminderEnabled: true,
			ReminderIntervals: []jog.IntervalGroup{
				{Intervals: []int{30}, CountOfIntervals: 1},
			},
		})
	}

	job := NewReminderSweepJob(f.deps, 1)
	require.NoError(t, job.Run(context.Background(), now))

	assert.Equal(t, int64(1), f.stats.IncrementFor("user-1", stats.PathNotificationsSent))
	assert.Equal(t, int64(1), f.stats.IncrementFor("user-1", stats.PathNotificationsFailed))
}

func TestDueNowJob(t *testing.T) {
	due := time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC)
	f := newJobFixture(t, due)
	f.seedUser("user-1", "token-1")
	f.seedJog(t, &jog.Jog{
		UserID:         "user-1",
		Title:          "stand-up meeting",
		DueDate:        due,
		CompleteStatus: common.StatusUpcoming,
	})
	// due a minute later: outside the bucket
	f.seedJog(t, &jog.Jog{
		UserID:         "user-1",
		Title:          "later",
		DueDate:        due.Add(time.Minute),
		CompleteStatus: common.StatusUpcoming,
	})

	job := NewDueNowJob(f.deps)
	require.NoError(t, job.Run(context.Background(), due.Add(10*time.Second)))

	messages := f.dispatcher.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "It's time", messages[0].Title)
	assert.Contains(t, messages[0].Body, "stand-up meeting")
}

func TestDueNowJob_StepBased(t *testing.T) {
	base := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	f := newJobFixture(t, base)
	f.seedUser("user-1", "token-1")
	f.seedJog(t, &jog.Jog{
		UserID:         "user-1",
		Title:          "morning routine",
		DueDate:        base.Add(2 * time.Hour),
		CompleteStatus: common.StatusUpcoming,
		IsStepBased:    true,
		Steps: []jog.Step{
			{ID: "s1", Title: "shower", DueDate: base},
			{ID: "s2", Title: "done already", DueDate: base, Completed: true},
			{ID: "s3", Title: "breakfast", DueDate: base.Add(30 * time.Minute)},
		},
	})

	job := NewDueNowJob(f.deps)
	require.NoError(t, job.Run(context.Background(), base.Add(5*time.Second)))

	messages := f.dispatcher.Messages()
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0].Body, "shower")
	assert.Equal(t, "s1", messages[0].Data["stepId"])
}

func TestOverdueSweepJob(t *testing.T) {
	due := time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC)
	f := newJobFixture(t, due)
	seeded := f.seedJog(t, &jog.Jog{
		UserID:         "user-1",
		Title:          "call the dentist",
		DueDate:        due,
		CompleteStatus: common.StatusUpcoming,
	})

	job := NewOverdueSweepJob(f.deps, 60)

	// inside the grace window: untouched
	f.clock.SetTime(due.Add(30 * time.Second))
	require.NoError(t, job.Run(context.Background(), due.Add(30*time.Second)))
	stored, err := f.repo.GetByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, common.StatusUpcoming, stored.CompleteStatus)

	// past the grace window: promoted
	f.clock.SetTime(due.Add(2 * time.Minute))
	require.NoError(t, job.Run(context.Background(), due.Add(2*time.Minute)))
	stored, err = f.repo.GetByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, common.StatusOverdue, stored.CompleteStatus)

	// promotion is uncounted: no completion-rate movement
	assert.Equal(t, int64(0),
		f.stats.IncrementFor("user-1", stats.CompletionRatePath(stats.FieldMissedJogsTotal)))

	// second run with no time change is a no-op
	batches := f.repo.BatchCount()
	require.NoError(t, job.Run(context.Background(), due.Add(2*time.Minute)))
	assert.Equal(t, batches, f.repo.BatchCount())
}

func TestMidnightRolloverJob_Due(t *testing.T) {
	f := newJobFixture(t, time.Time{})
	job := NewMidnightRolloverJob(f.deps)

	assert.True(t, job.Due(time.Date(2025, 6, 16, 0, 0, 30, 0, time.UTC)))
	assert.False(t, job.Due(time.Date(2025, 6, 16, 0, 1, 0, 0, time.UTC)))
	assert.False(t, job.Due(time.Date(2025, 6, 15, 23, 59, 0, 0, time.UTC)))
}

func TestMidnightRolloverJob(t *testing.T) {
	due := time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC)
	midnight := time.Date(2025, 6, 16, 0, 0, 20, 0, time.UTC)
	f := newJobFixture(t, midnight)
	f.clock.SetTime(midnight)

	overdue := f.seedJog(t, &jog.Jog{
		UserID:         "user-1",
		Title:          "yesterday's jog",
		DueDate:        due,
		CompleteStatus: common.StatusOverdue,
	})
	completedAt := due.Add(-time.Hour)
	completed := f.seedJog(t, &jog.Jog{
		UserID:         "user-1",
		Title:          "finished jog",
		DueDate:        due,
		Completed:      true,
		CompletedAt:    &completedAt,
		CompleteStatus: common.StatusCompletedOnTime,
	})
	today := f.seedJog(t, &jog.Jog{
		UserID:         "user-1",
		Title:          "today's jog",
		DueDate:        midnight.Add(10 * time.Hour),
		CompleteStatus: common.StatusUpcoming,
	})

	job := NewMidnightRolloverJob(f.deps)
	require.NoError(t, job.Run(context.Background(), midnight))

	stored, err := f.repo.GetByID(context.Background(), overdue.ID)
	require.NoError(t, err)
	assert.Equal(t, common.StatusIncomplete, stored.CompleteStatus)
	assert.Equal(t, int64(1),
		f.stats.IncrementFor("user-1", stats.CompletionRatePath(stats.FieldMissedJogsTotal)))

	stored, err = f.repo.GetByID(context.Background(), completed.ID)
	require.NoError(t, err)
	assert.Equal(t, common.StatusCompletedOnTime, stored.CompleteStatus)

	stored, err = f.repo.GetByID(context.Background(), today.ID)
	require.NoError(t, err)
	assert.Equal(t, common.StatusUpcoming, stored.CompleteStatus)

	// questionnaire flags reset for the new day
	assert.Equal(t, 1, f.stats.ResetCalls())

	// re-running inside the same minute changes nothing further
	require.NoError(t, job.Run(context.Background(), midnight))
	assert.Equal(t, int64(1),
		f.stats.IncrementFor("user-1", stats.CompletionRatePath(stats.FieldMissedJogsTotal)))
}

func TestStreakRollupJob_Due(t *testing.T) {
	f := newJobFixture(t, time.Time{})
	job, err := NewStreakRollupJob(f.deps, "23:55")
	require.NoError(t, err)

	assert.True(t, job.Due(time.Date(2025, 6, 15, 23, 55, 40, 0, time.UTC)))
	assert.False(t, job.Due(time.Date(2025, 6, 15, 23, 54, 0, 0, time.UTC)))

	_, err = NewStreakRollupJob(f.deps, "midnight-ish")
	assert.True(t, IsConfigurationError(err))
}

func TestStreakRollupJob(t *testing.T) {
	rollup := time.Date(2025, 6, 15, 23, 55, 0, 0, time.UTC)
	f := newJobFixture(t, rollup)

	alice := f.seedUser("alice", "token-a")
	alice.JogStats.CurrentStreak = 3
	alice.JogStats.BestStreak = 3
	bob := f.seedUser("bob", "token-b")
	bob.JogStats.CurrentStreak = 7
	bob.JogStats.BestStreak = 9

	dayStart := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	f.seedJog(t, &jog.Jog{
		UserID:         "alice",
		Title:          "a1",
		DueDate:        dayStart.Add(9 * time.Hour),
		Completed:      true,
		CompleteStatus: common.StatusCompletedOnTime,
	})
	f.seedJog(t, &jog.Jog{
		UserID:         "alice",
		Title:          "a2",
		DueDate:        dayStart.Add(15 * time.Hour),
		Completed:      true,
		CompleteStatus: common.StatusCompletedLate,
	})
	f.seedJog(t, &jog.Jog{
		UserID:         "bob",
		Title:          "b1",
		DueDate:        dayStart.Add(10 * time.Hour),
		CompleteStatus: common.StatusOverdue,
	})

	job, err := NewStreakRollupJob(f.deps, "23:55")
	require.NoError(t, err)
	require.NoError(t, job.Run(context.Background(), rollup))

	// alice completed everything: streak extends to a new best
	assert.Equal(t, int64(4), alice.JogStats.CurrentStreak)
	assert.Equal(t, int64(4), alice.JogStats.BestStreak)

	// bob missed one: streak breaks, best stays
	assert.Equal(t, int64(0), bob.JogStats.CurrentStreak)
	assert.Equal(t, int64(9), bob.JogStats.BestStreak)

	// exactly one summary push per rolled-up user
	messages := f.dispatcher.Messages()
	require.Len(t, messages, 2)
	byToken := make(map[string]notification.Message)
	for _, msg := range messages {
		byToken[msg.To] = msg
	}
	assert.Equal(t, "Streak extended", byToken["token-a"].Title)
	assert.Contains(t, byToken["token-a"].Body, "4 days")
	assert.Equal(t, "Streak broken", byToken["token-b"].Title)

	// re-running the same day is a no-op per user, with no second push
	require.NoError(t, job.Run(context.Background(), rollup))
	assert.Equal(t, int64(4), alice.JogStats.CurrentStreak)
	assert.Equal(t, int64(0), bob.JogStats.CurrentStreak)
	assert.Len(t, f.dispatcher.Messages(), 2)
}

func TestStreakRollupJob_ZeroJogUsersUntouched(t *testing.T) {
	rollup := time.Date(2025, 6, 15, 23, 55, 0, 0, time.UTC)
	f := newJobFixture(t, rollup)

	carol := f.seedUser("carol", "token-c")
	carol.JogStats.CurrentStreak = 5
	carol.JogStats.BestStreak = 5

	job, err := NewStreakRollupJob(f.deps, "23:55")
	require.NoError(t, err)
	require.NoError(t, job.Run(context.Background(), rollup))

	// an empty day neither extends nor breaks the streak, and says nothing
	assert.Equal(t, int64(5), carol.JogStats.CurrentStreak)
	assert.Empty(t, f.dispatcher.Messages())
}

func TestQuestionnaireJob(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 0, 10, 0, time.UTC)
	f := newJobFixture(t, now)

	ready := f.seedUser("ready-user", "token-r")
	ready.SymptomStats.QuestionnaireTime = "14:00"
	ready.SymptomStats.QuestionnaireTimeSet = true

	later := f.seedUser("later-user", "token-l")
	later.SymptomStats.QuestionnaireTime = "20:00"
	later.SymptomStats.QuestionnaireTimeSet = true

	unset := f.seedUser("unset-user", "token-u")
	unset.SymptomStats.QuestionnaireTimeSet = false

	job := NewQuestionnaireJob(f.deps)
	require.NoError(t, job.Run(context.Background(), now))

	messages := f.dispatcher.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "token-r", messages[0].To)
	assert.True(t, ready.SymptomStats.QuestionnaireReady)
	assert.False(t, later.SymptomStats.QuestionnaireReady)

	// next minute: the prompted user is no longer a candidate
	require.NoError(t, job.Run(context.Background(), now.Add(time.Minute)))
	assert.Len(t, f.dispatcher.Messages(), 1)
}

func TestQuestionnaireJob_MissedMinuteStillPrompts(t *testing.T) {
	// the tick for 14:00 was lost; the 14:03 tick still prompts
	now := time.Date(2025, 6, 15, 14, 3, 0, 0, time.UTC)
	f := newJobFixture(t, now)

	user := f.seedUser("user-1", "token-1")
	user.SymptomStats.QuestionnaireTime = "14:00"
	user.SymptomStats.QuestionnaireTimeSet = true

	job := NewQuestionnaireJob(f.deps)
	require.NoError(t, job.Run(context.Background(), now))

	assert.Len(t, f.dispatcher.Messages(), 1)
}

func TestQuestionnaireJob_MalformedTimeSkipped(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC)
	f := newJobFixture(t, now)

	user := f.seedUser("user-1", "token-1")
	user.SymptomStats.QuestionnaireTime = "2pm"
	user.SymptomStats.QuestionnaireTimeSet = true

	job := NewQuestionnaireJob(f.deps)
	require.NoError(t, job.Run(context.Background(), now))

	assert.Empty(t, f.dispatcher.Messages())
	assert.False(t, user.SymptomStats.QuestionnaireReady)
}
