package scheduler

import (
	"sync"
	"time"
)

// SchedulerMetrics tracks per-job run counts and health for the scheduler
type SchedulerMetrics struct {
	mu                  sync.RWMutex
	JobRuns             map[string]int64
	JobErrors           map[string]int64
	JogsSkipped         int64
	NotificationsSent   int64
	NotificationsFailed int64
	LastRunTimes        map[string]time.Time
	totalRunTime        time.Duration
	runCycles           int64
}

// JobStatus summarizes one job's recent activity
type JobStatus struct {
	Runs    int64     `json:"runs"`
	Errors  int64     `json:"errors"`
	LastRun time.Time `json:"last_run"`
}

// MetricsSummary provides a summary of scheduler metrics
type MetricsSummary struct {
	Jobs                map[string]JobStatus `json:"jobs"`
	JogsSkipped         int64                `json:"jogs_skipped"`
	NotificationsSent   int64                `json:"notifications_sent"`
	NotificationsFailed int64                `json:"notifications_failed"`
	AverageRunTime      string               `json:"average_run_time"`
}

// NewSchedulerMetrics creates a new metrics instance
func NewSchedulerMetrics() *SchedulerMetrics {
	return &SchedulerMetrics{
		JobRuns:      make(map[string]int64),
		JobErrors:    make(map[string]int64),
		LastRunTimes: make(map[string]time.Time),
	}
}

// RecordJobRun records a completed job tick with its duration
func (m *SchedulerMetrics) RecordJobRun(jobName string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.JobRuns[jobName]++
	m.LastRunTimes[jobName] = time.Now()
	m.totalRunTime += duration
	m.runCycles++
}

// RecordJobError increments the error counter for a job
func (m *SchedulerMetrics) RecordJobError(jobName string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.JobErrors[jobName]++
}

// RecordJogSkipped counts a malformed document skipped during a sweep
func (m *SchedulerMetrics) RecordJogSkipped() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.JogsSkipped++
}

// RecordDispatch records the outcome of one notification dispatch batch
func (m *SchedulerMetrics) RecordDispatch(sent, failed int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.NotificationsSent += sent
	m.NotificationsFailed += failed
}

// IsHealthy reports whether every job has run recently with a tolerable
// error rate
func (m *SchedulerMetrics) IsHealthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for jobName, last := range m.LastRunTimes {
		if time.Since(last) > 5*time.Minute {
			return false
		}
		runs := m.JobRuns[jobName]
		errors := m.JobErrors[jobName]
		if runs+errors > 0 && float64(errors)/float64(runs+errors) >= 0.5 {
			return false
		}
	}
	return true
}

// GetMetricsSummary returns a snapshot of all counters
func (m *SchedulerMetrics) GetMetricsSummary() MetricsSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	jobs := make(map[string]JobStatus, len(m.JobRuns))
	for name, runs := range m.JobRuns {
		jobs[name] = JobStatus{
			Runs:    runs,
			Errors:  m.JobErrors[name],
			LastRun: m.LastRunTimes[name],
		}
	}

	var avg time.Duration
	if m.runCycles > 0 {
		avg = m.totalRunTime / time.Duration(m.runCycles)
	}

	return MetricsSummary{
		Jobs:                jobs,
		JogsSkipped:         m.JogsSkipped,
		NotificationsSent:   m.NotificationsSent,
		NotificationsFailed: m.NotificationsFailed,
		AverageRunTime:      avg.String(),
	}
}

// Reset resets all metrics to zero
func (m *SchedulerMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.JobRuns = make(map[string]int64)
	m.JobErrors = make(map[string]int64)
	m.JogsSkipped = 0
	m.NotificationsSent = 0
	m.NotificationsFailed = 0
	m.LastRunTimes = make(map[string]time.Time)
	m.totalRunTime = 0
	m.runCycles = 0
}
