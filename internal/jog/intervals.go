package jog

import (
	"time"

	"jogapp-api/internal/common"
)

// TriggeredOffset is one offset that fired during a sweep tick. StepID is
// empty for a non-step jog.
type TriggeredOffset struct {
	Offset     int
	GroupIndex int
	StepID     common.StepID
	StepTitle  string
	NotifyAt   time.Time
}

// DueOffsets decides which configured reminder offsets fire at now and
// advances the interval-group trigger counters. The input jog is not
// mutated; callers persist the returned groups when changed is true.
//
// The adjust duration compensates for sweep granularity: a sweep runs once a
// minute, so the notify instant is shifted forward before the minute-bucket
// comparison. Delivery is at-most-once and best-effort: a missed minute
// bucket is never re-fired.
func DueOffsets(j *Jog, now time.Time, adjust time.Duration) (triggered []TriggeredOffset, groups []IntervalGroup, changed bool) {
	groups = cloneGroups(j.ReminderIntervals)

	if !j.IsStepBased {
		for gi := range groups {
			fired := fireGroupOffsets(&groups[gi], gi, j.DueDate, now, adjust, "", "")
			if len(fired) > 0 {
				triggered = append(triggered, fired...)
				changed = true
			}
		}
		return triggered, groups, changed
	}

	// Step-based jogs share the parent's interval groups but apply the
	// offset math against each step's own due date, skipping completed
	// steps and exhausted groups.
	for _, step := range j.Steps {
		if step.Completed {
			continue
		}
		for gi := range groups {
			fired := fireGroupOffsets(&groups[gi], gi, step.DueDate, now, adjust, step.ID, step.Title)
			if len(fired) > 0 {
				triggered = append(triggered, fired...)
				changed = true
			}
		}
	}
	return triggered, groups, changed
}

func fireGroupOffsets(g *IntervalGroup, gi int, dueDate, now time.Time, adjust time.Duration, stepID common.StepID, stepTitle string) []TriggeredOffset {
	if g.HasTriggered {
		return nil
	}

	var fired []TriggeredOffset
	for _, m := range g.Intervals {
		if g.CurrentInterval >= g.CountOfIntervals {
			break
		}
		notifyAt := dueDate.Add(-time.Duration(m) * time.Minute).Add(adjust)
		if !common.SameMinute(notifyAt, now) {
			continue
		}
		g.CurrentInterval++
		if g.CurrentInterval >= g.CountOfIntervals {
			g.HasTriggered = true
		}
		fired = append(fired, TriggeredOffset{
			Offset:     m,
			GroupIndex: gi,
			StepID:     stepID,
			StepTitle:  stepTitle,
			NotifyAt:   notifyAt,
		})
	}
	return fired
}

// IsDueNow reports whether a non-step jog's due instant falls in the same
// minute bucket as now. The due-now check is independent of the configured
// offsets and carries no trigger budget.
func (j *Jog) IsDueNow(now time.Time) bool {
	return !j.Completed && common.SameMinute(j.DueDate, now)
}

// DueNowSteps returns the incomplete steps whose due instant falls in the
// same minute bucket as now
func (j *Jog) DueNowSteps(now time.Time) []Step {
	var due []Step
	for _, s := range j.Steps {
		if s.Completed {
			continue
		}
		if common.SameMinute(s.DueDate, now) {
			due = append(due, s)
		}
	}
	return due
}

func cloneGroups(groups []IntervalGroup) []IntervalGroup {
	out := make([]IntervalGroup, len(groups))
	for i, g := range groups {
		g.Intervals = append([]int(nil), g.Intervals...)
		out[i] = g
	}
	return out
}
