package jog

import (
	"time"

	"jogapp-api/internal/common"
)

// ComputeStatus computes the lifecycle status of a jog from its current
// fields and the current time. The function is pure so it can be driven both
// from the on-write reactive path and from the periodic sweeps.
//
// Resolution order:
//  1. completed jogs are completedOnTime or completedLate depending on
//     completedAt vs dueDate
//  2. a jog whose due date's calendar day has ended is incomplete
//  3. a jog past its due date on the same day is overdue
//  4. otherwise upcoming
//
// A jog never becomes incomplete on the same calendar day as its due date,
// and a completed status never regresses here: completion wins over time.
func ComputeStatus(j *Jog, now time.Time, loc *time.Location) common.CompleteStatus {
	if j.Completed {
		completedAt := j.UpdatedAt
		if j.CompletedAt != nil {
			completedAt = *j.CompletedAt
		}
		if !completedAt.After(j.DueDate) {
			return common.StatusCompletedOnTime
		}
		return common.StatusCompletedLate
	}

	if common.DayEnded(j.DueDate, now, loc) {
		return common.StatusIncomplete
	}

	if now.After(j.DueDate) {
		return common.StatusOverdue
	}

	return common.StatusUpcoming
}

// ComputeStepStatus applies the same lifecycle rules to a step against its
// own due date
func ComputeStepStatus(s Step, now time.Time, loc *time.Location) common.CompleteStatus {
	if s.Completed {
		if s.CompleteStatus.IsCompleted() {
			return s.CompleteStatus
		}
		return common.StatusCompletedOnTime
	}
	if common.DayEnded(s.DueDate, now, loc) {
		return common.StatusIncomplete
	}
	if now.After(s.DueDate) {
		return common.StatusOverdue
	}
	return common.StatusUpcoming
}

// StepsOnParentIncomplete returns the steps rewritten for a parent that has
// rolled over to incomplete: steps inherit incomplete, completed steps keep
// their completed state.
func StepsOnParentIncomplete(steps []Step) []Step {
	out := make([]Step, len(steps))
	for i, s := range steps {
		if !s.Completed {
			s.CompleteStatus = common.StatusIncomplete
		}
		out[i] = s
	}
	return out
}

// StepsOnParentCompleted returns the steps rewritten for a parent completed
// at completedAt: remaining steps are marked completed, on time or late
// relative to the parent's completion instant vs each step's own due date.
func StepsOnParentCompleted(steps []Step, completedAt time.Time) []Step {
	out := make([]Step, len(steps))
	for i, s := range steps {
		if !s.Completed {
			s.Completed = true
			if !completedAt.After(s.DueDate) {
				s.CompleteStatus = common.StatusCompletedOnTime
			} else {
				s.CompleteStatus = common.StatusCompletedLate
			}
		}
		out[i] = s
	}
	return out
}

// StatusDelta is the completion-rate counter adjustment produced by one
// status transition. Increment the new status's bucket and decrement the old
// one if it was previously counted, so repeated recomputation of the same
// transition nets to zero.
type StatusDelta struct {
	CompletedOnTime int64
	CompletedLate   int64
	Missed          int64
	TotalCompleted  int64
}

// IsZero reports whether the delta adjusts nothing
func (d StatusDelta) IsZero() bool {
	return d == StatusDelta{}
}

// DeltaFor computes the counter adjustment for an old -> new status
// transition. Transitions between uncounted states (upcoming, overdue,
// loading) produce a zero delta.
func DeltaFor(old, new common.CompleteStatus) StatusDelta {
	var d StatusDelta
	if old == new {
		return d
	}
	d = addBucket(d, new, 1)
	d = addBucket(d, old, -1)
	return d
}

func addBucket(d StatusDelta, s common.CompleteStatus, sign int64) StatusDelta {
	switch s {
	case common.StatusCompletedOnTime:
		d.CompletedOnTime += sign
		d.TotalCompleted += sign
	case common.StatusCompletedLate:
		d.CompletedLate += sign
		d.TotalCompleted += sign
	case common.StatusIncomplete:
		d.Missed += sign
	}
	return d
}
