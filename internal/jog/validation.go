package jog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Business rule constants
const (
	MinJogTitleLength = 1
	MaxJogTitleLength = 255
	MaxStepsPerJog    = 50
	MaxIntervalGroups = 5
)

// JogValidator provides validation for jog operations
type JogValidator struct {
	validate *validator.Validate
}

// NewJogValidator creates a new JogValidator
func NewJogValidator() *JogValidator {
	return &JogValidator{
		validate: validator.New(),
	}
}

// ValidateJog performs comprehensive validation on a jog at creation time
func (v *JogValidator) ValidateJog(j *Jog) error {
	if j == nil {
		return NewJogValidationError("jog", nil, "jog cannot be nil")
	}

	// Struct-tag pass covers required fields, including nested steps
	if err := v.validate.Struct(j); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
			fe := fieldErrors[0]
			return NewJogValidationError(strings.ToLower(fe.Field()), fe.Value(),
				fmt.Sprintf("failed %s validation", fe.Tag()))
		}
		return NewJogValidationError("jog", nil, err.Error())
	}

	if strings.TrimSpace(j.Title) == "" {
		return NewJogValidationError("title", j.Title, "title is required")
	}
	if len(j.Title) > MaxJogTitleLength {
		return NewJogValidationError("title", j.Title, fmt.Sprintf("title cannot exceed %d characters", MaxJogTitleLength))
	}

	if len(j.ReminderIntervals) > MaxIntervalGroups {
		return NewJogValidationError("reminder_intervals", len(j.ReminderIntervals), fmt.Sprintf("cannot exceed %d interval groups", MaxIntervalGroups))
	}
	for gi, g := range j.ReminderIntervals {
		if err := v.ValidateIntervalGroup(g); err != nil {
			return NewJogValidationError(fmt.Sprintf("reminder_intervals[%d]", gi), g, err.Error())
		}
	}

	if j.IsStepBased {
		if len(j.Steps) == 0 {
			return NewJogValidationError("steps", j.Steps, "step-based jog requires at least one step")
		}
		if len(j.Steps) > MaxStepsPerJog {
			return NewJogValidationError("steps", len(j.Steps), fmt.Sprintf("cannot exceed %d steps", MaxStepsPerJog))
		}
		for si, s := range j.Steps {
			if strings.TrimSpace(s.Title) == "" {
				return NewJogValidationError(fmt.Sprintf("steps[%d].title", si), s.Title, "step title is required")
			}
			if s.DueDate.IsZero() {
				return NewJogValidationError(fmt.Sprintf("steps[%d].due_date", si), s.DueDate, "step due date is required")
			}
		}
	} else if len(j.Steps) > 0 {
		return NewJogValidationError("steps", len(j.Steps), "non-step jog cannot carry steps")
	}

	return nil
}

// ValidateIntervalGroup validates one interval group against the allowed
// offset set and trigger-budget consistency
func (v *JogValidator) ValidateIntervalGroup(g IntervalGroup) error {
	if len(g.Intervals) == 0 {
		return NewJogValidationError("intervals", g.Intervals, "interval group requires at least one offset")
	}
	for _, m := range g.Intervals {
		if !AllowedReminderOffsets[m] {
			return NewJogValidationError("intervals", m, "offset must be one of 5, 10, 15, 30, 60 minutes")
		}
	}
	if g.CountOfIntervals <= 0 {
		return NewJogValidationError("count_of_intervals", g.CountOfIntervals, "trigger budget must be positive")
	}
	if g.CurrentInterval < 0 || g.CurrentInterval > g.CountOfIntervals {
		return NewJogValidationError("current_interval", g.CurrentInterval, "trigger counter out of range")
	}
	return nil
}

// ValidateOffsets checks a raw offset list against the allowed set
func ValidateOffsets(offsets []int) error {
	for _, m := range offsets {
		if !AllowedReminderOffsets[m] {
			return NewJogValidationError("reminder_times", m, "offset must be one of 5, 10, 15, 30, 60 minutes")
		}
	}
	return nil
}

// NewIntervalGroup builds a fresh interval group from validated offsets
func NewIntervalGroup(offsets []int) IntervalGroup {
	return IntervalGroup{
		Intervals:        append([]int(nil), offsets...),
		CurrentInterval:  0,
		CountOfIntervals: len(offsets),
		HasTriggered:     false,
	}
}

// ValidateJogFilter validates filter parameters for jog queries
func (v *JogValidator) ValidateJogFilter(filter JogFilter) error {
	if filter.Status != nil && !filter.Status.IsValid() {
		return NewJogValidationError("status", filter.Status, "invalid status in filter")
	}
	for _, s := range filter.Statuses {
		if !s.IsValid() {
			return NewJogValidationError("statuses", s, "invalid status in filter")
		}
	}
	if filter.DueBefore != nil && filter.DueAfter != nil && filter.DueBefore.Before(*filter.DueAfter) {
		return NewJogValidationError("date_range", nil, "due_before must be after due_after")
	}
	if filter.Limit < 0 {
		return NewJogValidationError("limit", filter.Limit, "limit cannot be negative")
	}
	return nil
}

// EndOfDayBound returns an exclusive upper due-date bound for jogs due on
// the same calendar day as t
func EndOfDayBound(start time.Time) time.Time {
	return start.Add(24 * time.Hour)
}
