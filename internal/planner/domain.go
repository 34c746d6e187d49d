package planner

import "jogapp-api/internal/common"

// JogPlan is one planned jog produced by the planning model. Reminder
// offsets are minutes before the start time.
type JogPlan struct {
	JogName       string     `json:"jogName"`
	StartTime     string     `json:"startTime"`
	ReminderTimes []int      `json:"reminderTimes"`
	IsStepBased   bool       `json:"isStepBased"`
	Steps         []StepPlan `json:"steps,omitempty"`
	Category      string     `json:"category,omitempty"`
}

// StepPlan is one planned step of a step-based jog
type StepPlan struct {
	StepName  string `json:"stepName"`
	StartTime string `json:"startTime"`
}

// PlanRequest describes the user's day to the planning model
type PlanRequest struct {
	UserID      common.UserID
	Description string
	Date        string
	Timezone    string
}

// PlanResponse is the parsed model output
type PlanResponse struct {
	Plans     []JogPlan
	Reasoning string
}
