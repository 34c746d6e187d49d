package planner

import "context"

// PlanProvider defines the interface for day-plan generation backends
type PlanProvider interface {
	// GeneratePlan asks the model to turn a free-text day description into
	// a list of jog plans
	GeneratePlan(ctx context.Context, req PlanRequest) (*PlanResponse, error)

	// ValidateConnection checks that the provider is reachable and
	// configured correctly
	ValidateConnection(ctx context.Context) error
}
