package contract

import "context"

// Planner decides the next action for a question given the steps taken so
// far. It never executes tools itself and never sees customer identifiers.
type Planner interface {
	Decide(ctx context.Context, req PlannerRequest) (PlannerDecision, error)
}
