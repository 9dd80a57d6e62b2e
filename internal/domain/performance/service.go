package performance

import (
	"context"
	"time"
)

type Service struct {
	store StoreAPI
	now   func() time.Time
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store, now: time.Now}
}

func (s *Service) EmployeeIDByUserID(ctx context.Context, tenantID, userID string) (string, error) {
	return s.store.EmployeeIDByUserID(ctx, tenantID, userID)
}

func (s *Service) ListGoals(ctx context.Context, tenantID, employeeID string) ([]Goal, error) {
	return s.store.ListGoals(ctx, tenantID, employeeID)
}

// CreateGoal checks the date range and progress, derives the status when the
// caller left it empty, and stores the goal.
func (s *Service) CreateGoal(ctx context.Context, tenantID string, goal Goal) (string, error) {
	if goal.Progress < 0 || goal.Progress > 100 {
		return "", ErrInvalidProgress
	}
	if goal.EndDate.Before(goal.StartDate) {
		return "", ErrInvalidRange
	}
	if goal.Status == "" {
		goal.Status = statusForProgress(goal.Progress)
	}
	return s.store.CreateGoal(ctx, tenantID, goal)
}

func statusForProgress(progress float64) string {
	switch {
	case progress >= 100:
		return GoalStatusCompleted
	case progress > 0:
		return GoalStatusInProgress
	default:
		return GoalStatusNotStarted
	}
}

func (s *Service) Summary(ctx context.Context, tenantID, employeeID string) (GoalSummary, error) {
	goals, err := s.store.ListGoals(ctx, tenantID, employeeID)
	if err != nil {
		return GoalSummary{}, err
	}
	return buildGoalSummary(goals, s.now()), nil
}

func buildGoalSummary(goals []Goal, now time.Time) GoalSummary {
	summary := GoalSummary{
		GoalsTotal: len(goals),
		ByType:     map[string]int{},
	}
	var progress float64
	for _, g := range goals {
		summary.ByType[g.GoalType]++
		progress += g.Progress
		if g.Status == GoalStatusCompleted {
			summary.GoalsCompleted++
			continue
		}
		if g.EndDate.Before(now) {
			summary.Overdue++
		}
	}
	if summary.GoalsTotal > 0 {
		summary.AverageProgress = progress / float64(summary.GoalsTotal)
		summary.CompletionRate = float64(summary.GoalsCompleted) / float64(summary.GoalsTotal)
	}
	return summary
}
