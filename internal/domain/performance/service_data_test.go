package performance

import (
	"context"
	"testing"
	"time"
)

type fakeStore struct {
	goals   []Goal
	created []Goal
}

func (f *fakeStore) EmployeeIDByUserID(_ context.Context, _, userID string) (string, error) {
	return "emp-" + userID, nil
}

func (f *fakeStore) ListGoals(_ context.Context, _, employeeID string) ([]Goal, error) {
	if employeeID == "" {
		return f.goals, nil
	}
	var out []Goal
	for _, g := range f.goals {
		if g.EmployeeID == employeeID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateGoal(_ context.Context, _ string, goal Goal) (string, error) {
	f.created = append(f.created, goal)
	return "g-new", nil
}

func day(d int) time.Time {
	return time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildGoalSummary(t *testing.T) {
	goals := []Goal{
		{GoalType: "team", Progress: 100, Status: GoalStatusCompleted, EndDate: day(1)},
		{GoalType: "team", Progress: 50, Status: GoalStatusInProgress, EndDate: day(5)},
		{GoalType: "personal", Progress: 0, Status: GoalStatusNotStarted, EndDate: day(30)},
		{GoalType: "personal", Progress: 30, Status: GoalStatusInProgress, EndDate: day(20)},
	}
	summary := buildGoalSummary(goals, day(10))

	if summary.GoalsTotal != 4 || summary.GoalsCompleted != 1 {
		t.Fatalf("unexpected totals: %+v", summary)
	}
	if summary.CompletionRate != 0.25 {
		t.Fatalf("expected completion rate 0.25, got %v", summary.CompletionRate)
	}
	if summary.AverageProgress != 45 {
		t.Fatalf("expected average progress 45, got %v", summary.AverageProgress)
	}
	if summary.ByType["team"] != 2 || summary.ByType["personal"] != 2 {
		t.Fatalf("unexpected type breakdown: %+v", summary.ByType)
	}
	if summary.Overdue != 1 {
		t.Fatalf("expected one overdue goal, got %d", summary.Overdue)
	}
}

func TestBuildGoalSummaryHandlesNoGoals(t *testing.T) {
	summary := buildGoalSummary(nil, day(1))
	if summary.CompletionRate != 0 || summary.AverageProgress != 0 {
		t.Fatalf("expected zero rates, got %+v", summary)
	}
	if len(summary.ByType) != 0 {
		t.Fatalf("expected empty type breakdown, got %+v", summary.ByType)
	}
}

func TestCreateGoalDerivesStatus(t *testing.T) {
	tests := []struct {
		progress float64
		want     string
	}{
		{0, GoalStatusNotStarted},
		{40, GoalStatusInProgress},
		{100, GoalStatusCompleted},
	}
	for _, tt := range tests {
		store := &fakeStore{}
		svc := NewService(store)
		if _, err := svc.CreateGoal(context.Background(), "t1", Goal{StartDate: day(1), EndDate: day(2), Progress: tt.progress}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := store.created[0].Status; got != tt.want {
			t.Fatalf("progress %v: expected %s, got %s", tt.progress, tt.want, got)
		}
	}
}

func TestCreateGoalValidation(t *testing.T) {
	svc := NewService(&fakeStore{})
	if _, err := svc.CreateGoal(context.Background(), "t1", Goal{StartDate: day(1), EndDate: day(2), Progress: 120}); err != ErrInvalidProgress {
		t.Fatalf("expected ErrInvalidProgress, got %v", err)
	}
	if _, err := svc.CreateGoal(context.Background(), "t1", Goal{StartDate: day(5), EndDate: day(2)}); err != ErrInvalidRange {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestSummaryFiltersByEmployee(t *testing.T) {
	svc := NewService(&fakeStore{goals: []Goal{
		{EmployeeID: "e1", GoalType: "team", Status: GoalStatusCompleted, Progress: 100},
		{EmployeeID: "e2", GoalType: "team", Status: GoalStatusNotStarted},
	}})
	summary, err := svc.Summary(context.Background(), "t1", "e1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.GoalsTotal != 1 || summary.GoalsCompleted != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}
