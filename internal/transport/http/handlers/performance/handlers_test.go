package performancehandler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrmgo/internal/domain/auth"
	"hrmgo/internal/domain/performance"
	"hrmgo/internal/transport/http/handlers/handlertest"
	"hrmgo/internal/transport/http/shared"
)

type goalStore struct {
	byUser  map[string]string
	goals   []performance.Goal
	created []performance.Goal
}

func (s *goalStore) EmployeeIDByUserID(_ context.Context, _, userID string) (string, error) {
	if id, ok := s.byUser[userID]; ok {
		return id, nil
	}
	return "", errors.New("no rows")
}

func (s *goalStore) ListGoals(_ context.Context, _, employeeID string) ([]performance.Goal, error) {
	out := []performance.Goal{}
	for _, g := range s.goals {
		if employeeID == "" || g.EmployeeID == employeeID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *goalStore) CreateGoal(_ context.Context, _ string, goal performance.Goal) (string, error) {
	s.created = append(s.created, goal)
	return "g-new", nil
}

func date(m time.Month, d int) time.Time {
	return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC)
}

func newGoalHandler() (*Handler, *goalStore, *handlertest.Auditor) {
	store := &goalStore{
		byUser: map[string]string{"u-Employee": "e1"},
		goals: []performance.Goal{
			{ID: "g1", EmployeeID: "e1", Employee: "Carol", GoalType: "team", Subject: "Ship v2", StartDate: date(1, 1), EndDate: date(3, 1), Progress: 100, Status: performance.GoalStatusCompleted},
			{ID: "g2", EmployeeID: "e2", Employee: "Alice", GoalType: "personal", Subject: "Learn Go", StartDate: date(1, 1), EndDate: date(2, 1), Progress: 20, Status: performance.GoalStatusInProgress},
		},
	}
	auditor := &handlertest.Auditor{}
	return NewHandler(performance.NewService(store), handlertest.RolePerms(), auditor, nil, shared.PageLimits{Default: 10}), store, auditor
}

func TestListGoalsScopedForEmployees(t *testing.T) {
	h, _, _ := newGoalHandler()

	rec := handlertest.Do(t, handlertest.Router(h, handlertest.User(auth.RoleEmployee)), http.MethodGet, "/goals", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var goals []performance.Goal
	handlertest.DecodeData(t, rec, &goals)
	require.Len(t, goals, 1)
	assert.Equal(t, "g1", goals[0].ID)

	rec = handlertest.Do(t, handlertest.Router(h, handlertest.User(auth.RoleHR)), http.MethodGet, "/goals", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	handlertest.DecodeData(t, rec, &goals)
	require.Len(t, goals, 2)
	assert.Equal(t, "g2", goals[0].ID, "default sort is end date ascending")
}

func TestListGoalsEmployeeWithoutProfile(t *testing.T) {
	h, _, _ := newGoalHandler()
	user := handlertest.User(auth.RoleEmployee)
	user.UserID = "u-unknown"

	rec := handlertest.Do(t, handlertest.Router(h, user), http.MethodGet, "/goals", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var goals []performance.Goal
	handlertest.DecodeData(t, rec, &goals)
	assert.Empty(t, goals)
}

func TestGoalSummary(t *testing.T) {
	h, _, _ := newGoalHandler()

	rec := handlertest.Do(t, handlertest.Router(h, handlertest.User(auth.RoleHR)), http.MethodGet, "/goals/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary performance.GoalSummary
	handlertest.DecodeData(t, rec, &summary)
	assert.Equal(t, 2, summary.GoalsTotal)
	assert.Equal(t, 1, summary.GoalsCompleted)
	assert.Equal(t, 0.5, summary.CompletionRate)

	rec = handlertest.Do(t, handlertest.Router(h, handlertest.User(auth.RoleHR)), http.MethodGet, "/goals/summary?employeeId=e2", nil)
	handlertest.DecodeData(t, rec, &summary)
	assert.Equal(t, 1, summary.GoalsTotal)
}

func TestCreateGoal(t *testing.T) {
	h, store, auditor := newGoalHandler()
	router := handlertest.Router(h, handlertest.User(auth.RoleHR))

	rec := handlertest.Do(t, router, http.MethodPost, "/goals", map[string]any{
		"employeeId": "e2",
		"goalType":   "Team",
		"subject":    "Reduce churn",
		"startDate":  "2024-04-01",
		"endDate":    "2024-06-30",
		"progress":   10,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, store.created, 1)
	assert.Equal(t, "team", store.created[0].GoalType)
	assert.Equal(t, performance.GoalStatusInProgress, store.created[0].Status)
	assert.Equal(t, []string{"performance.goal.create"}, auditor.Actions())
}

func TestCreateGoalValidation(t *testing.T) {
	h, store, _ := newGoalHandler()
	router := handlertest.Router(h, handlertest.User(auth.RoleHR))

	rec := handlertest.Do(t, router, http.MethodPost, "/goals", map[string]any{
		"employeeId": "e2",
		"goalType":   "galactic",
		"subject":    "x",
		"startDate":  "2024-06-30",
		"endDate":    "2024-04-01",
		"progress":   150,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := rec.Body.String()
	for _, field := range []string{"goalType", "startDate", "endDate", "progress"} {
		assert.Contains(t, body, `"field":"`+field+`"`)
	}
	assert.Empty(t, store.created)
}

func TestCreateGoalForbiddenForEmployees(t *testing.T) {
	h, _, _ := newGoalHandler()
	rec := handlertest.Do(t, handlertest.Router(h, handlertest.User(auth.RoleEmployee)), http.MethodPost, "/goals", map[string]any{})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
