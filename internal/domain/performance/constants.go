package performance

const (
	GoalStatusNotStarted = "not_started"
	GoalStatusInProgress = "in_progress"
	GoalStatusCompleted  = "completed"
)

// Goal types offered by the goal tracking form.
var GoalTypes = []string{"short_term", "long_term", "personal", "team"}
