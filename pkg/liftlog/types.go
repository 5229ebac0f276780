package liftlog

import "time"

// TaskType classifies a daily task.
type TaskType string

const (
	TaskTypeMeal    TaskType = "meal"
	TaskTypeWorkout TaskType = "workout"
)

// User is the authenticated account.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Session carries the bearer token and its user.
type Session struct {
	Token string `json:"token,omitempty"`
	User  User   `json:"user"`
}

// RoutineItem is one exercise prescription inside a routine.
type RoutineItem struct {
	ID             string `json:"id"`
	RoutineID      string `json:"routine_id"`
	ExerciseName   string `json:"exercise_name"`
	Series         int    `json:"series"`
	RIR            int    `json:"rir"`
	Tempo          string `json:"tempo"`
	Method         string `json:"method"`
	PrescribedReps string `json:"prescribed_reps"`
	SortOrder      int    `json:"sort_order"`
}

// Routine is a reusable named template of prescribed exercises.
type Routine struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	Name      string        `json:"name"`
	Items     []RoutineItem `json:"items"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// NewRoutineItem is the input shape for routine items.
type NewRoutineItem struct {
	ExerciseName   string `json:"exercise_name"`
	Series         int    `json:"series"`
	RIR            int    `json:"rir"`
	Tempo          string `json:"tempo,omitempty"`
	Method         string `json:"method,omitempty"`
	PrescribedReps string `json:"prescribed_reps,omitempty"`
}

// TaskItem is one exercise instance inside a daily task.
type TaskItem struct {
	ID             string   `json:"id"`
	TaskID         string   `json:"task_id"`
	Title          string   `json:"title"`
	Series         int      `json:"series"`
	RIR            int      `json:"rir"`
	Tempo          string   `json:"tempo"`
	Method         string   `json:"method"`
	PrescribedReps string   `json:"prescribed_reps"`
	SortOrder      int      `json:"sort_order"`
	IsCompleted    bool     `json:"is_completed"`
	ActualReps     *int     `json:"actual_reps,omitempty"`
	ActualWeight   *float64 `json:"actual_weight,omitempty"`
}

// Task is a concrete, date-scheduled workout or meal.
type Task struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	Title        string     `json:"title"`
	TaskType     TaskType   `json:"task_type"`
	IsCompleted  bool       `json:"is_completed"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	ScheduledFor time.Time  `json:"scheduled_for"`
	Items        []TaskItem `json:"items"`
	CreatedAt    time.Time  `json:"created_at"`
}

// NewTaskItem is the input shape for task items.
type NewTaskItem struct {
	Title          string `json:"title"`
	Series         int    `json:"series"`
	RIR            int    `json:"rir"`
	Tempo          string `json:"tempo,omitempty"`
	Method         string `json:"method,omitempty"`
	PrescribedReps string `json:"prescribed_reps,omitempty"`
}

// Day is the task list for one calendar day plus its completion ratio.
type Day struct {
	Date      string `json:"date"`
	Tasks     []Task `json:"tasks"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}

// CreateRoutineParams creates or replaces a routine template.
type CreateRoutineParams struct {
	Name  string           `json:"name"`
	Items []NewRoutineItem `json:"items"`
}

// CreateTaskParams schedules an ad-hoc daily task.
type CreateTaskParams struct {
	Title         string        `json:"title"`
	TaskType      TaskType      `json:"task_type"`
	ScheduledFor  time.Time     `json:"scheduled_for"`
	Items         []NewTaskItem `json:"items,omitempty"`
	SaveAsRoutine bool          `json:"save_as_routine,omitempty"`
}

// Library is the exercise catalog grouped by category.
type Library struct {
	Exercises map[string][]string `json:"exercises"`
}
