package types

import (
	"encoding/json"
	"time"
)

// TaskType classifies a daily task.
type TaskType string

const (
	TaskTypeMeal    TaskType = "meal"
	TaskTypeWorkout TaskType = "workout"
)

// TaskTypes lists the accepted task type values.
var TaskTypes = []string{string(TaskTypeMeal), string(TaskTypeWorkout)}

// Method is the execution method for an exercise prescription.
type Method string

const (
	MethodNormal    Method = "NORMAL"
	MethodAMRAP     Method = "AMRAP"
	MethodRestPause Method = "REST PAUSE"
	MethodDropSet   Method = "DROP SET"
)

// Methods lists the accepted method values.
var Methods = []string{string(MethodNormal), string(MethodAMRAP), string(MethodRestPause), string(MethodDropSet)}

// DefaultCategory is used for library entries without a category.
const DefaultCategory = "Otros"

// ExerciseLibraryEntry is one read-only exercise catalog row.
type ExerciseLibraryEntry struct {
	Name     string `json:"name" yaml:"name"`
	Category string `json:"category" yaml:"category"`
}

// RoutineItem is one exercise prescription inside a routine template.
type RoutineItem struct {
	ID             string `json:"id"`
	RoutineID      string `json:"routine_id"`
	ExerciseName   string `json:"exercise_name"`
	Series         int    `json:"series"`
	RIR            int    `json:"rir"`
	Tempo          string `json:"tempo"`
	Method         Method `json:"method"`
	PrescribedReps string `json:"prescribed_reps"`
	SortOrder      int    `json:"sort_order"`
}

// Routine is a reusable named template of prescribed exercises, independent
// of any date. Items is always present after a successful fetch: an empty
// routine carries an empty slice, never nil.
type Routine struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	Name      string        `json:"name"`
	Items     []RoutineItem `json:"items"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// MarshalJSON ensures a nil Items slice marshals as [] not null.
func (r Routine) MarshalJSON() ([]byte, error) {
	if r.Items == nil {
		r.Items = []RoutineItem{}
	}
	type Alias Routine
	return json.Marshal(Alias(r))
}

// NewRoutineItem is the input shape for creating routine items.
// SortOrder is assigned from the array position at insertion time.
type NewRoutineItem struct {
	ExerciseName   string `json:"exercise_name"`
	Series         int    `json:"series"`
	RIR            int    `json:"rir"`
	Tempo          string `json:"tempo"`
	Method         Method `json:"method"`
	PrescribedReps string `json:"prescribed_reps"`
}

// TaskItem is one exercise instance inside a daily task, carrying both the
// prescription and the performance actually recorded.
//
// Invariant: IsCompleted == true implies ActualReps and ActualWeight are
// both non-nil. No code path sets one without the other.
type TaskItem struct {
	ID             string   `json:"id"`
	TaskID         string   `json:"task_id"`
	Title          string   `json:"title"`
	Series         int      `json:"series"`
	RIR            int      `json:"rir"`
	Tempo          string   `json:"tempo"`
	Method         Method   `json:"method"`
	PrescribedReps string   `json:"prescribed_reps"`
	SortOrder      int      `json:"sort_order"`
	IsCompleted    bool     `json:"is_completed"`
	ActualReps     *int     `json:"actual_reps,omitempty"`
	ActualWeight   *float64 `json:"actual_weight,omitempty"`
}

// DailyTask is a concrete, date-scheduled occurrence of a workout or meal.
//
// Invariant: IsCompleted == false if and only if CompletedAt == nil.
type DailyTask struct {
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

// MarshalJSON ensures a nil Items slice marshals as [] not null.
func (t DailyTask) MarshalJSON() ([]byte, error) {
	if t.Items == nil {
		t.Items = []TaskItem{}
	}
	type Alias DailyTask
	return json.Marshal(Alias(t))
}

// NewTaskItem is the input shape for creating task items. Completion state
// is never accepted on input: copies always start fresh.
type NewTaskItem struct {
	Title          string `json:"title"`
	Series         int    `json:"series"`
	RIR            int    `json:"rir"`
	Tempo          string `json:"tempo"`
	Method         Method `json:"method"`
	PrescribedReps string `json:"prescribed_reps"`
}

// User is an authenticated account. All routines and tasks are scoped to
// exactly one user.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// StoreStats holds aggregate store counts for the health endpoint.
type StoreStats struct {
	UserCount    int64 `json:"user_count"`
	RoutineCount int64 `json:"routine_count"`
	TaskCount    int64 `json:"task_count"`
}

// --- API request/response shapes ---

// LinkRequest asks for a passwordless sign-in link.
type LinkRequest struct {
	Email      string `json:"email"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

// VerifyRequest exchanges a login token for a session.
type VerifyRequest struct {
	Token string `json:"token"`
}

// SessionResponse carries the session token and its user.
type SessionResponse struct {
	Token string `json:"token,omitempty"`
	User  User   `json:"user"`
}

// CreateRoutineRequest creates or replaces a routine template.
type CreateRoutineRequest struct {
	Name  string           `json:"name"`
	Items []NewRoutineItem `json:"items"`
}

// CreateTaskRequest schedules an ad-hoc daily task. When SaveAsRoutine is
// set the same item list is also stored as a routine template.
type CreateTaskRequest struct {
	Title         string        `json:"title"`
	TaskType      TaskType      `json:"task_type"`
	ScheduledFor  time.Time     `json:"scheduled_for"`
	Items         []NewTaskItem `json:"items"`
	SaveAsRoutine bool          `json:"save_as_routine,omitempty"`
}

// CompletionRequest toggles a task's completion flag.
type CompletionRequest struct {
	Completed bool `json:"completed"`
}

// ProgressRequest records performed reps and weight for one task item,
// marking it complete.
type ProgressRequest struct {
	ActualReps   int     `json:"actual_reps"`
	ActualWeight float64 `json:"actual_weight"`
}

// TargetDateRequest names the date a routine is applied to or a task is
// duplicated onto, in YYYY-MM-DD form.
type TargetDateRequest struct {
	Date string `json:"date"`
}

// DayResponse is the task list for one local calendar day plus its
// completion ratio.
type DayResponse struct {
	Date      string      `json:"date"`
	Tasks     []DailyTask `json:"tasks"`
	Completed int         `json:"completed"`
	Total     int         `json:"total"`
}

// MarshalJSON ensures a nil Tasks slice marshals as [] not null.
func (d DayResponse) MarshalJSON() ([]byte, error) {
	if d.Tasks == nil {
		d.Tasks = []DailyTask{}
	}
	type Alias DayResponse
	return json.Marshal(Alias(d))
}

// LibraryResponse is the exercise catalog grouped by category.
type LibraryResponse struct {
	Exercises map[string][]string `json:"exercises"`
}

// MarshalJSON ensures a nil Exercises map marshals as {} not null.
func (l LibraryResponse) MarshalJSON() ([]byte, error) {
	if l.Exercises == nil {
		l.Exercises = map[string][]string{}
	}
	type Alias LibraryResponse
	return json.Marshal(Alias(l))
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	UserCount    int64  `json:"user_count"`
	RoutineCount int64  `json:"routine_count"`
	TaskCount    int64  `json:"task_count"`
}

// GroupLibrary buckets catalog entries by category for presentation,
// defaulting empty categories to DefaultCategory.
func GroupLibrary(entries []ExerciseLibraryEntry) map[string][]string {
	grouped := make(map[string][]string, len(entries))
	for _, e := range entries {
		cat := e.Category
		if cat == "" {
			cat = DefaultCategory
		}
		grouped[cat] = append(grouped[cat], e.Name)
	}
	return grouped
}
