package types

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestRoutine_MarshalJSON_NilItems(t *testing.T) {
	r := Routine{ID: "01ARZ3NDEKTSV4RRFFQ69G5FAV", Name: "Push A"}

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(string(data), `"items":[]`) {
		t.Errorf("expected items to marshal as [], got %s", data)
	}
}

func TestDailyTask_MarshalJSON_NilItems(t *testing.T) {
	task := DailyTask{ID: "01ARZ3NDEKTSV4RRFFQ69G5FAV", Title: "Leg Day", TaskType: TaskTypeWorkout}

	data, err := json.Marshal(task)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(string(data), `"items":[]`) {
		t.Errorf("expected items to marshal as [], got %s", data)
	}
	if strings.Contains(string(data), `"completed_at"`) {
		t.Errorf("expected completed_at omitted for incomplete task, got %s", data)
	}
}

func TestDailyTask_MarshalJSON_CompletedAt(t *testing.T) {
	now := time.Now().UTC()
	task := DailyTask{Title: "Leg Day", IsCompleted: true, CompletedAt: &now}

	data, err := json.Marshal(task)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"completed_at"`) {
		t.Errorf("expected completed_at present, got %s", data)
	}
}

func TestDayResponse_MarshalJSON_NilTasks(t *testing.T) {
	data, err := json.Marshal(DayResponse{Date: "2024-06-01"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"tasks":[]`) {
		t.Errorf("expected tasks to marshal as [], got %s", data)
	}
}

func TestGroupLibrary(t *testing.T) {
	entries := []ExerciseLibraryEntry{
		{Name: "Press banca", Category: "Pecho"},
		{Name: "Sentadilla", Category: "Pierna"},
		{Name: "Face pull", Category: ""},
		{Name: "Aperturas", Category: "Pecho"},
	}

	grouped := GroupLibrary(entries)

	if len(grouped["Pecho"]) != 2 {
		t.Errorf("expected 2 chest exercises, got %d", len(grouped["Pecho"]))
	}
	if len(grouped[DefaultCategory]) != 1 || grouped[DefaultCategory][0] != "Face pull" {
		t.Errorf("expected uncategorized entry under %q, got %v", DefaultCategory, grouped[DefaultCategory])
	}
}

func TestMethods_CoverEnum(t *testing.T) {
	want := []Method{MethodNormal, MethodAMRAP, MethodRestPause, MethodDropSet}
	if len(Methods) != len(want) {
		t.Fatalf("expected %d methods, got %d", len(want), len(Methods))
	}
	for i, m := range want {
		if Methods[i] != string(m) {
			t.Errorf("Methods[%d] = %q, want %q", i, Methods[i], m)
		}
	}
}
