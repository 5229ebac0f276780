package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hyperengineering/liftlog/internal/store"
	"github.com/hyperengineering/liftlog/internal/validation"
)

func TestWriteProblem(t *testing.T) {
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/routines/abc", nil)

	WriteProblem(rec, r, http.StatusNotFound, "Resource not found")

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("content type = %q", ct)
	}

	var p Problem
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Type != "https://liftlog.dev/errors/not-found" || p.Title != "Not Found" {
		t.Errorf("unexpected problem %+v", p)
	}
	if p.Instance != "/api/v1/routines/abc" {
		t.Errorf("instance = %q", p.Instance)
	}
}

func TestWriteProblemUnknownStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	WriteProblem(rec, r, http.StatusGone, "gone")

	var p Problem
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Title != "Gone" || p.Type != "https://liftlog.dev/errors/unknown" {
		t.Errorf("unexpected problem %+v", p)
	}
}

func TestWriteProblemWithErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/routines", nil)

	WriteProblemWithErrors(rec, r, "Request contains invalid fields", []validation.ValidationError{
		{Field: "name", Message: "is required"},
	})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}

	var p ProblemWithErrors
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(p.Errors) != 1 || p.Errors[0].Field != "name" {
		t.Errorf("unexpected errors %+v", p.Errors)
	}
}

func TestMapStoreError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", store.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("get task: %w", store.ErrNotFound), http.StatusNotFound},
		{"validation", fmt.Errorf("%w: name must not be empty", store.ErrValidation), http.StatusUnprocessableEntity},
		{"token expired", store.ErrTokenExpired, http.StatusUnauthorized},
		{"token consumed", store.ErrTokenConsumed, http.StatusUnauthorized},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			MapStoreError(rec, r, tt.err)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestMapStoreErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	MapStoreError(rec, r, errors.New("dsn=user:hunter2@host"))

	var p Problem
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Detail != "Internal Server Error" {
		t.Errorf("detail leaked: %q", p.Detail)
	}
}
