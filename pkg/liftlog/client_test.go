package liftlog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestVerifyInstallsSessionToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/auth/verify" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(Session{Token: "session-abc", User: User{ID: "u1", Email: "ana@example.com"}})
	}))
	defer ts.Close()

	client := New(ts.URL)
	session, err := client.Verify(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if session.User.Email != "ana@example.com" {
		t.Errorf("user = %+v", session.User)
	}
	if client.Token() != "session-abc" {
		t.Errorf("token = %q, want session-abc", client.Token())
	}
}

func TestRequestsCarryBearerToken(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]Routine{})
	}))
	defer ts.Close()

	client := New(ts.URL)
	client.SetToken("session-abc")
	if _, err := client.Routines(context.Background()); err != nil {
		t.Fatalf("Routines() error = %v", err)
	}
	if gotAuth != "Bearer session-abc" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestSignOutClearsToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	client := New(ts.URL)
	client.SetToken("session-abc")
	if err := client.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut() error = %v", err)
	}
	if client.Token() != "" {
		t.Errorf("token not cleared: %q", client.Token())
	}
}

func TestProblemDetailSurfacesInError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{"detail": "name is required"})
	}))
	defer ts.Close()

	client := New(ts.URL)
	_, err := client.CreateRoutine(context.Background(), CreateRoutineParams{})
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("error type = %T", err)
	}
	if apiErr.Status != http.StatusUnprocessableEntity || apiErr.Detail != "name is required" {
		t.Errorf("unexpected error %+v", apiErr)
	}
}
