package api

import (
	"context"
	"errors"
	"testing"

	"github.com/hyperengineering/liftlog/internal/types"
)

func TestUserContextRoundTrip(t *testing.T) {
	user := &types.User{ID: "u1", Email: "ana@example.com"}
	ctx := WithUser(context.Background(), user)

	got, err := UserFromContext(ctx)
	if err != nil {
		t.Fatalf("UserFromContext() error = %v", err)
	}
	if got.ID != "u1" {
		t.Errorf("user id = %q, want u1", got.ID)
	}
}

func TestUserFromContextMissing(t *testing.T) {
	if _, err := UserFromContext(context.Background()); !errors.Is(err, ErrNoUserInContext) {
		t.Errorf("error = %v, want ErrNoUserInContext", err)
	}
}

func TestUserFromContextNil(t *testing.T) {
	ctx := WithUser(context.Background(), nil)
	if _, err := UserFromContext(ctx); !errors.Is(err, ErrNoUserInContext) {
		t.Errorf("error = %v, want ErrNoUserInContext", err)
	}
}

func TestMustUserFromContextPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for missing user")
		}
	}()
	MustUserFromContext(context.Background())
}
