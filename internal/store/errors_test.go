package store

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors_Distinct(t *testing.T) {
	sentinels := []error{ErrNotFound, ErrValidation, ErrTokenExpired, ErrTokenConsumed}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel %v unexpectedly matches %v", a, b)
			}
		}
	}
}

func TestErrValidation_WrapsWithContext(t *testing.T) {
	err := fmt.Errorf("%w: routine name is required", ErrValidation)

	if !errors.Is(err, ErrValidation) {
		t.Error("wrapped error must match ErrValidation")
	}
	if err.Error() != "invalid input: routine name is required" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}
