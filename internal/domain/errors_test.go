package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestParameterError(t *testing.T) {
	err := NewParameterError("rayon", "must be positive")

	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatal("expected ErrInvalidParameter")
	}
	wrapped := fmt.Errorf("search: %w", err)
	var pe *ParameterError
	if !errors.As(wrapped, &pe) || pe.Name != "rayon" {
		t.Fatalf("errors.As = %v", pe)
	}
	if !strings.Contains(err.Error(), "rayon: must be positive") {
		t.Errorf("message = %q", err.Error())
	}
}
