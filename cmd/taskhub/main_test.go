package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/runoshun/taskhub/internal/domain"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want int
	}{
		{name: "not found", err: domain.ErrTaskNotFound, want: 2},
		{name: "forbidden", err: domain.ErrNotAllowed, want: 2},
		{name: "validation", err: fmt.Errorf("edit: %w", domain.ErrInvalidStatus), want: 2},
		{name: "not initialized", err: domain.ErrNotInitialized, want: 1},
		{name: "storage", err: errors.New("disk I/O error"), want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
