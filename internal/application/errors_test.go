package application

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"datasplit/internal/domain"
)

func TestErrorsMatchSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"missing positive data", &MissingPositiveDataError{Dir: "/d/images/all"}, ErrMissingPositiveData},
		{"ambiguous source", &AmbiguousSourceError{Candidates: []string{"a", "b"}}, ErrAmbiguousSource},
		{"allocation mismatch", &AllocationMismatchError{Dir: "/d", Remaining: []string{"x.jpg"}}, ErrAllocationMismatch},
		{"already processed", &AlreadyProcessedError{Dir: "/d", Files: 3}, ErrAlreadyProcessed},
		{"move conflict", &MoveError{Source: "a", Destination: "b", Reason: "exists"}, ErrMoveConflict},
		{"manifest mismatch", &ManifestMismatchError{Stage: domain.StageTrain, Lines: 1, Files: 2}, ErrManifestMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("split failed: %w", tt.err)
			if !errors.Is(wrapped, tt.sentinel) {
				t.Errorf("expected %T to match its sentinel", tt.err)
			}
		})
	}
}

func TestMissingPositiveDataError_TellsOperatorWhatToDo(t *testing.T) {
	msg := (&MissingPositiveDataError{Dir: "/d/images/all"}).Error()
	for _, want := range []string{"/d/images/all", "images/cropped", "images/all"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q does not mention %q", msg, want)
		}
	}
}

func TestNegativeFetchShortfall(t *testing.T) {
	s := NegativeFetchShortfall{Stage: domain.StageTrain, Requested: 1000, Fetched: 800}
	if s.Missing() != 200 {
		t.Errorf("Missing() = %d, want 200", s.Missing())
	}
	if !strings.Contains(s.Error(), "short by 200") {
		t.Errorf("unexpected message %q", s.Error())
	}
}
