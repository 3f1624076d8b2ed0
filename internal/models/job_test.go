package models

import "testing"

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to JobStatus }{
		{StatusPending, StatusRunning},
		{StatusPending, StatusCancelled},
		{StatusRunning, StatusCompleted},
		{StatusRunning, StatusFailed},
		{StatusRunning, StatusCancelled},
	}
	for _, tt := range allowed {
		if !CanTransition(tt.from, tt.to) {
			t.Errorf("CanTransition(%s, %s) = false, want true", tt.from, tt.to)
		}
	}

	// No transition leaves a terminal state, and pending cannot skip ahead.
	denied := []struct{ from, to JobStatus }{
		{StatusPending, StatusCompleted},
		{StatusPending, StatusFailed},
		{StatusCompleted, StatusRunning},
		{StatusFailed, StatusPending},
		{StatusCancelled, StatusRunning},
		{StatusRunning, StatusPending},
	}
	for _, tt := range denied {
		if CanTransition(tt.from, tt.to) {
			t.Errorf("CanTransition(%s, %s) = true, want false", tt.from, tt.to)
		}
	}
}

func TestTerminal(t *testing.T) {
	for _, s := range []JobStatus{StatusCompleted, StatusFailed, StatusCancelled} {
		if !s.Terminal() {
			t.Errorf("%s.Terminal() = false", s)
		}
	}
	for _, s := range []JobStatus{StatusPending, StatusRunning} {
		if s.Terminal() {
			t.Errorf("%s.Terminal() = true", s)
		}
	}
}

func TestValid(t *testing.T) {
	if JobStatus("queued").Valid() {
		t.Error("unknown status reported valid")
	}
	if !StatusPending.Valid() {
		t.Error("pending reported invalid")
	}
}
