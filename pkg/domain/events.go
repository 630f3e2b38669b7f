package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStepStart  EventType = "step_start"
	EventStepFinish EventType = "step_finish"
	EventStepError  EventType = "step_error"
)

// StepEvent describes one orchestrator lifecycle event.
type StepEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Type      EventType     `json:"type"`
	SessionID string        `json:"session_id"`
	Step      StepID        `json:"step"`
	Duration  time.Duration `json:"duration,omitempty"`
	Err       string        `json:"err,omitempty"`
	// Dependency is true when the error was a pre-flight dependency
	// failure rather than an analysis-service failure.
	Dependency bool `json:"dependency,omitempty"`
}

// LifecycleHooks defines callbacks for orchestrator observability.
// Nil callbacks are skipped.
type LifecycleHooks struct {
	OnStepStart  func(context.Context, *StepEvent)
	OnStepFinish func(context.Context, *StepEvent)
	OnStepError  func(context.Context, *StepEvent)
}
