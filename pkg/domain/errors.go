package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrExecutionInFlight is returned when an execution is requested while a
// previous analysis call for the same session is still outstanding.
var ErrExecutionInFlight = errors.New("a step is already running")

// ErrUnknownStep is returned for step identifiers outside the fixed catalog.
var ErrUnknownStep = errors.New("unknown step")

// ErrStaleResult is returned when an analysis result arrives for a
// superseded execution and is discarded.
var ErrStaleResult = errors.New("stale analysis result discarded")

// dependencyArtifacts names, per upstream step, the artifact a dependent
// step needs. Used to build user-facing dependency errors.
var dependencyArtifacts = map[StepID]string{
	StepGenerativeDesign: "Generated molecules",
	StepRapidTriage:      "Triage results",
}

// DependencyError is a pre-flight validation failure: the step being
// executed requires an upstream result that is absent or malformed.
// No analysis call is made when it occurs.
type DependencyError struct {
	// Step is the step whose execution was rejected.
	Step StepID
	// Missing is the upstream step whose result is required.
	Missing StepID
}

func (e *DependencyError) Error() string {
	artifact := dependencyArtifacts[e.Missing]
	if artifact == "" {
		artifact = StepName(e.Missing) + " results"
	}
	return fmt.Sprintf("%s not found. Run the %s step first.", artifact, StepName(e.Missing))
}

// IsDependencyError reports whether err is a DependencyError.
func IsDependencyError(err error) bool {
	var de *DependencyError
	return errors.As(err, &de)
}
