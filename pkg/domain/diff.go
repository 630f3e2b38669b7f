package domain

import (
	"reflect"
)

// StateDiff represents the changes between two snapshots of a session.
// It is designed to be serialized to JSON for partial updates on the client.
type StateDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	ActiveStep *StepID `json:"active_step,omitempty"`

	// Results contains only slots that were added or replaced.
	Results map[StepID]*StepResult `json:"results,omitempty"`

	InputSmiles *string `json:"input_smiles,omitempty"`
	ReceptorID  *string `json:"receptor_id,omitempty"`

	Running   *bool   `json:"running,omitempty"`
	LastError *string `json:"last_error,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState
// (initial load). Returns nil when nothing changed.
func Diff(oldState, newState *State) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{SessionID: newState.SessionID}

	if oldState == nil || oldState.ActiveStep != newState.ActiveStep {
		diff.ActiveStep = &newState.ActiveStep
	}
	if oldState == nil || oldState.InputSmiles != newState.InputSmiles {
		diff.InputSmiles = &newState.InputSmiles
	}
	if oldState == nil || oldState.ReceptorID != newState.ReceptorID {
		diff.ReceptorID = &newState.ReceptorID
	}
	if oldState == nil {
		if newState.Running {
			diff.Running = &newState.Running
		}
		if newState.LastError != "" {
			diff.LastError = &newState.LastError
		}
	} else {
		if oldState.Running != newState.Running {
			diff.Running = &newState.Running
		}
		if oldState.LastError != newState.LastError {
			diff.LastError = &newState.LastError
		}
	}

	diff.Results = diffResults(oldState, newState)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// diffResults collects added or replaced result slots. Slots never revert
// to empty, so deletions are not represented.
func diffResults(old, new *State) map[StepID]*StepResult {
	delta := make(map[StepID]*StepResult)

	for id, newVal := range new.Results {
		if old == nil {
			delta[id] = newVal
			continue
		}
		oldVal, exists := old.Results[id]
		if !exists || !reflect.DeepEqual(oldVal, newVal) {
			delta[id] = newVal
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.ActiveStep == nil &&
		d.InputSmiles == nil &&
		d.ReceptorID == nil &&
		d.Running == nil &&
		d.LastError == nil &&
		len(d.Results) == 0
}
