package domain

// Default user inputs. The pipeline always has a usable compound and
// receptor, so the first three steps can never fail on missing input.
const (
	DefaultSmiles   = "CC(=O)Oc1ccccc1C(=O)O"
	DefaultReceptor = "3POZ"
)

// State is the mutable core of one pipeline session.
type State struct {
	// SessionID identifies the owning session.
	SessionID string `json:"session_id"`

	// ActiveStep is the step currently shown and executed.
	ActiveStep StepID `json:"active_step"`

	// Results maps step IDs to completed results. A slot is absent until
	// the step succeeds and is only ever replaced, never cleared.
	Results map[StepID]*StepResult `json:"results"`

	// InputSmiles and ReceptorID are the user-provided fields, mutated
	// only through explicit edits.
	InputSmiles string `json:"input_smiles"`
	ReceptorID  string `json:"receptor_id"`

	// Running is true while an analysis call is in flight. At most one
	// call may be outstanding per session.
	Running bool `json:"running"`

	// LastError is the most recent failure surfaced to the user. Cleared
	// on navigation and on starting a new execution.
	LastError string `json:"last_error,omitempty"`

	// Generation increments on every execution start. Results carrying a
	// stale generation are discarded instead of clobbering newer state.
	Generation uint64 `json:"generation"`

	// History records successfully executed steps in completion order.
	History []StepID `json:"history,omitempty"`
}

// NewState creates a fresh session state positioned at the first step.
func NewState(sessionID string) *State {
	return &State{
		SessionID:   sessionID,
		ActiveStep:  FirstStep(),
		Results:     make(map[StepID]*StepResult),
		InputSmiles: DefaultSmiles,
		ReceptorID:  DefaultReceptor,
	}
}

// Result returns the stored result for a step, or nil.
func (s *State) Result(id StepID) *StepResult {
	return s.Results[id]
}

// CompletedSteps returns, in catalog order, exactly the steps whose result
// slot is populated.
func (s *State) CompletedSteps() []StepID {
	var done []StepID
	for _, step := range catalog {
		if s.Results[step.ID] != nil {
			done = append(done, step.ID)
		}
	}
	return done
}

// Clone returns a deep copy so stores and diffing never alias live state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := *s
	out.Results = make(map[StepID]*StepResult, len(s.Results))
	for id, r := range s.Results {
		out.Results[id] = r.Clone()
	}
	if s.History != nil {
		out.History = append([]StepID(nil), s.History...)
	}
	return &out
}
