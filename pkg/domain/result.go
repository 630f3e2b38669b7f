package domain

// ResultKind tags the shape of a step result payload.
type ResultKind string

const (
	// KindStructured marks machine-readable JSON payloads.
	KindStructured ResultKind = "structured"
	// KindText marks free-text payloads (markdown allowed).
	KindText ResultKind = "text"
	// KindImageText marks payloads carrying an image plus a caption.
	KindImageText ResultKind = "image-text"
)

// Payload field names inspected by the orchestrator. All other fields are
// opaque and passed through to presentation untouched.
const (
	FieldGeneratedSmiles = "generated_smiles"
	FieldTriageResults   = "triage_results"
	FieldSmiles          = "smiles"
	FieldPIC50           = "pIC50"
	FieldText            = "text"
	FieldImageData       = "image_data"
)

// StepResult is the outcome of one step execution. Immutable once created;
// re-running a step replaces the whole value, never patches it.
type StepResult struct {
	Kind        ResultKind     `json:"kind"`
	Payload     map[string]any `json:"payload,omitempty"`
	Explanation string         `json:"explanation,omitempty"`
}

// Candidate is one entry of a triage result. Extra keeps any additional
// fields the analysis service returned so presentation can show them.
type Candidate struct {
	Smiles string         `json:"smiles" mapstructure:"smiles"`
	PIC50  float64        `json:"pIC50" mapstructure:"pIC50"`
	Extra  map[string]any `json:"extra,omitempty" mapstructure:",remain"`
}

// Clone returns a deep copy of the result. Nested maps and slices in the
// payload are copied too, so clones handed out by stores never alias the
// stored value.
func (r *StepResult) Clone() *StepResult {
	if r == nil {
		return nil
	}
	return &StepResult{
		Kind:        r.Kind,
		Explanation: r.Explanation,
		Payload:     clonePayload(r.Payload),
	}
}

func clonePayload(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

// cloneValue deep-copies the JSON-shaped values payloads are built from.
// Other types are kept by reference; nothing in the pipeline mutates them.
func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return clonePayload(val)
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
