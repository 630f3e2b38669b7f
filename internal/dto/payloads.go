package dto

import (
	"fmt"

	"github.com/halden-bio/catalyst/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// GeneratedPayload is the structured payload of the generative-design step.
// It uses "mapstructure" tags so decoding tolerates JSON round-trips
// ([]any, json.Number) coming out of the stores and the analysis service.
type GeneratedPayload struct {
	GeneratedSmiles []string `json:"generated_smiles" mapstructure:"generated_smiles"`
}

// TriagePayload is the structured payload of the rapid-triage step.
type TriagePayload struct {
	TriageResults []domain.Candidate `json:"triage_results" mapstructure:"triage_results"`
}

func decode(payload map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(payload)
}

// GeneratedSmiles extracts the generated molecule list from a
// generative-design payload. An absent or empty list is an error: the
// downstream triage step has nothing to consume.
func GeneratedSmiles(payload map[string]any) ([]string, error) {
	var p GeneratedPayload
	if err := decode(payload, &p); err != nil {
		return nil, fmt.Errorf("malformed generative-design payload: %w", err)
	}
	if len(p.GeneratedSmiles) == 0 {
		return nil, fmt.Errorf("generative-design payload has no %q field", domain.FieldGeneratedSmiles)
	}
	return p.GeneratedSmiles, nil
}

// TriageCandidates extracts the scored candidate list from a rapid-triage
// payload, preserving input order.
func TriageCandidates(payload map[string]any) ([]domain.Candidate, error) {
	var p TriagePayload
	if err := decode(payload, &p); err != nil {
		return nil, fmt.Errorf("malformed rapid-triage payload: %w", err)
	}
	if len(p.TriageResults) == 0 {
		return nil, fmt.Errorf("rapid-triage payload has no %q field", domain.FieldTriageResults)
	}
	return p.TriageResults, nil
}
