package genai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/halden-bio/catalyst/internal/dto"
	"github.com/halden-bio/catalyst/pkg/domain"
)

// stepKinds fixes the result shape per step. Only generative-design and
// rapid-triage payloads are ever inspected programmatically; the rest are
// passed through to presentation.
var stepKinds = map[domain.StepID]domain.ResultKind{
	domain.StepDataAssembly:      domain.KindStructured,
	domain.StepPocketDetection:   domain.KindImageText,
	domain.StepGenerativeDesign:  domain.KindStructured,
	domain.StepRapidTriage:       domain.KindStructured,
	domain.StepDockingRescoring:  domain.KindImageText,
	domain.StepMDSimulation:      domain.KindText,
	domain.StepADMETPrediction:   domain.KindStructured,
	domain.StepActiveLearning:    domain.KindText,
	domain.StepSynthesisPlanning: domain.KindText,
	domain.StepFinalReport:       domain.KindText,
}

func stepKind(id domain.StepID) domain.ResultKind {
	if k, ok := stepKinds[id]; ok {
		return k
	}
	return domain.KindText
}

// parseResult turns a raw service response into a typed StepResult.
// Structured payloads from the two inspected steps are validated here so
// a malformed response fails the step instead of poisoning later stages.
func parseResult(step domain.StepID, kind domain.ResultKind, gen *generateResponse) (*domain.StepResult, error) {
	result := &domain.StepResult{
		Kind:        kind,
		Explanation: gen.Explanation,
	}

	switch kind {
	case domain.KindStructured:
		payload, err := decodeStructured(gen.Text)
		if err != nil {
			return nil, fmt.Errorf("step %s: %w", step, err)
		}
		switch step {
		case domain.StepGenerativeDesign:
			if _, err := dto.GeneratedSmiles(payload); err != nil {
				return nil, err
			}
		case domain.StepRapidTriage:
			if _, err := dto.TriageCandidates(payload); err != nil {
				return nil, err
			}
		}
		result.Payload = payload

	case domain.KindImageText:
		if gen.ImageData == "" {
			return nil, fmt.Errorf("step %s: service returned no image data", step)
		}
		result.Payload = map[string]any{
			domain.FieldImageData: gen.ImageData,
			domain.FieldText:      gen.Text,
		}

	default:
		if strings.TrimSpace(gen.Text) == "" {
			return nil, fmt.Errorf("step %s: service returned an empty response", step)
		}
		result.Payload = map[string]any{
			domain.FieldText: gen.Text,
		}
	}

	return result, nil
}

// decodeStructured unmarshals the model's text output as a JSON object,
// tolerating markdown code fences around it.
func decodeStructured(text string) (map[string]any, error) {
	cleaned := stripFences(text)

	var payload map[string]any
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("service returned malformed JSON: %w", err)
	}
	return payload, nil
}

func stripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
