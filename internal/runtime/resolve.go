package runtime

import (
	"github.com/halden-bio/catalyst/internal/dto"
	"github.com/halden-bio/catalyst/pkg/domain"
	"github.com/halden-bio/catalyst/pkg/ports"
)

// resolveRequest gathers the active step's input from user fields and
// prior results. Every step after rapid-triage anchors on the triage
// ranking, so all later stages agree on the lead candidate.
func resolveRequest(state *domain.State) (*ports.AnalysisRequest, error) {
	req := &ports.AnalysisRequest{
		Step:   state.ActiveStep,
		Smiles: state.InputSmiles,
	}

	switch state.ActiveStep {
	case domain.StepDataAssembly, domain.StepPocketDetection, domain.StepGenerativeDesign:
		// User SMILES only. A default value is always present, so these
		// never fail pre-flight.

	case domain.StepRapidTriage:
		gen := state.Result(domain.StepGenerativeDesign)
		if gen == nil {
			return nil, &domain.DependencyError{Step: state.ActiveStep, Missing: domain.StepGenerativeDesign}
		}
		smiles, err := dto.GeneratedSmiles(gen.Payload)
		if err != nil {
			return nil, &domain.DependencyError{Step: state.ActiveStep, Missing: domain.StepGenerativeDesign}
		}
		req.Candidates = smiles

	case domain.StepDockingRescoring:
		top, err := topCandidates(state, 3)
		if err != nil {
			return nil, err
		}
		req.Candidates = smilesOf(top)
		req.Receptor = state.ReceptorID

	case domain.StepMDSimulation, domain.StepADMETPrediction,
		domain.StepActiveLearning, domain.StepSynthesisPlanning:
		top, err := topCandidates(state, 1)
		if err != nil {
			return nil, err
		}
		req.Lead = top[0].Smiles

	case domain.StepFinalReport:
		top, err := topCandidates(state, 1)
		if err != nil {
			return nil, err
		}
		req.Lead = top[0].Smiles
		req.Results = make(map[domain.StepID]*domain.StepResult, len(state.Results))
		for id, r := range state.Results {
			req.Results[id] = r.Clone()
		}

	default:
		return nil, domain.ErrUnknownStep
	}

	return req, nil
}

// topCandidates ranks the rapid-triage results and returns the first n.
func topCandidates(state *domain.State, n int) ([]domain.Candidate, error) {
	triage := state.Result(domain.StepRapidTriage)
	if triage == nil {
		return nil, &domain.DependencyError{Step: state.ActiveStep, Missing: domain.StepRapidTriage}
	}
	candidates, err := dto.TriageCandidates(triage.Payload)
	if err != nil {
		return nil, &domain.DependencyError{Step: state.ActiveStep, Missing: domain.StepRapidTriage}
	}

	ranked := rankByPotency(candidates)
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n], nil
}

func smilesOf(candidates []domain.Candidate) []string {
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.Smiles
	}
	return out
}
