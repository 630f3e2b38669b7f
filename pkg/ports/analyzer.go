package ports

import (
	"context"

	"github.com/halden-bio/catalyst/pkg/domain"
)

// AnalysisRequest carries the resolved inputs for one step execution.
// Which fields are populated depends on the step; the orchestrator fills
// them from user fields and prior results.
type AnalysisRequest struct {
	// Step selects the analysis to perform.
	Step domain.StepID

	// Smiles is the user-provided input compound.
	Smiles string

	// Receptor is the user-provided receptor identifier. Set for docking.
	Receptor string

	// Candidates holds generated SMILES for triage, or the top-3 triage
	// SMILES for docking.
	Candidates []string

	// Lead is the single top triage candidate. Set for every step after
	// docking.
	Lead string

	// Results is the full result mapping. Set only for the final report.
	Results map[domain.StepID]*domain.StepResult

	// Generation tags the execution so late responses can be recognized
	// as stale and discarded.
	Generation uint64
}

// Analyzer is the external analysis service performing the actual
// (AI-driven) computation per step. Implementations may take arbitrarily
// long; they must honor ctx cancellation. A call either returns a result
// or an error with a human-readable message.
type Analyzer interface {
	Analyze(ctx context.Context, req AnalysisRequest) (*domain.StepResult, error)
}

// AnalyzerFunc adapts a function to the Analyzer interface.
type AnalyzerFunc func(ctx context.Context, req AnalysisRequest) (*domain.StepResult, error)

// Analyze implements Analyzer.
func (f AnalyzerFunc) Analyze(ctx context.Context, req AnalysisRequest) (*domain.StepResult, error) {
	return f(ctx, req)
}
