// Package testutils provides shared fakes for exercising the pipeline
// without a real analysis service.
package testutils

import (
	"context"
	"sync"

	"github.com/halden-bio/catalyst/pkg/domain"
	"github.com/halden-bio/catalyst/pkg/ports"
)

// FakeAnalyzer implements ports.Analyzer with scripted responses.
// Safe for concurrent use; every call is recorded.
type FakeAnalyzer struct {
	mu    sync.Mutex
	calls []ports.AnalysisRequest

	// Responses and Errors are keyed by step. A step with neither entry
	// gets a generic text result.
	Responses map[domain.StepID]*domain.StepResult
	Errors    map[domain.StepID]error

	// Intercept, when set, overrides everything else.
	Intercept func(ctx context.Context, req ports.AnalysisRequest) (*domain.StepResult, error)
}

// NewFakeAnalyzer creates an empty fake.
func NewFakeAnalyzer() *FakeAnalyzer {
	return &FakeAnalyzer{
		Responses: make(map[domain.StepID]*domain.StepResult),
		Errors:    make(map[domain.StepID]error),
	}
}

// Analyze implements ports.Analyzer.
func (f *FakeAnalyzer) Analyze(ctx context.Context, req ports.AnalysisRequest) (*domain.StepResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()

	if f.Intercept != nil {
		return f.Intercept(ctx, req)
	}
	if err := f.Errors[req.Step]; err != nil {
		return nil, err
	}
	if res := f.Responses[req.Step]; res != nil {
		return res.Clone(), nil
	}
	return TextResult("ok: " + string(req.Step)), nil
}

// Calls returns a copy of the recorded requests.
func (f *FakeAnalyzer) Calls() []ports.AnalysisRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ports.AnalysisRequest(nil), f.calls...)
}

// CallCount returns how many analysis calls were issued.
func (f *FakeAnalyzer) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// LastCall returns the most recent request, or a zero value.
func (f *FakeAnalyzer) LastCall() ports.AnalysisRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return ports.AnalysisRequest{}
	}
	return f.calls[len(f.calls)-1]
}

// TextResult builds a plain text result.
func TextResult(text string) *domain.StepResult {
	return &domain.StepResult{
		Kind:    domain.KindText,
		Payload: map[string]any{domain.FieldText: text},
	}
}

// GeneratedResult builds a generative-design result carrying the given SMILES.
func GeneratedResult(smiles ...string) *domain.StepResult {
	list := make([]any, len(smiles))
	for i, s := range smiles {
		list[i] = s
	}
	return &domain.StepResult{
		Kind:    domain.KindStructured,
		Payload: map[string]any{domain.FieldGeneratedSmiles: list},
	}
}

// TriageResult builds a rapid-triage result from (smiles, pIC50) pairs.
func TriageResult(candidates ...domain.Candidate) *domain.StepResult {
	list := make([]any, len(candidates))
	for i, c := range candidates {
		list[i] = map[string]any{
			domain.FieldSmiles: c.Smiles,
			domain.FieldPIC50:  c.PIC50,
		}
	}
	return &domain.StepResult{
		Kind:    domain.KindStructured,
		Payload: map[string]any{domain.FieldTriageResults: list},
	}
}
