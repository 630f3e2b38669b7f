package catalyst

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/halden-bio/catalyst/internal/runtime"
	"github.com/halden-bio/catalyst/pkg/domain"
	"github.com/halden-bio/catalyst/pkg/ports"
)

// Version is the library version, stamped by the release workflow.
var Version = "0.1.0"

// Pipeline is the high-level entry point for the Catalyst library.
// It owns a single session state and wraps the internal orchestrator,
// providing a simplified API for embedding the workflow in a host
// application. All methods are safe for concurrent use.
type Pipeline struct {
	mu    sync.Mutex
	state *domain.State
	orch  *runtime.Orchestrator

	sessionID string
	smiles    string
	receptor  string
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
}

// Option defines a functional option for configuring the Pipeline.
type Option func(*Pipeline)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(p *Pipeline) {
		p.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithInputs overrides the example compound and receptor.
func WithInputs(smiles, receptor string) Option {
	return func(p *Pipeline) {
		p.smiles = smiles
		p.receptor = receptor
	}
}

// WithSessionID sets the session identifier (default: "default").
func WithSessionID(id string) Option {
	return func(p *Pipeline) {
		p.sessionID = id
	}
}

// New initializes a Pipeline backed by the given analysis service.
func New(analyzer ports.Analyzer, opts ...Option) *Pipeline {
	p := &Pipeline{sessionID: "default"}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	p.state = domain.NewState(p.sessionID)
	if p.smiles != "" {
		p.state.InputSmiles = p.smiles
	}
	if p.receptor != "" {
		p.state.ReceptorID = p.receptor
	}

	p.orch = runtime.NewOrchestrator(analyzer,
		runtime.WithHooks(p.hooks),
		runtime.WithLogger(p.logger),
	)
	return p
}

// Select moves the active step. Navigation is free in both directions.
func (p *Pipeline) Select(id domain.StepID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.orch.SelectStep(p.state, id)
}

// SetInputs updates the input compound and receptor.
func (p *Pipeline) SetInputs(smiles, receptor string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.orch.SetInputs(p.state, smiles, receptor)
}

// Execute runs the active step against the analysis service and, on
// success, advances to the next step.
func (p *Pipeline) Execute(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.orch.Execute(ctx, p.state)
}

// RunAll executes every remaining step front to back, stopping on the
// first failure.
func (p *Pipeline) RunAll(ctx context.Context) error {
	for {
		p.mu.Lock()
		done := p.state.Result(domain.LastStep()) != nil
		p.mu.Unlock()
		if done {
			return nil
		}
		if err := p.Execute(ctx); err != nil {
			return err
		}
	}
}

// State returns a snapshot of the session state.
func (p *Pipeline) State() *domain.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Clone()
}

// Result returns the stored result for a step, or nil.
func (p *Pipeline) Result(id domain.StepID) *domain.StepResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Result(id).Clone()
}

// Steps returns the ordered step catalog.
func (p *Pipeline) Steps() []domain.Step {
	return domain.Catalog()
}
