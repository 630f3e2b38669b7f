package runtime

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/halden-bio/catalyst/internal/logging"
	"github.com/halden-bio/catalyst/pkg/domain"
	"github.com/halden-bio/catalyst/pkg/ports"
)

// genericFailure is surfaced when the analysis service fails without a
// usable message.
const genericFailure = "The analysis service failed. Please try again."

// Orchestrator sequences the ten fixed pipeline steps over a domain.State.
// It is stateless: every method takes the state it operates on, so hosts
// can keep state wherever they like (in memory, behind a session store).
type Orchestrator struct {
	analyzer ports.Analyzer
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
}

// Option configures the Orchestrator.
type Option func(*Orchestrator)

// WithHooks registers observability hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(o *Orchestrator) {
		o.hooks = hooks
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewOrchestrator creates an orchestrator backed by the given analyzer.
func NewOrchestrator(analyzer ports.Analyzer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		analyzer: analyzer,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SelectStep moves the active step. Navigation is always free, even to
// steps that have not run yet, so any prior result can be inspected.
func (o *Orchestrator) SelectStep(state *domain.State, id domain.StepID) error {
	if _, ok := domain.StepByID(id); !ok {
		return domain.ErrUnknownStep
	}
	state.ActiveStep = id
	state.LastError = ""
	return nil
}

// SetInputs updates the user-provided fields. Changing either value while
// a call is in flight bumps the generation so the late result is discarded
// rather than written against inputs it was not computed from.
func (o *Orchestrator) SetInputs(state *domain.State, smiles, receptor string) {
	if state.InputSmiles == smiles && state.ReceptorID == receptor {
		return
	}
	state.InputSmiles = smiles
	state.ReceptorID = receptor
	if state.Running {
		state.Generation++
	}
}

// Prepare starts an execution of the active step: it rejects concurrent
// runs, resolves the step's input from user fields and prior results, and
// marks the state as running. A dependency failure is recorded in
// LastError and returned without any analysis call being made.
func (o *Orchestrator) Prepare(ctx context.Context, state *domain.State) (*ports.AnalysisRequest, error) {
	if state.Running {
		return nil, domain.ErrExecutionInFlight
	}
	state.LastError = ""

	req, err := resolveRequest(state)
	if err != nil {
		state.LastError = err.Error()
		o.logger.Warn("step input unresolved", "step", state.ActiveStep, "err", err)
		o.fireError(ctx, state, state.ActiveStep, err, true)
		return nil, err
	}

	state.Running = true
	state.Generation++
	req.Generation = state.Generation

	o.logger.Debug("step prepared", "step", req.Step, "generation", req.Generation)
	if o.hooks.OnStepStart != nil {
		o.hooks.OnStepStart(ctx, &domain.StepEvent{
			Timestamp: time.Now(),
			Type:      domain.EventStepStart,
			SessionID: state.SessionID,
			Step:      req.Step,
		})
	}
	return req, nil
}

// Apply records a successful analysis result. The running flag is released
// on every path. A result whose generation no longer matches the state is
// discarded with ErrStaleResult; nothing else changes.
//
// On success the result is stored in the slot of the step that was
// executing (never a partial overwrite of other slots) and, unless that
// step is the last one, the pipeline auto-advances. If the user navigated
// elsewhere mid-flight their position is respected.
func (o *Orchestrator) Apply(ctx context.Context, state *domain.State, req *ports.AnalysisRequest, result *domain.StepResult) error {
	state.Running = false

	if req.Generation != state.Generation {
		o.logger.Info("discarding stale result", "step", req.Step, "generation", req.Generation)
		return domain.ErrStaleResult
	}
	if result == nil {
		state.LastError = genericFailure
		return errors.New(genericFailure)
	}

	state.Results[req.Step] = result
	state.History = append(state.History, req.Step)

	if next, ok := domain.NextStep(req.Step); ok && state.ActiveStep == req.Step {
		state.ActiveStep = next
	}

	o.logger.Info("step completed", "step", req.Step, "kind", result.Kind)
	if o.hooks.OnStepFinish != nil {
		o.hooks.OnStepFinish(ctx, &domain.StepEvent{
			Timestamp: time.Now(),
			Type:      domain.EventStepFinish,
			SessionID: state.SessionID,
			Step:      req.Step,
		})
	}
	return nil
}

// Fail records an analysis failure: the running flag is released, the
// active step and all results stay untouched, and the service's message
// (or a generic fallback) lands in LastError. Stale failures are dropped
// silently apart from releasing the flag.
func (o *Orchestrator) Fail(ctx context.Context, state *domain.State, req *ports.AnalysisRequest, cause error) error {
	state.Running = false

	if req.Generation != state.Generation {
		return domain.ErrStaleResult
	}

	msg := genericFailure
	if cause != nil && cause.Error() != "" {
		msg = cause.Error()
	}
	state.LastError = msg

	o.logger.Warn("step failed", "step", req.Step, "err", msg)
	o.fireError(ctx, state, req.Step, cause, false)
	return nil
}

// Execute runs the active step end to end: Prepare, one analyzer call,
// then Apply or Fail. This is the whole pipeline model; there is no
// fan-out and no retry.
func (o *Orchestrator) Execute(ctx context.Context, state *domain.State) error {
	req, err := o.Prepare(ctx, state)
	if err != nil {
		return err
	}

	start := time.Now()
	result, err := o.analyzer.Analyze(ctx, *req)
	o.logger.Debug("analysis returned", "step", req.Step, "duration", time.Since(start), "err", err)

	if err != nil {
		if ferr := o.Fail(ctx, state, req, err); ferr != nil {
			return ferr
		}
		return err
	}
	return o.Apply(ctx, state, req, result)
}

func (o *Orchestrator) fireError(ctx context.Context, state *domain.State, step domain.StepID, cause error, dependency bool) {
	if o.hooks.OnStepError == nil {
		return
	}
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	o.hooks.OnStepError(ctx, &domain.StepEvent{
		Timestamp:  time.Now(),
		Type:       domain.EventStepError,
		SessionID:  state.SessionID,
		Step:       step,
		Err:        msg,
		Dependency: dependency,
	})
}
