package runtime_test

import (
	"context"
	"errors"
	"testing"

	"github.com/halden-bio/catalyst/internal/runtime"
	"github.com/halden-bio/catalyst/internal/testutils"
	"github.com/halden-bio/catalyst/pkg/domain"
	"github.com/halden-bio/catalyst/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrchestrator(fake *testutils.FakeAnalyzer) *runtime.Orchestrator {
	return runtime.NewOrchestrator(fake)
}

// seedTriage puts a standard triage result into the state:
// B and C tie at 7.2 (B first), A trails at 5.0.
func seedTriage(state *domain.State) {
	state.Results[domain.StepRapidTriage] = testutils.TriageResult(
		domain.Candidate{Smiles: "A", PIC50: 5.0},
		domain.Candidate{Smiles: "B", PIC50: 7.2},
		domain.Candidate{Smiles: "C", PIC50: 7.2},
	)
}

func TestSelectStep(t *testing.T) {
	o := newOrchestrator(testutils.NewFakeAnalyzer())
	state := domain.NewState("s")
	state.LastError = "old failure"

	// Navigation is free, even to steps that have not run.
	require.NoError(t, o.SelectStep(state, domain.StepFinalReport))
	assert.Equal(t, domain.StepFinalReport, state.ActiveStep)
	assert.Empty(t, state.LastError, "navigation clears the last error")

	assert.ErrorIs(t, o.SelectStep(state, "no-such-step"), domain.ErrUnknownStep)
	assert.Equal(t, domain.StepFinalReport, state.ActiveStep)
}

func TestExecute_FirstStepsUseUserSmiles(t *testing.T) {
	fake := testutils.NewFakeAnalyzer()
	o := newOrchestrator(fake)
	state := domain.NewState("s")
	state.InputSmiles = "CCO"
	ctx := context.Background()

	for _, want := range []domain.StepID{
		domain.StepDataAssembly,
		domain.StepPocketDetection,
		domain.StepGenerativeDesign,
	} {
		assert.Equal(t, want, state.ActiveStep)
		require.NoError(t, o.Execute(ctx, state))
		assert.Equal(t, "CCO", fake.LastCall().Smiles)
		assert.NotNil(t, state.Result(want))
		assert.False(t, state.Running)
	}

	// Auto-advance landed on rapid-triage.
	assert.Equal(t, domain.StepRapidTriage, state.ActiveStep)
	assert.Equal(t, 3, fake.CallCount())
}

func TestExecute_DependencyMissing(t *testing.T) {
	cases := []struct {
		step    domain.StepID
		message string
	}{
		{domain.StepRapidTriage, "Generated molecules not found. Run the Generative Design step first."},
		{domain.StepDockingRescoring, "Triage results not found. Run the Rapid Triage step first."},
		{domain.StepMDSimulation, "Triage results not found. Run the Rapid Triage step first."},
		{domain.StepADMETPrediction, "Triage results not found. Run the Rapid Triage step first."},
		{domain.StepActiveLearning, "Triage results not found. Run the Rapid Triage step first."},
		{domain.StepSynthesisPlanning, "Triage results not found. Run the Rapid Triage step first."},
		{domain.StepFinalReport, "Triage results not found. Run the Rapid Triage step first."},
	}

	for _, tc := range cases {
		t.Run(string(tc.step), func(t *testing.T) {
			fake := testutils.NewFakeAnalyzer()
			o := newOrchestrator(fake)
			state := domain.NewState("s")
			require.NoError(t, o.SelectStep(state, tc.step))

			err := o.Execute(context.Background(), state)
			require.Error(t, err)
			assert.True(t, domain.IsDependencyError(err))
			assert.Equal(t, tc.message, err.Error())
			assert.Equal(t, tc.message, state.LastError)

			// No network call, no state movement.
			assert.Equal(t, 0, fake.CallCount())
			assert.Equal(t, tc.step, state.ActiveStep)
			assert.Empty(t, state.CompletedSteps())
			assert.False(t, state.Running)
		})
	}
}

func TestExecute_MalformedDependencyPayload(t *testing.T) {
	fake := testutils.NewFakeAnalyzer()
	o := newOrchestrator(fake)
	state := domain.NewState("s")

	// Slot populated but without the required field.
	state.Results[domain.StepGenerativeDesign] = &domain.StepResult{
		Kind:    domain.KindStructured,
		Payload: map[string]any{"unrelated": true},
	}
	require.NoError(t, o.SelectStep(state, domain.StepRapidTriage))

	err := o.Execute(context.Background(), state)
	require.Error(t, err)
	assert.True(t, domain.IsDependencyError(err))
	assert.Equal(t, 0, fake.CallCount())
}

func TestExecute_TriageConsumesGeneratedList(t *testing.T) {
	fake := testutils.NewFakeAnalyzer()
	fake.Responses[domain.StepGenerativeDesign] = testutils.GeneratedResult("CCN", "CCCl")
	o := newOrchestrator(fake)
	state := domain.NewState("s")
	state.InputSmiles = "CCO"
	ctx := context.Background()

	require.NoError(t, o.Execute(ctx, state)) // data-assembly
	require.NoError(t, o.Execute(ctx, state)) // pocket-detection
	require.NoError(t, o.Execute(ctx, state)) // generative-design
	require.Equal(t, domain.StepRapidTriage, state.ActiveStep)

	require.NoError(t, o.Execute(ctx, state))
	assert.Equal(t, []string{"CCN", "CCCl"}, fake.LastCall().Candidates)
}

func TestExecute_DockingGetsTopThreeAndReceptor(t *testing.T) {
	fake := testutils.NewFakeAnalyzer()
	o := newOrchestrator(fake)
	state := domain.NewState("s")
	state.ReceptorID = "3POZ"
	seedTriage(state)
	require.NoError(t, o.SelectStep(state, domain.StepDockingRescoring))

	require.NoError(t, o.Execute(context.Background(), state))

	call := fake.LastCall()
	// Stable descending sort: the 7.2 tie keeps input order (B before C).
	assert.Equal(t, []string{"B", "C", "A"}, call.Candidates)
	assert.Equal(t, "3POZ", call.Receptor)
}

func TestExecute_DownstreamStepsGetTopCandidate(t *testing.T) {
	for _, step := range []domain.StepID{
		domain.StepMDSimulation,
		domain.StepADMETPrediction,
		domain.StepActiveLearning,
		domain.StepSynthesisPlanning,
	} {
		t.Run(string(step), func(t *testing.T) {
			fake := testutils.NewFakeAnalyzer()
			o := newOrchestrator(fake)
			state := domain.NewState("s")
			seedTriage(state)
			require.NoError(t, o.SelectStep(state, step))

			require.NoError(t, o.Execute(context.Background(), state))
			assert.Equal(t, "B", fake.LastCall().Lead)
		})
	}
}

func TestExecute_FinalReportCarriesEverything(t *testing.T) {
	fake := testutils.NewFakeAnalyzer()
	o := newOrchestrator(fake)
	state := domain.NewState("s")
	state.InputSmiles = "CCO"
	seedTriage(state)
	state.Results[domain.StepMDSimulation] = testutils.TextResult("stable")
	require.NoError(t, o.SelectStep(state, domain.StepFinalReport))

	require.NoError(t, o.Execute(context.Background(), state))

	call := fake.LastCall()
	assert.Equal(t, "CCO", call.Smiles)
	assert.Equal(t, "B", call.Lead)
	require.NotNil(t, call.Results)
	assert.Contains(t, call.Results, domain.StepRapidTriage)
	assert.Contains(t, call.Results, domain.StepMDSimulation)

	// The final report is the last step: no auto-advance.
	assert.Equal(t, domain.StepFinalReport, state.ActiveStep)
}

func TestExecute_AutoAdvance(t *testing.T) {
	fake := testutils.NewFakeAnalyzer()
	o := newOrchestrator(fake)
	state := domain.NewState("s")

	require.NoError(t, o.Execute(context.Background(), state))

	assert.Equal(t, domain.StepPocketDetection, state.ActiveStep)
	assert.NotNil(t, state.Result(domain.StepDataAssembly))
	assert.False(t, state.Running)
	assert.Equal(t, []domain.StepID{domain.StepDataAssembly}, state.CompletedSteps())
}

func TestExecute_FailurePreservesState(t *testing.T) {
	fake := testutils.NewFakeAnalyzer()
	fake.Errors[domain.StepDataAssembly] = errors.New("model overloaded")
	o := newOrchestrator(fake)
	state := domain.NewState("s")

	prior := testutils.TextResult("from an earlier run")
	state.Results[domain.StepDataAssembly] = prior

	err := o.Execute(context.Background(), state)
	require.Error(t, err)

	assert.Equal(t, "model overloaded", state.LastError)
	assert.Equal(t, domain.StepDataAssembly, state.ActiveStep, "failure never advances")
	assert.Same(t, prior, state.Result(domain.StepDataAssembly), "previous result preserved")
	assert.False(t, state.Running)
}

func TestExecute_GenericFallbackMessage(t *testing.T) {
	fake := testutils.NewFakeAnalyzer()
	fake.Intercept = func(ctx context.Context, req ports.AnalysisRequest) (*domain.StepResult, error) {
		return nil, errors.New("")
	}
	o := newOrchestrator(fake)
	state := domain.NewState("s")

	require.Error(t, o.Execute(context.Background(), state))
	assert.Equal(t, "The analysis service failed. Please try again.", state.LastError)
}

func TestExecute_ReexecutionOverwritesOnlyOwnSlot(t *testing.T) {
	fake := testutils.NewFakeAnalyzer()
	o := newOrchestrator(fake)
	state := domain.NewState("s")
	ctx := context.Background()

	require.NoError(t, o.Execute(ctx, state)) // data-assembly
	require.NoError(t, o.Execute(ctx, state)) // pocket-detection
	pocket := state.Result(domain.StepPocketDetection)

	// Go back and re-run the first step.
	require.NoError(t, o.SelectStep(state, domain.StepDataAssembly))
	fake.Responses[domain.StepDataAssembly] = testutils.TextResult("fresh")
	require.NoError(t, o.Execute(ctx, state))

	assert.Equal(t, "fresh", state.Result(domain.StepDataAssembly).Payload[domain.FieldText])
	assert.Same(t, pocket, state.Result(domain.StepPocketDetection), "other slots untouched")
	assert.Equal(t, domain.StepPocketDetection, state.ActiveStep, "normal auto-advance applies")
}

func TestExecute_RejectedWhileRunning(t *testing.T) {
	fake := testutils.NewFakeAnalyzer()
	o := newOrchestrator(fake)
	state := domain.NewState("s")

	req, err := o.Prepare(context.Background(), state)
	require.NoError(t, err)
	require.True(t, state.Running)

	// A second execution while the call is outstanding must not issue
	// another analyzer call.
	err = o.Execute(context.Background(), state)
	assert.ErrorIs(t, err, domain.ErrExecutionInFlight)
	assert.Equal(t, 0, fake.CallCount())

	// The original execution still completes normally.
	require.NoError(t, o.Apply(context.Background(), state, req, testutils.TextResult("done")))
	assert.False(t, state.Running)
	assert.NotNil(t, state.Result(domain.StepDataAssembly))
}

func TestApply_DiscardsStaleGeneration(t *testing.T) {
	fake := testutils.NewFakeAnalyzer()
	o := newOrchestrator(fake)
	state := domain.NewState("s")
	ctx := context.Background()

	req, err := o.Prepare(ctx, state)
	require.NoError(t, err)

	// The user edits the input compound while the call is in flight.
	o.SetInputs(state, "c1ccccc1", state.ReceptorID)

	err = o.Apply(ctx, state, req, testutils.TextResult("computed for the old input"))
	assert.ErrorIs(t, err, domain.ErrStaleResult)
	assert.Nil(t, state.Result(domain.StepDataAssembly), "stale result not written")
	assert.False(t, state.Running, "flag released even for stale results")
	assert.Equal(t, domain.StepDataAssembly, state.ActiveStep)
}

func TestFail_DiscardsStaleGeneration(t *testing.T) {
	o := newOrchestrator(testutils.NewFakeAnalyzer())
	state := domain.NewState("s")
	ctx := context.Background()

	req, err := o.Prepare(ctx, state)
	require.NoError(t, err)
	o.SetInputs(state, "c1ccccc1", state.ReceptorID)

	err = o.Fail(ctx, state, req, errors.New("late failure"))
	assert.ErrorIs(t, err, domain.ErrStaleResult)
	assert.Empty(t, state.LastError, "stale failures are not surfaced")
	assert.False(t, state.Running)
}

func TestApply_RespectsNavigationDuringFlight(t *testing.T) {
	o := newOrchestrator(testutils.NewFakeAnalyzer())
	state := domain.NewState("s")
	ctx := context.Background()

	req, err := o.Prepare(ctx, state)
	require.NoError(t, err)

	// Navigation does not invalidate the result, only input edits do.
	require.NoError(t, o.SelectStep(state, domain.StepSynthesisPlanning))

	require.NoError(t, o.Apply(ctx, state, req, testutils.TextResult("done")))
	assert.NotNil(t, state.Result(domain.StepDataAssembly))
	assert.Equal(t, domain.StepSynthesisPlanning, state.ActiveStep,
		"auto-advance must not override the user's navigation")
}

func TestSetInputs_NoGenerationBumpWhenIdle(t *testing.T) {
	o := newOrchestrator(testutils.NewFakeAnalyzer())
	state := domain.NewState("s")

	before := state.Generation
	o.SetInputs(state, "CCO", "1ERK")
	assert.Equal(t, before, state.Generation)
	assert.Equal(t, "CCO", state.InputSmiles)
	assert.Equal(t, "1ERK", state.ReceptorID)
}

func TestExecute_EndToEnd(t *testing.T) {
	fake := testutils.NewFakeAnalyzer()
	fake.Responses[domain.StepGenerativeDesign] = testutils.GeneratedResult("CCN", "CCCl")
	fake.Responses[domain.StepRapidTriage] = testutils.TriageResult(
		domain.Candidate{Smiles: "CCN", PIC50: 6.4},
		domain.Candidate{Smiles: "CCCl", PIC50: 7.9},
	)
	o := newOrchestrator(fake)
	state := domain.NewState("e2e")
	o.SetInputs(state, "CCO", state.ReceptorID)
	ctx := context.Background()

	// Walk the full pipeline front to back.
	for i := 0; i < len(domain.Catalog()); i++ {
		require.NoError(t, o.Execute(ctx, state), "step %s", state.ActiveStep)
	}

	assert.Len(t, state.CompletedSteps(), 10)
	assert.Equal(t, domain.StepFinalReport, state.ActiveStep)

	calls := fake.Calls()
	require.Len(t, calls, 10)
	assert.Equal(t, []string{"CCN", "CCCl"}, calls[3].Candidates, "triage consumes the generated list")
	assert.Equal(t, "CCCl", calls[5].Lead, "MD simulation gets the top candidate")
	assert.Equal(t, "CCO", calls[9].Smiles)
	assert.Equal(t, "CCCl", calls[9].Lead)
	assert.Len(t, calls[9].Results, 9, "final report sees all prior results")
}
