package domain

// StepID identifies one stage of the fixed ten-stage workflow.
// The zero value is not a valid step.
type StepID string

const (
	StepDataAssembly      StepID = "data-assembly"
	StepPocketDetection   StepID = "pocket-detection"
	StepGenerativeDesign  StepID = "generative-design"
	StepRapidTriage       StepID = "rapid-triage"
	StepDockingRescoring  StepID = "docking-rescoring"
	StepMDSimulation      StepID = "md-simulation"
	StepADMETPrediction   StepID = "admet-prediction"
	StepActiveLearning    StepID = "active-learning"
	StepSynthesisPlanning StepID = "synthesis-planning"
	StepFinalReport       StepID = "final-report"
)

// Step is an immutable descriptor for one pipeline stage.
// The catalog is defined once at process start and never mutated.
type Step struct {
	ID          StepID `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// catalog is the single source of truth for step order.
var catalog = []Step{
	{StepDataAssembly, "Data Assembly", "Collect known bioactivity data and context for the input compound."},
	{StepPocketDetection, "Pocket Detection", "Locate and characterize the druggable binding pocket on the target."},
	{StepGenerativeDesign, "Generative Design", "Generate novel candidate molecules around the input scaffold."},
	{StepRapidTriage, "Rapid Triage", "Score generated candidates and rank them by predicted potency."},
	{StepDockingRescoring, "Docking & Rescoring", "Dock the top-ranked candidates against the receptor and rescore poses."},
	{StepMDSimulation, "MD Simulation", "Run a short molecular-dynamics stability check on the lead candidate."},
	{StepADMETPrediction, "ADMET Prediction", "Predict absorption, distribution, metabolism, excretion and toxicity."},
	{StepActiveLearning, "Active Learning", "Propose the next round of experiments for the lead candidate."},
	{StepSynthesisPlanning, "Synthesis Planning", "Sketch a retrosynthetic route for the lead candidate."},
	{StepFinalReport, "Final Report", "Summarize the full campaign into a single report."},
}

// stepIndex maps step IDs to their position in the catalog.
var stepIndex = func() map[StepID]int {
	idx := make(map[StepID]int, len(catalog))
	for i, s := range catalog {
		idx[s.ID] = i
	}
	return idx
}()

// Catalog returns the ordered list of pipeline steps.
// The returned slice is a copy; callers may not mutate the catalog.
func Catalog() []Step {
	out := make([]Step, len(catalog))
	copy(out, catalog)
	return out
}

// StepByID looks up a step descriptor. The second return is false for
// identifiers outside the fixed catalog.
func StepByID(id StepID) (Step, bool) {
	i, ok := stepIndex[id]
	if !ok {
		return Step{}, false
	}
	return catalog[i], true
}

// FirstStep returns the entry point of the pipeline.
func FirstStep() StepID {
	return catalog[0].ID
}

// LastStep returns the final step of the pipeline.
func LastStep() StepID {
	return catalog[len(catalog)-1].ID
}

// NextStep returns the step following id in pipeline order.
// ok is false when id is the last step or unknown.
func NextStep(id StepID) (next StepID, ok bool) {
	i, found := stepIndex[id]
	if !found || i == len(catalog)-1 {
		return "", false
	}
	return catalog[i+1].ID, true
}

// StepName returns the display name for id, or the raw id if unknown.
func StepName(id StepID) string {
	if s, ok := StepByID(id); ok {
		return s.Name
	}
	return string(id)
}
