package genai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/halden-bio/catalyst/pkg/domain"
	"github.com/halden-bio/catalyst/pkg/ports"
)

// buildPrompt renders the instruction for one step from its resolved
// inputs. Prompts ask for the exact payload shape parseResult expects.
func buildPrompt(req ports.AnalysisRequest) (string, error) {
	switch req.Step {
	case domain.StepDataAssembly:
		return fmt.Sprintf(
			"You are a medicinal chemistry assistant. For the compound with SMILES %q, "+
				"assemble known bioactivity context: likely target class, reported assay ranges, "+
				"and close analogs. Respond with a single JSON object.",
			req.Smiles), nil

	case domain.StepPocketDetection:
		return fmt.Sprintf(
			"Render a schematic view of the druggable binding pocket relevant to the compound "+
				"with SMILES %q, and describe the pocket's key residues and properties in the caption.",
			req.Smiles), nil

	case domain.StepGenerativeDesign:
		return fmt.Sprintf(
			"Starting from the scaffold with SMILES %q, propose novel candidate molecules. "+
				"Respond with a single JSON object containing a %q array of SMILES strings.",
			req.Smiles, domain.FieldGeneratedSmiles), nil

	case domain.StepRapidTriage:
		return fmt.Sprintf(
			"Score each of these candidate molecules for predicted potency: %s. "+
				"Respond with a single JSON object containing a %q array; each entry must have "+
				"%q and a numeric %q field (higher is better).",
			strings.Join(req.Candidates, ", "),
			domain.FieldTriageResults, domain.FieldSmiles, domain.FieldPIC50), nil

	case domain.StepDockingRescoring:
		return fmt.Sprintf(
			"Dock these top-ranked candidates against receptor %q and rescore their poses: %s. "+
				"Render the best pose and describe the interactions in the caption.",
			req.Receptor, strings.Join(req.Candidates, ", ")), nil

	case domain.StepMDSimulation:
		return fmt.Sprintf(
			"Summarize a short molecular-dynamics stability check of the lead candidate %q in "+
				"its binding pose: RMSD behavior, key contact persistence, and an overall verdict.",
			req.Lead), nil

	case domain.StepADMETPrediction:
		return fmt.Sprintf(
			"Predict ADMET properties for the lead candidate %q. "+
				"Respond with a single JSON object of property name to predicted value.",
			req.Lead), nil

	case domain.StepActiveLearning:
		return fmt.Sprintf(
			"Given the lead candidate %q, propose the next round of experiments (assays and "+
				"analogs) that would most reduce model uncertainty.",
			req.Lead), nil

	case domain.StepSynthesisPlanning:
		return fmt.Sprintf(
			"Sketch a retrosynthetic route for the lead candidate %q, listing commercially "+
				"available starting materials and the key transformations.",
			req.Lead), nil

	case domain.StepFinalReport:
		context, err := json.Marshal(req.Results)
		if err != nil {
			return "", fmt.Errorf("failed to serialize prior results: %w", err)
		}
		return fmt.Sprintf(
			"Write a final campaign report in markdown. Input compound: %q. Lead candidate: %q. "+
				"Prior stage results follow as JSON:\n%s",
			req.Smiles, req.Lead, context), nil

	default:
		return "", fmt.Errorf("%w: %s", domain.ErrUnknownStep, req.Step)
	}
}
