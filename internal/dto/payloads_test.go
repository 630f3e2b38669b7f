package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratedSmiles(t *testing.T) {
	smiles, err := GeneratedSmiles(map[string]any{
		"generated_smiles": []any{"CCN", "CCCl"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"CCN", "CCCl"}, smiles)

	_, err = GeneratedSmiles(map[string]any{"generated_smiles": []any{}})
	assert.Error(t, err)

	_, err = GeneratedSmiles(map[string]any{"other": 1})
	assert.Error(t, err)
}

func TestTriageCandidates_JSONRoundTrip(t *testing.T) {
	// Payloads come back from the file and redis stores as generic JSON
	// values; decoding has to tolerate float64 and map[string]any.
	raw := `{"triage_results": [
		{"smiles": "CCN", "pIC50": 6.4, "qed": 0.81},
		{"smiles": "CCCl", "pIC50": 7.9}
	]}`
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))

	candidates, err := TriageCandidates(payload)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "CCN", candidates[0].Smiles)
	assert.InDelta(t, 6.4, candidates[0].PIC50, 1e-9)
	assert.Equal(t, 0.81, candidates[0].Extra["qed"])
}

func TestTriageCandidates_Missing(t *testing.T) {
	_, err := TriageCandidates(map[string]any{})
	assert.Error(t, err)
}
