package genai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/halden-bio/catalyst/pkg/adapters/genai"
	"github.com/halden-bio/catalyst/pkg/domain"
	"github.com/halden-bio/catalyst/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *genai.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return genai.New(genai.Config{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Model:   "helix-1",
	})
}

func TestClient_StructuredStep(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/generate", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "helix-1", req["model"])
		assert.Equal(t, "json", req["response_format"])
		assert.Contains(t, req["prompt"], "CCO")

		json.NewEncoder(w).Encode(map[string]any{
			"text":        "```json\n{\"generated_smiles\": [\"CCN\", \"CCCl\"]}\n```",
			"explanation": "two analogs",
		})
	})

	result, err := client.Analyze(context.Background(), ports.AnalysisRequest{
		Step:   domain.StepGenerativeDesign,
		Smiles: "CCO",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.KindStructured, result.Kind)
	assert.Equal(t, "two analogs", result.Explanation)
	assert.Equal(t, []any{"CCN", "CCCl"}, result.Payload[domain.FieldGeneratedSmiles])
}

func TestClient_MalformedStructuredPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"text": `{"something_else": true}`,
		})
	})

	_, err := client.Analyze(context.Background(), ports.AnalysisRequest{
		Step:       domain.StepRapidTriage,
		Candidates: []string{"CCN"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "triage_results")
}

func TestClient_ImageStep(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"text":       "Pocket P1 near the hinge region.",
			"image_data": "aW1hZ2U=",
		})
	})

	result, err := client.Analyze(context.Background(), ports.AnalysisRequest{
		Step:   domain.StepPocketDetection,
		Smiles: "CCO",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.KindImageText, result.Kind)
	assert.Equal(t, "aW1hZ2U=", result.Payload[domain.FieldImageData])
	assert.Equal(t, "Pocket P1 near the hinge region.", result.Payload[domain.FieldText])
}

func TestClient_ServiceErrorMessageSurfaced(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "quota exceeded"},
		})
	})

	_, err := client.Analyze(context.Background(), ports.AnalysisRequest{
		Step:   domain.StepDataAssembly,
		Smiles: "CCO",
	})
	require.Error(t, err)
	assert.Equal(t, "quota exceeded", err.Error())
}

func TestClient_ContextCancellation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Analyze(ctx, ports.AnalysisRequest{
		Step:   domain.StepDataAssembly,
		Smiles: "CCO",
	})
	assert.Error(t, err)
}
