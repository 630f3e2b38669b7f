package memory_test

import (
	"context"
	"testing"

	"github.com/halden-bio/catalyst/pkg/adapters/memory"
	"github.com/halden-bio/catalyst/pkg/domain"
	"github.com/halden-bio/catalyst/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	ports.RunStateStoreContract(t, memory.NewStore())
}

func TestMemoryStore_Isolation(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	state := domain.NewState("iso")
	require.NoError(t, store.Save(ctx, "iso", state))

	// Mutating the original after Save must not leak into the store.
	state.ActiveStep = domain.StepFinalReport
	state.Results[domain.StepDataAssembly] = &domain.StepResult{Kind: domain.KindText}

	loaded, err := store.Load(ctx, "iso")
	require.NoError(t, err)
	assert.Equal(t, domain.FirstStep(), loaded.ActiveStep)
	assert.Empty(t, loaded.Results)

	// Mutating a loaded copy must not leak either.
	loaded.LastError = "mutated"
	again, err := store.Load(ctx, "iso")
	require.NoError(t, err)
	assert.Empty(t, again.LastError)
}
