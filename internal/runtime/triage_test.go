package runtime

import (
	"testing"

	"github.com/halden-bio/catalyst/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestRankByPotency(t *testing.T) {
	in := []domain.Candidate{
		{Smiles: "A", PIC50: 5.0},
		{Smiles: "B", PIC50: 7.2},
		{Smiles: "C", PIC50: 7.2},
	}

	ranked := rankByPotency(in)

	// Descending by pIC50; ties keep their input order.
	assert.Equal(t, []string{"B", "C", "A"}, smilesOf(ranked))
	// Input slice untouched.
	assert.Equal(t, "A", in[0].Smiles)
}

func TestRankByPotency_Empty(t *testing.T) {
	assert.Empty(t, rankByPotency(nil))
}
