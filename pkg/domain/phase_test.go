package domain_test

import (
	"testing"

	"github.com/aretw0/nest/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePhases(t *testing.T) {
	tests := []struct {
		input    string
		expected []domain.Phase
	}{
		{"leaf", []domain.Phase{domain.PhaseLeaf}},
		{" Leaf , next", []domain.Phase{domain.PhaseLeaf, domain.PhaseNext}},
		{"enter", []domain.Phase{domain.PhaseFirst, domain.PhaseNext}},
		{"exit", []domain.Phase{domain.PhaseLeaf, domain.PhaseLast}},
		{"first,last", []domain.Phase{domain.PhaseFirst, domain.PhaseLast}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := domain.ParsePhases(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParsePhases_Rejects(t *testing.T) {
	for _, input := range []string{"", "lef", "leaf,", "leaf,finished"} {
		t.Run(input, func(t *testing.T) {
			_, err := domain.ParsePhases(input)
			assert.Error(t, err)
		})
	}
}

func TestStopAt(t *testing.T) {
	phases, err := domain.ParsePhases("enter")
	require.NoError(t, err)
	stop := domain.StopAt(phases...)

	assert.True(t, stop(domain.PhaseFirst))
	assert.True(t, stop(domain.PhaseNext))
	assert.False(t, stop(domain.PhaseLeaf))
	assert.True(t, domain.StopAtLeaf(domain.PhaseLeaf))
}
