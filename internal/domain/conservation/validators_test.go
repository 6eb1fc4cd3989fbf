package conservation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rpggio/canopy/internal/domain/conservation"
	"github.com/rpggio/canopy/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func registryWithScores(scores map[string]int) *mocks.ValidatorRegistry {
	reg := &mocks.ValidatorRegistry{}
	for id, score := range scores {
		reg.On("ValidatorDetails", mock.Anything, id).
			Return(&conservation.ValidatorDetails{ID: id, ReputationScore: score}, nil)
	}
	return reg
}

func TestGate_KeepsQualifyingInOrder(t *testing.T) {
	reg := registryWithScores(map[string]int{
		"val-a": 90, "val-b": 40, "val-c": 75, "val-d": 74, "val-e": 100,
	})
	gate := conservation.NewGate(reg)

	got, err := gate.Validate(context.Background(), []string{"val-a", "val-b", "val-c", "val-d", "val-e"})
	require.NoError(t, err)
	require.Equal(t, []string{"val-a", "val-c", "val-e"}, got)
}

func TestGate_OrderStableUnderConcurrency(t *testing.T) {
	scores := map[string]int{}
	candidates := make([]string, 0, 32)
	for i := 0; i < 32; i++ {
		id := string(rune('A'+i%26)) + string(rune('a'+i/26))
		scores[id] = 60 + i
		candidates = append(candidates, id)
	}
	gate := conservation.NewGate(registryWithScores(scores))
	gate.Concurrency = 8

	got, err := gate.Validate(context.Background(), candidates)
	require.NoError(t, err)

	var want []string
	for _, id := range candidates {
		if scores[id] >= conservation.DefaultMinReputation {
			want = append(want, id)
		}
	}
	require.Equal(t, want, got)
}

func TestGate_InsufficientValidators(t *testing.T) {
	tests := []struct {
		name       string
		scores     map[string]int
		candidates []string
	}{
		{"empty", map[string]int{}, nil},
		{"one qualifies", map[string]int{"val-a": 80, "val-b": 74}, []string{"val-a", "val-b"}},
		{"none qualify", map[string]int{"val-a": 10, "val-b": 20}, []string{"val-a", "val-b"}},
		{"duplicate does not count twice", map[string]int{"val-a": 80}, []string{"val-a", "val-a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := conservation.NewGate(registryWithScores(tt.scores))
			_, err := gate.Validate(context.Background(), tt.candidates)
			require.ErrorIs(t, err, conservation.ErrInsufficientValidators)
		})
	}
}

func TestGate_UnknownValidatorIsUnqualified(t *testing.T) {
	reg := registryWithScores(map[string]int{"val-a": 80, "val-b": 85})
	reg.On("ValidatorDetails", mock.Anything, "ghost").
		Return(nil, conservation.ErrValidatorNotFound)

	got, err := conservation.NewGate(reg).Validate(context.Background(), []string{"ghost", "val-a", "val-b"})
	require.NoError(t, err)
	require.Equal(t, []string{"val-a", "val-b"}, got)
}

func TestGate_LookupFailureIsDistinct(t *testing.T) {
	reg := registryWithScores(map[string]int{"val-a": 80})
	reg.On("ValidatorDetails", mock.Anything, "val-b").
		Return(nil, errors.New("registry unreachable"))

	_, err := conservation.NewGate(reg).Validate(context.Background(), []string{"val-a", "val-b"})
	require.ErrorIs(t, err, conservation.ErrValidatorLookup)
	require.NotErrorIs(t, err, conservation.ErrInsufficientValidators)
}

func TestGate_NilRegistry(t *testing.T) {
	_, err := conservation.NewGate(nil).Validate(context.Background(), []string{"val-a", "val-b"})
	require.ErrorIs(t, err, conservation.ErrValidatorLookup)
}

func TestGate_CustomThresholds(t *testing.T) {
	reg := registryWithScores(map[string]int{"val-a": 60, "val-b": 95})
	gate := conservation.NewGate(reg)
	gate.MinReputation = 50
	gate.MinValidators = 1

	got, err := gate.Validate(context.Background(), []string{"val-a", "val-b"})
	require.NoError(t, err)
	require.Equal(t, []string{"val-a", "val-b"}, got)
}
