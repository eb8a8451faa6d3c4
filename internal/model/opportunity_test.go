package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from    OpportunityStatus
		to      OpportunityStatus
		allowed bool
	}{
		{StatusPending, StatusViewed, true},
		{StatusPending, StatusDismissed, true},
		{StatusPending, StatusAccepted, false},
		{StatusPending, StatusCompleted, false},
		{StatusViewed, StatusAccepted, true},
		{StatusViewed, StatusInProgress, true},
		{StatusViewed, StatusDismissed, true},
		{StatusViewed, StatusPending, false},
		{StatusAccepted, StatusInProgress, true},
		{StatusAccepted, StatusCompleted, true},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusDismissed, true},
		{StatusCompleted, StatusDismissed, false},
		{StatusCompleted, StatusViewed, false},
		{StatusDismissed, StatusPending, false},
		{StatusDismissed, StatusViewed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransition(tt.to))
		})
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusDismissed.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusInProgress.Terminal())
}

func TestCompositeScore(t *testing.T) {
	s := OpportunitySuggestion{Confidence: 0.8, Impact: 70, Urgency: 50}
	assert.InDelta(t, 28.0, s.CompositeScore(), 1e-9)

	zero := OpportunitySuggestion{}
	assert.Zero(t, zero.CompositeScore())
}

func TestTierForScores(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		urgency    float64
		want       PriorityTier
	}{
		{"urgent", 0.85, 75, PriorityUrgent},
		{"high confidence low urgency", 0.85, 40, PriorityHigh},
		{"high", 0.65, 90, PriorityHigh},
		{"medium", 0.45, 90, PriorityMedium},
		{"low", 0.2, 90, PriorityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TierForScores(tt.confidence, tt.urgency))
		})
	}
}
