package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to Step
		want     bool
	}{
		{StepShipping, StepPayment, true},
		{StepShipping, StepReview, false},
		{StepPayment, StepReview, true},
		{StepPayment, StepShipping, true},
		{StepReview, StepShipping, true},
		{StepReview, StepPayment, true},
		{StepReview, StepProcessing, true},
		{StepReview, StepCompleted, false},
		{StepProcessing, StepCompleted, true},
		{StepProcessing, StepReview, true},
		{StepCompleted, StepShipping, false},
		{StepCompleted, StepReview, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransitionTo(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestStep(t *testing.T) {
	assert.True(t, StepCompleted.IsTerminal())
	assert.False(t, StepProcessing.IsTerminal())
	assert.True(t, StepReview.Editable())
	assert.False(t, StepProcessing.Editable())

	step, ok := ParseStep("PAYMENT")
	assert.True(t, ok)
	assert.Equal(t, StepPayment, step)
	_, ok = ParseStep("payment")
	assert.False(t, ok)
}

func TestStepBefore(t *testing.T) {
	assert.True(t, StepShipping.Before(StepPayment))
	assert.True(t, StepPayment.Before(StepCompleted))
	assert.False(t, StepReview.Before(StepPayment))
	assert.False(t, StepReview.Before(StepReview))
	assert.False(t, Step("UNKNOWN").Before(StepReview))
}
