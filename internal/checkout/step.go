package checkout

type Step string

const (
	StepShipping   Step = "SHIPPING"
	StepPayment    Step = "PAYMENT"
	StepReview     Step = "REVIEW"
	StepProcessing Step = "PROCESSING"
	StepCompleted  Step = "COMPLETED"
)

func (s Step) IsTerminal() bool {
	return s == StepCompleted
}

// String representation (for logging)
func (s Step) String() string {
	return string(s)
}

// Editable reports whether the draft may still be changed in this step.
func (s Step) Editable() bool {
	return s == StepShipping || s == StepPayment || s == StepReview
}

func ParseStep(s string) (Step, bool) {
	switch step := Step(s); step {
	case StepShipping, StepPayment, StepReview, StepProcessing, StepCompleted:
		return step, true
	}
	return "", false
}

var stepOrder = map[Step]int{
	StepShipping:   0,
	StepPayment:    1,
	StepReview:     2,
	StepProcessing: 3,
	StepCompleted:  4,
}

// Before reports whether s comes earlier than other in the checkout flow.
func (s Step) Before(other Step) bool {
	a, okA := stepOrder[s]
	b, okB := stepOrder[other]
	return okA && okB && a < b
}

var transitions = map[Step][]Step{
	StepShipping:   {StepPayment},
	StepPayment:    {StepReview, StepShipping},
	StepReview:     {StepProcessing, StepPayment, StepShipping},
	StepProcessing: {StepCompleted, StepReview},
}

// CanTransitionTo reports whether the machine may move from one step to another.
func CanTransitionTo(from, to Step) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
