package user

// OnboardingStep is the position of a user in the onboarding conversation
type OnboardingStep int

const (
	StepNotStarted OnboardingStep = iota
	StepAwaitingRisk
	StepAwaitingInterests
	StepComplete
)

func (s OnboardingStep) String() string {
	switch s {
	case StepNotStarted:
		return "NOT_STARTED"
	case StepAwaitingRisk:
		return "AWAITING_RISK"
	case StepAwaitingInterests:
		return "AWAITING_INTERESTS"
	case StepComplete:
		return "COMPLETE"
	default:
		return "UNKNOWN"
	}
}

// Pending reports whether the next free-text message belongs to onboarding
func (s OnboardingStep) Pending() bool {
	return s == StepAwaitingRisk || s == StepAwaitingInterests
}

// Stored returns the persisted column pair. Completion reuses step 0 and sets the onboarded flag.
func (s OnboardingStep) Stored() (step int, onboarded bool) {
	switch s {
	case StepAwaitingRisk:
		return 1, false
	case StepAwaitingInterests:
		return 2, false
	case StepComplete:
		return 0, true
	default:
		return 0, false
	}
}

// StepFromStored is the inverse of Stored. Unknown values collapse to the idle state they imply.
func StepFromStored(step int, onboarded bool) OnboardingStep {
	switch step {
	case 1:
		return StepAwaitingRisk
	case 2:
		return StepAwaitingInterests
	}
	if onboarded {
		return StepComplete
	}
	return StepNotStarted
}
