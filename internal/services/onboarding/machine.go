package onboarding

import (
	"strings"

	"marketpulse/internal/domain/user"
)

// EventKind classifies an inbound event for the state machine
type EventKind int

const (
	// EventStart is the /start command. It restarts onboarding from any step.
	EventStart EventKind = iota
	// EventText is a free-text message in a private chat
	EventText
	// EventCallback is an inline button press with an action:arg payload
	EventCallback
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventText:
		return "text"
	case EventCallback:
		return "callback"
	default:
		return "unknown"
	}
}

// Event is one input to Transition
type Event struct {
	Kind EventKind
	Text string
}

// EffectKind names the side effect a transition asks for
type EffectKind int

const (
	EffectNone EffectKind = iota
	EffectPromptRisk
	EffectRepromptRisk
	EffectPromptInterests
	EffectRepromptInterests
	EffectComplete
	EffectIdle
)

func (k EffectKind) String() string {
	switch k {
	case EffectNone:
		return "none"
	case EffectPromptRisk:
		return "prompt_risk"
	case EffectRepromptRisk:
		return "reprompt_risk"
	case EffectPromptInterests:
		return "prompt_interests"
	case EffectRepromptInterests:
		return "reprompt_interests"
	case EffectComplete:
		return "complete"
	case EffectIdle:
		return "idle"
	default:
		return "unknown"
	}
}

// Persists reports whether the effect changes stored user state
func (k EffectKind) Persists() bool {
	switch k {
	case EffectPromptRisk, EffectPromptInterests, EffectComplete:
		return true
	default:
		return false
	}
}

// State is the onboarding slice of a user record
type State struct {
	Step      user.OnboardingStep
	Risk      user.RiskProfile
	Interests string
}

// StateOf extracts the onboarding state from u
func StateOf(u *user.User) State {
	if u == nil {
		return State{Step: user.StepNotStarted, Risk: user.RiskModerate}
	}
	return State{Step: u.Step, Risk: u.RiskOrDefault(), Interests: u.Interests}
}

// Apply writes s back onto u
func (s State) Apply(u *user.User) {
	u.Step = s.Step
	u.Risk = s.Risk
	u.Interests = s.Interests
}

// Effect is what the caller must do after a transition
type Effect struct {
	Kind EffectKind
	// Text is the event text the effect refers to (the idle question, the stored interests)
	Text string
}

// Transition is the pure onboarding state machine.
//
//	any                + /start         -> AWAITING_RISK       prompt risk
//	AWAITING_RISK      + risk choice    -> AWAITING_INTERESTS  store risk, prompt interests
//	AWAITING_RISK      + other          -> AWAITING_RISK       re-prompt
//	AWAITING_INTERESTS + text           -> COMPLETE            store interests, welcome
//	NOT_STARTED|COMPLETE + text         -> unchanged           idle fallback
func Transition(s State, ev Event) (State, Effect) {
	if ev.Kind == EventStart {
		next := s
		next.Step = user.StepAwaitingRisk
		return next, Effect{Kind: EffectPromptRisk}
	}

	switch s.Step {
	case user.StepAwaitingRisk:
		if risk, ok := user.ParseRiskProfile(ev.Text); ok {
			next := s
			next.Step = user.StepAwaitingInterests
			next.Risk = risk
			return next, Effect{Kind: EffectPromptInterests}
		}
		return s, Effect{Kind: EffectRepromptRisk}

	case user.StepAwaitingInterests:
		if ev.Kind != EventText {
			return s, Effect{Kind: EffectRepromptInterests}
		}
		interests := strings.TrimSpace(ev.Text)
		if interests == "" {
			return s, Effect{Kind: EffectRepromptInterests}
		}
		next := s
		next.Step = user.StepComplete
		next.Interests = interests
		return next, Effect{Kind: EffectComplete, Text: interests}

	case user.StepNotStarted, user.StepComplete:
		if ev.Kind != EventText {
			return s, Effect{Kind: EffectNone}
		}
		return s, Effect{Kind: EffectIdle, Text: ev.Text}

	default:
		return s, Effect{Kind: EffectIdle, Text: ev.Text}
	}
}
