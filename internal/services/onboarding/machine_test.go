package onboarding

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"marketpulse/internal/domain/user"
)

func text(s string) Event { return Event{Kind: EventText, Text: s} }

var start = Event{Kind: EventStart}

func TestTransitionTable(t *testing.T) {
	awaitingRisk := State{Step: user.StepAwaitingRisk, Risk: user.RiskModerate}
	awaitingInterests := State{Step: user.StepAwaitingInterests, Risk: user.RiskAggressive}
	complete := State{Step: user.StepComplete, Risk: user.RiskConservative, Interests: "banks"}

	tests := []struct {
		name     string
		from     State
		event    Event
		wantStep user.OnboardingStep
		wantKind EffectKind
	}{
		{"start from not started", State{}, start, user.StepAwaitingRisk, EffectPromptRisk},
		{"start from complete", complete, start, user.StepAwaitingRisk, EffectPromptRisk},
		{"start mid onboarding", awaitingInterests, start, user.StepAwaitingRisk, EffectPromptRisk},
		{"menu number", awaitingRisk, text("1"), user.StepAwaitingInterests, EffectPromptInterests},
		{"name any case", awaitingRisk, text("ConSERVative"), user.StepAwaitingInterests, EffectPromptInterests},
		{"callback payload", awaitingRisk, Event{Kind: EventCallback, Text: "risk:moderate"}, user.StepAwaitingInterests, EffectPromptInterests},
		{"invalid choice", awaitingRisk, text("yolo"), user.StepAwaitingRisk, EffectRepromptRisk},
		{"out of range number", awaitingRisk, text("4"), user.StepAwaitingRisk, EffectRepromptRisk},
		{"interests", awaitingInterests, text("AI and chips"), user.StepComplete, EffectComplete},
		{"blank interests", awaitingInterests, text("   "), user.StepAwaitingInterests, EffectRepromptInterests},
		{"stale button while awaiting interests", awaitingInterests, Event{Kind: EventCallback, Text: "risk:aggressive"}, user.StepAwaitingInterests, EffectRepromptInterests},
		{"idle when complete", complete, text("hello"), user.StepComplete, EffectIdle},
		{"idle when not started", State{}, text("AAPL?"), user.StepNotStarted, EffectIdle},
		{"callback when complete", complete, Event{Kind: EventCallback, Text: "risk:aggressive"}, user.StepComplete, EffectNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, eff := Transition(tt.from, tt.event)
			assert.Equal(t, tt.wantStep, next.Step)
			assert.Equal(t, tt.wantKind, eff.Kind)
		})
	}
}

func TestTransitionStoresChoices(t *testing.T) {
	s, _ := Transition(State{Step: user.StepAwaitingRisk, Risk: user.RiskModerate}, text("3"))
	assert.Equal(t, user.RiskConservative, s.Risk)

	s, eff := Transition(s, text("  Indian banks, pharma "))
	assert.Equal(t, "Indian banks, pharma", s.Interests)
	assert.Equal(t, "Indian banks, pharma", eff.Text)
	assert.Equal(t, user.RiskConservative, s.Risk, "risk survives the interests step")
}

// The happy path visits every step exactly once and in order.
func TestTransitionLinearity(t *testing.T) {
	events := []Event{start, text("2"), text("dividends")}
	want := []user.OnboardingStep{user.StepAwaitingRisk, user.StepAwaitingInterests, user.StepComplete}

	s := State{Step: user.StepNotStarted}
	var steps []user.OnboardingStep
	for _, ev := range events {
		s, _ = Transition(s, ev)
		steps = append(steps, s.Step)
	}
	assert.Equal(t, want, steps)

	// Further text never moves a completed user backwards.
	for _, msg := range []string{"1", "hello", "risk:aggressive"} {
		next, eff := Transition(s, text(msg))
		assert.Equal(t, user.StepComplete, next.Step)
		assert.Equal(t, EffectIdle, eff.Kind)
	}
}

func TestTransitionDoubleStartOverwrites(t *testing.T) {
	s, _ := Transition(State{}, start)
	s, _ = Transition(s, text("aggressive"))
	assert.Equal(t, user.StepAwaitingInterests, s.Step)

	s, eff := Transition(s, start)
	assert.Equal(t, user.StepAwaitingRisk, s.Step)
	assert.Equal(t, EffectPromptRisk, eff.Kind)

	s, eff = Transition(s, start)
	assert.Equal(t, user.StepAwaitingRisk, s.Step, "a second /start is idempotent")
	assert.Equal(t, EffectPromptRisk, eff.Kind)
}

func TestEffectPersists(t *testing.T) {
	assert.True(t, EffectPromptRisk.Persists())
	assert.True(t, EffectPromptInterests.Persists())
	assert.True(t, EffectComplete.Persists())
	assert.False(t, EffectRepromptRisk.Persists())
	assert.False(t, EffectRepromptInterests.Persists())
	assert.False(t, EffectIdle.Persists())
	assert.False(t, EffectNone.Persists())
	assert.Equal(t, "prompt_interests", EffectPromptInterests.String())
	assert.Equal(t, "callback", EventCallback.String())
}

func TestPlausibleTicker(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"What about AAPL?", "AAPL", true},
		{"thoughts on $tsla", "TSLA", true},
		{"is RELIANCE.NS a buy", "RELIANCE.NS", true},
		{"I think BUY NOW", "", false},
		{"hello there", "", false},
		{"(NVDA)", "NVDA", true},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := PlausibleTicker(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
