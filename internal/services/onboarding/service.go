package onboarding

import (
	"context"
	"strings"

	"marketpulse/internal/domain/user"
	"marketpulse/pkg/errors"
	"marketpulse/pkg/logger"
	"marketpulse/pkg/telegram"
	"marketpulse/pkg/templates"
)

// ActionRisk is the callback action of the risk buttons
const ActionRisk = "risk"

// UserStore persists onboarding fields
type UserStore interface {
	SaveOnboarding(ctx context.Context, u *user.User) error
}

// Reply is what the dispatcher should send after a transition.
// Text is empty when nothing should be sent. Ticker is set when the idle
// fallback found a ticker and the text should be answered as a question.
type Reply struct {
	Text      string
	ParseMode string
	Keyboard  *telegram.InlineKeyboardMarkup
	Effect    Effect
	Ticker    string
}

// Service runs the onboarding conversation and persists every state change
type Service struct {
	users UserStore
	tmpl  *templates.Registry
	log   *logger.Logger
}

// NewService creates an onboarding service
func NewService(users UserStore, tmpl *templates.Registry, log *logger.Logger) *Service {
	if tmpl == nil {
		tmpl = templates.Get()
	}
	if log == nil {
		log = logger.Get()
	}
	return &Service{users: users, tmpl: tmpl, log: log.With("component", "onboarding")}
}

// Pending reports whether free text from u belongs to onboarding
func (s *Service) Pending(u *user.User) bool {
	return u != nil && u.Step.Pending()
}

// Start restarts onboarding for u
func (s *Service) Start(ctx context.Context, u *user.User) (*Reply, error) {
	return s.Handle(ctx, u, Event{Kind: EventStart})
}

// Handle applies ev to u, persists the result and renders the reply
func (s *Service) Handle(ctx context.Context, u *user.User, ev Event) (*Reply, error) {
	if u == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "onboarding: user is nil")
	}

	prev := StateOf(u)
	next, eff := Transition(prev, ev)

	if eff.Kind.Persists() {
		updated := *u
		next.Apply(&updated)
		if err := s.users.SaveOnboarding(ctx, &updated); err != nil {
			return nil, errors.Wrap(err, "onboarding")
		}
		*u = updated
		s.log.Infow("Onboarding transition",
			"telegram_id", u.TelegramID,
			"from", prev.Step,
			"to", next.Step,
			"effect", eff.Kind,
		)
	}

	reply := &Reply{Effect: eff, ParseMode: telegram.ParseModeHTML}
	var err error
	switch eff.Kind {
	case EffectPromptRisk:
		reply.Text, err = s.tmpl.Render("onboarding/risk_prompt", map[string]any{"Name": u.Username})
		reply.Keyboard = RiskKeyboard()
	case EffectRepromptRisk:
		reply.Text, err = s.tmpl.Render("onboarding/risk_reprompt", nil)
		reply.Keyboard = RiskKeyboard()
	case EffectPromptInterests:
		reply.Text, err = s.tmpl.Render("onboarding/interests_prompt", map[string]any{"Risk": next.Risk})
	case EffectRepromptInterests:
		reply.Text, err = s.tmpl.Render("onboarding/interests_reprompt", nil)
	case EffectComplete:
		reply.Text, err = s.tmpl.Render("onboarding/welcome", map[string]any{"Risk": next.Risk, "Interests": next.Interests})
	case EffectIdle:
		if ticker, ok := PlausibleTicker(eff.Text); ok {
			reply.Ticker = ticker
			break
		}
		reply.Text, err = s.tmpl.Render("onboarding/idle_nudge", nil)
	case EffectNone:
	}
	if err != nil {
		return nil, errors.Wrap(err, "render onboarding reply")
	}
	reply.Text = strings.TrimSpace(reply.Text)
	return reply, nil
}

// RiskKeyboard offers the three risk profiles as buttons
func RiskKeyboard() *telegram.InlineKeyboardMarkup {
	row := make([]telegram.InlineKeyboardButton, 0, len(user.RiskProfiles))
	for _, r := range user.RiskProfiles {
		row = append(row, telegram.NewActionButton(string(r), ActionRisk, strings.ToLower(string(r))))
	}
	kb := telegram.NewInlineKeyboardMarkup(row)
	return &kb
}
