package report

import (
	"fmt"
	"strings"

	"marketpulse/internal/services/analysis"
	"marketpulse/pkg/errors"
	"marketpulse/pkg/telegram"
	"marketpulse/pkg/templates"
)

// Kind selects the report layout
type Kind string

const (
	KindSnapshot    Kind = "snapshot"
	KindAnalysis    Kind = "analysis"
	KindWhy         Kind = "why"
	KindCompare     Kind = "compare"
	KindSector      Kind = "sector"
	KindSectors     Kind = "sectors"
	KindUndervalued Kind = "undervalued"
	KindPremarket   Kind = "premarket"
	KindWatchlist   Kind = "watchlist"
	KindStatus      Kind = "status"
	KindProfile     Kind = "profile"
	KindTrending    Kind = "trending"
	KindAsk         Kind = "ask"
	KindNews        Kind = "news"
	KindHelp        Kind = "help"
	KindPriceAlert  Kind = "price_alert"
	KindNewsAlert   Kind = "news_alert"
	KindVolumeAlert Kind = "volume_alert"
)

// MaxMessageLength is the Telegram limit for one text message
const MaxMessageLength = 4096

// minSubjects is how many resolved subjects each kind needs
var minSubjects = map[Kind]int{
	KindSnapshot:    1,
	KindAnalysis:    1,
	KindWhy:         1,
	KindAsk:         1,
	KindNews:        1,
	KindPriceAlert:  1,
	KindNewsAlert:   1,
	KindVolumeAlert: 1,
	KindCompare:     2,
}

// Report is a rendered, ready to send message
type Report struct {
	Text      string
	ParseMode string
	Keyboard  *telegram.InlineKeyboardMarkup
}

// Options converts the report into send options
func (r Report) Options() telegram.MessageOptions {
	return telegram.MessageOptions{
		ParseMode:             r.ParseMode,
		Keyboard:              r.Keyboard,
		DisableWebPagePreview: true,
	}
}

// view is the template data: the context plus shortcuts to its subjects
type view struct {
	*analysis.CommandContext
	P *analysis.Subject
	B *analysis.Subject
}

// Renderer turns assembled contexts into Telegram HTML. It does no I/O.
type Renderer struct {
	tmpl *templates.Registry
}

// NewRenderer parses the embedded report templates
func NewRenderer() (*Renderer, error) {
	reg, err := templates.NewEmbeddedRegistry(templates.WithFuncs(Funcs()))
	if err != nil {
		return nil, errors.Wrap(err, "load report templates")
	}
	return NewRendererWithRegistry(reg), nil
}

// NewRendererWithRegistry uses an existing registry. The registry must have been
// built with Funcs.
func NewRendererWithRegistry(reg *templates.Registry) *Renderer {
	return &Renderer{tmpl: reg}
}

// Render produces the message for kind
func (r *Renderer) Render(kind Kind, cc *analysis.CommandContext) (Report, error) {
	if cc == nil {
		cc = &analysis.CommandContext{}
	}
	if n := minSubjects[kind]; len(cc.Subjects) < n {
		return Report{}, errors.Wrapf(errors.ErrInvalidInput, "report %s needs %d subject(s), got %d", kind, n, len(cc.Subjects))
	}

	v := view{CommandContext: cc, P: cc.Primary()}
	if len(cc.Subjects) > 1 {
		v.B = &cc.Subjects[1]
	}

	id := "reports/" + string(kind)
	if !r.tmpl.Has(id) {
		return Report{}, errors.Wrapf(errors.ErrInvalidInput, "unknown report kind %q", kind)
	}
	text, err := r.tmpl.Render(id, v)
	if err != nil {
		return Report{}, fmt.Errorf("render %s: %w", kind, err)
	}

	return Report{
		Text:      clamp(strings.TrimSpace(text)),
		ParseMode: telegram.ParseModeHTML,
		Keyboard:  keyboardFor(kind, cc),
	}, nil
}

// clamp keeps text under the message limit by dropping whole trailing lines
// so that no HTML tag is cut in half.
func clamp(text string) string {
	if len(text) <= MaxMessageLength {
		return text
	}
	const marker = "\n…"
	cut := text[:MaxMessageLength-len(marker)]
	if i := strings.LastIndex(cut, "\n"); i > 0 {
		cut = cut[:i]
	}
	return cut + marker
}
