package workers

import (
	"context"

	"marketpulse/internal/services/analysis"
	"marketpulse/internal/services/report"
	"marketpulse/pkg/errors"
	"marketpulse/pkg/logger"
)

// PremarketSource builds the index quotes and market headlines
type PremarketSource interface {
	Premarket(ctx context.Context, userID int64) (*analysis.CommandContext, error)
}

// ReportRenderer formats a context
type ReportRenderer interface {
	Render(kind report.Kind, cc *analysis.CommandContext) (report.Report, error)
}

// Broadcaster delivers one report to every monitored user plus extra chats
type Broadcaster interface {
	SendBriefing(ctx context.Context, rep report.Report, extra ...int64) (int, error)
}

// BriefingJob sends the pre-market briefing on a cron schedule
type BriefingJob struct {
	*BaseWorker
	schedule    string
	source      PremarketSource
	renderer    ReportRenderer
	broadcaster Broadcaster
	adminChatID int64
}

// NewBriefingJob creates the briefing job. adminChatID may be 0.
func NewBriefingJob(
	schedule string,
	source PremarketSource,
	renderer ReportRenderer,
	broadcaster Broadcaster,
	adminChatID int64,
	log *logger.Logger,
) *BriefingJob {
	return &BriefingJob{
		BaseWorker:  NewBaseWorker("premarket_briefing", 0, schedule != "", log),
		schedule:    schedule,
		source:      source,
		renderer:    renderer,
		broadcaster: broadcaster,
		adminChatID: adminChatID,
	}
}

// Schedule returns the cron expression
func (j *BriefingJob) Schedule() string {
	return j.schedule
}

// Run builds and broadcasts the briefing
func (j *BriefingJob) Run(ctx context.Context) error {
	cc, err := j.source.Premarket(ctx, 0)
	if err != nil {
		return errors.Wrap(err, "build premarket briefing")
	}
	rep, err := j.renderer.Render(report.KindPremarket, cc)
	if err != nil {
		return errors.Wrap(err, "render premarket briefing")
	}
	sent, err := j.broadcaster.SendBriefing(ctx, rep, j.adminChatID)
	if err != nil {
		return err
	}
	j.Log().Infow("Pre-market briefing delivered", "recipients", sent)
	return nil
}
