package watch

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/blogbuilder/internal/content"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
)

// PublishScheduler wraps a gocron scheduler that fires one rebuild per
// future-dated entry at its publish time, so scheduled posts go live without
// touching a file.
type PublishScheduler struct {
	scheduler gocron.Scheduler
	rebuild   func()
	now       func() time.Time
}

// NewPublishScheduler creates a stopped scheduler; call Reschedule to arm it.
func NewPublishScheduler(rebuild func()) (*PublishScheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &PublishScheduler{scheduler: s, rebuild: rebuild, now: time.Now}, nil
}

// Reschedule replaces all publish jobs with one per scheduled entry. Entries
// whose date already passed are ignored; the rebuild that follows a content
// change republishes them anyway.
func (p *PublishScheduler) Reschedule(scheduled []content.Entry) error {
	for _, job := range p.scheduler.Jobs() {
		if err := p.scheduler.RemoveJob(job.ID()); err != nil {
			return fmt.Errorf("remove publish job: %w", err)
		}
	}

	now := p.now()
	for _, e := range scheduled {
		if !e.PubDate.After(now) {
			continue
		}
		job, err := p.scheduler.NewJob(
			gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(e.PubDate)),
			gocron.NewTask(p.publish, e.Slug),
			gocron.WithName("publish-"+e.Slug),
		)
		if err != nil {
			return fmt.Errorf("failed to create publish job for %s: %w", e.Slug, err)
		}
		slog.Info("Scheduled future publish",
			logfields.Slug(e.Slug),
			slog.Time("publish_at", e.PubDate),
			logfields.Name(job.ID().String()))
	}

	p.scheduler.Start()
	return nil
}

func (p *PublishScheduler) publish(slug string) {
	slog.Info("Publish time reached, rebuilding", logfields.Slug(slug))
	p.rebuild()
}

// Shutdown stops the scheduler and releases its resources.
func (p *PublishScheduler) Shutdown() error {
	return p.scheduler.Shutdown()
}
