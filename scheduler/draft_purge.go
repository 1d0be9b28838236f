package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DraftPurger deletes imprest drafts that have not been edited within a window.
type DraftPurger interface {
	PurgeStaleDrafts(ctx context.Context, olderThan time.Duration) (int64, error)
}

// DraftPurgeJob removes abandoned imprest drafts.
type DraftPurgeJob struct {
	purger    DraftPurger
	retention time.Duration
	timeout   time.Duration
	log       *zap.Logger
}

func NewDraftPurgeJob(purger DraftPurger, retention time.Duration, log *zap.Logger) *DraftPurgeJob {
	return &DraftPurgeJob{
		purger:    purger,
		retention: retention,
		timeout:   time.Minute,
		log:       log.With(zap.String("job", "draft_purge")),
	}
}

func (j *DraftPurgeJob) Name() string {
	return "draft_purge"
}

func (j *DraftPurgeJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	n, err := j.purger.PurgeStaleDrafts(ctx, j.retention)
	if err != nil {
		return err
	}
	if n > 0 {
		j.log.Info("Purged stale imprest drafts",
			zap.Int64("count", n),
			zap.Duration("retention", j.retention))
	}
	return nil
}
