package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/gmchicks/storefront-backend/pkg/logger"
)

const defaultOutboxRetention = 30 * 24 * time.Hour

// OutboxRetentionJobParams configure pruning of delivered outbox rows.
type OutboxRetentionJobParams struct {
	Logger    *logger.Logger
	Outbox    publishedPruner
	Retention time.Duration
}

type publishedPruner interface {
	DeletePublishedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

func NewOutboxRetentionJob(params OutboxRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = defaultOutboxRetention
	}
	return &outboxRetentionJob{
		logg:      params.Logger,
		outbox:    params.Outbox,
		retention: retention,
		now:       time.Now,
	}, nil
}

type outboxRetentionJob struct {
	logg      *logger.Logger
	outbox    publishedPruner
	retention time.Duration
	now       func() time.Time
}

func (j *outboxRetentionJob) Name() string { return "outbox-retention" }

func (j *outboxRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)
	pruned, err := j.outbox.DeletePublishedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("prune published outbox events: %w", err)
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff": cutoff,
		"pruned": pruned,
	}), "outbox retention complete")
	return nil
}
