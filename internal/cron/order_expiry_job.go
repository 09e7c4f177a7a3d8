package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/gmchicks/storefront-backend/pkg/logger"
)

const defaultExpiryBatch = 200

// OrderExpiryJobParams configure the unpaid order expiry job.
type OrderExpiryJobParams struct {
	Logger     *logger.Logger
	Orders     pendingExpirer
	PendingTTL time.Duration
	BatchSize  int
}

type pendingExpirer interface {
	ExpirePending(ctx context.Context, cutoff time.Time, limit int) (int, error)
}

// NewOrderExpiryJob builds the job that cancels orders left unpaid past the
// pending TTL. Cancellation goes through the order state machine, so stock is
// restocked and an order_expired event is written per order.
func NewOrderExpiryJob(params OrderExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders service required")
	}
	if params.PendingTTL <= 0 {
		return nil, fmt.Errorf("pending ttl must be positive")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultExpiryBatch
	}
	return &orderExpiryJob{
		logg:   params.Logger,
		orders: params.Orders,
		ttl:    params.PendingTTL,
		batch:  batch,
		now:    time.Now,
	}, nil
}

type orderExpiryJob struct {
	logg   *logger.Logger
	orders pendingExpirer
	ttl    time.Duration
	batch  int
	now    func() time.Time
}

func (j *orderExpiryJob) Name() string { return "order-expiry" }

func (j *orderExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.ttl)
	expired, err := j.orders.ExpirePending(ctx, cutoff, j.batch)
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":  cutoff,
		"expired": expired,
	})
	if err != nil {
		return fmt.Errorf("expire pending orders: %w", err)
	}
	j.logg.Info(logCtx, "pending order expiry complete")
	return nil
}
