package cron

import (
	"context"
	"errors"

	"github.com/bloomstack/bloomstack-backend/internal/subscriptions"
	"github.com/bloomstack/bloomstack-backend/pkg/logger"
)

const subscriptionExpiryJobName = "subscription-expiry"

// SubscriptionExpiryJob expires overdue subscriptions and downgrades their
// shops to the free plan.
type SubscriptionExpiryJob struct {
	subs subscriptions.Service
	logg *logger.Logger
}

// NewSubscriptionExpiryJob wires the expiry sweep.
func NewSubscriptionExpiryJob(subs subscriptions.Service, logg *logger.Logger) (*SubscriptionExpiryJob, error) {
	if subs == nil {
		return nil, errors.New("subscriptions service required")
	}
	if logg == nil {
		return nil, errors.New("logger required")
	}
	return &SubscriptionExpiryJob{subs: subs, logg: logg}, nil
}

// Name identifies the job in logs and metrics.
func (j *SubscriptionExpiryJob) Name() string {
	return subscriptionExpiryJobName
}

// Run performs one sweep. Row failures are aggregated by the service; the
// job reports them without stopping the worker.
func (j *SubscriptionExpiryJob) Run(ctx context.Context) error {
	result, err := j.subs.ExpirySweep(ctx)
	ctx = j.logg.WithFields(ctx, map[string]any{
		"processed": result.Processed,
		"failed":    result.Failed,
	})
	if err != nil {
		return err
	}
	j.logg.Info(ctx, "subscription expiry sweep complete")
	return nil
}
