package cron

import (
	"context"
	"errors"

	"github.com/bloomstack/bloomstack-backend/internal/subscriptions"
	"github.com/bloomstack/bloomstack-backend/pkg/logger"
)

const expiryWarningJobName = "expiry-warning"

// ExpiryWarningJob emails owners whose subscription expires soon. No state
// is written.
type ExpiryWarningJob struct {
	subs subscriptions.Service
	logg *logger.Logger
}

// NewExpiryWarningJob wires the warning sweep.
func NewExpiryWarningJob(subs subscriptions.Service, logg *logger.Logger) (*ExpiryWarningJob, error) {
	if subs == nil {
		return nil, errors.New("subscriptions service required")
	}
	if logg == nil {
		return nil, errors.New("logger required")
	}
	return &ExpiryWarningJob{subs: subs, logg: logg}, nil
}

// Name identifies the job in logs and metrics.
func (j *ExpiryWarningJob) Name() string {
	return expiryWarningJobName
}

// Run performs one warning pass.
func (j *ExpiryWarningJob) Run(ctx context.Context) error {
	warned, err := j.subs.WarningSweep(ctx)
	if err != nil {
		return err
	}
	j.logg.Info(j.logg.WithField(ctx, "warned", warned), "expiry warning sweep complete")
	return nil
}
