package jobs

import (
	"context"
	"time"

	"github.com/tilemart/quotation-api/internal/config"
	"github.com/tilemart/quotation-api/internal/service"
	"go.uber.org/zap"
)

const expiryJobName JobName = "quotation-expiry-sweep"

// expiryJobTimeout bounds a single sweep run.
const expiryJobTimeout = 2 * time.Minute

// RegisterExpirySweep schedules the job that marks quotations past
// their validity date as expired.
func RegisterExpirySweep(
	scheduler *Scheduler,
	cfg *config.JobsConfig,
	quotations *service.QuotationService,
	logger *zap.Logger,
) error {
	if !cfg.ExpirySweepEnabled {
		logger.Info("quotation expiry sweep disabled")
		return nil
	}

	return scheduler.AddJob(expiryJobName, cfg.ExpirySweepCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), expiryJobTimeout)
		defer cancel()

		expired, err := quotations.ExpireOverdue(ctx)
		if err != nil {
			logger.Error("quotation expiry sweep failed", zap.Error(err))
			return
		}
		logger.Info("quotation expiry sweep finished", zap.Int64("expired", expired))
	})
}
