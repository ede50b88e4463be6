package job

import (
	"context"
	"time"

	"github.com/greenbush/returns-api/internal/application/service"
	"go.uber.org/zap"
)

// CreditExpiryJob periodically sweeps store credits past their
// expiration date. The sweep itself is idempotent, so overlapping or
// repeated runs are harmless.
type CreditExpiryJob struct {
	credits  *service.CreditService
	logger   *zap.Logger
	stopCh   chan struct{}
	interval time.Duration
}

func NewCreditExpiryJob(credits *service.CreditService, interval time.Duration, logger *zap.Logger) *CreditExpiryJob {
	return &CreditExpiryJob{
		credits:  credits,
		logger:   logger,
		stopCh:   make(chan struct{}),
		interval: interval,
	}
}

func (j *CreditExpiryJob) Start(ctx context.Context) {
	j.logger.Info("credit expiry job started", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	// Run once on startup so a long interval does not delay the first sweep
	j.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("credit expiry job stopping, context cancelled")
			return
		case <-j.stopCh:
			j.logger.Info("credit expiry job stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *CreditExpiryJob) Stop() {
	close(j.stopCh)
}

func (j *CreditExpiryJob) sweep(ctx context.Context) {
	count, err := j.credits.SweepExpired(ctx)
	if err != nil {
		j.logger.Error("credit expiry sweep failed", zap.Error(err))
		return
	}
	if count > 0 {
		j.logger.Info("credit expiry sweep completed", zap.Int64("expired", count))
	}
}
