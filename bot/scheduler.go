package bot

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"blobqueue/queue"
)

const reconcileRunTimeout = 5 * time.Minute

// cronLogger adapts zap to cron.Logger.
type cronLogger struct{ *zap.SugaredLogger }

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.Infow(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.Errorw(msg, append(keysAndValues, "error", err)...)
}

type reconciler interface {
	Reconcile(ctx context.Context, dryRun bool) (queue.ReconcileReport, error)
}

// newScheduler schedules periodic reconciliation of missing queue messages.
// spec accepts an optional seconds field and descriptors like "@every 10m".
func newScheduler(ctx context.Context, r reconciler, spec string, logger *zap.Logger) (*cron.Cron, error) {
	cl := cronLogger{logger.Named("cron").Sugar()}
	c := cron.New(cron.WithSeconds(), cron.WithLogger(cl), cron.WithChain(cron.Recover(cl)))
	if _, err := c.AddFunc(spec, reconcileJob(ctx, r, logger)); err != nil {
		return nil, err
	}
	return c, nil
}

func reconcileJob(ctx context.Context, r reconciler, logger *zap.Logger) func() {
	return func() {
		// keep each run bounded
		rctx, cancel := context.WithTimeout(ctx, reconcileRunTimeout)
		defer cancel()

		report, err := r.Reconcile(rctx, false)
		if err != nil {
			logger.Error("Scheduled reconcile failed", zap.Error(err))
			return
		}
		if report.Total() > 0 {
			logger.Info("Scheduled reconcile rebuilt queue messages",
				zap.Int("review", report.Review),
				zap.Int("public", report.Public),
				zap.Int("failed", report.Failed))
		}
	}
}
