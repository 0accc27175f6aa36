package queue

import (
	"context"
	"database/sql"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"blobqueue/metrics"
)

const maxTxRetries = 3

// runTx runs fn in a transaction, retrying transient storage failures.
// fn runs from scratch on every attempt so it must not leak state between attempts.
func (s *Service) runTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	start := time.Now()
	defer func() { metrics.TxDuration.Observe(time.Since(start).Seconds()) }()

	op := func() error {
		err := s.store.WithTx(ctx, fn)
		if err != nil && permanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxElapsedTime = 5 * time.Second

	return backoff.RetryNotify(op, backoff.WithContext(backoff.WithMaxRetries(b, maxTxRetries), ctx),
		func(err error, wait time.Duration) {
			s.logger.Warn("Retrying suggestion transaction", zap.Duration("wait", wait), zap.Error(err))
		})
}
