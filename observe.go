package quill

import (
	"time"

	"go.uber.org/zap"

	"github.com/quillhq/quill/internal/metrics"
)

// observer provides logging and metrics for client operations.
type observer struct {
	logger      *zap.Logger
	withMetrics bool
}

func newObserver(logger *zap.Logger, withMetrics bool) *observer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &observer{logger: logger, withMetrics: withMetrics}
}

func (o *observer) observe(op string, start time.Time, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)

	if o.withMetrics {
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.RequestsTotal.WithLabelValues(op, status).Inc()
		metrics.RequestDuration.WithLabelValues(op).Observe(dur.Seconds())
	}

	if err != nil {
		o.logger.Warn("operation failed",
			zap.String("op", op),
			zap.Duration("duration", dur),
			zap.Error(err),
		)
	} else {
		o.logger.Debug("operation completed",
			zap.String("op", op),
			zap.Duration("duration", dur),
		)
	}
}
