package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/sluice/pkg/domain"
)

// CombineHooks merges several hook sets into one. Each callback fans out to
// every set that defines it, in order.
func CombineHooks(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnExecuteStart: func(ctx context.Context, event *domain.ExecutionEvent) {
			for _, s := range sets {
				if s.OnExecuteStart != nil {
					s.OnExecuteStart(ctx, event)
				}
			}
		},
		OnExecuteEnd: func(ctx context.Context, event *domain.ExecutionEvent) {
			for _, s := range sets {
				if s.OnExecuteEnd != nil {
					s.OnExecuteEnd(ctx, event)
				}
			}
		},
		OnStepStart: func(ctx context.Context, event *domain.StepEvent) {
			for _, s := range sets {
				if s.OnStepStart != nil {
					s.OnStepStart(ctx, event)
				}
			}
		},
		OnStepEnd: func(ctx context.Context, event *domain.StepEvent) {
			for _, s := range sets {
				if s.OnStepEnd != nil {
					s.OnStepEnd(ctx, event)
				}
			}
		},
	}
}

// LoggingHooks emits a structured line per execution and per failed step.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnExecuteEnd: func(_ context.Context, event *domain.ExecutionEvent) {
			if event.Err != nil {
				logger.Warn("execution failed",
					"execution_id", event.ExecutionID,
					"caller", string(event.Caller),
					"steps", event.Steps,
					"err", event.Err)
				return
			}
			logger.Info("execution settled",
				"execution_id", event.ExecutionID,
				"caller", string(event.Caller),
				"steps", event.Steps,
				"supplied", event.Supplied,
				"refunded", event.Refunded,
				"duration", event.Duration)
		},
		OnStepEnd: func(_ context.Context, event *domain.StepEvent) {
			if event.Err == nil {
				return
			}
			logger.Warn("step failed",
				"execution_id", event.ExecutionID,
				"index", event.Index,
				"adapter", event.Adapter,
				"err", event.Err)
		},
	}
}
