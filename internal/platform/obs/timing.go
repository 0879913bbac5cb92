package obs

import (
	"context"
	"errors"
	"time"

	"github.com/NLlemain/ride-comparing/internal/domain"
	"go.uber.org/zap"
)

type ctxKey string

const SessionIDKey ctxKey = "session_id"

func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, SessionIDKey, id)
}

func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(SessionIDKey).(string)
	return id
}

// Time logs the duration of op when the returned func is deferred with the op's error.
// Cancellations are logged at debug since they are expected when users keep typing.
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()
	sessionID := SessionID(ctx)

	return func(errp *error) {
		fields := []zap.Field{
			zap.String("session_id", sessionID),
			zap.String("op", name),
			zap.Int64("dur_ms", time.Since(start).Milliseconds()),
		}

		if errp != nil && *errp != nil {
			fields = append(fields, zap.Error(*errp))
			if errors.Is(*errp, domain.ErrCancelled) || errors.Is(*errp, domain.ErrNotFound) {
				zap.L().Debug("op finished", fields...)
				return
			}
			zap.L().Warn("op failed", fields...)
			return
		}
		zap.L().Debug("op finished", fields...)
	}
}
