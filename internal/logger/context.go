package logger

import (
	"context"

	"cadre-be/internal/utils"

	"go.uber.org/zap"
)

type ctxKey string

const requestIDKey ctxKey = "request_id"

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// FromCtx returns the global logger tagged with the request id and, for
// authenticated calls, the acting user, so staff edits to orders can be
// traced back to who made them.
func FromCtx(ctx context.Context) *zap.Logger {
	l := L()

	fields := make([]zap.Field, 0, 3)
	if reqID := RequestIDFrom(ctx); reqID != "" {
		fields = append(fields, zap.String("request_id", reqID))
	}
	if userID, ok := utils.GetUserIDFromContext(ctx); ok {
		fields = append(fields,
			zap.String("user_id", userID),
			zap.String("role", utils.GetUserRoleFromContext(ctx)),
		)
	}

	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}
