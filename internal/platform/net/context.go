// Package net carries request-scoped identity between middleware and handlers
package net

import (
	"context"

	"callcrm/internal/platform/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type ctxKey int

const keyUserID ctxKey = iota

// WithUser stores the session user id and mirrors it into the logger fields
func WithUser(ctx context.Context, userID string) context.Context {
	if userID == "" {
		return ctx
	}
	ctx = context.WithValue(ctx, keyUserID, userID)
	return logger.WithRequest(ctx, RequestID(ctx), userID)
}

// WithRequestID sets the chi request id, for callers outside the chi stack
func WithRequestID(ctx context.Context, reqID string) context.Context {
	if reqID == "" {
		return ctx
	}
	ctx = context.WithValue(ctx, chimw.RequestIDKey, reqID)
	return logger.WithRequest(ctx, reqID, "")
}

// RequestID returns the chi request id or ""
func RequestID(ctx context.Context) string { return chimw.GetReqID(ctx) }

// UserID returns the session user id or ""
func UserID(ctx context.Context) string {
	v, _ := ctx.Value(keyUserID).(string)
	return v
}
