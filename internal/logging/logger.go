// Package logging is the structured logging facade used by every server
// component. Components receive a child logger carrying a "module" key.
package logging

import "context"

// Logger takes alternating key/value args after the message:
//
//	logger.Warn(ctx, "rate limiter unavailable", "policy", p.Name, "error", err)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that adds args to every record.
	With(args ...any) Logger
}
