package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"hackbot/platform"
	"hackbot/utils"
)

// PermissionDenied is the reply sent to members lacking the required role.
const PermissionDenied = "You do not have permission to use this command."

// Middleware wraps a command handler.
type Middleware func(platform.CommandHandler) platform.CommandHandler

// Chain applies mw so that the first one listed runs outermost.
func Chain(h platform.CommandHandler, mw ...Middleware) platform.CommandHandler {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

// ReportErrors is the error boundary of a command: failures and panics are
// logged, sent to Sentry and swallowed so the gateway loop keeps going.
func ReportErrors() Middleware {
	return func(next platform.CommandHandler) platform.CommandHandler {
		return func(ctx context.Context, inv *platform.Invocation) (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = errors.Errorf("panic in /%s: %v", inv.Command, r)
					report(inv, err)
					err = nil
				}
			}()

			if err := next(ctx, inv); err != nil {
				report(inv, err)
			}
			return nil
		}
	}
}

func report(inv *platform.Invocation, err error) {
	utils.LogError("command_failed", err, map[string]interface{}{
		"command": inv.Command,
		"channel": inv.ChannelName,
		"user_id": inv.Invoker.ID,
		"user":    inv.Invoker.Username,
	})
}

// RequireRole lets the command through only for members holding roleName.
func RequireRole(roleName string) Middleware {
	return func(next platform.CommandHandler) platform.CommandHandler {
		return func(ctx context.Context, inv *platform.Invocation) error {
			if !inv.Invoker.HasRole(roleName) {
				utils.LogEvent("permission_denied", map[string]interface{}{
					"command":  inv.Command,
					"user_id":  inv.Invoker.ID,
					"required": roleName,
				})
				_, err := inv.Respond(ctx, PermissionDenied)
				return err
			}
			return next(ctx, inv)
		}
	}
}

// LogInvocation logs every command with its latency.
func LogInvocation(logger *logrus.Entry) Middleware {
	return func(next platform.CommandHandler) platform.CommandHandler {
		return func(ctx context.Context, inv *platform.Invocation) error {
			start := time.Now()
			err := next(ctx, inv)

			entry := logger.WithFields(logrus.Fields{
				"command": fmt.Sprintf("/%s", inv.Command),
				"channel": inv.ChannelName,
				"user":    inv.Invoker.Username,
				"latency": time.Since(start).String(),
			})
			if err != nil {
				entry.WithError(err).Warn("Command failed")
			} else {
				entry.Info("Command handled")
			}
			return err
		}
	}
}
