// Package service holds the business rules between handlers and repositories:
// input validation, ownership checks, toggles and delete cascades.
package service

import (
	"context"
	"errors"
	"fmt"

	"vidtube/internal/middleware"
	"vidtube/internal/models"
	"vidtube/internal/notifications"
	"vidtube/internal/observability"
	"vidtube/internal/validation"
)

// EventPublisher pushes activity to a user's live connections.
type EventPublisher interface {
	Notify(ctx context.Context, userID uint, ev notifications.Event) error
}

func validationFailed(errs validation.Errors) error {
	return models.NewValidationError("Validation failed", errs...)
}

// requireOwner returns Forbidden unless requester owns the resource.
func requireOwner(ownerID, requesterID uint, action string) error {
	if ownerID != requesterID {
		return models.NewForbiddenError(fmt.Sprintf("You do not have permission to %s", action))
	}
	return nil
}

// publish delivers ev to userID without letting a delivery failure affect
// the caller. Self-notifications are skipped.
func publish(ctx context.Context, events EventPublisher, userID uint, ev notifications.Event) {
	if events == nil || userID == 0 || userID == ev.ActorID {
		return
	}
	if err := events.Notify(ctx, userID, ev); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish notification",
			"type", ev.Type, "recipient_id", userID, "error", err)
	}
}

type cascadeStep struct {
	name string
	run  func(ctx context.Context) error
}

// runCascade executes every step in order, even after failures, on a context
// that survives client disconnects. Failed steps are logged, counted and
// reported together in a single cascade error.
func runCascade(ctx context.Context, resource string, id uint, steps []cascadeStep) error {
	ctx = context.WithoutCancel(ctx)
	ctx, end := observability.StartSpan(ctx, "cascade."+resource)

	var (
		failed []string
		errs   []error
	)
	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			failed = append(failed, step.name)
			errs = append(errs, fmt.Errorf("%s: %w", step.name, err))
			observability.CascadeStepFailures.WithLabelValues(step.name).Inc()
			middleware.Logger.ErrorContext(ctx, "cascade step failed",
				"resource", resource, "id", id, "step", step.name, "error", err)
			continue
		}
		middleware.Logger.DebugContext(ctx, "cascade step done", "resource", resource, "id", id, "step", step.name)
	}

	if len(failed) == 0 {
		end(nil)
		return nil
	}
	err := models.NewCascadeError(resource, id, failed, errors.Join(errs...))
	end(err)
	return err
}
