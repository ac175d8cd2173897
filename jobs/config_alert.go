package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// HandleConfigAlertTask surfaces automatic posting failures to operators.
// Alerting currently means structured error logs scraped by the log
// pipeline.
func HandleConfigAlertTask(logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload ConfigAlertPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		logger.Error("automatic posting requires attention",
			slog.String("tenant_id", payload.TenantID.String()),
			slog.String("event", payload.Event),
			slog.String("reason", payload.Reason))
		return nil
	}
}

// AlertEnqueuer bridges the posting generator to the job queue. A nil or
// failing enqueue degrades to a direct log line so alerts are never lost
// silently.
type AlertEnqueuer struct {
	client *Client
	logger *slog.Logger
}

// NewAlertEnqueuer constructs the enqueuer.
func NewAlertEnqueuer(client *Client, logger *slog.Logger) *AlertEnqueuer {
	return &AlertEnqueuer{client: client, logger: logger}
}

// NotifyConfigIssue enqueues an admin alert for a failed automatic posting.
func (a *AlertEnqueuer) NotifyConfigIssue(ctx context.Context, tenantID uuid.UUID, event string, cause error) {
	payload := ConfigAlertPayload{TenantID: tenantID, Event: event, Reason: fmt.Sprint(cause)}
	if a.client != nil {
		if _, err := a.client.EnqueueConfigAlert(ctx, payload); err == nil {
			return
		} else if a.logger != nil {
			a.logger.Warn("enqueue config alert", slog.Any("error", err))
		}
	}
	if a.logger != nil {
		a.logger.Error("automatic posting requires attention",
			slog.String("tenant_id", tenantID.String()),
			slog.String("event", event),
			slog.String("reason", payload.Reason))
	}
}
