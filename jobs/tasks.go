package jobs

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeLedgerIntegrity is the periodic ledger integrity scan.
	TaskTypeLedgerIntegrity = "ledger:integrity"
	// TaskTypeConfigAlert notifies administrators about automatic posting
	// problems.
	TaskTypeConfigAlert = "ledger:config-alert"
)

// LedgerIntegrityPayload scopes an integrity scan. A nil tenant scans every
// tenant in the store.
type LedgerIntegrityPayload struct {
	TenantID *uuid.UUID `json:"tenantId,omitempty"`
}

// ConfigAlertPayload carries an automatic posting failure notification.
type ConfigAlertPayload struct {
	TenantID uuid.UUID `json:"tenantId"`
	Event    string    `json:"event"`
	Reason   string    `json:"reason"`
}

// NewLedgerIntegrityTask constructs the integrity scan task.
func NewLedgerIntegrityTask(payload LedgerIntegrityPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeLedgerIntegrity, data), nil
}

// NewConfigAlertTask constructs the admin alert task.
func NewConfigAlertTask(payload ConfigAlertPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeConfigAlert, data), nil
}
