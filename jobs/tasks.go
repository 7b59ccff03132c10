package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendWelcome is the task type for post-registration emails.
	TaskTypeSendWelcome = "mail:welcome"
	// TaskTypeAuditPurge is the task type for trimming the decision log.
	TaskTypeAuditPurge = "audit:purge"
)

// WelcomePayload describes the information required to greet a new account.
type WelcomePayload struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
}

// NewWelcomeTask constructs an Asynq task.
func NewWelcomeTask(payload WelcomePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendWelcome, data), nil
}

// HandleWelcomeTask processes TaskTypeSendWelcome tasks.
func HandleWelcomeTask(ctx context.Context, t *asynq.Task) error {
	var payload WelcomePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	// Placeholder: integrate with SMTP/Mailpit in phase 2.
	fmt.Printf("[jobs] send welcome email to %s\n", payload.Email)
	return nil
}

// AuditPurgePayload configures a retention-window purge of the decision log.
type AuditPurgePayload struct {
	RetentionHours int `json:"retention_hours"`
}

// NewAuditPurgeTask constructs an Asynq task.
func NewAuditPurgeTask(payload AuditPurgePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeAuditPurge, data), nil
}
