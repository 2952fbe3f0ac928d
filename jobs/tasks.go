package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeContactEmail is the task type for contact-form notification emails.
	TaskTypeContactEmail = "mail:contact"
)

// ContactEmailPayload carries the submission details needed to send both the
// admin notification and the visitor auto-reply.
type ContactEmailPayload struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// NewContactEmailTask constructs an Asynq task for a contact submission.
func NewContactEmailTask(payload ContactEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeContactEmail, data), nil
}
