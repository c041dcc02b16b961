package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeVerificationEmail = "mail:verification"
)

// VerificationEmailPayload identifies the user to mail. The handler reloads the
// user so the verification code never sits in Redis.
type VerificationEmailPayload struct {
	UserID uint `json:"user_id"`
}

func NewVerificationEmailTask(payload VerificationEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeVerificationEmail, data), nil
}
