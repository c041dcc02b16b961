// Package events carries outbound domain events from the request path to a
// publisher running off the request goroutine.
package events

import (
	"time"

	"github.com/hugh/rally/internal/database/models"
)

const UserRegistered = "user:registered"

// Event is the message handed to publishers. The mail worker reloads the user
// by ID, so no secrets travel with it.
type Event struct {
	Name       string    `json:"name"`
	UserID     uint      `json:"user_id"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewUserRegistered(user *models.User) Event {
	return Event{
		Name:       UserRegistered,
		UserID:     user.ID,
		Email:      user.Email,
		OccurredAt: time.Now().UTC(),
	}
}
