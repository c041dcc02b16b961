package models

import "time"

// Base model with an auto-increment primary key and timestamps. Rows are
// hard-deleted, so a higher ID always means a later insert.
type Base struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
