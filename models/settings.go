package models

import "time"

// UserSettings holds the durable per-operator configuration.
type UserSettings struct {
	UserID     int64     `dynamodbav:"user_id" json:"user_id"`         // Telegram user id
	DestPrefix string    `dynamodbav:"dest_prefix" json:"dest_prefix"` // Key prefix merged output is uploaded under
	UpdatedAt  time.Time `dynamodbav:"updated_at" json:"updated_at"`
}
