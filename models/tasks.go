package models

import "time"

const (
	TaskStatusCompleted = "completed"
	TaskStatusFailed    = "failed"
)

// MergeTask is the durable record of one finished pipeline run.
type MergeTask struct {
	UserID     int64     `dynamodbav:"user_id" json:"user_id"`         // Partition key
	TaskID     string    `dynamodbav:"task_id" json:"task_id"`         // Sort key, UUIDv7 so it orders by time
	OutputName string    `dynamodbav:"output_name" json:"output_name"` // Chosen or synthesized filename
	RemoteID   string    `dynamodbav:"remote_id,omitempty" json:"remote_id,omitempty"`
	Status     string    `dynamodbav:"status" json:"status"` // completed | failed
	Error      string    `dynamodbav:"error,omitempty" json:"error,omitempty"`
	FileCount  int       `dynamodbav:"file_count" json:"file_count"`
	TotalBytes uint64    `dynamodbav:"total_bytes" json:"total_bytes"`
	CreatedAt  time.Time `dynamodbav:"created_at" json:"created_at"`
}
