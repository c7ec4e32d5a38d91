package models

// FileRef describes a remote video object. It is produced by a metadata
// lookup and never mutated afterwards.
type FileRef struct {
	RemoteID    string `json:"remote_id"`    // Object key in the bucket
	DisplayName string `json:"display_name"` // Base name shown to the user
	SizeBytes   uint64 `json:"size_bytes"`   // Object size
	IsVideo     bool   `json:"is_video"`     // Content type is video/*
}
