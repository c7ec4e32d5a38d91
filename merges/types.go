package merges

import "github.com/vidmerge/vidmerge-bot/models"

type SessionFile struct {
	Name string `json:"name" example:"clip_01.mp4"`
	Size string `json:"size" example:"120.4MB"`
}

type SessionResponse struct {
	UserId    int64         `json:"user_id" example:"123456789"`
	State     string        `json:"state" example:"collecting"`
	Files     []SessionFile `json:"files"`
	TotalSize string        `json:"total_size" example:"120.4MB"`
}

type TasksResponse struct {
	UserId int64              `json:"user_id" example:"123456789"`
	Tasks  []models.MergeTask `json:"tasks"`
}
