package models

import (
	"time"
)

// Known repository setting keys
const (
	SettingMinimumReviewersRequired = "minimum_reviewers_required"
)

// RepositorySetting is a key/value setting scoped to a repository full name
type RepositorySetting struct {
	Repository string    `json:"repository" db:"repository"`
	Key        string    `json:"key" db:"key"`
	Value      string    `json:"value" db:"value"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
