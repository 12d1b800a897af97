package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// JobStatus enumerates content job lifecycle states. The producer only ever
// writes MediaComplete or Failed; the remaining states belong to the
// ingestion and distribution stages.
type JobStatus string

const (
	JobStatusPending       JobStatus = "pending"
	JobStatusProcessing    JobStatus = "processing"
	JobStatusMediaComplete JobStatus = "media_complete"
	JobStatusFailed        JobStatus = "failed"
	JobStatusPublished     JobStatus = "published"
)

// ContentJob is the working copy of a job record loaded for one production
// pass. Persistence is owned by the job store; the coordinator never holds a
// job across passes.
type ContentJob struct {
	ID         string
	Title      string
	ScriptText string
	Analysis   json.RawMessage
	Status     JobStatus
	Media      AssetMap
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// HasInputs reports whether the job carries enough text to attempt media
// generation at all.
func (j *ContentJob) HasInputs() bool {
	return strings.TrimSpace(j.Title) != "" || strings.TrimSpace(j.ScriptText) != ""
}
