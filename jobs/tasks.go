// Package jobs defines the background task types and the asynq worker and
// client plumbing around them.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/forgeline/forgeline/internal/claims"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskClaimsUpdate is the task type for permission mutations.
	TaskClaimsUpdate = "claims:update"
	// TaskSessionsPurge is the task type for expired session audit cleanup.
	TaskSessionsPurge = "sessions:purge"
)

// ClaimsUpdatePayload describes one permission mutation: the admin who
// requested it, the user being changed, the company scope, the per-module
// action grants, and the merge mode.
type ClaimsUpdatePayload struct {
	ActorID   int64        `json:"actor_id"`
	UserID    int64        `json:"user_id"`
	CompanyID int64        `json:"company_id"`
	Grants    claims.Delta `json:"grants"`
	Mode      claims.Mode  `json:"mode"`
}

// NewClaimsUpdateTask constructs an asynq task for a permission mutation.
func NewClaimsUpdateTask(payload ClaimsUpdatePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskClaimsUpdate, data, asynq.Queue(QueueDefault), asynq.MaxRetry(5)), nil
}

// SessionsPurgePayload controls how far past expiry a session audit row must
// be before the purge removes it.
type SessionsPurgePayload struct {
	GraceHours int `json:"grace_hours"`
}

// NewSessionsPurgeTask constructs an asynq task for the session audit purge.
func NewSessionsPurgeTask(graceHours int) (*asynq.Task, error) {
	if graceHours < 0 {
		graceHours = 0
	}
	data, err := json.Marshal(SessionsPurgePayload{GraceHours: graceHours})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSessionsPurge, data, asynq.Queue(QueueDefault)), nil
}
