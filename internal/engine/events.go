package engine

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// EventsChannel is the Redis pub/sub channel for job record changes.
const EventsChannel = "EVENT_USER_JOBS"

// Job record event types.
const (
	EventJobCreated      = "job_created"
	EventJobUpdated      = "job_updated"
	EventJobDeleted      = "job_deleted"
	EventResumeOptimized = "resume_optimized"
	EventBaseResumeSaved = "base_resume_saved"
)

// JobEvent is published after every user_jobs or profile write.
type JobEvent struct {
	Type   string    `json:"type"`
	UserID string    `json:"userId"`
	JobID  string    `json:"jobId,omitempty"`
	At     time.Time `json:"at"`
}

// PublishJobEvent announces a change on EventsChannel. Publishing is
// best effort: it is skipped without Redis and failures are only logged.
func PublishJobEvent(ctx context.Context, typ, userID, jobID string) {
	rdb := redisClient()
	if rdb == nil {
		return
	}
	event, _ := json.Marshal(JobEvent{Type: typ, UserID: userID, JobID: jobID, At: time.Now().UTC()})
	if err := rdb.Publish(ctx, EventsChannel, event).Err(); err != nil {
		slog.Warn("publish job event failed", slog.String("type", typ), slog.Any("error", err))
		return
	}
	metrics.EventsPublished.Add(1)
}
