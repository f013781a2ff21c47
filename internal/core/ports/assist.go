package ports

import (
	"context"
	"time"
)

// TextGenerator is the hosted LLM boundary: opaque text in, text or JSON out.
// No retry policy; callers degrade to fixed fallback strings on error.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	// GenerateJSON requests a JSON-typed response. The returned string may
	// still be wrapped in a markdown code fence by the model.
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// TextCache is a TTL cache for generated responses.
type TextCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// ParsedClient holds the fields the model extracted from free text. Empty
// fields were not found in the input.
type ParsedClient struct {
	Name     string `json:"name"`
	Login    string `json:"login"`
	Password string `json:"password"`
	Server   string `json:"server"`
	Phone    string `json:"phone"`
	DueDate  string `json:"due_date"`
}

// AssistService wraps the text-generation boundary with the fixed prompts of
// the dashboard. Reminder, summary, and password generation never fail: on
// error they return the Portuguese fallback strings. ParseClient propagates
// failure because there is no sensible fallback for structured extraction.
type AssistService interface {
	RenewalReminder(ctx context.Context, clientName, dueDate string) string
	DashboardSummary(ctx context.Context, stats Stats) string
	StrongPassword(ctx context.Context) string
	ParseClient(ctx context.Context, text string) (*ParsedClient, error)
}

// ReminderJob is one unit of bulk-reminder work: generate a renewal message
// for a single client and park the result under the job id.
type ReminderJob struct {
	JobID      string
	ClientID   string
	ClientName string
	DueDate    string
}

// JobResults collects per-client messages produced by bulk reminder jobs.
type JobResults interface {
	Init(ctx context.Context, jobID string, total int) error
	Add(ctx context.Context, jobID, clientID, message string) error
	// Get returns the messages produced so far keyed by client id, plus the
	// total expected. Unknown job ids map to domain.ErrJobNotFound.
	Get(ctx context.Context, jobID string) (map[string]string, int, error)
}
