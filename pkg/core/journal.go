package core

import "time"

// Request kinds recorded in the journal.
const (
	RequestUpdate  = "update"
	RequestSetting = "setting"
)

// RequestRecord is one outbound fire-and-forget request as it was sent.
type RequestRecord struct {
	Kind     string        `json:"kind"`
	ImageID  int           `json:"imageId,omitempty"`
	Path     string        `json:"path"`
	Query    string        `json:"query"`
	OK       bool          `json:"ok"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
	SentAt   time.Time     `json:"sentAt"`
}
