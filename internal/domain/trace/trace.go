package trace

import "time"

// Entry records one outbound test call and what the engine made of it.
type Entry struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	ConfigID   int64     `json:"config_id,omitempty"`
	Method     string    `json:"method"`
	URL        string    `json:"url"`
	Status     int       `json:"status"`
	DurationMs int64     `json:"duration_ms"`
	Field      string    `json:"field,omitempty"`
	Found      bool      `json:"found"`
	Error      string    `json:"error,omitempty"`
}

// Failed reports whether the call ended in a transport or engine error.
func (e Entry) Failed() bool {
	return e.Error != ""
}
