package app

import "time"

// Config holds all configurable parameters for the application.
type Config struct {
	Port           int
	DBPath         string
	CollectionsDir string // "" disables YAML collections
	HistorySize    int
	LogLevel       string

	UpstreamTimeout time.Duration
	BatchRate       float64 // outbound calls per second per host during batch runs
	BatchBurst      int
	PacerTTL        time.Duration
	WatcherDebounce time.Duration

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	DefaultEngine string // "" = jinja2, "expr"
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() Config {
	return Config{
		Port:        3000,
		DBPath:      "./apiprobe.db",
		HistorySize: 200,
		LogLevel:    "info",

		UpstreamTimeout: 30 * time.Second,
		BatchRate:       2,
		BatchBurst:      1,
		PacerTTL:        10 * time.Minute,
		WatcherDebounce: 500 * time.Millisecond,

		ReadTimeout: 30 * time.Second,
		// Batch runs answer only once every value has been sent.
		WriteTimeout:    5 * time.Minute,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}
