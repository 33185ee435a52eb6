package config

// LoggingConfig controls engine log output.
type LoggingConfig struct {
	Level string `json:"level,omitempty"` // "debug", "info", "warn", "error"
	JSON  bool   `json:"json,omitempty"`
}

// AuthConfig defines how credentials are acquired when a task fails with an
// authentication error. Command is run as a shell command; it must print a
// JSON object with a "credential_valid" field on stdout.
type AuthConfig struct {
	Command        string `json:"command,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
}

// HTTPConfig tunes the built-in http capability.
type HTTPConfig struct {
	TimeoutSeconds int `json:"timeout_seconds,omitempty"`
	RetryCount     int `json:"retry_count,omitempty"`
}

// EngineConfig is the top-level configuration.
type EngineConfig struct {
	Logging LoggingConfig `json:"logging"`
	Auth    AuthConfig    `json:"auth"`
	HTTP    HTTPConfig    `json:"http"`

	// MaxConcurrent caps round width. 0 means unlimited.
	MaxConcurrent int `json:"max_concurrent,omitempty"`
}
