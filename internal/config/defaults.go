package config

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *EngineConfig {
	return &EngineConfig{
		Logging: LoggingConfig{Level: "info"},
		Auth:    AuthConfig{TimeoutSeconds: 120},
		HTTP:    HTTPConfig{TimeoutSeconds: 30, RetryCount: 2},
	}
}
