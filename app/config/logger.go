package config

import "go.uber.org/zap"

// NewLogger builds a development logger for APP_ENV=development and a
// JSON production logger otherwise.
func NewLogger(c *Config) (*zap.Logger, error) {
	if c.Development() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
