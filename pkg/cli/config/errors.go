package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrInvalidBackend   = goerr.New("invalid repository backend")
	ErrMissingFlag      = goerr.New("required flag is missing")
	ErrInvalidLogLevel  = goerr.New("invalid log level")
	ErrInvalidLogFormat = goerr.New("invalid log format")
)

// Context keys for error values
const (
	BackendKey = "backend"
	FlagKey    = "flag"
	ValueKey   = "value"
)
