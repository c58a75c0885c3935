package constants

import (
	"net/http"
	"time"
)

// CLI defaults
const (
	DefaultConfigPath = "./config/config.yaml"
	DefaultUserAgent  = "apifetch"
	DefaultTimeout    = 30 * time.Second
	// DefaultBatchLimit caps concurrent calls in the batch command.
	DefaultBatchLimit = 4
)

// Wait Configuration Constants
const (
	DefaultWaitTimeout  = 60 * time.Second
	DefaultWaitInterval = 2 * time.Second
	DefaultWaitStatus   = http.StatusOK
)
