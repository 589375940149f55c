package random

import (
	"github.com/google/uuid"
)

// CorrelationID returns a hyphenated UUID v4 for outbound X-Request-Id headers.
func CorrelationID() string {
	return uuid.NewString()
}
