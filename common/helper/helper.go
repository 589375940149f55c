package helper

import (
	"context"
	"fmt"

	gutils "github.com/Laisky/go-utils/v5"
)

// RequestIdKey is the header name the request id is echoed back on.
const RequestIdKey = "X-Relay-Request-Id"

type requestIDCtxKey struct{}

// GenRequestID returns a time-ordered request id.
func GenRequestID() string {
	return gutils.UUID7()
}

// SetRequestID attaches id to ctx.
func SetRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDCtxKey{}, id)
}

// GetRequestID returns the id attached by SetRequestID, or "".
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDCtxKey{}).(string)
	return id
}

// MessageWithRequestId suffixes an error message shown to clients with the request id.
func MessageWithRequestId(message string, id string) string {
	if id == "" {
		return message
	}
	return fmt.Sprintf("%s (request id: %s)", message, id)
}
