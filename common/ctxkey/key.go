package ctxkey

const (
	// RequestId is the per-request identifier set by middleware.RequestId and echoed
	// back in the response header of the same name.
	RequestId = "X-Relay-Request-Id"

	// Profile holds the provider profile chosen for the request, for metrics labels.
	Profile = "relay_profile"

	// ModelID holds the requested model id.
	ModelID = "relay_model_id"
)

// KeyRequestBody caches the raw request body so handlers and recovery can read it twice.
const KeyRequestBody = "key_request_body"
