package adaptor

import (
	"github.com/VaDeloitte/test-project-sub002/relay/meta"
)

// Adaptor is one provider profile: where to send a chat completion, how to
// authenticate, and how the body is shaped. Implementations are pure; they never
// perform I/O, so a new provider only needs a new Adaptor.
type Adaptor interface {
	GetRequestURL(meta *meta.Meta) (string, error)
	// SetupRequestHeader fills profile specific headers, including auth.
	SetupRequestHeader(headers map[string]string, meta *meta.Meta) error
	// ConvertRequest builds the JSON body.
	ConvertRequest(meta *meta.Meta) (any, error)
	// DefaultAPIKey is used when the caller supplies no key.
	DefaultAPIKey() string
	GetChannelName() string
}
