package adaptor

import (
	"github.com/Laisky/errors/v2"

	"github.com/VaDeloitte/test-project-sub002/common/config"
	"github.com/VaDeloitte/test-project-sub002/common/random"
	"github.com/VaDeloitte/test-project-sub002/relay/meta"
	"github.com/VaDeloitte/test-project-sub002/relay/model"
)

const (
	HeaderRequestID = "X-Request-Id"
	HeaderUserAgent = "User-Agent"
)

// SetupCommonRequestHeader sets the headers every profile sends.
func SetupCommonRequestHeader(headers map[string]string, meta *meta.Meta) {
	headers["Content-Type"] = "application/json"
	if meta.IsStream {
		headers["Accept"] = "text/event-stream"
	}
}

// SetupCorrelationHeaders adds a fresh X-Request-Id and the client User-Agent, as the gateways expect.
func SetupCorrelationHeaders(headers map[string]string) {
	headers[HeaderRequestID] = random.CorrelationID()
	headers[HeaderUserAgent] = config.ClientUserAgent
}

// ResolveAPIKey prefers the caller's key and falls back to the adaptor default.
func ResolveAPIKey(a Adaptor, requestKey string) string {
	if requestKey != "" {
		return requestKey
	}
	return a.DefaultAPIKey()
}

// SystemMessage returns the leading system message, or nil when prompt is empty.
func SystemMessage(prompt string, wrap func(model.Content) any) []model.ProviderMessage {
	if prompt == "" {
		return nil
	}
	return []model.ProviderMessage{{Role: model.RoleSystem, Content: wrap(model.NewTextContent(prompt))}}
}

// ConvertMessages maps history onto provider messages, shaping content with wrap.
// The result is never nil so an empty history still serializes as [].
func ConvertMessages(meta *meta.Meta, wrap func(model.Content) any) []model.ProviderMessage {
	out := make([]model.ProviderMessage, 0, len(meta.Messages)+1)
	out = append(out, SystemMessage(meta.SystemPrompt, wrap)...)
	for _, m := range meta.Messages {
		out = append(out, model.ProviderMessage{Role: m.Role, Content: wrap(m.Content)})
	}
	return out
}

// PassThroughContent keeps plain text as a string and blocks as blocks.
func PassThroughContent(c model.Content) any {
	if c.IsBlocks() {
		return c.Blocks
	}
	return c.Plain
}

// BuildProviderRequest runs a through meta and returns the complete upstream call.
func BuildProviderRequest(a Adaptor, meta *meta.Meta) (*model.ProviderRequest, error) {
	url, err := a.GetRequestURL(meta)
	if err != nil {
		return nil, errors.Wrap(err, "get request url failed")
	}

	headers := map[string]string{}
	SetupCommonRequestHeader(headers, meta)
	if err = a.SetupRequestHeader(headers, meta); err != nil {
		return nil, errors.Wrap(err, "setup request header failed")
	}

	body, err := a.ConvertRequest(meta)
	if err != nil {
		return nil, errors.Wrap(err, "convert request failed")
	}

	return &model.ProviderRequest{
		Profile: meta.Profile,
		URL:     url,
		Headers: headers,
		Body:    body,
	}, nil
}
