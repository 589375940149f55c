package meta

import (
	"github.com/VaDeloitte/test-project-sub002/relay/model"
)

// Meta carries everything a provider adaptor needs to build one upstream call.
type Meta struct {
	Profile string
	// ModelID is the catalog id; it names the Azure deployment for the default profile.
	ModelID string
	// APIKey is the request key when given, else the profile's configured key.
	APIKey       string
	SystemPrompt string
	Messages     []model.Message
	Temperature  float64
	TopP         float64
	// MaxTokens is the output cap; 0 leaves it to the provider.
	MaxTokens int
	IsStream  bool
	// RequestID is the inbound request id, logged next to the upstream correlation id.
	RequestID string
}

// New builds a Meta for a budget-fitted request.
func New(requestID, profile, modelID, apiKey string, tr *model.TruncatedRequest, temperature, topP float64, maxTokens int) *Meta {
	return &Meta{
		Profile:      profile,
		ModelID:      modelID,
		APIKey:       apiKey,
		SystemPrompt: tr.SystemPrompt,
		Messages:     tr.Messages,
		Temperature:  temperature,
		TopP:         topP,
		MaxTokens:    maxTokens,
		IsStream:     true,
		RequestID:    requestID,
	}
}
