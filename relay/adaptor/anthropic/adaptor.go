package anthropic

import (
	"github.com/Laisky/errors/v2"

	"github.com/VaDeloitte/test-project-sub002/common/config"
	"github.com/VaDeloitte/test-project-sub002/relay/adaptor"
	"github.com/VaDeloitte/test-project-sub002/relay/meta"
	"github.com/VaDeloitte/test-project-sub002/relay/model"
)

// Adaptor targets an OpenAI compatible gateway in front of Anthropic models.
// The gateway only accepts block content, so every message is sent as blocks.
type Adaptor struct{}

var _ adaptor.Adaptor = (*Adaptor)(nil)

func (a *Adaptor) GetRequestURL(meta *meta.Meta) (string, error) {
	if config.AnthropicGatewayHost == "" {
		return "", errors.New("ANTHROPIC_GATEWAY_HOST is not configured")
	}
	return config.AnthropicGatewayHost + config.AnthropicGatewayPath, nil
}

func (a *Adaptor) SetupRequestHeader(headers map[string]string, meta *meta.Meta) error {
	if meta.APIKey == "" {
		return errors.New("no api key configured for the anthropic gateway")
	}
	headers["x-api-key"] = meta.APIKey
	adaptor.SetupCorrelationHeaders(headers)
	return nil
}

// blockContent wraps plain text in a single text block; block content passes through.
func blockContent(c model.Content) any {
	return c.AsBlocks()
}

func (a *Adaptor) ConvertRequest(meta *meta.Meta) (any, error) {
	return &model.ProviderChatRequest{
		Model:       meta.ModelID,
		Messages:    adaptor.ConvertMessages(meta, blockContent),
		Temperature: meta.Temperature,
		MaxTokens:   meta.MaxTokens,
		Stream:      meta.IsStream,
	}, nil
}

func (a *Adaptor) DefaultAPIKey() string {
	return config.AnthropicGatewayKey
}

func (a *Adaptor) GetChannelName() string {
	return "anthropic-gateway"
}
