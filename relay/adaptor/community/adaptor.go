package community

import (
	"net/url"

	"github.com/Laisky/errors/v2"

	"github.com/VaDeloitte/test-project-sub002/common/config"
	"github.com/VaDeloitte/test-project-sub002/relay/adaptor"
	"github.com/VaDeloitte/test-project-sub002/relay/meta"
	"github.com/VaDeloitte/test-project-sub002/relay/model"
)

// Adaptor targets an API management gateway in front of community models.
// Plain text is sent as plain strings and top_p is always set.
type Adaptor struct{}

var _ adaptor.Adaptor = (*Adaptor)(nil)

func (a *Adaptor) GetRequestURL(meta *meta.Meta) (string, error) {
	if config.CommunityGatewayHost == "" {
		return "", errors.New("COMMUNITY_GATEWAY_HOST is not configured")
	}
	return config.CommunityGatewayHost + config.CommunityGatewayPath +
		"?api-version=" + url.QueryEscape(config.CommunityGatewayAPIVersion), nil
}

func (a *Adaptor) SetupRequestHeader(headers map[string]string, meta *meta.Meta) error {
	if meta.APIKey == "" {
		return errors.New("no api key configured for the community gateway")
	}
	headers["Ocp-Apim-Subscription-Key"] = meta.APIKey
	adaptor.SetupCorrelationHeaders(headers)
	return nil
}

func (a *Adaptor) ConvertRequest(meta *meta.Meta) (any, error) {
	topP := meta.TopP
	return &model.ProviderChatRequest{
		Model:       meta.ModelID,
		Messages:    adaptor.ConvertMessages(meta, adaptor.PassThroughContent),
		Temperature: meta.Temperature,
		TopP:        &topP,
		MaxTokens:   meta.MaxTokens,
		Stream:      meta.IsStream,
	}, nil
}

func (a *Adaptor) DefaultAPIKey() string {
	return config.CommunityGatewayKey
}

func (a *Adaptor) GetChannelName() string {
	return "community-gateway"
}
