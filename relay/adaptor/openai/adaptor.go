package openai

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Laisky/errors/v2"

	"github.com/VaDeloitte/test-project-sub002/common/config"
	"github.com/VaDeloitte/test-project-sub002/relay/adaptor"
	"github.com/VaDeloitte/test-project-sub002/relay/meta"
	"github.com/VaDeloitte/test-project-sub002/relay/model"
)

// reasoningAPIVersion is the oldest Azure api-version serving the o-series models.
const reasoningAPIVersion = "2024-12-01-preview"

// Adaptor is the default profile: an Azure OpenAI deployment named after the model id.
type Adaptor struct{}

var _ adaptor.Adaptor = (*Adaptor)(nil)

func (a *Adaptor) GetRequestURL(meta *meta.Meta) (string, error) {
	if strings.TrimSpace(meta.ModelID) == "" {
		return "", errors.New("azure request url build failed: empty model id")
	}

	apiVersion := config.OpenAIAPIVersion
	// https://learn.microsoft.com/en-us/azure/ai-services/openai/how-to/reasoning
	if (strings.HasPrefix(meta.ModelID, "o1") || strings.HasPrefix(meta.ModelID, "o3")) &&
		apiVersion < reasoningAPIVersion {
		apiVersion = reasoningAPIVersion
	}

	// {endpoint}/openai/deployments/{deployment}/chat/completions?api-version={version}
	requestURL := fmt.Sprintf("/openai/deployments/%s/chat/completions?api-version=%s",
		url.PathEscape(meta.ModelID), url.QueryEscape(apiVersion))
	return GetFullRequestURL(config.OpenAIAPIHost, requestURL), nil
}

func (a *Adaptor) SetupRequestHeader(headers map[string]string, meta *meta.Meta) error {
	if meta.APIKey == "" {
		return errors.New("no api key configured for the default profile")
	}
	headers["api-key"] = meta.APIKey
	return nil
}

func (a *Adaptor) ConvertRequest(meta *meta.Meta) (any, error) {
	return &model.ProviderChatRequest{
		Messages:    adaptor.ConvertMessages(meta, adaptor.PassThroughContent),
		Temperature: meta.Temperature,
		MaxTokens:   meta.MaxTokens,
		Stream:      meta.IsStream,
	}, nil
}

func (a *Adaptor) DefaultAPIKey() string {
	return config.OpenAIAPIKey
}

func (a *Adaptor) GetChannelName() string {
	return "azure"
}
