package channeltype

import "strings"

// Provider profiles. Every model id resolves to exactly one of them.
const (
	// Default is an Azure OpenAI style deployment.
	Default = "default"
	// AnthropicGateway is an OpenAI compatible gateway in front of Anthropic models.
	AnthropicGateway = "anthropic_gateway"
	// CommunityGateway is an OpenAI compatible gateway in front of community models.
	CommunityGateway = "community_gateway"
)

// Profiles lists every profile, Default first.
var Profiles = []string{Default, AnthropicGateway, CommunityGateway}

// NormalizeProfile maps a configured profile name, including common aliases, onto a
// known profile. ok is false when the name is not recognized, in which case Default is returned.
func NormalizeProfile(name string) (profile string, ok bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "default", "azure", "openai":
		return Default, true
	case "anthropic_gateway", "anthropic-gateway", "anthropic", "gateway-a", "claude":
		return AnthropicGateway, true
	case "community_gateway", "community-gateway", "community", "gateway-b", "llama":
		return CommunityGateway, true
	default:
		return Default, false
	}
}
