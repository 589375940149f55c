package relay

import (
	"context"
	"slices"
	"strings"

	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/Laisky/zap"

	"github.com/VaDeloitte/test-project-sub002/common/config"
	"github.com/VaDeloitte/test-project-sub002/common/helper"
	"github.com/VaDeloitte/test-project-sub002/relay/adaptor"
	"github.com/VaDeloitte/test-project-sub002/relay/adaptor/anthropic"
	"github.com/VaDeloitte/test-project-sub002/relay/adaptor/community"
	"github.com/VaDeloitte/test-project-sub002/relay/adaptor/openai"
	"github.com/VaDeloitte/test-project-sub002/relay/channeltype"
	"github.com/VaDeloitte/test-project-sub002/relay/meta"
	"github.com/VaDeloitte/test-project-sub002/relay/model"
)

// Route is the routing decision for one model id.
type Route struct {
	Profile string
	// Recognized is false when the id matched no configured list and fell back to Default.
	Recognized bool
}

// RouteModel maps a model id onto a provider profile. It never fails: ids that match no
// configured entry go to the default profile with Recognized set to false.
func RouteModel(modelID string) Route {
	id := strings.TrimSpace(modelID)

	for _, entry := range config.ModelProfileOverrides {
		name, profile, found := strings.Cut(entry, "=")
		if !found || !strings.EqualFold(strings.TrimSpace(name), id) {
			continue
		}
		if p, ok := channeltype.NormalizeProfile(profile); ok {
			return Route{Profile: p, Recognized: true}
		}
	}

	switch {
	case containsFold(config.AnthropicGatewayModels, id):
		return Route{Profile: channeltype.AnthropicGateway, Recognized: true}
	case containsFold(config.CommunityGatewayModels, id):
		return Route{Profile: channeltype.CommunityGateway, Recognized: true}
	case containsFold(config.OpenAIDefaultModels, id):
		return Route{Profile: channeltype.Default, Recognized: true}
	default:
		return Route{Profile: channeltype.Default, Recognized: false}
	}
}

func containsFold(list []string, id string) bool {
	return slices.ContainsFunc(list, func(s string) bool {
		return strings.EqualFold(s, id)
	})
}

// GetAdaptor returns the adaptor of a profile. Unknown profiles get the default adaptor.
func GetAdaptor(profile string) adaptor.Adaptor {
	switch profile {
	case channeltype.AnthropicGateway:
		return &anthropic.Adaptor{}
	case channeltype.CommunityGateway:
		return &community.Adaptor{}
	default:
		return &openai.Adaptor{}
	}
}

// BuildOptions are the per-request sampling settings.
type BuildOptions struct {
	APIKey      string
	Temperature float64
	TopP        float64
}

// BuildProviderRequest routes spec.ID and builds the upstream call for tr.
// Unrecognized ids are logged at warn level; they may be a catalog/config mismatch.
func BuildProviderRequest(ctx context.Context, spec model.ModelSpec, tr *model.TruncatedRequest, opts BuildOptions) (*model.ProviderRequest, error) {
	lg := gmw.GetLogger(ctx)

	route := RouteModel(spec.ID)
	if route.Recognized {
		lg.Debug("model routed", zap.String("model", spec.ID), zap.String("profile", route.Profile))
	} else {
		lg.Warn("unrecognized model routed to default profile", zap.String("model", spec.ID))
	}

	a := GetAdaptor(route.Profile)
	m := meta.New(helper.GetRequestID(ctx), route.Profile, spec.ID, adaptor.ResolveAPIKey(a, opts.APIKey), tr,
		opts.Temperature, opts.TopP, spec.MaxOutputTokens)
	preq, err := adaptor.BuildProviderRequest(a, m)
	if err != nil {
		return nil, err
	}

	lg.Debug("provider request built",
		zap.String("request_id", m.RequestID),
		zap.String("upstream_request_id", preq.Headers[adaptor.HeaderRequestID]),
		zap.String("profile", preq.Profile))
	return preq, nil
}
