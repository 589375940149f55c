package config

import (
	"strings"
	"time"

	"github.com/VaDeloitte/test-project-sub002/common/env"
)

var (
	// ServerPort overrides the --port flag when running inside container or PaaS environments.
	ServerPort = strings.TrimSpace(env.String("PORT", ""))
	// GinMode allows forcing Gin into release mode (or other modes) without recompiling.
	GinMode = strings.TrimSpace(env.String("GIN_MODE", ""))

	// DebugEnabled toggles verbose structured logging when DEBUG=true.
	DebugEnabled = env.Bool("DEBUG", false)

	// OnlyOneLogFile writes every day into the same log file when true.
	OnlyOneLogFile = env.Bool("ONLY_ONE_LOG_FILE", false)
	// LogRetentionDays determines how many days logs are kept before the retention worker purges them (0 disables cleanup).
	LogRetentionDays = func() int {
		v := env.Int("LOG_RETENTION_DAYS", 0)
		if v < 0 {
			panic("LOG_RETENTION_DAYS must not be negative")
		}
		return v
	}()

	// LogPushAPI defines the webhook endpoint for escalated log alerts.
	LogPushAPI = env.String("LOG_PUSH_API", "")
	// LogPushType labels outbound log alerts so downstream processors can route them.
	LogPushType = env.String("LOG_PUSH_TYPE", "")
	// LogPushToken authenticates outbound log alert requests.
	LogPushToken = env.String("LOG_PUSH_TOKEN", "")

	// ShutdownTimeout bounds how long in-flight streams may drain after SIGTERM.
	ShutdownTimeout = env.Duration("SHUTDOWN_TIMEOUT", 60*time.Second)
	// EnablePrometheusMetrics exposes the /metrics endpoint for Prometheus scrapers when true.
	EnablePrometheusMetrics = env.Bool("ENABLE_PROMETHEUS_METRICS", true)
	// CORSAllowedOrigins lists the browser origins allowed to call the API. Empty allows all.
	CORSAllowedOrigins = env.StringSlice("CORS_ALLOWED_ORIGINS", nil)
)

// Chat pipeline
var (
	// DefaultSystemPrompt is used when the request carries no prompt.
	DefaultSystemPrompt = env.String("DEFAULT_SYSTEM_PROMPT",
		"You are a helpful assistant. Follow the user's instructions carefully. Respond using markdown.")
	// DefaultTemperature is used when the request carries no temperature.
	DefaultTemperature = env.Float64("DEFAULT_TEMPERATURE", 0.5)
	// DefaultTopP is sent to providers that accept top_p.
	DefaultTopP = env.Float64("DEFAULT_TOP_P", 0.95)
	// ReservedTokenMargin is kept free of history so the model has room to answer.
	ReservedTokenMargin = env.Int("RESERVED_TOKEN_MARGIN", 1000)
	// ImageTokenCost is the flat token charge for every image block kept in history.
	ImageTokenCost = env.Int("IMAGE_TOKEN_COST", 85)
	// TiktokenEncoding names the BPE table used for every token count.
	TiktokenEncoding = env.String("TIKTOKEN_ENCODING", "cl100k_base")
	// DefaultModelTokenLimit applies when the request model omits tokenLimit.
	DefaultModelTokenLimit = env.Int("DEFAULT_MODEL_TOKEN_LIMIT", 12000)
)

// Attachments
var (
	// BlobBaseURL resolves relative attachment URLs.
	BlobBaseURL = strings.TrimRight(env.String("BLOB_BASE_URL", ""), "/")
	// BlobAllowedHosts lists extra hosts (host or host:port) attachments may be fetched from,
	// besides the host of BlobBaseURL.
	BlobAllowedHosts = env.StringSlice("BLOB_ALLOWED_HOSTS", nil)
	// BlobSASToken is appended as query string to blob URLs built from BlobBaseURL.
	BlobSASToken = strings.TrimPrefix(env.String("BLOB_SAS_TOKEN", ""), "?")
	// ImageProxyURL is an image-to-base64 endpoint; empty means blobs are fetched directly.
	ImageProxyURL = env.String("IMAGE_PROXY_URL", "")
	// TranscriptionProxyURL is a transcription endpoint taking {blobUrl}; empty means this server.
	TranscriptionProxyURL = env.String("TRANSCRIPTION_PROXY_URL", "")
	// TranscriptionAPIURL is the Whisper compatible endpoint behind /api/transcribe.
	TranscriptionAPIURL = env.String("TRANSCRIPTION_API_URL", "")
	// TranscriptionAPIKey authenticates against TranscriptionAPIURL.
	TranscriptionAPIKey = env.String("TRANSCRIPTION_API_KEY", "")
	// TranscriptionModel is sent as the multipart model field.
	TranscriptionModel = env.String("TRANSCRIPTION_MODEL", "whisper-1")
	// AttachmentTimeout bounds each single attachment resolution.
	AttachmentTimeout = env.Duration("ATTACHMENT_TIMEOUT", 5*time.Second)
	// AttachmentConcurrency caps concurrent attachment resolutions per request.
	AttachmentConcurrency = func() int {
		v := env.Int("ATTACHMENT_CONCURRENCY", 4)
		if v < 1 {
			return 1
		}
		return v
	}()
	// ImageFailurePlaceholder is either "image" (rendered card) or "text".
	ImageFailurePlaceholder = strings.ToLower(env.String("IMAGE_FAILURE_PLACEHOLDER", "image"))
	// MaxRequestBodyMB caps inbound request bodies, which carry inline data URLs.
	MaxRequestBodyMB = env.Int("MAX_REQUEST_BODY_MB", 64)
	// MaxInlineImageSizeMB limits the size (MB) of images that can be inlined as base64.
	MaxInlineImageSizeMB = func() int {
		v := env.Int("MAX_INLINE_IMAGE_SIZE_MB", 30)
		if v < 0 {
			panic("MAX_INLINE_IMAGE_SIZE_MB must not be negative")
		}
		return v
	}()
)

// Outbound HTTP
var (
	// RelayTimeout bounds upstream HTTP requests (seconds). 0 disables the bound.
	RelayTimeout = env.Int("RELAY_TIMEOUT", 0)
	// RelayProxy provides an HTTP proxy for outbound relay requests to upstream providers.
	RelayProxy = env.String("RELAY_PROXY", "")
	// UserContentRequestProxy provides an HTTP proxy when fetching attachments.
	UserContentRequestProxy = env.String("USER_CONTENT_REQUEST_PROXY", "")
	// UserContentRequestTimeout limits fetch time (seconds) for attachments.
	UserContentRequestTimeout = env.Int("USER_CONTENT_REQUEST_TIMEOUT", 30)
	// ClientUserAgent is sent to the gateway profiles.
	ClientUserAgent = env.String("CLIENT_USER_AGENT", "chat-relay/1.0")
)

// Providers
var (
	// OpenAIAPIHost is the Azure OpenAI resource host used by the default profile.
	OpenAIAPIHost = strings.TrimRight(env.String("OPENAI_API_HOST", "https://api.openai.azure.com"), "/")
	// OpenAIAPIVersion is the api-version query value for the default profile.
	OpenAIAPIVersion = env.String("OPENAI_API_VERSION", "2024-08-01-preview")
	// OpenAIAPIKey is the default profile key when the request has none.
	OpenAIAPIKey = env.String("OPENAI_API_KEY", "")
	// OpenAIDefaultModels are ids known to belong to the default profile.
	OpenAIDefaultModels = env.StringSlice("OPENAI_DEFAULT_MODELS", []string{"gpt-4o", "gpt-4o-mini", "gpt-4", "gpt-35-turbo"})

	// AnthropicGatewayHost is the Gateway-A base URL.
	AnthropicGatewayHost = strings.TrimRight(env.String("ANTHROPIC_GATEWAY_HOST", ""), "/")
	// AnthropicGatewayPath is appended to AnthropicGatewayHost.
	AnthropicGatewayPath = env.String("ANTHROPIC_GATEWAY_PATH", "/v1/chat/completions")
	// AnthropicGatewayKey is the Gateway-A subscription key.
	AnthropicGatewayKey = env.String("ANTHROPIC_GATEWAY_KEY", "")
	// AnthropicGatewayModels are routed to Gateway-A.
	AnthropicGatewayModels = env.StringSlice("ANTHROPIC_GATEWAY_MODELS", []string{"claude-3-7-sonnet"})

	// CommunityGatewayHost is the Gateway-B base URL.
	CommunityGatewayHost = strings.TrimRight(env.String("COMMUNITY_GATEWAY_HOST", ""), "/")
	// CommunityGatewayPath is appended to CommunityGatewayHost.
	CommunityGatewayPath = env.String("COMMUNITY_GATEWAY_PATH", "/chat/completions")
	// CommunityGatewayAPIVersion is the api-version query value for Gateway-B.
	CommunityGatewayAPIVersion = env.String("COMMUNITY_GATEWAY_API_VERSION", "2024-05-01-preview")
	// CommunityGatewayKey is the Gateway-B subscription key.
	CommunityGatewayKey = env.String("COMMUNITY_GATEWAY_KEY", "")
	// CommunityGatewayModels are routed to Gateway-B.
	CommunityGatewayModels = env.StringSlice("COMMUNITY_GATEWAY_MODELS", []string{"llama-3-3-70b-instruct"})

	// ModelProfileOverrides holds extra "model=profile" routing entries, checked before the lists above.
	ModelProfileOverrides = env.StringSlice("MODEL_PROFILE_OVERRIDES", nil)
)

// Rate limiting
var (
	// RedisConnString defines the Redis connection string; leaving it empty disables Redis features.
	RedisConnString = strings.TrimSpace(env.String("REDIS_CONN_STRING", ""))
	// RedisMasterName enables Redis sentinel/cluster discovery when provided.
	RedisMasterName = strings.TrimSpace(env.String("REDIS_MASTER_NAME", ""))
	// RedisPassword supplies the Redis authentication password when required.
	RedisPassword = env.String("REDIS_PASSWORD", "")

	// GlobalChatRateLimitNum bounds the number of chat requests per IP within GlobalChatRateLimitDuration.
	GlobalChatRateLimitNum = env.Int("GLOBAL_CHAT_RATE_LIMIT", 120)
	// GlobalChatRateLimitDuration sets the duration (seconds) of the chat rate limit window.
	GlobalChatRateLimitDuration int64 = 3 * 60
	// RateLimitKeyExpirationDuration controls how long rate limit keys remain valid.
	RateLimitKeyExpirationDuration = 20 * time.Minute
)

// StartTime is the unix time the process started.
var StartTime = time.Now().Unix()
