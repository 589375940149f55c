package model

// ModelSpec is the catalog entry supplied with each chat request.
type ModelSpec struct {
	ID              string `json:"id" validate:"required"`
	Name            string `json:"name,omitempty"`
	MaxLength       int    `json:"maxLength,omitempty" validate:"gte=0"`
	TokenLimit      int    `json:"tokenLimit,omitempty" validate:"gte=0"`
	MaxOutputTokens int    `json:"maxOutputTokens,omitempty" validate:"gte=0"`
}

// ChatRequest is the inbound body of POST /api/chat.
type ChatRequest struct {
	Model       ModelSpec `json:"model"`
	Messages    []Message `json:"messages" validate:"dive"`
	Key         string    `json:"key,omitempty"`
	Prompt      string    `json:"prompt,omitempty"`
	Temperature *float64  `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
}

// TruncatedRequest is the budget-fitted conversation handed to the router.
type TruncatedRequest struct {
	SystemPrompt  string
	Messages      []Message
	PromptTokens  int
	MessageTokens int
	Budget        int
	Dropped       int
}

// ProviderRequest is the fully resolved upstream call. It is built per call.
type ProviderRequest struct {
	Profile string
	URL     string
	Headers map[string]string
	Body    any
}

// ProviderMessage is a message in the upstream chat completion body.
type ProviderMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// ProviderChatRequest is the chat completion body shared by all profiles;
// each profile fills the fields it sends.
type ProviderChatRequest struct {
	Model       string            `json:"model,omitempty"`
	Messages    []ProviderMessage `json:"messages"`
	Temperature float64           `json:"temperature"`
	TopP        *float64          `json:"top_p,omitempty"`
	MaxTokens   int               `json:"max_tokens,omitempty"`
	Stream      bool              `json:"stream"`
}
