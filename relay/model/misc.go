package model

type Error struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Param   string `json:"param"`
	Code    any    `json:"code"`
	// RawError keeps the underlying error for logs. It is never serialized.
	RawError error `json:"-"`
}

type ErrorWithStatusCode struct {
	Error
	StatusCode int `json:"status_code"`
}

// GeneralErrorResponse is the `{"error": {...}}` envelope returned by OpenAI style providers.
type GeneralErrorResponse struct {
	Error   *Error `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// ChatCompletionsStreamResponseChoice is one choice of a streamed chunk.
type ChatCompletionsStreamResponseChoice struct {
	Index        int     `json:"index"`
	Delta        Delta   `json:"delta"`
	FinishReason *string `json:"finish_reason,omitempty"`
}

type Delta struct {
	Role    string  `json:"role,omitempty"`
	Content Content `json:"content"`
}

// ChatCompletionsStreamResponse is the JSON payload of one SSE data event.
type ChatCompletionsStreamResponse struct {
	Id      string                                `json:"id"`
	Object  string                                `json:"object"`
	Created int64                                 `json:"created"`
	Model   string                                `json:"model"`
	Choices []ChatCompletionsStreamResponseChoice `json:"choices"`
}
