package controller

import (
	"net/http"

	"github.com/VaDeloitte/test-project-sub002/relay/model"
)

// ClientStatus is the status code reported to the chat UI for bizErr. Malformed
// requests get 400 and oversized ones 413; every pipeline and provider failure is
// reported as 500.
func ClientStatus(bizErr *model.ErrorWithStatusCode) int {
	if bizErr == nil {
		return http.StatusOK
	}
	switch code, _ := bizErr.Code.(string); code {
	case "invalid_chat_request":
		return http.StatusBadRequest
	case "request_body_too_large":
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

// ClientMessage is the plain text error body: the provider message when there
// is one, else the upstream status text.
func ClientMessage(bizErr *model.ErrorWithStatusCode) string {
	if bizErr == nil {
		return ""
	}
	if bizErr.Message != "" {
		return bizErr.Message
	}
	if text := http.StatusText(bizErr.StatusCode); text != "" {
		return text
	}
	return "upstream error"
}
