package openai

import (
	"github.com/VaDeloitte/test-project-sub002/relay/model"
)

// ErrorWrapper turns a local failure into the relay error shape.
// Callers log with the request-scoped logger.
func ErrorWrapper(err error, code string, statusCode int) *model.ErrorWithStatusCode {
	return &model.ErrorWithStatusCode{
		Error: model.Error{
			Message:  err.Error(),
			Type:     "chat_relay_error",
			Code:     code,
			RawError: err,
		},
		StatusCode: statusCode,
	}
}
