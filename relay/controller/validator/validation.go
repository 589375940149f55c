package validator

import (
	"github.com/Laisky/errors/v2"
	"github.com/go-playground/validator/v10"

	"github.com/VaDeloitte/test-project-sub002/relay/model"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateChatRequest checks the struct tags of req and its messages.
func ValidateChatRequest(req *model.ChatRequest) error {
	if req == nil {
		return errors.New("chat request is nil")
	}
	if err := validate.Struct(req); err != nil {
		return errors.Wrap(err, "invalid chat request")
	}
	return nil
}

// ValidateBlobRequest checks the body of the media proxy endpoints.
func ValidateBlobRequest(req any) error {
	if err := validate.Struct(req); err != nil {
		return errors.Wrap(err, "invalid blob request")
	}
	return nil
}
