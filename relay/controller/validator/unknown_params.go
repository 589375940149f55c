package validator

import (
	"encoding/json"
	"reflect"
	"sort"
	"strings"

	"github.com/VaDeloitte/test-project-sub002/relay/model"
)

// GetKnownParameters extracts the JSON field names of ChatRequest.
func GetKnownParameters() map[string]bool {
	knownParams := make(map[string]bool)

	requestType := reflect.TypeOf(model.ChatRequest{})
	for i := 0; i < requestType.NumField(); i++ {
		jsonTag := requestType.Field(i).Tag.Get("json")
		if jsonTag == "" || jsonTag == "-" {
			continue
		}

		// "name,omitempty" or just "name"
		if name, _, _ := strings.Cut(jsonTag, ","); name != "" {
			knownParams[name] = true
		}
	}

	return knownParams
}

// UnknownParameters returns the top-level fields of requestBody that ChatRequest
// does not define, sorted. Invalid JSON yields nil and is left to the decoder.
// The chat UI sends extra bookkeeping fields, so callers log these rather than reject.
func UnknownParameters(requestBody []byte) []string {
	var rawRequest map[string]json.RawMessage
	if err := json.Unmarshal(requestBody, &rawRequest); err != nil {
		return nil
	}

	knownParams := GetKnownParameters()
	var unknownParams []string
	for paramName := range rawRequest {
		if !knownParams[paramName] {
			unknownParams = append(unknownParams, paramName)
		}
	}

	sort.Strings(unknownParams)
	return unknownParams
}
