package monitor

import (
	"net/http"
	"strings"

	"github.com/VaDeloitte/test-project-sub002/relay/model"
)

// ShouldAlert reports whether an upstream error points at deployment misconfiguration
// (bad key, missing deployment, exhausted quota) rather than a transient failure.
// Such errors are logged at error level so the alert pusher picks them up.
func ShouldAlert(err *model.Error, statusCode int) bool {
	if err == nil {
		return false
	}

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return true
	}

	code, _ := err.Code.(string)
	switch code {
	case "invalid_api_key", "DeploymentNotFound", "insufficient_quota", "account_deactivated":
		return true
	}

	switch err.Type {
	case "authentication_error", "permission_error", "insufficient_quota":
		return true
	}

	msg := strings.ToLower(err.Message)
	return strings.Contains(msg, "access denied") ||
		strings.Contains(msg, "invalid subscription key") ||
		strings.Contains(msg, "api key")
}
