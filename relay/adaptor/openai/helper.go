package openai

import (
	"strings"
)

// GetFullRequestURL joins the resource host and an /openai/deployments path.
// Cloudflare AI Gateway URLs already carry the deployment prefix, so it is dropped there.
func GetFullRequestURL(baseURL string, requestURL string) string {
	baseURL = strings.TrimRight(baseURL, "/")
	if strings.HasPrefix(baseURL, "https://gateway.ai.cloudflare.com") {
		return baseURL + strings.TrimPrefix(requestURL, "/openai/deployments")
	}
	return baseURL + requestURL
}
