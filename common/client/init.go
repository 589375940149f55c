package client

import (
	"net/http"
	"net/url"
	"time"

	"github.com/Laisky/zap"

	"github.com/VaDeloitte/test-project-sub002/common/config"
	"github.com/VaDeloitte/test-project-sub002/common/logger"
)

// HTTPClient talks to the model providers. It has no overall timeout unless
// RELAY_TIMEOUT is set, because streamed completions can run for minutes.
var HTTPClient *http.Client

// UserContentRequestHTTPClient fetches attachments and calls the media endpoints.
var UserContentRequestHTTPClient *http.Client

func init() {
	Init()
}

// Init (re)builds the shared clients from config.
func Init() {
	HTTPClient = newClient(config.RelayProxy, time.Duration(config.RelayTimeout)*time.Second)
	UserContentRequestHTTPClient = newClient(config.UserContentRequestProxy,
		time.Duration(config.UserContentRequestTimeout)*time.Second)
}

func newClient(proxy string, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxy != "" {
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			logger.Logger.Fatal("invalid proxy url", zap.String("proxy", proxy), zap.Error(err))
		}
		logger.Logger.Info("using http proxy", zap.String("proxy", proxyURL.Redacted()))
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}
