package network

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/Laisky/errors/v2"

	"github.com/VaDeloitte/test-project-sub002/common/config"
)

// ErrBlobHostNotAllowed is returned for blob URLs outside the configured hosts.
var ErrBlobHostNotAllowed = errors.New("blob host is not allowed")

// BlobHosts returns the hosts attachment fetches may reach: the host of
// BLOB_BASE_URL followed by BLOB_ALLOWED_HOSTS.
func BlobHosts() []string {
	var hosts []string
	if host := HostOf(config.BlobBaseURL); host != "" {
		hosts = append(hosts, host)
	}
	return append(hosts, config.BlobAllowedHosts...)
}

// HostOf returns the host[:port] of rawURL, or "" when it has none.
func HostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// CheckBlobURL returns an error unless rawURL is an http(s) URL whose host is in hosts.
// An entry matches either the full host:port or the bare host name on any port.
func CheckBlobURL(rawURL string, hosts []string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return errors.Wrap(err, "parse blob url")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Wrapf(ErrBlobHostNotAllowed, "scheme %q", u.Scheme)
	}
	for _, host := range hosts {
		host = strings.TrimSpace(host)
		if host == "" {
			continue
		}
		if strings.EqualFold(host, u.Host) || strings.EqualFold(host, u.Hostname()) {
			return nil
		}
	}
	return errors.Wrapf(ErrBlobHostNotAllowed, "host %q", u.Host)
}

// RestrictRedirects returns a shallow copy of c that refuses redirects leaving hosts.
func RestrictRedirects(c *http.Client, hosts []string) *http.Client {
	restricted := *c
	next := c.CheckRedirect
	restricted.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if err := CheckBlobURL(req.URL.String(), hosts); err != nil {
			return err
		}
		if next != nil {
			return next(req, via)
		}
		if len(via) >= 10 {
			return errors.New("stopped after 10 redirects")
		}
		return nil
	}
	return &restricted
}
