package client

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

const (
	DefaultPort int = 443

	urlPathSeparator string = "/"
)

// ConnectionInfo holds the location of and credentials for a Suite API
// instance. It is immutable once created.
type ConnectionInfo struct {
	hostname string
	username string
	password string
	port     int
	verify   bool
	baseURL  string
}

type ConnectionOption func(*ConnectionInfo)

func Port(port int) ConnectionOption {
	return func(ci *ConnectionInfo) {
		ci.port = port
	}
}

// VerifyTLS enables verification of the server certificate. It is disabled by
// default as the platform commonly runs with self signed certificates.
func VerifyTLS(enabled bool) ConnectionOption {
	return func(ci *ConnectionInfo) {
		ci.verify = enabled
	}
}

func NewConnectionInfo(hostname, username, password string, options ...ConnectionOption) ConnectionInfo {
	ci := ConnectionInfo{
		hostname: hostname,
		username: username,
		password: password,
		port:     DefaultPort,
		verify:   false,
	}

	for _, option := range options {
		option(&ci)
	}

	ci.baseURL = newBaseURL(ci.hostname, ci.port)

	return ci
}

func (ci ConnectionInfo) Hostname() string { return ci.hostname }
func (ci ConnectionInfo) Username() string { return ci.username }
func (ci ConnectionInfo) Password() string { return ci.password }
func (ci ConnectionInfo) Port() int        { return ci.port }
func (ci ConnectionInfo) Verify() bool     { return ci.verify }

// BaseURL returns the scheme, host and port of the Suite API, always ending with a /
func (ci ConnectionInfo) BaseURL() string {
	if ci.baseURL == "" {
		return newBaseURL(ci.hostname, ci.port)
	}
	return ci.baseURL
}

// URL turns an endpoint into an absolute url. Endpoints that do not mention
// suite-api and are not internal are placed below /suite-api/.
func (ci ConnectionInfo) URL(endpoint string) string {
	base := ci.BaseURL()
	if !hasPathSegment(endpoint, "suite-api") && !hasPathSegment(endpoint, "internal") {
		base = base + "suite-api" + urlPathSeparator
	}

	if strings.HasPrefix(endpoint, urlPathSeparator) {
		return strings.TrimSuffix(base, urlPathSeparator) + endpoint
	}

	return base + endpoint
}

// hasPathSegment reports whether the path part of endpoint, ignoring any
// query string, contains segment as a complete path element.
func hasPathSegment(endpoint, segment string) bool {
	path, _, _ := strings.Cut(endpoint, "?")
	return slices.Contains(strings.Split(path, urlPathSeparator), segment)
}

func (ci ConnectionInfo) String() string {
	return fmt.Sprintf("%s (user: %s)", ci.BaseURL(), ci.username)
}

func newBaseURL(hostname string, port int) string {
	u := hostname
	if !strings.Contains(u, "://") {
		u = "https://" + u
	}

	u = strings.TrimRight(u, urlPathSeparator)

	if parsed, err := url.Parse(u); err != nil || parsed.Port() == "" {
		u = fmt.Sprintf("%s:%d", u, port)
	}

	return u + urlPathSeparator
}
