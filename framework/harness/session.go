package harness

import (
	"net/url"
	"strings"
)

// Session is the identity of one test run: the base URL of the service and the bearer token to
// send with it. It is immutable; copies can be handed to concurrent runs freely, but by
// convention each lifecycle run opens its own.
type Session struct {
	baseURL string
	token   string
}

// NewSession validates its parameters and returns a Session. An empty token is a SetupError.
func NewSession(baseURL, token string) (Session, error) {
	s, err := NewAnonymousSession(baseURL)
	if err != nil {
		return Session{}, err
	}
	if token == "" {
		return Session{}, &SetupError{Message: "authentication token is empty"}
	}
	s.token = token
	return s, nil
}

// NewAnonymousSession returns a Session with no token. It can only be used for requests that
// are marked Anonymous, such as logging in.
func NewAnonymousSession(baseURL string) (Session, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		if err == nil {
			err = &url.Error{Op: "parse", URL: baseURL, Err: errMissingSchemeOrHost}
		}
		return Session{}, &SetupError{Message: "invalid base URL", Err: err}
	}
	return Session{baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (s Session) BaseURL() string { return s.baseURL }

func (s Session) Token() string { return s.token }

// Authenticated returns true if the session has a token.
func (s Session) Authenticated() bool { return s.token != "" }

// URL resolves a path relative to the base URL.
func (s Session) URL(path string) string {
	if path == "" {
		return s.baseURL
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return s.baseURL + path
}
