package harness

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// DefaultLoginPath is where LoginAuthenticator posts credentials unless told otherwise.
const DefaultLoginPath = "/user/login"

// Credentials identify the principal the tests run as.
type Credentials struct {
	Identity string
	Secret   string
}

// Authenticator exchanges credentials for a bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, creds Credentials) (string, error)
}

// StaticToken is an Authenticator that always returns the same token, for services where a
// token has been obtained out of band.
type StaticToken string

func (s StaticToken) Authenticate(context.Context, Credentials) (string, error) {
	return string(s), nil
}

// LoginAuthenticator logs in by posting {"email", "password"} to a path on the service and
// reading "token" from the JSON response.
type LoginAuthenticator struct {
	BaseURL   string
	LoginPath string
	Executor  *Executor
}

func (a LoginAuthenticator) Authenticate(ctx context.Context, creds Credentials) (string, error) {
	session, err := NewAnonymousSession(a.BaseURL)
	if err != nil {
		return "", err
	}
	path := a.LoginPath
	if path == "" {
		path = DefaultLoginPath
	}
	body := ldvalue.ObjectBuild().
		Set("email", ldvalue.String(creds.Identity)).
		Set("password", ldvalue.String(creds.Secret)).
		Build()
	result, err := a.Executor.Execute(ctx, session, Request{
		Method:    http.MethodPost,
		Path:      path,
		Body:      body,
		Anonymous: true,
	})
	if err != nil {
		return "", err
	}
	if result.StatusCode < 200 || result.StatusCode >= 300 {
		return "", fmt.Errorf("login as %q was rejected with status %d: %s", creds.Identity, result.StatusCode, result.RawBody)
	}
	token := result.Parsed.GetByKey("token")
	if !token.IsString() {
		return "", fmt.Errorf("login response had no token: %s", result.RawBody)
	}
	return token.StringValue(), nil
}

// OpenSession authenticates and returns a Session for the run. Every failure, including an
// empty token, comes back as a *SetupError.
func OpenSession(ctx context.Context, baseURL string, auth Authenticator, creds Credentials) (Session, error) {
	token, err := auth.Authenticate(ctx, creds)
	if err != nil {
		var se *SetupError
		if errors.As(err, &se) {
			return Session{}, se
		}
		return Session{}, &SetupError{Message: fmt.Sprintf("could not authenticate as %q", creds.Identity), Err: err}
	}
	return NewSession(baseURL, token)
}
