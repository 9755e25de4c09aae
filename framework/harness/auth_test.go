package harness

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCreds = Credentials{Identity: "john.doe@example.com", Secret: "password123"}

func TestLoginAuthenticatorPostsCredentialsAnonymously(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(
		httphelpers.HandlerWithJSONResponse(map[string]string{"token": "jwt-value"}, nil))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		a := LoginAuthenticator{BaseURL: server.URL, Executor: NewExecutor(nil, time.Second, nil)}
		session, err := OpenSession(context.Background(), server.URL, a, testCreds)
		require.NoError(t, err)
		assert.Equal(t, "jwt-value", session.Token())

		r := <-requestsCh
		assert.Equal(t, DefaultLoginPath, r.Request.URL.Path)
		assert.Empty(t, r.Request.Header.Get("Authorization"))
		assert.JSONEq(t, `{"email":"john.doe@example.com","password":"password123"}`, string(r.Body))
	})
}

func TestRejectedLoginIsSetupError(t *testing.T) {
	httphelpers.WithServer(httphelpers.HandlerWithStatus(http.StatusUnauthorized), func(server *httptest.Server) {
		a := LoginAuthenticator{BaseURL: server.URL, Executor: NewExecutor(nil, time.Second, nil)}
		_, err := OpenSession(context.Background(), server.URL, a, testCreds)
		var se *SetupError
		require.True(t, errors.As(err, &se))
		assert.Contains(t, err.Error(), "status 401")
	})
}

func TestLoginWithEmptyTokenIsSetupError(t *testing.T) {
	handler := httphelpers.HandlerWithJSONResponse(map[string]string{"token": ""}, nil)
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		a := LoginAuthenticator{BaseURL: server.URL, Executor: NewExecutor(nil, time.Second, nil)}
		_, err := OpenSession(context.Background(), server.URL, a, testCreds)
		var se *SetupError
		require.True(t, errors.As(err, &se))
		assert.Contains(t, err.Error(), "token is empty")
	})
}

func TestUnreachableServiceIsSetupErrorWrappingTransportError(t *testing.T) {
	server := httptest.NewServer(httphelpers.HandlerWithStatus(200))
	url := server.URL
	server.Close()

	a := LoginAuthenticator{BaseURL: url, Executor: NewExecutor(nil, time.Second, nil)}
	_, err := OpenSession(context.Background(), url, a, testCreds)
	var se *SetupError
	require.True(t, errors.As(err, &se))
	var te *TransportError
	assert.True(t, errors.As(err, &te))
}

type authenticatorFunc func(context.Context, Credentials) (string, error)

func (f authenticatorFunc) Authenticate(ctx context.Context, creds Credentials) (string, error) {
	return f(ctx, creds)
}

func TestWrappedSetupErrorIsNotWrappedAgain(t *testing.T) {
	original := &SetupError{Message: "identity provider is down"}
	a := authenticatorFunc(func(context.Context, Credentials) (string, error) {
		return "", fmt.Errorf("login: %w", original)
	})

	_, err := OpenSession(context.Background(), "http://localhost", a, testCreds)

	assert.Same(t, original, err)
	assert.NotContains(t, err.Error(), "could not authenticate")
}

func TestStaticToken(t *testing.T) {
	session, err := OpenSession(context.Background(), "http://localhost", StaticToken("abc"), Credentials{})
	require.NoError(t, err)
	assert.Equal(t, "abc", session.Token())

	_, err = OpenSession(context.Background(), "http://localhost", StaticToken(""), Credentials{})
	var se *SetupError
	assert.True(t, errors.As(err, &se))
}
