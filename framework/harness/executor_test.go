package harness

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func mustSession(t *testing.T, baseURL string) Session {
	s, err := NewSession(baseURL, "tok123")
	require.NoError(t, err)
	return s
}

func TestExecuteSendsBearerTokenAndBodyOnce(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithJSONResponse(
		map[string]interface{}{"_id": "abc", "name": "Test Category"}, nil))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		e := NewExecutor(nil, time.Second, nil)
		result, err := e.Post(context.Background(), mustSession(t, server.URL), "category",
			ldvalue.ObjectBuild().Set("name", ldvalue.String("Test Category")).Build())
		require.NoError(t, err)

		assert.Equal(t, 200, result.StatusCode)
		assert.Equal(t, "abc", result.Parsed.GetByKey("_id").StringValue())

		r := <-requestsCh
		assert.Equal(t, "POST", r.Request.Method)
		assert.Equal(t, "/category", r.Request.URL.Path)
		assert.Equal(t, "Bearer tok123", r.Request.Header.Get("Authorization"))
		assert.Equal(t, "application/json; charset=utf-8", r.Request.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Request.Header.Get(requestIDHeader))
		assert.JSONEq(t, `{"name":"Test Category"}`, string(r.Body))
	})
}

func TestExecuteWithoutBodySendsNoContentType(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(200))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		e := NewExecutor(nil, time.Second, nil)
		_, err := e.Delete(context.Background(), mustSession(t, server.URL), "/category/x")
		require.NoError(t, err)

		r := <-requestsCh
		assert.Equal(t, "DELETE", r.Request.Method)
		assert.Empty(t, r.Request.Header.Get("Content-Type"))
		assert.Len(t, r.Body, 0)
	})
}

func TestParsedBodyIsNullForNonObjectBodies(t *testing.T) {
	for _, body := range []string{"", "null", "not json", "  "} {
		t.Run(body, func(t *testing.T) {
			handler := httphelpers.HandlerWithResponse(200, nil, []byte(body))
			httphelpers.WithServer(handler, func(server *httptest.Server) {
				result, err := NewExecutor(nil, time.Second, nil).Get(context.Background(), mustSession(t, server.URL), "/category/x")
				require.NoError(t, err)
				assert.Equal(t, body, result.RawBody)
				assert.True(t, result.Parsed.IsNull())
			})
		})
	}
}

func TestNonSuccessStatusIsNotAnError(t *testing.T) {
	httphelpers.WithServer(httphelpers.HandlerWithStatus(404), func(server *httptest.Server) {
		result, err := NewExecutor(nil, time.Second, nil).Get(context.Background(), mustSession(t, server.URL), "/category/x")
		require.NoError(t, err)
		assert.Equal(t, 404, result.StatusCode)
	})
}

func TestBrokenConnectionIsTransportError(t *testing.T) {
	httphelpers.WithServer(httphelpers.BrokenConnectionHandler(), func(server *httptest.Server) {
		_, err := NewExecutor(nil, time.Second, nil).Get(context.Background(), mustSession(t, server.URL), "/category")
		var te *TransportError
		require.True(t, errors.As(err, &te), "expected TransportError, got %T: %v", err, err)
		assert.Equal(t, "GET", te.Method)
		assert.Equal(t, "/category", te.Path)
		assert.False(t, te.Timeout)
	})
}

func TestSlowResponseIsTimeoutTransportError(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
		w.WriteHeader(200)
	})
	httphelpers.WithServer(slow, func(server *httptest.Server) {
		_, err := NewExecutor(nil, 50*time.Millisecond, nil).Get(context.Background(), mustSession(t, server.URL), "/category")
		var te *TransportError
		require.True(t, errors.As(err, &te), "expected TransportError, got %T: %v", err, err)
		assert.True(t, te.Timeout)
		assert.Contains(t, te.Error(), "GET /category timed out")
	})
}

func TestAuthenticatedRequestWithoutTokenIsSetupError(t *testing.T) {
	s, err := NewAnonymousSession("http://localhost:1")
	require.NoError(t, err)
	_, err = NewExecutor(nil, time.Second, nil).Get(context.Background(), s, "/category")
	var se *SetupError
	assert.True(t, errors.As(err, &se))
}

func TestUnserializableBodyIsReportedBeforeSending(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(200))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		_, err := NewExecutor(nil, time.Second, nil).Post(context.Background(), mustSession(t, server.URL), "/category",
			map[string]interface{}{"bad": make(chan int)})
		var ute *json.UnsupportedTypeError
		assert.True(t, errors.As(err, &ute))
		assert.Len(t, requestsCh, 0)
	})
}

func TestSessionURL(t *testing.T) {
	s := mustSession(t, "http://example.com/api/")
	assert.Equal(t, "http://example.com/api", s.BaseURL())
	assert.Equal(t, "http://example.com/api/category", s.URL("category"))
	assert.Equal(t, "http://example.com/api/category/1", s.URL("/category/1"))
}

func TestNewSessionRejectsEmptyTokenAndBadURL(t *testing.T) {
	_, err := NewSession("http://example.com", "")
	var se *SetupError
	assert.True(t, errors.As(err, &se))

	_, err = NewSession("example.com", "tok")
	assert.True(t, errors.As(err, &se))
}
