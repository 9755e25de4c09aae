package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/travelguide/crud-contract-tests/framework"

	"github.com/google/uuid"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// DefaultCallTimeout is used if an Executor is created without a timeout.
const DefaultCallTimeout = time.Second * 10

const requestIDHeader = "X-Request-Id"

// Request describes one HTTP call to the service.
type Request struct {
	Method string
	// Path is relative to the session's base URL.
	Path    string
	Headers http.Header
	// Body is serialized as JSON if it is not nil. An ldvalue.Value is sent as-is.
	Body interface{}
	// Anonymous requests do not carry the session's bearer token.
	Anonymous bool
}

// StepResult is the outcome of a call that did receive an HTTP response, whatever its status.
type StepResult struct {
	StatusCode int
	RawBody    string
	// Parsed is the body parsed as JSON. It is ldvalue.Null() if the body was empty, the
	// literal null, or not JSON at all, so callers cannot assume it is an object.
	Parsed ldvalue.Value
}

// HasBody returns true if the response had any non-whitespace content.
func (r StepResult) HasBody() bool {
	return len(bytes.TrimSpace([]byte(r.RawBody))) != 0
}

func (r StepResult) String() string {
	return fmt.Sprintf("HTTP %d %s", r.StatusCode, r.RawBody)
}

// Executor sends requests to the service. It holds no per-run state: everything that varies
// between runs is in the Session passed to Execute.
type Executor struct {
	client  *http.Client
	timeout time.Duration
	logger  framework.Logger
}

// NewExecutor creates an Executor. If client is nil, http.DefaultClient is used; if timeout is
// zero or less, DefaultCallTimeout is used.
func NewExecutor(client *http.Client, timeout time.Duration, logger framework.Logger) *Executor {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	if logger == nil {
		logger = framework.NullLogger()
	}
	return &Executor{client: client, timeout: timeout, logger: logger}
}

// WithLogger returns a copy of the Executor that writes its debug output to another logger.
func (e *Executor) WithLogger(logger framework.Logger) *Executor {
	e1 := *e
	if logger != nil {
		e1.logger = logger
	}
	return &e1
}

// Execute sends a single request and waits for the response. There are no retries. An error is
// returned only if there was no HTTP response at all (a *TransportError), or if the request
// could not be built; any status code is a successful result at this level.
func (e *Executor) Execute(ctx context.Context, session Session, r Request) (StepResult, error) {
	if !r.Anonymous && !session.Authenticated() {
		return StepResult{}, &SetupError{Message: fmt.Sprintf("no authentication token for %s %s", r.Method, r.Path)}
	}

	var bodyData []byte
	if r.Body != nil {
		data, err := json.Marshal(r.Body)
		if err != nil {
			return StepResult{}, fmt.Errorf("could not serialize request body for %s %s: %w", r.Method, r.Path, err)
		}
		bodyData = data
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var bodyReader io.Reader
	if bodyData != nil {
		bodyReader = bytes.NewReader(bodyData)
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, session.URL(r.Path), bodyReader)
	if err != nil {
		return StepResult{}, fmt.Errorf("could not build request %s %s: %w", r.Method, r.Path, err)
	}
	for k, vv := range r.Headers {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if bodyData != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	if !r.Anonymous {
		req.Header.Set("Authorization", "Bearer "+session.Token())
	}
	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)

	if bodyData != nil {
		e.logger.Printf(">> %s %s [%s] %s", r.Method, r.Path, requestID, string(bodyData))
	} else {
		e.logger.Printf(">> %s %s [%s]", r.Method, r.Path, requestID)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Printf("<< %s %s: %s", r.Method, r.Path, err)
		return StepResult{}, &TransportError{Method: r.Method, Path: r.Path, Timeout: isTimeout(err), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		e.logger.Printf("<< %s %s: error reading body: %s", r.Method, r.Path, err)
		return StepResult{}, &TransportError{Method: r.Method, Path: r.Path, Timeout: isTimeout(err), Err: err}
	}
	e.logger.Printf("<< %d %s", resp.StatusCode, string(respData))

	return StepResult{
		StatusCode: resp.StatusCode,
		RawBody:    string(respData),
		Parsed:     ldvalue.Parse(respData),
	}, nil
}

// Get, Post, Put, and Delete are shortcuts for authenticated calls.

func (e *Executor) Get(ctx context.Context, session Session, path string) (StepResult, error) {
	return e.Execute(ctx, session, Request{Method: http.MethodGet, Path: path})
}

func (e *Executor) Post(ctx context.Context, session Session, path string, body interface{}) (StepResult, error) {
	return e.Execute(ctx, session, Request{Method: http.MethodPost, Path: path, Body: body})
}

func (e *Executor) Put(ctx context.Context, session Session, path string, body interface{}) (StepResult, error) {
	return e.Execute(ctx, session, Request{Method: http.MethodPut, Path: path, Body: body})
}

func (e *Executor) Delete(ctx context.Context, session Session, path string) (StepResult, error) {
	return e.Execute(ctx, session, Request{Method: http.MethodDelete, Path: path})
}
