package harness

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// SetupError means a run could not start: authentication failed or produced no token. No
// lifecycle step has been attempted when this is returned.
type SetupError struct {
	Message string
	Err     error
}

func (e *SetupError) Error() string {
	if e.Err == nil {
		return "setup failed: " + e.Message
	}
	return fmt.Sprintf("setup failed: %s: %s", e.Message, e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }

// TransportError means a request never produced an HTTP response, either because of a network
// problem or because the per-call timeout elapsed.
type TransportError struct {
	Method  string
	Path    string
	Timeout bool
	Err     error
}

func (e *TransportError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s %s timed out: %s", e.Method, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

var errMissingSchemeOrHost = errors.New("missing scheme or host")
