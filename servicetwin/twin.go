// Package servicetwin is an in-memory stand-in for the travel guide service. It implements the
// category and destination endpoints, bearer-token login, and the seeded fixture data, so the
// contract tests can be run locally and exercised by their own unit tests.
package servicetwin

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Quirks make the twin misbehave in specific ways, so tests can show that the contract tests
// catch the corresponding service defects. The zero value is a correct service.
type Quirks struct {
	// NotFoundStatus, if non-zero, is returned for reads of missing records instead of 200 with
	// a null body.
	NotFoundStatus int
	// IgnoreUpdates makes PUT report success without changing anything.
	IgnoreUpdates bool
	// IgnoreDeletes makes DELETE report success without removing anything.
	IgnoreDeletes bool
	// ReverseAttractions returns destination attractions in reverse order.
	ReverseAttractions bool
	// CreatedStatus, if non-zero, replaces the 200 status of create responses.
	CreatedStatus int
	// ResponseDelay is applied before every authenticated response.
	ResponseDelay time.Duration
	// ClobberUnmentionedFields makes a destination update also change the location when the
	// update did not mention it.
	ClobberUnmentionedFields bool
	// UnstableReads adds a "readCount" field to every read by id, so no two reads are alike.
	UnstableReads bool
	// WrongEmbeddedCategory gives the category embedded in destinations a different identifier
	// from the one the destination refers to.
	WrongEmbeddedCategory bool
}

// Config describes a twin instance.
type Config struct {
	// Users maps login email addresses to passwords.
	Users map[string]string
	// SigningKey is the HMAC key for issued tokens. If empty, a fixed development key is used.
	SigningKey []byte
	// TokenTTL is the lifetime of issued tokens. Defaults to one hour.
	TokenTTL time.Duration
	// Seed adds the standard fixture data on startup.
	Seed bool
	Quirks Quirks
	// Logger receives one line per request. If nil, nothing is logged.
	Logger *zap.Logger
}

// Twin is a running twin's state.
type Twin struct {
	store  *MemoryStore
	config Config
	logger *zap.Logger
	reads  atomic.Int64
}

const defaultSigningKey = "travel-twin-development-key"

// New creates a twin.
func New(config Config) *Twin {
	if len(config.SigningKey) == 0 {
		config.SigningKey = []byte(defaultSigningKey)
	}
	if config.TokenTTL <= 0 {
		config.TokenTTL = time.Hour
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := NewMemoryStore()
	if config.Seed {
		s.Seed()
	}
	return &Twin{store: s, config: config, logger: logger}
}

// Store returns the twin's backing store.
func (t *Twin) Store() *MemoryStore {
	return t.store
}

// Handler returns the root HTTP handler.
func (t *Twin) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(t.requestLogger)
	t.Routes(r)
	return r
}

// Routes mounts the service routes.
func (t *Twin) Routes(r chi.Router) {
	r.Post("/user/login", t.Login)

	r.Group(func(r chi.Router) {
		r.Use(t.bearerAuthMiddleware)
		r.Use(t.delayMiddleware)

		r.Route("/category", func(r chi.Router) {
			r.Post("/", t.CreateCategory)
			r.Get("/", t.ListCategories)
			r.Get("/{id}", t.GetCategory)
			r.Put("/{id}", t.UpdateCategory)
			r.Delete("/{id}", t.DeleteCategory)
		})
		r.Route("/destination", func(r chi.Router) {
			r.Post("/", t.CreateDestination)
			r.Get("/", t.ListDestinations)
			r.Get("/{id}", t.GetDestination)
			r.Put("/{id}", t.UpdateDestination)
			r.Delete("/{id}", t.DeleteDestination)
		})
	})
}

func (t *Twin) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		t.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", sw.status),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("requestId", r.Header.Get("X-Request-Id")),
		)
	})
}

func (t *Twin) delayMiddleware(next http.Handler) http.Handler {
	if t.config.Quirks.ResponseDelay <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(t.config.Quirks.ResponseDelay):
			next.ServeHTTP(w, r)
		case <-r.Context().Done():
		}
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
