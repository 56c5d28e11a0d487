// Package pushmock provides a mock Web Push service for tests.
//
// The mock accepts any delivery, records the headers and body the client
// sent, and answers with 201 Created the way production push services
// acknowledge accepted notifications.
//
// Basic usage:
//
//	svc := pushmock.New()
//	defer svc.Close()
//
//	// ... deliver notifications to svc.URL() ...
//
//	d := svc.Last()
//	if d.Authorization == "" {
//		t.Error("delivery was not signed")
//	}
package pushmock

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
)

// Delivery holds what the client sent in one push request.
type Delivery struct {
	Method        string
	Path          string
	Authorization string
	CryptoKey     string
	ContentType   string
	TTL           string
	Body          []byte
}

// Service is a mock push service backed by an httptest server.
type Service struct {
	server *httptest.Server
	status int

	mu         sync.Mutex
	deliveries []Delivery
}

// Option configures a Service.
type Option func(*Service)

// WithStatus sets the status code returned for every delivery. The
// default is 201 Created; push services answer 400, 404, or 410 for
// bad or expired subscriptions.
func WithStatus(code int) Option {
	return func(s *Service) {
		s.status = code
	}
}

// New starts a mock push service. Callers must Close it.
func New(opts ...Option) *Service {
	s := &Service{status: http.StatusCreated}
	for _, opt := range opts {
		opt(s)
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

func (s *Service) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	s.deliveries = append(s.deliveries, Delivery{
		Method:        r.Method,
		Path:          r.URL.Path,
		Authorization: r.Header.Get("Authorization"),
		CryptoKey:     r.Header.Get("Crypto-Key"),
		ContentType:   r.Header.Get("Content-Type"),
		TTL:           r.Header.Get("TTL"),
		Body:          body,
	})
	s.mu.Unlock()

	w.WriteHeader(s.status)
}

// URL returns the service base URL. This is also the origin the aud
// claim of a signed delivery must carry.
func (s *Service) URL() string {
	return s.server.URL
}

// Close shuts the server down.
func (s *Service) Close() {
	s.server.Close()
}

// Count returns how many deliveries the service has accepted.
func (s *Service) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.deliveries)
}

// Last returns the most recent delivery, or nil if none arrived.
func (s *Service) Last() *Delivery {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.deliveries) == 0 {
		return nil
	}
	d := s.deliveries[len(s.deliveries)-1]
	return &d
}

// Deliveries returns a copy of every recorded delivery in arrival order.
func (s *Service) Deliveries() []Delivery {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Delivery, len(s.deliveries))
	copy(out, s.deliveries)
	return out
}
