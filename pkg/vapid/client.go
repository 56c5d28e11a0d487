package vapid

import (
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// Logger is a small logging interface for client warnings.
type Logger interface {
	Warn(msg string)
}

// refreshMargin is how long before a cached header set expires that the
// client signs a fresh one.
const refreshMargin = 5 * time.Minute

// Client is an HTTP client that attaches VAPID authorization headers to
// outgoing push requests.
//
// The aud claim is derived from each request's origin, and the signed
// headers are cached per origin until shortly before the token expires.
// Safe for concurrent use.
type Client struct {
	httpClient *http.Client
	vapid      *Vapid
	subject    string
	logger     Logger

	// now is swapped in tests to drive cache expiry.
	now func() time.Time

	mu    sync.Mutex
	cache map[string]cachedHeaders
}

type cachedHeaders struct {
	headers   Headers
	expiresAt time.Time
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger for client warnings.
func WithLogger(logger Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a push request client signing with v. The subject is
// the sub claim sent to every push service, normally a mailto: address.
func NewClient(v *Vapid, subject string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		vapid:      v,
		subject:    subject,
		now:        time.Now,
		cache:      make(map[string]cachedHeaders),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends an HTTP request with VAPID authorization headers for the
// request's origin.
//
// When the request already carries a Crypto-Key header (the dh parameter
// from payload encryption), the p256ecdsa segment is merged onto it with
// a fresh signing instead of the cached headers.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if req.URL == nil || req.URL.Scheme == "" || req.URL.Host == "" {
		return nil, fmt.Errorf("push request URL must have scheme and host")
	}
	origin := req.URL.Scheme + "://" + req.URL.Host

	if c.logger != nil && req.Header.Get("Authorization") != "" {
		c.logger.Warn("replacing existing Authorization header on push request to " + origin)
	}

	var headers Headers
	var err error
	if existing := req.Header.Get("Crypto-Key"); existing != "" {
		headers, err = c.vapid.SignWithCryptoKey(c.claims(origin), existing)
	} else {
		headers, err = c.headersFor(origin)
	}
	if err != nil {
		return nil, fmt.Errorf("sign push request: %w", err)
	}

	for name, value := range headers {
		req.Header.Set(name, value)
	}
	return c.httpClient.Do(req)
}

// Post sends body to a push subscription endpoint with VAPID
// authorization headers.
func (c *Client) Post(endpoint, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPost, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	return c.Do(req)
}

// headersFor returns the cached header set for an origin, signing a
// fresh one when the cache is empty or close to expiry.
func (c *Client) headersFor(origin string) (Headers, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if cached, ok := c.cache[origin]; ok && now.Before(cached.expiresAt.Add(-refreshMargin)) {
		return cached.headers, nil
	}

	headers, err := c.vapid.Sign(c.claims(origin))
	if err != nil {
		return nil, err
	}
	c.cache[origin] = cachedHeaders{
		headers:   headers,
		expiresAt: now.Add(DefaultTokenLifetime),
	}
	return headers, nil
}

// claims builds the claim set for a push service origin.
func (c *Client) claims(origin string) Claims {
	return Claims{
		"aud": origin,
		"sub": c.subject,
	}
}
