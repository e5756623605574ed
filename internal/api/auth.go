package api

import (
	"crypto/subtle"
	"errors"
	"net"
	"net/http"
	"strings"

	"mta/internal/config"
)

const (
	apiKeyHeaderDefault = "X-API-Key"
	clientKeyUnknown    = "unknown"
)

var (
	errMissingAPIKey    = errors.New("missing api key")
	errInvalidAPIKey    = errors.New("invalid api key")
	errPermissionDenied = errors.New("permission denied")
	errRateLimited      = errors.New("rate limit exceeded")
)

// HTTPAuth provides API-key auth and per-key rate limiting for HTTP endpoints.
// Read-only keys may only issue GET and HEAD requests.
type HTTPAuth struct {
	cfg     config.APIConfig
	header  string
	clients []config.APIClientKey
	limiter *rateLimiter
}

func NewHTTPAuth(cfg config.APIConfig) *HTTPAuth {
	header := strings.TrimSpace(cfg.Auth.HeaderAPIKey)
	if header == "" {
		header = apiKeyHeaderDefault
	}
	return &HTTPAuth{
		cfg:     cfg,
		header:  header,
		clients: cfg.Auth.APIKeys,
		limiter: newRateLimiter(cfg.RateLimit),
	}
}

func (a *HTTPAuth) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == healthPath {
			next.ServeHTTP(w, r)
			return
		}

		if a.cfg.Auth.Enabled {
			if err := a.checkAuth(r); err != nil {
				statusCode := http.StatusUnauthorized
				if errors.Is(err, errPermissionDenied) {
					statusCode = http.StatusForbidden
				}
				writeError(w, statusCode, err.Error())
				return
			}
		}

		if !a.limiter.allow(a.clientKey(r)) {
			writeError(w, http.StatusTooManyRequests, errRateLimited.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (a *HTTPAuth) checkAuth(r *http.Request) error {
	apiKey := strings.TrimSpace(r.Header.Get(a.header))
	if apiKey == "" {
		return errMissingAPIKey
	}

	client, ok := a.lookup(apiKey)
	if !ok {
		return errInvalidAPIKey
	}

	if client.ReadOnly && r.Method != http.MethodGet && r.Method != http.MethodHead {
		return errPermissionDenied
	}
	return nil
}

// lookup compares against every configured key in constant time.
func (a *HTTPAuth) lookup(apiKey string) (config.APIClientKey, bool) {
	var found config.APIClientKey
	ok := false
	for _, c := range a.clients {
		if subtle.ConstantTimeCompare([]byte(c.Key), []byte(apiKey)) == 1 {
			found, ok = c, true
		}
	}
	return found, ok
}

func (a *HTTPAuth) clientKey(r *http.Request) string {
	if apiKey := strings.TrimSpace(r.Header.Get(a.header)); apiKey != "" {
		return apiKey
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return clientKeyUnknown
}
