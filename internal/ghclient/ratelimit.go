package ghclient

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spiffcs/glance/internal/constants"
	"github.com/spiffcs/glance/internal/log"
)

// ErrRateLimited is returned when the GitHub API rate limit has been exceeded.
var ErrRateLimited = errors.New("GitHub API rate limit exceeded")

// GitHub rate limit resources. Each has its own quota.
const (
	ResourceCore    = "core"
	ResourceSearch  = "search"
	ResourceGraphQL = "graphql"
)

type quota struct {
	limited   bool
	resetAt   time.Time
	remaining int
	limit     int
}

func (q *quota) active() bool {
	return q.limited && time.Now().Before(q.resetAt)
}

// RateLimitState tracks the rate limit state observed by one Client,
// per rate limit resource.
type RateLimitState struct {
	mu     sync.RWMutex
	quotas map[string]*quota
}

// IsLimited reports whether resource is currently rate limited.
func (s *RateLimitState) IsLimited(resource string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.quotas[resource]
	return ok && q.active()
}

// SetLimited sets the rate limit state of resource.
func (s *RateLimitState) SetLimited(resource string, limited bool, resetAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.quota(resource)
	q.limited = limited
	q.resetAt = resetAt
}

// Update records the quota of resource reported by a response.
func (s *RateLimitState) Update(resource string, remaining, limit int, resetAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.quota(resource)
	q.remaining = remaining
	q.limit = limit
	q.resetAt = resetAt
	q.limited = remaining == 0
}

// Status returns the last observed quota of the limited resource that
// resets last, or of the core resource when nothing is limited.
func (s *RateLimitState) Status() (remaining, limit int, resetAt time.Time, limited bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pick *quota
	for _, q := range s.quotas {
		if q.active() && (pick == nil || q.resetAt.After(pick.resetAt)) {
			pick = q
		}
	}
	if pick == nil {
		pick = s.quotas[ResourceCore]
	}
	if pick == nil {
		return 0, 0, time.Time{}, false
	}
	return pick.remaining, pick.limit, pick.resetAt, pick.active()
}

// quota returns the entry for resource. Callers hold the write lock.
func (s *RateLimitState) quota(resource string) *quota {
	if s.quotas == nil {
		s.quotas = make(map[string]*quota)
	}
	q, ok := s.quotas[resource]
	if !ok {
		q = &quota{}
		s.quotas[resource] = q
	}
	return q
}

// rateLimitTransport wraps an http.RoundTripper to handle GitHub rate
// limits. A request is refused only when its own resource is exhausted.
type rateLimitTransport struct {
	base  http.RoundTripper
	state *RateLimitState
}

func (t *rateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resource := requestResource(req)
	if t.state.IsLimited(resource) {
		return nil, ErrRateLimited
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return resp, err
	}

	if v := resp.Header.Get("X-RateLimit-Resource"); v != "" {
		resource = v
	}

	remaining, limit, resetAt := parseRateLimitHeaders(resp)
	if remaining >= 0 && limit > 0 {
		t.state.Update(resource, remaining, limit, resetAt)
	}

	if remaining <= constants.RateLimitLowWatermark && remaining > 0 {
		log.Debug("rate limit low", "resource", resource, "remaining", remaining, "resets_at", resetAt.Format(time.RFC3339))
	}

	// 403 with an exhausted quota or 429
	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		if resp.Header.Get("X-RateLimit-Remaining") == "0" || resp.StatusCode == http.StatusTooManyRequests {
			t.state.SetLimited(resource, true, resetAt)
			_ = resp.Body.Close()
			return nil, ErrRateLimited
		}
	}

	return resp, nil
}

// requestResource guesses the quota a request draws from, before the
// response names it.
func requestResource(req *http.Request) string {
	path := req.URL.Path
	switch {
	case strings.Contains(path, "/search/"):
		return ResourceSearch
	case strings.HasSuffix(path, "/graphql"):
		return ResourceGraphQL
	default:
		return ResourceCore
	}
}

// parseRateLimitHeaders extracts rate limit info from response headers.
func parseRateLimitHeaders(resp *http.Response) (remaining, limit int, resetAt time.Time) {
	remaining = -1
	limit = -1

	if v := resp.Header.Get("X-RateLimit-Remaining"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			remaining = n
		}
	}
	if v := resp.Header.Get("X-RateLimit-Limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if v := resp.Header.Get("X-RateLimit-Reset"); v != "" {
		if ts, err := strconv.ParseInt(v, 10, 64); err == nil {
			resetAt = time.Unix(ts, 0)
		}
	}

	return remaining, limit, resetAt
}
