// Package quota enforces the free-trial generation limit per client.
package quota

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// DefaultLimit is the number of free generations per client.
const DefaultLimit = 3

// ErrQuotaExceeded reports a client that has used up its trial.
type ErrQuotaExceeded struct {
	Used  int
	Limit int
}

func (e *ErrQuotaExceeded) Error() string {
	return fmt.Sprintf("trial limit reached: %d of %d generations used", e.Used, e.Limit)
}

// Counter reads a client's completed generation count.
type Counter interface {
	UsageCount(clientID string) (int, error)
}

// Guard checks trial usage against the configured limit.
type Guard struct {
	counter Counter
	limit   int
}

// NewGuard builds a guard over the given usage counter. A limit of
// zero or less falls back to DefaultLimit.
func NewGuard(counter Counter, limit int) *Guard {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Guard{counter: counter, limit: limit}
}

// Limit returns the configured trial limit.
func (g *Guard) Limit() int {
	return g.limit
}

// Check returns *ErrQuotaExceeded when the client has no generations
// left. Usage is counted only on successful generations, so a failed
// attempt never burns trial budget.
func (g *Guard) Check(clientID string) error {
	used, err := g.counter.UsageCount(clientID)
	if err != nil {
		return fmt.Errorf("failed to check quota: %w", err)
	}
	if used >= g.limit {
		return &ErrQuotaExceeded{Used: used, Limit: g.limit}
	}
	return nil
}

// ClientID derives a stable client identifier from the request: the
// first X-Forwarded-For entry when present, otherwise the peer
// address.
func ClientID(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
