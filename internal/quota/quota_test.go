package quota

import (
	"errors"
	"net/http/httptest"
	"testing"
)

type fakeCounter struct {
	counts map[string]int
	err    error
}

func (f *fakeCounter) UsageCount(clientID string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.counts[clientID], nil
}

func TestGuardCheck(t *testing.T) {
	counter := &fakeCounter{counts: map[string]int{
		"1.2.3.4": 3,
		"5.6.7.8": 2,
	}}
	guard := NewGuard(counter, 3)

	err := guard.Check("1.2.3.4")
	var exceeded *ErrQuotaExceeded
	if !errors.As(err, &exceeded) {
		t.Fatalf("got %v, want ErrQuotaExceeded", err)
	}
	if exceeded.Used != 3 || exceeded.Limit != 3 {
		t.Errorf("got used=%d limit=%d, want used=3 limit=3", exceeded.Used, exceeded.Limit)
	}

	if err := guard.Check("5.6.7.8"); err != nil {
		t.Errorf("client under limit rejected: %v", err)
	}
	if err := guard.Check("9.9.9.9"); err != nil {
		t.Errorf("new client rejected: %v", err)
	}
}

func TestGuardCounterError(t *testing.T) {
	guard := NewGuard(&fakeCounter{err: errors.New("db closed")}, 3)

	err := guard.Check("1.2.3.4")
	if err == nil {
		t.Fatal("expected error")
	}
	var exceeded *ErrQuotaExceeded
	if errors.As(err, &exceeded) {
		t.Error("counter failure must not report quota exceeded")
	}
}

func TestGuardDefaultLimit(t *testing.T) {
	guard := NewGuard(&fakeCounter{}, 0)
	if guard.Limit() != DefaultLimit {
		t.Errorf("got limit %d, want %d", guard.Limit(), DefaultLimit)
	}
}

func TestClientID(t *testing.T) {
	tests := []struct {
		name       string
		forwarded  string
		remoteAddr string
		want       string
	}{
		{
			name:       "forwarded single",
			forwarded:  "203.0.113.9",
			remoteAddr: "10.0.0.1:5555",
			want:       "203.0.113.9",
		},
		{
			name:       "forwarded chain uses first entry",
			forwarded:  "203.0.113.9, 10.0.0.2, 10.0.0.3",
			remoteAddr: "10.0.0.1:5555",
			want:       "203.0.113.9",
		},
		{
			name:       "no forwarded header uses peer host",
			remoteAddr: "192.0.2.44:12345",
			want:       "192.0.2.44",
		},
		{
			name: "no addresses at all",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/api/generate", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if got := ClientID(r); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
