package rates

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/awaistahir/heatpumpiq/internal/engine"
)

func TestFallbackRates(t *testing.T) {
	p, err := New("", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(p.fallback) != 50 {
		t.Errorf("fallback table carries %d states, want 50", len(p.fallback))
	}
	for state, rate := range p.fallback {
		if rate < 0.08 || rate > 0.35 {
			t.Errorf("state %s: fallback rate %.3f outside plausible band [0.08, 0.35]", state, rate)
		}
	}

	info, err := p.ByState(context.Background(), "ny")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Source != SourceFallback {
		t.Errorf("source %s, want %s", info.Source, SourceFallback)
	}
	if info.USDPerKWh != 0.204 {
		t.Errorf("NY rate %.3f, want 0.204", info.USDPerKWh)
	}

	// Territories outside the table degrade to the national default.
	info, err = p.ByState(context.Background(), "PR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.USDPerKWh != defaultRateUSDPerKWh {
		t.Errorf("unknown state rate %.3f, want default %.3f", info.USDPerKWh, defaultRateUSDPerKWh)
	}
}

func TestByStateValidation(t *testing.T) {
	p, err := New("", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, state := range []string{"", "N", "NEW", "new york"} {
		_, err := p.ByState(context.Background(), state)
		var verr *engine.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("state %q: want ValidationError, got %v", state, err)
		}
	}
}

func TestLiveRateAndCache(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if got := r.URL.Query().Get("facets[stateid][]"); got != "MA" {
			t.Errorf("state facet %q, want MA", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":{"data":[{"price":"23.4"}]}}`))
	}))
	defer srv.Close()

	p, err := New("test-key", srv.Client())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p.eia.baseURL = srv.URL + "/"

	info, err := p.ByState(context.Background(), "MA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Source != SourceLive {
		t.Errorf("source %s, want %s", info.Source, SourceLive)
	}
	if !floatClose(info.USDPerKWh, 0.234) {
		t.Errorf("rate %.4f, want 0.234", info.USDPerKWh)
	}

	// Second lookup inside the TTL must not call the API again.
	if _, err := p.ByState(context.Background(), "MA"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("API called %d times, want 1 (cache miss only)", calls)
	}

	// An expired entry refetches.
	p.now = func() time.Time { return time.Now().Add(25 * time.Hour) }
	if _, err := p.ByState(context.Background(), "MA"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("API called %d times after TTL expiry, want 2", calls)
	}
}

func TestRefreshBypassesCache(t *testing.T) {
	calls := 0
	price := "23.4"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":{"data":[{"price":"` + price + `"}]}}`))
	}))
	defer srv.Close()

	p, err := New("test-key", srv.Client())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p.eia.baseURL = srv.URL + "/"

	if _, err := p.ByState(context.Background(), "MA"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("API called %d times, want 1", calls)
	}

	// Refresh must hit the API even with a warm cache entry.
	price = "25.0"
	info, err := p.Refresh(context.Background(), "MA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("API called %d times after Refresh, want 2", calls)
	}
	if !floatClose(info.USDPerKWh, 0.25) {
		t.Errorf("refreshed rate %.4f, want 0.25", info.USDPerKWh)
	}

	// The cache now holds the refreshed value.
	info, err = p.ByState(context.Background(), "MA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("API called %d times after cached lookup, want 2", calls)
	}
	if !floatClose(info.USDPerKWh, 0.25) {
		t.Errorf("cached rate %.4f, want 0.25", info.USDPerKWh)
	}
}

func TestLiveFailureFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p, err := New("test-key", srv.Client())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p.eia.baseURL = srv.URL + "/"

	info, err := p.ByState(context.Background(), "CA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Source != SourceFallback {
		t.Errorf("source %s, want %s after upstream failure", info.Source, SourceFallback)
	}
	if info.USDPerKWh != 0.234 {
		t.Errorf("CA fallback rate %.3f, want 0.234", info.USDPerKWh)
	}
}

func TestEIAResponseWithoutData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":{"data":[]}}`))
	}))
	defer srv.Close()

	c := newEIAClient("k", srv.Client())
	c.baseURL = srv.URL + "/"
	if _, err := c.residentialRate(context.Background(), "TX"); !errors.Is(err, errNoData) {
		t.Errorf("want errNoData, got %v", err)
	}
}

func floatClose(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}
