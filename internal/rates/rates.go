// Package rates resolves residential electricity prices by state. With an
// EIA API key configured it queries the EIA v2 retail-sales endpoint
// behind a circuit breaker; otherwise it serves bundled state averages.
// Results are cached for a day either way.
package rates

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/awaistahir/heatpumpiq/internal/engine"
)

//go:embed fallback_rates.json
var fallbackJSON []byte

const (
	// SourceLive marks a rate fetched from the EIA API.
	SourceLive = "live"
	// SourceFallback marks a bundled state-average rate.
	SourceFallback = "fallback-average"

	// defaultRateUSDPerKWh covers states missing from the fallback table.
	defaultRateUSDPerKWh = 0.16

	cacheTTL = 24 * time.Hour
)

type cachedRate struct {
	info    engine.RateInfo
	fetched time.Time
}

// Provider answers state rate lookups.
type Provider struct {
	eia      *eiaClient // nil without an API key
	fallback map[string]float64

	mu    sync.Mutex
	cache map[string]cachedRate
	now   func() time.Time
}

// New builds a Provider. apiKey may be empty, in which case every lookup
// is served from the bundled table.
func New(apiKey string, client *http.Client) (*Provider, error) {
	var fallback map[string]float64
	if err := json.Unmarshal(fallbackJSON, &fallback); err != nil {
		return nil, fmt.Errorf("parsing fallback rate table: %w", err)
	}
	if len(fallback) == 0 {
		return nil, fmt.Errorf("fallback rate table is empty")
	}

	p := &Provider{
		fallback: fallback,
		cache:    make(map[string]cachedRate),
		now:      time.Now,
	}
	if apiKey != "" {
		if client == nil {
			client = &http.Client{Timeout: 10 * time.Second}
		}
		p.eia = newEIAClient(apiKey, client)
	}
	return p, nil
}

// ByState returns the residential electricity rate for a two-letter state
// code. Unknown states get the national-average default rather than an
// error, matching how a cost estimate should degrade.
func (p *Provider) ByState(ctx context.Context, state string) (engine.RateInfo, error) {
	return p.lookup(ctx, state, false)
}

// Refresh fetches the rate anew, skipping the TTL cache. The fresh value
// still lands in the cache so later ByState calls see it.
func (p *Provider) Refresh(ctx context.Context, state string) (engine.RateInfo, error) {
	return p.lookup(ctx, state, true)
}

func (p *Provider) lookup(ctx context.Context, state string, skipCache bool) (engine.RateInfo, error) {
	state = strings.ToUpper(strings.TrimSpace(state))
	if len(state) != 2 {
		return engine.RateInfo{}, &engine.ValidationError{Field: "state",
			Reason: fmt.Sprintf("%q is not a two-letter state code", state)}
	}

	if !skipCache {
		if info, ok := p.cached(state); ok {
			return info, nil
		}
	}

	if p.eia != nil {
		rate, err := p.eia.residentialRate(ctx, state)
		if err == nil {
			info := engine.RateInfo{USDPerKWh: rate, Source: SourceLive}
			p.store(state, info)
			return info, nil
		}
		log.Printf("rates: EIA lookup for %s failed, falling back: %v", state, err)
	}

	rate, ok := p.fallback[state]
	if !ok {
		rate = defaultRateUSDPerKWh
	}
	info := engine.RateInfo{USDPerKWh: rate, Source: SourceFallback}
	p.store(state, info)
	return info, nil
}

// States returns the state codes covered by the bundled table.
func (p *Provider) States() []string {
	out := make([]string, 0, len(p.fallback))
	for s := range p.fallback {
		out = append(out, s)
	}
	return out
}

func (p *Provider) cached(state string) (engine.RateInfo, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.cache[state]
	if !ok || p.now().Sub(c.fetched) >= cacheTTL {
		return engine.RateInfo{}, false
	}
	return c.info, true
}

func (p *Provider) store(state string, info engine.RateInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache[state] = cachedRate{info: info, fetched: p.now()}
}
