package rates

import (
	"context"
	"log"
	"time"

	"github.com/awaistahir/heatpumpiq/internal/engine"
	"github.com/go-co-op/gocron"
)

// RateCacher persists refreshed rates so the daemon serves recent data
// after a restart.
type RateCacher interface {
	CacheRate(state string, info engine.RateInfo) error
}

// Refresher periodically re-fetches electricity rates for a set of states.
type Refresher struct {
	scheduler *gocron.Scheduler
	provider  *Provider
	cacher    RateCacher
	states    []string
	interval  time.Duration
}

// NewRefresher creates a Refresher. cacher may be nil if persistence
// is not needed.
func NewRefresher(provider *Provider, cacher RateCacher, states []string, interval time.Duration) *Refresher {
	return &Refresher{
		scheduler: gocron.NewScheduler(time.UTC),
		provider:  provider,
		cacher:    cacher,
		states:    states,
		interval:  interval,
	}
}

// Start schedules the periodic refresh and starts the underlying scheduler.
func (r *Refresher) Start() error {
	if len(r.states) == 0 {
		log.Println("rates: no states configured for refresh; nothing to schedule")
		return nil
	}

	hours := int(r.interval.Hours())
	if hours <= 0 {
		hours = 24
	}

	_, err := r.scheduler.Every(hours).Hours().Do(r.refresh)
	if err != nil {
		return err
	}

	r.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (r *Refresher) Stop() {
	if r.scheduler != nil {
		r.scheduler.Stop()
	}
}

func (r *Refresher) refresh() {
	log.Printf("rates: refreshing %d state rates", len(r.states))

	for _, state := range r.states {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		info, err := r.provider.Refresh(ctx, state)
		cancel()
		if err != nil {
			log.Printf("rates: refresh failed for %s: %v", state, err)
			continue
		}
		if r.cacher != nil {
			if err := r.cacher.CacheRate(state, info); err != nil {
				log.Printf("rates: caching %s failed: %v", state, err)
			}
		}
	}

	log.Println("rates: refresh complete")
}
