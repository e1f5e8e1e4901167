package rates

import (
	"testing"
	"time"

	"github.com/awaistahir/heatpumpiq/internal/engine"
)

type recordingCacher struct {
	saved map[string]engine.RateInfo
}

func (c *recordingCacher) CacheRate(state string, info engine.RateInfo) error {
	if c.saved == nil {
		c.saved = make(map[string]engine.RateInfo)
	}
	c.saved[state] = info
	return nil
}

func TestRefresherPersistsRates(t *testing.T) {
	p, err := New("", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cacher := &recordingCacher{}
	r := NewRefresher(p, cacher, []string{"IL", "MN"}, 24*time.Hour)
	r.refresh()

	if len(cacher.saved) != 2 {
		t.Fatalf("cached %d states, want 2", len(cacher.saved))
	}
	for _, state := range []string{"IL", "MN"} {
		info, ok := cacher.saved[state]
		if !ok {
			t.Fatalf("state %s not cached", state)
		}
		if info.USDPerKWh <= 0 {
			t.Errorf("state %s: rate %.3f, want positive", state, info.USDPerKWh)
		}
		if info.Source != SourceFallback {
			t.Errorf("state %s: source %s, want %s", state, info.Source, SourceFallback)
		}
	}
}

func TestRefresherSkipsBadStates(t *testing.T) {
	p, err := New("", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cacher := &recordingCacher{}
	r := NewRefresher(p, cacher, []string{"not-a-state", "CA"}, 24*time.Hour)
	r.refresh()

	if len(cacher.saved) != 1 {
		t.Fatalf("cached %d states, want 1", len(cacher.saved))
	}
	if _, ok := cacher.saved["CA"]; !ok {
		t.Error("CA missing from cache")
	}
}
