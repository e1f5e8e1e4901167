package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
)

const eiaBaseURL = "https://api.eia.gov/v2/electricity/retail-sales/data/"

var (
	errRateLimited = errors.New("rate limited")
	errServerError = errors.New("server error")
	errNoData      = errors.New("no rate data in response")
)

// eiaClient fetches residential retail electricity prices from the EIA v2
// API. All calls run through a circuit breaker so a flaky upstream trips
// open instead of stalling every estimate.
type eiaClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func newEIAClient(apiKey string, client *http.Client) *eiaClient {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "eia",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
	return &eiaClient{
		apiKey:  apiKey,
		baseURL: eiaBaseURL,
		client:  client,
		circuit: cb,
	}
}

// residentialRate returns the latest annual residential price for a state
// in $/kWh. The API reports cents/kWh.
func (c *eiaClient) residentialRate(ctx context.Context, state string) (float64, error) {
	values := url.Values{}
	values.Set("api_key", c.apiKey)
	values.Set("frequency", "annual")
	values.Set("data[0]", "price")
	values.Set("facets[sectorid][]", "RES")
	values.Set("facets[stateid][]", state)
	values.Set("sort[0][column]", "period")
	values.Set("sort[0][direction]", "desc")
	values.Set("length", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return 0, err
	}

	result, err := c.circuit.Execute(func() (interface{}, error) {
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, errRateLimited
		case resp.StatusCode >= 500:
			return nil, fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}

		var payload struct {
			Response struct {
				Data []struct {
					Price json.Number `json:"price"`
				} `json:"data"`
			} `json:"response"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, fmt.Errorf("decoding EIA response: %w", err)
		}
		if len(payload.Response.Data) == 0 {
			return nil, errNoData
		}
		centsPerKWh, err := payload.Response.Data[0].Price.Float64()
		if err != nil {
			return nil, fmt.Errorf("parsing price: %w", err)
		}
		return centsPerKWh / 100, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return 0, fmt.Errorf("EIA circuit open: %w", err)
		}
		return 0, err
	}

	rate, ok := result.(float64)
	if !ok || rate <= 0 {
		return 0, errNoData
	}
	return rate, nil
}
