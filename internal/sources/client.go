// Package sources fetches the two upstream datasets consumed by the refresh
// pipeline: country metadata and USD exchange rates. Each fetch is a single
// attempt bounded by the client timeout; any transport failure, timeout,
// non-success status, or undecodable body is reported as *UnavailableError
// carrying the source URL, so callers can surface which upstream failed
// without inspecting transport details.
package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// UnavailableError signals that an upstream data source could not be used.
// Source holds the URL of the failing endpoint.
type UnavailableError struct {
	Source string
	Err    error
}

// Error implements the error interface.
func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("external data source unavailable: %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("external data source unavailable: %s", e.Source)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *UnavailableError) Unwrap() error { return e.Err }

// RawCurrency is one currency entry as reported by the country metadata API.
type RawCurrency struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// RawCountry is one country entry as reported by the country metadata API.
// Fields are passed through as-is; validation is not this package's job.
type RawCountry struct {
	Name       string        `json:"name"`
	Capital    string        `json:"capital"`
	Region     string        `json:"region"`
	Population int64         `json:"population"`
	Flag       string        `json:"flag"`
	Currencies []RawCurrency `json:"currencies"`
}

// ratesResponse mirrors the exchange-rate API payload; only the rate table is
// of interest.
type ratesResponse struct {
	Result string             `json:"result"`
	Rates  map[string]float64 `json:"rates"`
}

// Client fetches both upstream datasets over HTTP.
// Safe for concurrent use; the two fetches are independent and may run in
// parallel.
type Client struct {
	httpClient   *http.Client
	countriesURL string
	ratesURL     string
	userAgent    string
}

// DefaultUserAgent identifies this service to the upstream APIs.
const DefaultUserAgent = "go-countries-backend/1.0 (https://github.com/tbourn/go-countries-backend)"

// NewClient builds a Client for the given endpoints. timeout bounds each
// request end to end; there are no retries.
func NewClient(countriesURL, ratesURL string, timeout time.Duration) *Client {
	return &Client{
		countriesURL: countriesURL,
		ratesURL:     ratesURL,
		userAgent:    DefaultUserAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchCountries retrieves the country metadata list. On any failure it
// returns *UnavailableError naming the countries endpoint.
func (c *Client) FetchCountries(ctx context.Context) ([]RawCountry, error) {
	var out []RawCountry
	if err := c.getJSON(ctx, c.countriesURL, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchRates retrieves the USD exchange-rate table keyed by currency code.
// On any failure it returns *UnavailableError naming the rates endpoint.
func (c *Client) FetchRates(ctx context.Context) (map[string]float64, error) {
	var resp ratesResponse
	if err := c.getJSON(ctx, c.ratesURL, &resp); err != nil {
		return nil, err
	}
	if resp.Rates == nil {
		return nil, &UnavailableError{Source: c.ratesURL, Err: fmt.Errorf("response carried no rates")}
	}
	return resp.Rates, nil
}

// getJSON performs a single GET and decodes the body into v.
func (c *Client) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &UnavailableError{Source: url, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &UnavailableError{Source: url, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &UnavailableError{Source: url, Err: fmt.Errorf("upstream returned status %d", resp.StatusCode)}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &UnavailableError{Source: url, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}
