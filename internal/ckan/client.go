// Package ckan fetches sensor readings from a CKAN datastore via its
// SQL search endpoint, one offset page at a time.
package ckan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/stadslucht/pm25-extract/internal/airdata"
)

// DefaultBaseURL is the datastore_search_sql action of the data platform.
const DefaultBaseURL = "https://ckan.dataplatform.nl/api/3/action/datastore_search_sql"

// pageSize is the fixed LIMIT of every paginated query.
const pageSize = 10000

// columns is the fixed projection of every query; the report writers rely
// on exactly this field set.
const columns = "entity_id, recording_timestamp, acc_max, error_code, " +
	"horizontal_accuracy, humidity, latitude, longitude, " +
	"pm2_5, pressure, temperature, " +
	"vertical_accuracy, voc, voltage, version_major"

var (
	errServerError = errors.New("server error")
	errUnexpected  = errors.New("unexpected status code")
	errCircuitOpen = errors.New("circuit breaker open")
)

// Client issues paginated SQL queries against one datastore resource.
type Client struct {
	client     *http.Client
	baseURL    string
	resourceID string
	token      string
	circuit    *gobreaker.CircuitBreaker
}

// NewClient builds a client for the given resource. The token is sent as-is
// in the Authorization header, CKAN's bearer-style convention.
func NewClient(client *http.Client, baseURL, resourceID, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ckan",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
	return &Client{
		client:     client,
		baseURL:    baseURL,
		resourceID: resourceID,
		token:      token,
		circuit:    cb,
	}
}

// Fetch retrieves the complete result set for a window by advancing an
// offset cursor until an empty page comes back. The remote is treated as an
// unbounded, possibly inconsistently ordered log: no dedup beyond what
// distinct offsets provide.
//
// On a transport or server error Fetch returns the pages collected so far
// together with the error; the caller decides what to do with the partial
// set. There are no retries — the first failure ends this window's fetch.
func (c *Client) Fetch(ctx context.Context, w airdata.Window) ([]airdata.RawRecord, error) {
	var all []airdata.RawRecord
	for offset := 0; ; offset += pageSize {
		page, err := c.fetchPage(ctx, w, offset)
		if err != nil {
			return all, fmt.Errorf("window %s offset %d: %w", w.Label(), offset, err)
		}
		if len(page) == 0 {
			return all, nil
		}
		log.Printf("ckan: fetched %d records at offset %d for %s", len(page), offset, w.Label())
		all = append(all, page...)
	}
}

func (c *Client) fetchPage(ctx context.Context, w airdata.Window, offset int) ([]airdata.RawRecord, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM %q WHERE recording_timestamp >= '%s' AND recording_timestamp <= '%s' ORDER BY recording_timestamp DESC LIMIT %d OFFSET %d`,
		columns, c.resourceID, w.Start, w.End, pageSize, offset,
	)

	values := url.Values{}
	values.Set("sql", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.token)

	result, err := c.circuit.Execute(func() (interface{}, error) {
		resp, execErr := c.client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		if resp.StatusCode >= 500 {
			resp.Body.Close()
			return nil, fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		return nil, err
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	defer resp.Body.Close()

	var payload struct {
		Result struct {
			Records []airdata.RawRecord `json:"records"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return payload.Result.Records, nil
}
