// Package hass is a Home Assistant REST API client.
package hass

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/jrshann/strhost/internal/rate"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultPerMinute = 120
)

var ErrEntityNotFound = errors.New("entity not found")

// Config defines runtime configuration for the Home Assistant client.
type Config struct {
	BaseURL   string
	TokenFile string
	Token     string // inline token takes precedence over TokenFile
	Timeout   time.Duration
	PerMinute int // API call budget, defaulted
}

// Client talks to the Home Assistant REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type HTTPStatusError struct {
	Status int
	Body   string
}

func (e HTTPStatusError) Error() string {
	return fmt.Sprintf("hass api error %d: %s", e.Status, strings.TrimSpace(e.Body))
}

func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("hass base_url is required")
	}

	token := cfg.Token
	if token == "" {
		if cfg.TokenFile == "" {
			return nil, fmt.Errorf("hass token_file is required")
		}
		data, err := os.ReadFile(cfg.TokenFile)
		if err != nil {
			return nil, fmt.Errorf("read hass token: %w", err)
		}
		token = strings.TrimSpace(string(data))
	}
	if token == "" {
		return nil, fmt.Errorf("hass token is empty")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	httpClient := oauth2.NewClient(context.Background(), source)
	httpClient.Timeout = timeout

	perMinute := cfg.PerMinute
	if perMinute == 0 {
		perMinute = defaultPerMinute
	}
	httpClient = rate.WrapHTTP(rate.Declaration{Provider: "hass", PerMinute: perMinute}, httpClient)

	return &Client{baseURL: baseURL, httpClient: httpClient}, nil
}

// State fetches the current state of an entity.
func (c *Client) State(ctx context.Context, entityID string) (Entity, error) {
	var entity Entity
	if err := c.getJSON(ctx, "/api/states/"+url.PathEscape(entityID), nil, &entity); err != nil {
		var statusErr HTTPStatusError
		if errors.As(err, &statusErr) && statusErr.Status == http.StatusNotFound {
			return Entity{}, fmt.Errorf("%s: %w", entityID, ErrEntityNotFound)
		}
		return Entity{}, err
	}
	return entity, nil
}

// StateValue returns the state string, or the named attribute when
// attribute is non-empty.
func (c *Client) StateValue(ctx context.Context, entityID, attribute string) (string, error) {
	entity, err := c.State(ctx, entityID)
	if err != nil {
		return "", err
	}
	if attribute == "" {
		return entity.State, nil
	}
	raw, ok := entity.Attributes[attribute]
	if !ok {
		return "", fmt.Errorf("%s: attribute %q not present", entityID, attribute)
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%s: attribute %q is not a string", entityID, attribute)
	}
	return value, nil
}

// StateDatetime parses the state (or attribute) as a datetime.
func (c *Client) StateDatetime(ctx context.Context, entityID, attribute string) (time.Time, error) {
	value, err := c.StateValue(ctx, entityID, attribute)
	if err != nil {
		return time.Time{}, err
	}
	ts, err := ParseDatetime(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", entityID, err)
	}
	return ts, nil
}

// StateClock parses the state as a time of day.
func (c *Client) StateClock(ctx context.Context, entityID string) (Clock, error) {
	value, err := c.StateValue(ctx, entityID, "")
	if err != nil {
		return Clock{}, err
	}
	clock, err := ParseClock(value)
	if err != nil {
		return Clock{}, fmt.Errorf("%s: %w", entityID, err)
	}
	return clock, nil
}

// History fetches recorded state changes for an entity over the last days.
// The API returns one list per requested entity.
func (c *Client) History(ctx context.Context, entityID string, days int) ([]HistoryState, error) {
	if days <= 0 {
		return nil, fmt.Errorf("history days must be positive")
	}

	start := time.Now().AddDate(0, 0, -days).UTC().Format(time.RFC3339)
	params := url.Values{}
	params.Set("filter_entity_id", entityID)
	params.Set("no_attributes", "true")

	var lists [][]HistoryState
	if err := c.getJSON(ctx, "/api/history/period/"+start, params, &lists); err != nil {
		return nil, err
	}
	if len(lists) == 0 {
		return nil, nil
	}
	return lists[0], nil
}

// CallService invokes a Home Assistant service with the given data.
func (c *Client) CallService(ctx context.Context, domain, service string, data map[string]any) error {
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal service data: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/services/%s/%s", c.baseURL, url.PathEscape(domain), url.PathEscape(service))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s/%s: %w", domain, service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return HTTPStatusError{Status: resp.StatusCode, Body: string(payload)}
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, dest any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return HTTPStatusError{Status: resp.StatusCode, Body: string(payload)}
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
