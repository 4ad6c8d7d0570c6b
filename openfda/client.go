// Package openfda resolves drug names to label records using the openFDA drug
// label endpoint. A name is searched by generic name first and brand name second,
// one result per query, and the first hit wins.
package openfda

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/giygas/druglabel-checker/logging"
	"github.com/giygas/druglabel-checker/metrics"
	"github.com/go-resty/resty/v2"
)

const (
	DefaultBaseURL = "https://api.fda.gov/drug/label.json"
	DefaultTimeout = 20 * time.Second

	maxErrorBody = 256
)

// SearchField is an openFDA field a drug name is matched against.
type SearchField string

const (
	FieldGenericName SearchField = "openfda.generic_name"
	FieldBrandName   SearchField = "openfda.brand_name"
)

// lookupOrder is the priority order of FetchLabel.
var lookupOrder = []SearchField{FieldGenericName, FieldBrandName}

// LookupOrder returns the fields FetchLabel queries, in order.
func LookupOrder() []SearchField {
	return append([]SearchField(nil), lookupOrder...)
}

// SearchExpression builds the exact-phrase search parameter for a field.
func SearchExpression(field SearchField, name string) string {
	return fmt.Sprintf(`%s:"%s"`, field, name)
}

// ClientConfig configures a Client. Zero values fall back to defaults.
type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
	RetryWait  time.Duration
	UserAgent  string
}

// Client queries the openFDA drug label endpoint. It holds no per-lookup state
// and is safe for concurrent use.
type Client struct {
	http    *resty.Client
	baseURL string
}

// NewClient creates a label client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "druglabel-checker"
	}

	cli := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", cfg.UserAgent)

	if cfg.RetryCount > 0 {
		cli.SetRetryCount(cfg.RetryCount).
			SetRetryWaitTime(cfg.RetryWait).
			SetRetryMaxWaitTime(4 * cfg.RetryWait).
			AddRetryCondition(func(resp *resty.Response, err error) bool {
				if err != nil {
					return !isContextDone(err)
				}
				return resp != nil && resp.StatusCode() >= http.StatusInternalServerError
			})
	}

	return &Client{http: cli, baseURL: cfg.BaseURL}
}

// FetchLabel returns one representative label for name. A nil record with a nil
// error means neither the generic nor the brand query matched.
func (c *Client) FetchLabel(ctx context.Context, name string) (*LabelRecord, error) {
	record, _, err := c.FetchLabelWithField(ctx, name)
	return record, err
}

// FetchLabelWithField is FetchLabel that also reports which field matched.
func (c *Client) FetchLabelWithField(ctx context.Context, name string) (*LabelRecord, SearchField, error) {
	for _, field := range lookupOrder {
		record, err := c.search(ctx, field, name)
		if err != nil {
			return nil, "", err
		}
		if record != nil {
			return record, field, nil
		}
	}

	logging.Debug("No openFDA label found", "drug", name)
	return nil, "", nil
}

type searchResponse struct {
	Results []LabelRecord `json:"results"`
}

// search runs one exact-phrase query. A 404 or an empty result list is not an error.
func (c *Client) search(ctx context.Context, field SearchField, name string) (*LabelRecord, error) {
	start := time.Now()

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"search": SearchExpression(field, name),
			"limit":  "1",
		}).
		Get(c.baseURL)
	if err != nil {
		metrics.ObserveLabelQuery(string(field), metrics.OutcomeError, time.Since(start))
		return nil, fmt.Errorf("%w: query %s for %q: %w", ErrTransport, field, name, err)
	}

	switch code := resp.StatusCode(); {
	case code == http.StatusNotFound:
		metrics.ObserveLabelQuery(string(field), metrics.OutcomeNotFound, time.Since(start))
		return nil, nil
	case code < http.StatusOK || code >= http.StatusMultipleChoices:
		metrics.ObserveLabelQuery(string(field), metrics.OutcomeError, time.Since(start))
		return nil, &StatusError{
			StatusCode: code,
			Status:     http.StatusText(code),
			Body:       excerpt(resp.Body()),
		}
	}

	body := bytes.TrimSpace(resp.Body())
	if len(body) == 0 || body[0] != '{' {
		metrics.ObserveLabelQuery(string(field), metrics.OutcomeMalformed, time.Since(start))
		return nil, fmt.Errorf("%w: query %s for %q: body is not a JSON object", ErrMalformedResponse, field, name)
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		metrics.ObserveLabelQuery(string(field), metrics.OutcomeMalformed, time.Since(start))
		return nil, fmt.Errorf("%w: query %s for %q: %w", ErrMalformedResponse, field, name, err)
	}

	if len(sr.Results) == 0 {
		metrics.ObserveLabelQuery(string(field), metrics.OutcomeNotFound, time.Since(start))
		return nil, nil
	}

	metrics.ObserveLabelQuery(string(field), metrics.OutcomeFound, time.Since(start))
	logging.Debug("openFDA label found",
		"drug", name,
		"field", string(field),
		"set_id", sr.Results[0].SetID,
		"duration_ms", time.Since(start).Milliseconds())
	return &sr.Results[0], nil
}

func excerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody] + "..."
	}
	return s
}

func isContextDone(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
