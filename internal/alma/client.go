package alma

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds each request to the Alma API
const DefaultTimeout = 30 * time.Second

var (
	// ErrTransport means the Alma API could not be reached at all
	ErrTransport = errors.New("alma unreachable")

	// ErrNotFound means Alma answered the lookup with a non-success status
	ErrNotFound = errors.New("item not found")

	// ErrUpdateRejected means Alma answered the update with a non-success status
	ErrUpdateRejected = errors.New("item update rejected")
)

// StatusError carries the HTTP status of a non-success Alma response
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
	kind       error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: alma returned status %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return e.kind
}

// ItemIDs identifies an item record for the update endpoint
type ItemIDs struct {
	MMSID     string `json:"mms_id"`
	HoldingID string `json:"holding_id"`
	ItemID    string `json:"item_id"`
}

// DefaultHeaders are sent when the settings file does not supply any
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Accept":       "application/xml",
		"Content-Type": "application/xml",
	}
}

// Client talks to the Alma Bibs API
type Client struct {
	baseURL string
	apiKey  string
	headers map[string]string
	client  *http.Client
}

// NewClient creates a new Client instance
func NewClient(baseURL, apiKey string, headers map[string]string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("alma base url is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("alma api key is required")
	}
	if len(headers) == 0 {
		headers = DefaultHeaders()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		headers: headers,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// LookupItem fetches the item record XML for a barcode
func (c *Client) LookupItem(ctx context.Context, barcode string) ([]byte, error) {
	query := url.Values{}
	query.Set("item_barcode", barcode)
	query.Set("apikey", c.apiKey)

	resp, err := c.do(ctx, http.MethodGet, "/items", query, nil)
	if err != nil {
		return nil, fmt.Errorf("looking up barcode %q: %w", barcode, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading lookup response: %w: %w", ErrTransport, err)
	}

	if !isSuccess(resp.StatusCode) {
		return nil, &StatusError{Op: "lookup", StatusCode: resp.StatusCode, Body: truncate(body), kind: ErrNotFound}
	}

	return body, nil
}

// UpdateItem replaces the item record with the given XML document
func (c *Client) UpdateItem(ctx context.Context, ids ItemIDs, record []byte) error {
	path := fmt.Sprintf("/bibs/%s/holdings/%s/items/%s",
		url.PathEscape(ids.MMSID), url.PathEscape(ids.HoldingID), url.PathEscape(ids.ItemID))

	query := url.Values{}
	query.Set("generate_description", "false")
	query.Set("apikey", c.apiKey)

	resp, err := c.do(ctx, http.MethodPut, path, query, record)
	if err != nil {
		return fmt.Errorf("updating item %s: %w", ids.ItemID, err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		body, _ := io.ReadAll(resp.Body)
		return &StatusError{Op: "update", StatusCode: resp.StatusCode, Body: truncate(body), kind: ErrUpdateRejected}
	}

	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path+"?"+query.Encode(), reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for name, value := range c.headers {
		req.Header.Set(name, value)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	return resp, nil
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

// truncate keeps error bodies short enough for a log line
func truncate(body []byte) string {
	const limit = 512
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
