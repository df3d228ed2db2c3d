// internal/api/client.go
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/launchdash/dashboard/internal/dataset"
	"github.com/launchdash/dashboard/internal/monitor"
	"github.com/launchdash/dashboard/pkg/core"
)

// Client reads layout and figures from a running dashboard.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// StatusError is returned when the dashboard answers with a non-200 status.
type StatusError struct {
	Path    string
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s returned status %d: %s", e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s returned status %d", e.Path, e.Status)
}

// New creates a new API client.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Healthcheck checks if the dashboard is reachable.
func (c *Client) Healthcheck() error {
	resp, err := c.httpClient.Get(c.baseURL + "/healthcheck")
	if err != nil {
		return fmt.Errorf("healthcheck request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("healthcheck returned status %d", resp.StatusCode)
	}
	return nil
}

// Layout fetches the page layout.
func (c *Client) Layout() (dataset.Layout, error) {
	var l dataset.Layout
	err := c.getJSON("/api/layout", nil, &l)
	return l, err
}

// Figure fetches the ECharts option of one output for the given inputs.
func (c *Client) Figure(output string, in core.Inputs) (map[string]any, error) {
	var opt map[string]any
	err := c.getJSON("/api/figures/"+url.PathEscape(output), query(in), &opt)
	return opt, err
}

// FigurePNG fetches the rendered PNG of one output.
func (c *Client) FigurePNG(output string, in core.Inputs) ([]byte, error) {
	resp, err := c.get("/api/figures/"+url.PathEscape(output)+".png", query(in))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read png: %w", err)
	}
	return data, nil
}

// Status fetches the dashboard status.
func (c *Client) Status() (monitor.Status, error) {
	var st monitor.Status
	err := c.getJSON("/api/status", nil, &st)
	return st, err
}

func query(in core.Inputs) url.Values {
	q := url.Values{}
	if in.Site != "" {
		q.Set("site", in.Site)
	}
	if in.Payload != nil {
		r := in.Payload.Normalized()
		q.Set("min", strconv.FormatFloat(r.Low(), 'f', -1, 64))
		q.Set("max", strconv.FormatFloat(r.High(), 'f', -1, 64))
	}
	return q
}

// get issues a GET and turns non-200 answers into a StatusError.
func (c *Client) get(path string, q url.Values) (*http.Response, error) {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	resp, err := c.httpClient.Get(u)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", path, err)
	}
	if resp.StatusCode == http.StatusOK {
		return resp, nil
	}
	defer resp.Body.Close()

	statusErr := &StatusError{Path: path, Status: resp.StatusCode}
	var body struct {
		Error string `json:"error"`
	}
	if json.NewDecoder(resp.Body).Decode(&body) == nil {
		statusErr.Message = body.Error
	}
	return nil, statusErr
}

func (c *Client) getJSON(path string, q url.Values, v any) error {
	resp, err := c.get(path, q)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
