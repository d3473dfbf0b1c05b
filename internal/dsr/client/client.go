// Package client is the HTTP client for the DSR job service. It implements
// listctl.Fetcher so a front end can point a list controller straight at a
// remote server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Novusha-LPP/eximdev-sub002/internal/dsr/entity"
	"github.com/Novusha-LPP/eximdev-sub002/internal/dsr/listctl"
)

// Session identifies the operator on whose behalf requests are made. The
// triple is attached to every request as audit headers and authenticates the
// client when no bearer token is in play.
type Session struct {
	UserID   string
	Username string
	UserRole string
}

// Client talks to one DSR job service.
type Client struct {
	baseURL    string
	session    Session
	httpClient *http.Client
}

// New creates a client for the service at baseURL.
func New(baseURL string, session Session) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: session,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// FetchJobs loads one page of the filtered job list.
func (c *Client) FetchJobs(ctx context.Context, filters listctl.Filters, page, limit int) (*listctl.Page, error) {
	path := fmt.Sprintf("/api/%s/jobs/%s/%s",
		url.PathEscape(filters.Year),
		url.PathEscape(orAll(filters.Status)),
		url.PathEscape(orAll(filters.DetailedStatus)),
	)
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	if filters.Search != "" {
		q.Set("search", filters.Search)
	}
	if filters.ICDCode != "" && filters.ICDCode != "all" {
		q.Set("selectedICD", filters.ICDCode)
	}
	if filters.Importer != "" && filters.Importer != "all" {
		q.Set("importer", filters.Importer)
	}
	if filters.UnresolvedOnly {
		q.Set("unresolved", "true")
	}

	var page_ listctl.Page
	if err := c.do(ctx, http.MethodPost, path+"?"+q.Encode(), nil, &page_); err != nil {
		return nil, err
	}
	return &page_, nil
}

// FetchSuggestions queries the typeahead endpoint.
func (c *Client) FetchSuggestions(ctx context.Context, filters listctl.Filters, input string, limit int) ([]listctl.Suggestion, error) {
	q := url.Values{}
	q.Set("search", input)
	q.Set("limit", strconv.Itoa(limit))
	if filters.ICDCode != "" && filters.ICDCode != "all" {
		q.Set("selectedICD", filters.ICDCode)
	}
	if filters.Importer != "" && filters.Importer != "all" {
		q.Set("importer", filters.Importer)
	}
	path := fmt.Sprintf("/api/%s/jobs/typeahead", url.PathEscape(filters.Year))

	var out struct {
		Data []listctl.Suggestion `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, path+"?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// GetJob fetches the full record for a job.
func (c *Client) GetJob(ctx context.Context, year, jobNo string) (*entity.Job, error) {
	path := fmt.Sprintf("/api/get-job/%s/%s", url.PathEscape(year), url.PathEscape(jobNo))
	var job entity.Job
	if err := c.do(ctx, http.MethodGet, path, nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// PatchJob applies a partial update. The server recomputes detailed_status
// from the merged record and returns the updated job.
func (c *Client) PatchJob(ctx context.Context, id string, fields map[string]interface{}) (*entity.Job, error) {
	var job entity.Job
	if err := c.do(ctx, http.MethodPatch, "/api/jobs/"+url.PathEscape(id), fields, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// GetImporters returns the distinct importers with jobs in the year.
func (c *Client) GetImporters(ctx context.Context, year string) ([]string, error) {
	var out struct {
		Importers []string `json:"importers"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/get-importer-list/"+url.PathEscape(year), nil, &out); err != nil {
		return nil, err
	}
	return out.Importers, nil
}

// GetYears returns the fiscal years known to the service.
func (c *Client) GetYears(ctx context.Context) ([]string, error) {
	var out struct {
		Years []string `json:"years"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/get-years", nil, &out); err != nil {
		return nil, err
	}
	return out.Years, nil
}

// GetLastJobsDate returns the most recent job creation date, used by the
// bulk-upload screen to show how stale the data is.
func (c *Client) GetLastJobsDate(ctx context.Context) (string, error) {
	var out struct {
		Date string `json:"date"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/get-last-jobs-date", nil, &out); err != nil {
		return "", err
	}
	return out.Date, nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.session.UserID != "" {
		req.Header.Set("user-id", c.session.UserID)
		req.Header.Set("username", c.session.Username)
		req.Header.Set("user-role", c.session.UserRole)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("decode response (%d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= 400 || env.Code != 0 {
		return fmt.Errorf("%s %s: %d %s", method, path, env.Code, env.Message)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}

func orAll(s string) string {
	if s == "" {
		return "all"
	}
	return s
}
