package poller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/verdantops/ecodesk/internal/generator"
	"github.com/verdantops/ecodesk/internal/jobs"
	"github.com/verdantops/ecodesk/internal/models"
)

const sessionCookieName = "session_token"

// APIError is a non-2xx response from the console API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("console API error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("console API error %d", e.StatusCode)
}

// Client talks to the console API with a session cookie. It implements
// JobFetcher and ArtifactVerifier over HTTP, which is what the CLI polls
// through.
type Client struct {
	httpClient *http.Client
	baseURL    string
	session    string
}

// NewClient creates a client for the console at baseURL. The session token
// may be empty until Login is called.
func NewClient(baseURL, sessionToken string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		session:    sessionToken,
	}
}

// Login authenticates against the console and stores the returned session
// token on the client for subsequent calls.
func (c *Client) Login(ctx context.Context, username, password string) error {
	body := map[string]string{"username": username, "password": password}
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/login", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.apiError(resp)
	}
	io.Copy(io.Discard, resp.Body)
	for _, cookie := range resp.Cookies() {
		if cookie.Name == sessionCookieName {
			c.session = cookie.Value
			return nil
		}
	}
	return fmt.Errorf("login response carried no %s cookie", sessionCookieName)
}

// CreateJob submits a generation job and returns the accepted job record.
func (c *Client) CreateJob(ctx context.Context, spec models.TargetSpec) (*models.GenerationJob, error) {
	var job models.GenerationJob
	if err := c.doJSON(ctx, http.MethodPost, "/api/admin/generator/jobs", spec, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// FetchJob retrieves a job record by id. A 404 surfaces as
// jobs.ErrJobNotFound so the poller can count consecutive misses.
func (c *Client) FetchJob(ctx context.Context, jobID string) (*models.GenerationJob, error) {
	path := "/api/admin/generator/jobs/" + url.PathEscape(jobID)

	var job models.GenerationJob
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &job); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("job %s: %w", jobID, jobs.ErrJobNotFound)
		}
		return nil, err
	}
	return &job, nil
}

// VerifyArtifacts asks the console which artifacts exist on disk for a
// target name. This works with or without a live job record.
func (c *Client) VerifyArtifacts(ctx context.Context, targetName string) (map[models.ArtifactKind]bool, bool, error) {
	path := "/api/admin/generator/artifacts/" + url.PathEscape(targetName)

	var report struct {
		AllCreated   bool                         `json:"all_created"`
		FilesCreated map[models.ArtifactKind]bool `json:"files_created"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &report); err != nil {
		return nil, false, err
	}
	return report.FilesCreated, report.AllCreated, nil
}

// FinalizeJob confirms a parked job, optionally registering a navigation
// entry for the generated module.
func (c *Client) FinalizeJob(ctx context.Context, jobID string, addNavEntry bool) (*models.GenerationJob, error) {
	path := "/api/admin/generator/jobs/" + url.PathEscape(jobID) + "/finalize"
	body := map[string]bool{"add_nav_entry": addNavEntry}

	var job models.GenerationJob
	if err := c.doJSON(ctx, http.MethodPost, path, body, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// CancelJob rejects a parked job, rolling back its artifacts.
func (c *Client) CancelJob(ctx context.Context, jobID string) (*models.GenerationJob, error) {
	path := "/api/admin/generator/jobs/" + url.PathEscape(jobID) + "/cancel"

	var job models.GenerationJob
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// Manifest lists the routes the console currently has mounted.
func (c *Client) Manifest(ctx context.Context) ([]generator.ManifestEntry, error) {
	var entries []generator.ManifestEntry
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/generator/manifest", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.session != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: c.session})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.apiError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// apiError drains the error envelope the console wraps failures in.
func (c *Client) apiError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var envelope struct {
		Error string `json:"error"`
	}
	if json.NewDecoder(resp.Body).Decode(&envelope) == nil {
		apiErr.Message = envelope.Error
	}
	return apiErr
}
