// Package airtable is the HTTP client for the external tabular store that
// holds the sustainability reference data. It covers the two surfaces the
// console needs: the metadata API (schema introspection for the generator)
// and the records API (the generic reference-data proxy).
package airtable

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

	"github.com/verdantops/ecodesk/internal/models"
)

// Client talks to one Airtable-compatible endpoint with one token.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	retryWait  time.Duration
}

// New creates a client for the given endpoint. The token is sent as a
// Bearer credential on every request.
func New(baseURL, token string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		retryWait:  time.Second,
	}
}

// ListTables fetches the table list of a base from the metadata API,
// including each table's field schema.
func (c *Client) ListTables(ctx context.Context, baseID string) ([]models.TableInfo, error) {
	var payload tablesResponse
	path := fmt.Sprintf("/v0/meta/bases/%s/tables", url.PathEscape(baseID))
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}

	tables := make([]models.TableInfo, 0, len(payload.Tables))
	for _, t := range payload.Tables {
		info := models.TableInfo{
			ID:             t.ID,
			Name:           t.Name,
			PrimaryFieldID: t.PrimaryFieldID,
		}
		for _, f := range t.Fields {
			info.Fields = append(info.Fields, models.FieldInfo{ID: f.ID, Name: f.Name, Type: f.Type})
		}
		tables = append(tables, info)
	}
	return tables, nil
}

// TableFields returns the field schema of a single table. The metadata API
// has no per-table endpoint, so the base's table list is fetched and matched
// by id.
func (c *Client) TableFields(ctx context.Context, baseID, tableID string) ([]models.FieldInfo, error) {
	tables, err := c.ListTables(ctx, baseID)
	if err != nil {
		return nil, err
	}
	for _, t := range tables {
		if t.ID == tableID {
			return t.Fields, nil
		}
	}
	return nil, fmt.Errorf("table %s in base %s: %w", tableID, baseID, ErrTableNotFound)
}

// ListRecords fetches one page of records from a table. The table may be
// addressed by id or by name, as the records API accepts both.
func (c *Client) ListRecords(ctx context.Context, baseID, table string, opts ListRecordsOptions) (*RecordPage, error) {
	path := fmt.Sprintf("/v0/%s/%s", url.PathEscape(baseID), url.PathEscape(table))

	query := url.Values{}
	if opts.View != "" {
		query.Set("view", opts.View)
	}
	if opts.MaxRecords > 0 {
		query.Set("maxRecords", strconv.Itoa(opts.MaxRecords))
	}
	if opts.Offset != "" {
		query.Set("offset", opts.Offset)
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var page RecordPage
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// CreateRecord inserts a single record and returns it with its new id.
func (c *Client) CreateRecord(ctx context.Context, baseID, table string, fields map[string]interface{}) (*Record, error) {
	path := fmt.Sprintf("/v0/%s/%s", url.PathEscape(baseID), url.PathEscape(table))
	body := map[string]interface{}{"fields": fields}

	var record Record
	if err := c.doJSON(ctx, http.MethodPost, path, body, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// UpdateRecord patches the given fields of a record, leaving others intact.
func (c *Client) UpdateRecord(ctx context.Context, baseID, table, recordID string, fields map[string]interface{}) (*Record, error) {
	path := fmt.Sprintf("/v0/%s/%s/%s", url.PathEscape(baseID), url.PathEscape(table), url.PathEscape(recordID))
	body := map[string]interface{}{"fields": fields}

	var record Record
	if err := c.doJSON(ctx, http.MethodPatch, path, body, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// DeleteRecord removes a record from a table.
func (c *Client) DeleteRecord(ctx context.Context, baseID, table, recordID string) error {
	path := fmt.Sprintf("/v0/%s/%s/%s", url.PathEscape(baseID), url.PathEscape(table), url.PathEscape(recordID))

	var result deleteResponse
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, &result); err != nil {
		return err
	}
	if !result.Deleted {
		return &APIError{StatusCode: http.StatusOK, Message: "delete was not acknowledged"}
	}
	return nil
}

// doJSON performs one request with auth headers, retrying a single time
// when the upstream rate limiter answers 429.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var data []byte
	if body != nil {
		var err error
		data, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	send := func() (*http.Response, error) {
		var reader io.Reader
		if data != nil {
			reader = bytes.NewReader(data)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		if data != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		return c.httpClient.Do(req)
	}

	resp, err := send()
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		resp.Body.Close()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.retryWait):
		}
		if resp, err = send(); err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%s %s: %w", method, path, ErrUnauthorized)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errBody errorResponse
		if json.NewDecoder(resp.Body).Decode(&errBody) == nil {
			apiErr.Message = errBody.Error.Message
		}
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
