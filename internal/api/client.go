package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// StatusError is returned when the service answers with a non-2xx status
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	msg := strings.TrimSpace(e.Body)
	var body ErrorBody
	if json.Unmarshal([]byte(e.Body), &body) == nil && body.Error != "" {
		msg = body.Error
	}
	if msg == "" {
		msg = http.StatusText(e.Code)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.Code, msg)
}

// Collection talks to one collection endpoint (tasks, notes or events)
type Collection struct {
	url    string
	client *http.Client
}

// NewCollection creates a client for the endpoint at url. A nil client means
// http.DefaultClient.
func NewCollection(url string, client *http.Client) *Collection {
	if client == nil {
		client = http.DefaultClient
	}
	return &Collection{url: url, client: client}
}

// URL returns the endpoint address
func (c *Collection) URL() string {
	return c.url
}

// List fetches the whole collection and returns the raw response body
func (c *Collection) List(ctx context.Context) ([]byte, error) {
	return c.do(ctx, http.MethodGet, c.url, nil)
}

// Create posts a new record
func (c *Collection) Create(ctx context.Context, payload any) error {
	_, err := c.do(ctx, http.MethodPost, c.url, payload)
	return err
}

// Update sends a full record, id included
func (c *Collection) Update(ctx context.Context, payload any) error {
	_, err := c.do(ctx, http.MethodPut, c.url, payload)
	return err
}

// Archive asks the service to archive the record with the given id
func (c *Collection) Archive(ctx context.Context, id ID) error {
	_, err := c.do(ctx, http.MethodDelete, c.url+"?id="+id.String(), nil)
	return err
}

func (c *Collection) do(ctx context.Context, method, url string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Method: method, URL: url, Code: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}
