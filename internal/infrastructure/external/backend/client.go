package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/johnquangdev/meeting-insights/pkg/config"
)

// Client talks to the backend API that persists meeting metadata and
// issues presigned upload URLs. Calls are single-shot; a failed call
// is reported to the pipeline and never retried.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a backend API client from configuration.
func NewClient(cfg *config.BackendConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.APIURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

// UpsertMeeting PUTs the flattened meeting body to the backend. The
// payload carries id and email next to the metadata fields.
func (c *Client) UpsertMeeting(ctx context.Context, payload map[string]interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal meeting payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/meeting", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build meeting request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upsert meeting: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("upsert meeting: backend returned %d", resp.StatusCode)
	}
	return nil
}

// SignedURL fetches a presigned upload destination for an artifact.
func (c *Client) SignedURL(ctx context.Context, artifactName string) (string, error) {
	endpoint := c.baseURL + "/signed-url/" + url.PathEscape(artifactName)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build signed-url request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch signed url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch signed url: backend returned %d", resp.StatusCode)
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode signed-url response: %w", err)
	}
	if out.URL == "" {
		return "", fmt.Errorf("signed-url response missing url")
	}
	return out.URL, nil
}

// Upload fetches a presigned destination for objectName and PUTs the
// binary there with an octet-stream content type.
func (c *Client) Upload(ctx context.Context, objectName string, data []byte) error {
	dest, err := c.SignedURL(ctx, objectName)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, dest, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.ContentLength = int64(len(data))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upload %s: %w", objectName, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("upload %s: destination returned %d", objectName, resp.StatusCode)
	}
	return nil
}

// Ping probes backend reachability with exponential backoff. Used once
// at startup; pipeline calls are never retried.
func (c *Client) Ping(ctx context.Context) error {
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, resp.Body)
		if resp.StatusCode >= 500 {
			return fmt.Errorf("backend health returned %d", resp.StatusCode)
		}
		return nil
	}

	policy := backoff.WithContext(backoff.NewExponentialBackOff(backoff.WithMaxElapsedTime(30*time.Second)), ctx)
	return backoff.Retry(operation, policy)
}
