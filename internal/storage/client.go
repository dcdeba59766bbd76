// Package storage is a thin client for the bucket-style object storage API
// backing product images. Uploads use the elevated token and return a
// publicly resolvable URL.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mynature/storefront/internal/config"
)

var ErrNotConfigured = errors.New("object storage is not configured")

type Client struct {
	httpClient *http.Client
	endpoint   string
	bucket     string
	token      string
	prefix     string
}

// NewClient fails when the endpoint or token is missing; the upload
// capability is fatal to configure without them.
func NewClient(cfg config.StorageConfig) (*Client, error) {
	if cfg.Endpoint == "" || cfg.Token == "" {
		return nil, ErrNotConfigured
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "products"
	}

	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		bucket:     cfg.Bucket,
		token:      cfg.Token,
		prefix:     prefix,
	}, nil
}

// Upload stores the object under a generated name and returns its public URL.
func (c *Client) Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	objectPath, err := c.objectPath(filename)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/object/%s/%s", c.endpoint, c.bucket, objectPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return "", fmt.Errorf("storage: failed to build upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Cache-Control", "max-age=3600")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("storage: upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("storage: upload rejected with status %d: %s", resp.StatusCode, readSnippet(resp.Body))
	}

	publicURL := fmt.Sprintf("%s/object/public/%s/%s", c.endpoint, c.bucket, objectPath)
	log.Info().Str("path", objectPath).Msg("storage: object uploaded")
	return publicURL, nil
}

// Delete removes an object by its stored path.
func (c *Client) Delete(ctx context.Context, objectPath string) error {
	url := fmt.Sprintf("%s/object/%s/%s", c.endpoint, c.bucket, strings.TrimLeft(objectPath, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("storage: failed to build delete request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("storage: delete request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("storage: delete rejected with status %d: %s", resp.StatusCode, readSnippet(resp.Body))
	}
	return nil
}

// objectPath generates a unique key under the configured prefix, keeping the
// original file extension.
func (c *Client) objectPath(filename string) (string, error) {
	random, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("storage: failed to generate object name: %w", err)
	}

	ext := strings.TrimPrefix(path.Ext(filename), ".")
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("%s/%d-%s.%s", c.prefix, time.Now().UnixMilli(), random.String()[:8], ext), nil
}

func readSnippet(r io.Reader) string {
	snippet, _ := io.ReadAll(io.LimitReader(r, 256))
	return strings.TrimSpace(string(snippet))
}
