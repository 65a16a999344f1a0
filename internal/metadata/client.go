package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/couponhub/couponhub-backend/internal/domain"
)

var ErrExtractionFailed = errors.New("metadata extraction failed")

// Client calls a remote metadata service exposing POST /extract-metadata.
type Client struct {
	endpoint string
	http     *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint: strings.TrimRight(strings.TrimSpace(baseURL), "/") + "/extract-metadata",
		http:     &http.Client{Timeout: timeout},
	}
}

type extractRequest struct {
	URL string `json:"url"`
}

type extractResponse struct {
	Success     bool   `json:"success"`
	LogoURL     string `json:"logoUrl"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Error       string `json:"error"`
}

func (c *Client) Extract(ctx context.Context, pageURL string) (*domain.SiteMetadata, error) {
	body, err := json.Marshal(extractRequest{URL: pageURL})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: HTTP %d", ErrExtractionFailed, resp.StatusCode)
	}

	var out extractResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrExtractionFailed, err)
	}
	if !out.Success {
		msg := out.Error
		if msg == "" {
			msg = "unsuccessful response"
		}
		return nil, fmt.Errorf("%w: %s", ErrExtractionFailed, msg)
	}

	return &domain.SiteMetadata{
		LogoURL:     strings.TrimSpace(out.LogoURL),
		Name:        strings.TrimSpace(out.Name),
		Description: strings.TrimSpace(out.Description),
	}, nil
}
