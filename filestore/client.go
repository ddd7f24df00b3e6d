package filestore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"messenger/errors"
)

// Client implements contract.FileStorage against a remote filestore
// server. Transport failures surface as wrapped errors distinct from
// ErrFileNotFound, so callers can tell "absent" from "unreachable".
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) fileURL(filename string) string {
	return fmt.Sprintf("%s/files/%s", c.baseURL, url.PathEscape(filename))
}

func (c *Client) GetFile(ctx context.Context, filename string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.fileURL(filename), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("filestore unreachable: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return io.ReadAll(resp.Body)
	case http.StatusNotFound:
		return nil, errors.ErrFileNotFound
	default:
		return nil, fmt.Errorf("filestore returned %d for %s", resp.StatusCode, filename)
	}
}

func (c *Client) StoreData(ctx context.Context, filename string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.fileURL(filename), bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("filestore unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("filestore returned %d for %s", resp.StatusCode, filename)
	}
	return nil
}
