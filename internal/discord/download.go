package discord

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// MaxFileBytes caps each re-uploaded file at 10 MB.
	MaxFileBytes = 10 << 20

	downloadTimeout = 30 * time.Second
)

// ErrFileTooLarge is returned when a download exceeds MaxFileBytes; the
// transfer is aborted mid-stream rather than read to completion.
var ErrFileTooLarge = errors.New("file exceeds size limit")

// Download fetches a remote file into memory for re-upload. The buffer is
// discarded by the caller once the delivery request completes.
func (c *Client) Download(ctx context.Context, fileURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	limited := &io.LimitedReader{R: resp.Body, N: MaxFileBytes + 1}
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	if int64(len(data)) > MaxFileBytes {
		return nil, fmt.Errorf("download file: %w (max %d bytes)", ErrFileTooLarge, MaxFileBytes)
	}
	return data, nil
}
