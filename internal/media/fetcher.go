package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/hassanhitleap1/bagisto-karaz/internal/logger"
)

const (
	downloadRetries   = 2
	defaultRetryDelay = time.Second
	jpegQuality       = 90
)

// Fetcher downloads remote images and persists them, re-encoded as JPEG,
// under a base storage directory. Every failure is non-fatal to callers.
type Fetcher struct {
	basePath   string
	retryDelay time.Duration
	httpClient *http.Client
	logger     *logger.Logger
}

func NewFetcher(basePath string, logger *logger.Logger) *Fetcher {
	return &Fetcher{
		basePath:   basePath,
		retryDelay: defaultRetryDelay,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// Fetch downloads the image at url and returns its raw bytes, or nil when
// the download could not be completed within the bounded retries.
func (f *Fetcher) Fetch(ctx context.Context, url string) []byte {
	var data []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := f.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, resp.Body)
			return fmt.Errorf("image request failed with status %d", resp.StatusCode)
		}

		data, err = io.ReadAll(resp.Body)
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(f.retryDelay), downloadRetries),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		f.logger.Warn("failed to download image %s: %v", url, err)
		return nil
	}

	return data
}

// StoreTranscoded re-encodes raw image bytes to JPEG and writes them below
// the base storage directory under dir. The filename carries a random
// disambiguator so images stored in the same run never collide. Returns the
// path relative to the storage root.
func (f *Fetcher) StoreTranscoded(data []byte, dir string) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	relPath := filepath.Join(dir, uuid.New().String()+".jpg")
	fullPath := filepath.Join(f.basePath, relPath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create image directory: %w", err)
	}
	if err := imaging.Save(img, fullPath, imaging.JPEGQuality(jpegQuality)); err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}

	return relPath, nil
}

// Acquire combines Fetch and StoreTranscoded. It returns nil when the image
// could not be downloaded or stored; the entity is then simply left without
// that image.
func (f *Fetcher) Acquire(ctx context.Context, url, dir string) *string {
	if url == "" {
		return nil
	}

	data := f.Fetch(ctx, url)
	if data == nil {
		return nil
	}

	path, err := f.StoreTranscoded(data, dir)
	if err != nil {
		f.logger.Warn("failed to store image from %s: %v", url, err)
		return nil
	}

	return &path
}
