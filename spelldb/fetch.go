package spelldb

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/spf13/afero"
)

// HTTPStatusError is returned for non-200 responses.
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("spelldb: fetch %s: %s", e.URL, e.Status)
}

// FetchOptions configures a Fetcher.
type FetchOptions struct {
	// HTTPClient defaults to a client with a 30s timeout.
	HTTPClient *http.Client
	// Retries is the number of extra attempts for network errors and 5xx
	// responses. Defaults to 3.
	Retries uint64
	// BaseDelay is the first backoff interval. Defaults to 500ms.
	BaseDelay time.Duration
	// Fs resolves sources that are not http(s) URLs. Defaults to the OS
	// filesystem.
	Fs     afero.Fs
	Logger *log.Logger
}

// Fetcher reads the raw pattern table from a URL or a file.
type Fetcher struct {
	opts   FetchOptions
	logger *log.Logger
}

// NewFetcher creates a Fetcher.
func NewFetcher(opts FetchOptions) *Fetcher {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.Retries == 0 {
		opts.Retries = 3
	}
	if opts.BaseDelay == 0 {
		opts.BaseDelay = 500 * time.Millisecond
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "[SPELLDB] ", log.LstdFlags)
	}
	return &Fetcher{opts: opts, logger: logger}
}

// Fetch returns the raw contents of source.
func (f *Fetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	if !isURL(source) {
		data, err := afero.ReadFile(f.opts.Fs, source)
		if err != nil {
			return nil, fmt.Errorf("spelldb: read %s: %w", source, err)
		}
		f.logger.Printf("read %s (%d bytes)", source, len(data))
		return data, nil
	}

	var body []byte
	attempt := 0
	backoff := retry.WithMaxRetries(f.opts.Retries, retry.NewExponential(f.opts.BaseDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		data, err := f.get(ctx, source)
		if err != nil {
			f.logger.Printf("fetch %s attempt %d: %v", source, attempt, err)
			return err
		}
		body = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	f.logger.Printf("fetched %s (%d bytes)", source, len(body))
	return body, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("spelldb: create request: %w", err)
	}
	resp, err := f.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, retry.RetryableError(fmt.Errorf("spelldb: http request: %w", err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, retry.RetryableError(fmt.Errorf("spelldb: read response: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		statusErr := &HTTPStatusError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
		if resp.StatusCode >= 500 {
			return nil, retry.RetryableError(statusErr)
		}
		return nil, statusErr
	}
	return data, nil
}

// LoadStore fetches source, decodes it and returns a populated store.
func LoadStore(ctx context.Context, f *Fetcher, source string, logger *log.Logger) (*Store, error) {
	raw, err := f.Fetch(ctx, source)
	if err != nil {
		return nil, err
	}
	spells, err := DecodeCSV(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	store, err := NewStore(logger)
	if err != nil {
		return nil, err
	}
	if _, err := store.Load(ctx, spells); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
