// Package dracor fetches corpus listings and play payloads from the DraCor API.
package dracor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ersonp/drama-core/internal/domain/entities"
	"github.com/ersonp/drama-core/internal/domain/ports"
	"github.com/ersonp/drama-core/internal/infrastructure/config"
	"github.com/ersonp/drama-core/internal/infrastructure/parsers"
)

// FetchError describes a failed request.
type FetchError struct {
	URL        string
	StatusCode int
	Message    string
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.URL, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.URL, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.StatusCode == http.StatusNotFound
}

// Client implements ports.Source against the DraCor REST API.
type Client struct {
	baseURL string
	http    *http.Client
	delay   time.Duration

	mu          sync.Mutex
	nextRelease time.Time
}

var _ ports.Source = (*Client)(nil)

// NewClient creates a client from the api config section.
func NewClient(cfg config.APIConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("dracor base url is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("parsing dracor base url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		delay:   cfg.RelationDelay,
	}, nil
}

// ListPlays returns the plays of a corpus with title and normalized year.
func (c *Client) ListPlays(ctx context.Context, corpusID string) ([]entities.PlayMeta, error) {
	body, err := c.get(ctx, "/corpora/"+url.PathEscape(corpusID), "application/json")
	if err != nil {
		return nil, err
	}
	return parsers.ParseCorpus(corpusID, bytes.NewReader(body))
}

// SpokenText returns the raw spoken-text-by-character JSON payload.
func (c *Client) SpokenText(ctx context.Context, corpusID, playID string) ([]byte, error) {
	return c.get(ctx, playPath(corpusID, playID, "spoken-text-by-character"), "application/json")
}

// StageDirections returns the stage directions text.
func (c *Client) StageDirections(ctx context.Context, corpusID, playID string) (string, error) {
	body, err := c.get(ctx, playPath(corpusID, playID, "stage-directions-with-speakers"), "text/plain")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// RelationsGEXF returns the relation graph in GEXF format. Consecutive calls
// are spaced by the configured relation delay, across goroutines.
func (c *Client) RelationsGEXF(ctx context.Context, corpusID, playID string) ([]byte, error) {
	if err := c.waitRelationSlot(ctx); err != nil {
		return nil, err
	}
	return c.get(ctx, playPath(corpusID, playID, "relations/gexf"), "application/xml")
}

// waitRelationSlot blocks until the next relation download may start.
func (c *Client) waitRelationSlot(ctx context.Context) error {
	if c.delay <= 0 {
		return nil
	}

	c.mu.Lock()
	now := time.Now()
	start := c.nextRelease
	if start.Before(now) {
		start = now
	}
	c.nextRelease = start.Add(c.delay)
	c.mu.Unlock()

	wait := time.Until(start)
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func playPath(corpusID, playID, resource string) string {
	return "/corpora/" + url.PathEscape(corpusID) + "/plays/" + url.PathEscape(playID) + "/" + resource
}

func (c *Client) get(ctx context.Context, path, accept string) ([]byte, error) {
	target := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", "drama-core/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{URL: target, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{
			URL:        target,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("HTTP %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: target, StatusCode: resp.StatusCode, Message: "reading response", Err: err}
	}
	return body, nil
}
