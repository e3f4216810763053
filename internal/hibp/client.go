// Package hibp adapts the Have I Been Pwned v3 API to the engine's
// BreachSource port. It owns HTTP concerns only: auth headers, timeouts
// and status interpretation. Pacing and retry policy live with the
// caller.
package hibp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/Pusher91/breachwatch/internal/domain"
)

const DefaultBaseURL = "https://haveibeenpwned.com/api/v3"

type Options struct {
	BaseURL   string
	APIKey    string
	UserAgent string
	Timeout   time.Duration // per-request; 0 means 10s
}

type Client struct {
	baseURL   string
	apiKey    string
	userAgent string
	timeout   time.Duration
	http      *http.Client
	log       *zap.Logger
}

func NewClient(opts Options, log *zap.Logger) *Client {
	base := opts.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	d := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         d.DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &Client{
		baseURL:   base,
		apiKey:    opts.APIKey,
		userAgent: opts.UserAgent,
		timeout:   timeout,
		http:      &http.Client{Transport: tr},
		log:       log,
	}
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, context.CancelFunc, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		cancel()
		return nil, func() {}, err
	}
	req.Header.Set("hibp-api-key", c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		cancel()
		return nil, func() {}, err
	}
	return resp, cancel, nil
}

// LatestBreach fetches the globally most recent breach record. Any
// transport error, non-success status, or response missing required
// fields is ErrSourceUnavailable.
func (c *Client) LatestBreach(ctx context.Context) (domain.BreachRecord, error) {
	resp, cancel, err := c.get(ctx, "/latestbreach")
	if err != nil {
		return domain.BreachRecord{}, fmt.Errorf("latest breach: %w: %w", domain.ErrSourceUnavailable, err)
	}
	defer cancel()
	defer drainClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return domain.BreachRecord{}, fmt.Errorf("latest breach: status %d: %w", resp.StatusCode, domain.ErrSourceUnavailable)
	}

	var rec domain.BreachRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return domain.BreachRecord{}, fmt.Errorf("latest breach: decode: %w: %w", domain.ErrSourceUnavailable, err)
	}
	if rec.Name == "" || rec.AddedDate == "" {
		return domain.BreachRecord{}, fmt.Errorf("latest breach: missing fields: %w", domain.ErrSourceUnavailable)
	}
	if _, err := rec.AddedTime(); err != nil {
		return domain.BreachRecord{}, fmt.Errorf("latest breach: %w: %w", domain.ErrSourceUnavailable, err)
	}
	return rec, nil
}

// Lookup fetches the breaches an email appears in. 200 is the parsed
// list, 404 positively means no breaches, anything else is
// ErrSourceIndeterminate: the caller must not treat it as clean.
func (c *Client) Lookup(ctx context.Context, email string) ([]domain.BreachRecord, error) {
	resp, cancel, err := c.get(ctx, "/breachedaccount/"+url.PathEscape(email)+"?truncateResponse=false")
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w: %w", email, domain.ErrSourceUnavailable, err)
	}
	defer cancel()
	defer drainClose(resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
		var recs []domain.BreachRecord
		if err := json.NewDecoder(resp.Body).Decode(&recs); err != nil {
			return nil, fmt.Errorf("lookup %s: decode: %w: %w", email, domain.ErrSourceUnavailable, err)
		}
		return recs, nil
	case http.StatusNotFound:
		return nil, nil
	default:
		c.log.Warn("ambiguous lookup status",
			zap.String("email", email), zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("lookup %s: status %d: %w", email, resp.StatusCode, domain.ErrSourceIndeterminate)
	}
}

func drainClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 1<<20))
	_ = body.Close()
}
