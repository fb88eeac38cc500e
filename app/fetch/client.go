// Package fetch retrieves remote pages for the scrape tasks. It owns the
// politeness policy: one request at a time, a fixed minimum interval between
// requests, and an optional robots.txt gate. Concurrent fetching of multiple
// pages is deliberately not offered.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

type Client struct {
	httpClient    *http.Client
	userAgent     string
	delay         time.Duration
	respectRobots bool

	mu          sync.Mutex
	lastRequest time.Time
	robots      map[string]*robotstxt.RobotsData
}

func NewClient(userAgent string, timeout, delay time.Duration, respectRobots bool) *Client {
	return &Client{
		httpClient:    &http.Client{Timeout: timeout},
		userAgent:     userAgent,
		delay:         delay,
		respectRobots: respectRobots,
		robots:        make(map[string]*robotstxt.RobotsData),
	}
}

// Get fetches one page and returns its body. Requests are serialized and
// spaced by the configured delay; the caller's context bounds the wait.
func (c *Client) Get(ctx context.Context, rawURL string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if wait := c.delay - time.Since(c.lastRequest); wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if c.respectRobots {
		allowed, err := c.allowedByRobots(ctx, rawURL)
		if err != nil {
			slog.Debug("robots.txt check failed, proceeding", "url", rawURL, "error", err)
		} else if !allowed {
			return "", fmt.Errorf("fetch disallowed by robots.txt: %s", rawURL)
		}
	}

	body, err := c.doGet(ctx, rawURL)
	c.lastRequest = time.Now()
	return body, err
}

func (c *Client) doGet(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	return string(data), nil
}

// allowedByRobots consults the cached robots.txt for the URL's host,
// fetching it once per host. A missing or unreachable robots.txt allows
// everything.
func (c *Client) allowedByRobots(ctx context.Context, rawURL string) (bool, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return true, nil
	}

	data, ok := c.robots[u.Host]
	if !ok {
		robotsURL := u.Scheme + "://" + u.Host + "/robots.txt"
		body, err := c.doGet(ctx, robotsURL)
		if err != nil {
			if strings.Contains(err.Error(), "HTTP error: 404") {
				data = &robotstxt.RobotsData{}
			} else {
				return true, err
			}
		} else {
			data, err = robotstxt.FromString(body)
			if err != nil {
				return true, err
			}
		}
		c.robots[u.Host] = data
	}

	return data.TestAgent(u.Path, c.userAgent), nil
}
