// Package revalidate notifies the front-end that cached pages for a content
// tag are stale.
package revalidate

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/portfolio/internal/netx"
)

type request struct {
	Tag    string `json:"tag"`
	Secret string `json:"secret"`
}

// Client posts {tag, secret} to the front-end revalidation endpoint. A
// Client with an empty URL is disabled and every call succeeds.
type Client struct {
	url    string
	secret string
	http   *http.Client
}

func NewClient(url, secret string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		url:    url,
		secret: secret,
		http:   &http.Client{Timeout: timeout},
	}
}

func (c *Client) Enabled() bool { return c.url != "" }

func (c *Client) Revalidate(ctx context.Context, tag string) error {
	if !c.Enabled() {
		return nil
	}
	return netx.PostJSON(ctx, c.http, c.url, request{Tag: tag, Secret: c.secret})
}
