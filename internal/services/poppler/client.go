// Package poppler wraps pdftotext for per-page text extraction.
package poppler

import (
	"context"
	"errors"
	"strings"

	"platebundle/internal/services"
)

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec services.Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client invokes pdftotext.
type Client struct {
	binary string
	exec   services.Executor
}

// New constructs a pdftotext client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("pdftotext binary required")
	}
	client := &Client{binary: binary, exec: services.CommandExecutor{}}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// PageTexts returns the text of each page of the PDF at path, in page order.
func (c *Client) PageTexts(ctx context.Context, path string) ([]string, error) {
	out, err := c.exec.Output(ctx, c.binary, "-layout", path, "-")
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "minimums", "pdftotext", path, err)
	}
	return SplitPages(string(out)), nil
}

// SplitPages splits pdftotext output on form feeds. pdftotext terminates
// every page with one, so the trailing empty segment is dropped.
func SplitPages(text string) []string {
	if text == "" {
		return nil
	}
	pages := strings.Split(text, "\f")
	if len(pages) > 1 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}
	return pages
}
