// Package exiftool wraps the exiftool CLI used to embed image comments.
package exiftool

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

// Client invokes exiftool.
type Client struct {
	binary string
	exec   services.Executor
}

// New constructs an exiftool client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("exiftool binary required")
	}
	client := &Client{binary: binary, exec: services.CommandExecutor{}}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SetComment replaces the comment field of path in place.
func (c *Client) SetComment(ctx context.Context, path, comment string) error {
	args := []string{"-overwrite_original", "-Comment=" + comment, path}
	if _, err := c.exec.Output(ctx, c.binary, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "metadata", "exiftool", path, err)
	}
	return nil
}
