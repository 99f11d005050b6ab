// Package imagemagick wraps the mogrify CLI used to rasterise chart sources.
package imagemagick

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"platebundle/internal/services"
)

// WholeDocument selects every page of the source instead of a single page.
const WholeDocument = -1

// Settings holds the fixed rasterisation template.
type Settings struct {
	Density int
	Colors  int
	Quality int
}

// DefaultSettings matches the template the published bundles are built with.
func DefaultSettings() Settings {
	return Settings{Density: 225, Colors: 15, Quality: 100}
}

// Job describes one conversion.
type Job struct {
	Source string
	Output string
	// Page is the 0-based page to extract, or WholeDocument.
	Page int
	// Trim crops the white border. Geo-referenced rasters must not be trimmed.
	Trim bool
}

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

// Client invokes mogrify.
type Client struct {
	binary   string
	settings Settings
	exec     services.Executor
}

// New constructs a mogrify client.
func New(binary string, settings Settings, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("mogrify binary required")
	}
	if settings.Density <= 0 || settings.Colors <= 0 || settings.Quality <= 0 {
		return nil, fmt.Errorf("invalid conversion settings %+v", settings)
	}
	client := &Client{
		binary:   binary,
		settings: settings,
		exec:     services.CommandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Convert rasterises job.Source into a PNG at job.Output.
func (c *Client) Convert(ctx context.Context, job Job) error {
	if job.Source == "" || job.Output == "" {
		return services.Wrap(services.ErrValidation, "convert", "mogrify", "source and output required", nil)
	}
	if _, err := c.exec.Output(ctx, c.binary, c.Args(job)...); err != nil {
		return services.Wrap(services.ErrExternalTool, "convert", "mogrify", job.Source, err)
	}
	return nil
}

// Args builds the mogrify argument list for job.
func (c *Client) Args(job Job) []string {
	args := make([]string, 0, 28)
	if job.Trim {
		args = append(args, "-trim", "+repage")
	}
	args = append(args,
		"-dither", "none",
		"-antialias",
		"-density", strconv.Itoa(c.settings.Density),
		"-depth", "8",
		"-background", "white",
		"-alpha", "remove",
		"-alpha", "off",
		"-colors", strconv.Itoa(c.settings.Colors),
		"-format", "png",
		"-quality", strconv.Itoa(c.settings.Quality),
		"-write", job.Output,
	)
	input := job.Source
	if job.Page >= 0 {
		input = fmt.Sprintf("%s[%d]", job.Source, job.Page)
	}
	return append(args, input)
}
