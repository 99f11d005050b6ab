// Package gdal wraps the gdalinfo and gdalwarp CLIs used on the
// geo-referenced chart path.
package gdal

import (
	"context"
	"errors"
	"strings"

	"platebundle/internal/services"
)

// Defaults for the reprojection step.
const (
	DefaultTargetSRS  = "EPSG:3857"
	DefaultResampling = "lanczos"
)

// projectionMarkers appear in gdalinfo output only when the source carries a
// projected coordinate reference system (WKT2 and WKT1 spellings).
var projectionMarkers = []string{"PROJCRS[", "PROJCS["}

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

// WithProjection overrides the warp target and resampling kernel.
func WithProjection(targetSRS, resampling string) Option {
	return func(c *Client) {
		if s := strings.TrimSpace(targetSRS); s != "" {
			c.targetSRS = s
		}
		if r := strings.TrimSpace(resampling); r != "" {
			c.resampling = r
		}
	}
}

// Client invokes the GDAL utilities.
type Client struct {
	infoBinary string
	warpBinary string
	targetSRS  string
	resampling string
	exec       services.Executor
}

// New constructs a GDAL client.
func New(infoBinary, warpBinary string, opts ...Option) (*Client, error) {
	infoBinary = strings.TrimSpace(infoBinary)
	warpBinary = strings.TrimSpace(warpBinary)
	if infoBinary == "" || warpBinary == "" {
		return nil, errors.New("gdalinfo and gdalwarp binaries required")
	}
	client := &Client{
		infoBinary: infoBinary,
		warpBinary: warpBinary,
		targetSRS:  DefaultTargetSRS,
		resampling: DefaultResampling,
		exec:       services.CommandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Info returns the raw gdalinfo report for path.
func (c *Client) Info(ctx context.Context, path string) (string, error) {
	out, err := c.exec.Output(ctx, c.infoBinary, path)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "geo", "gdalinfo", path, err)
	}
	return string(out), nil
}

// IsGeoreferenced probes path for a projected coordinate reference system.
func (c *Client) IsGeoreferenced(ctx context.Context, path string) (bool, error) {
	report, err := c.Info(ctx, path)
	if err != nil {
		return false, err
	}
	return HasProjection(report), nil
}

// Warp reprojects src into a GeoTIFF at dst, replacing any existing file.
func (c *Client) Warp(ctx context.Context, src, dst string) error {
	args := []string{"-overwrite", "-t_srs", c.targetSRS, "-r", c.resampling, src, dst}
	if _, err := c.exec.Output(ctx, c.warpBinary, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "geo", "gdalwarp", src, err)
	}
	return nil
}

// HasProjection reports whether a gdalinfo report names a projected CRS.
func HasProjection(report string) bool {
	for _, marker := range projectionMarkers {
		if strings.Contains(report, marker) {
			return true
		}
	}
	return false
}
