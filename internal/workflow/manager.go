package workflow

import (
	"context"
	"errors"
	"log/slog"

	"platebundle/internal/config"
	"platebundle/internal/ledger"
	"platebundle/internal/logging"
	"platebundle/internal/observability"
	"platebundle/internal/preflight"
	"platebundle/internal/services"
	"platebundle/internal/services/exiftool"
	"platebundle/internal/services/gdal"
	"platebundle/internal/services/imagemagick"
	"platebundle/internal/services/poppler"
	"platebundle/internal/services/s3publish"
	"platebundle/internal/transcode"
)

// Publisher uploads finished bundle files for a cycle and returns their URIs.
type Publisher interface {
	Upload(ctx context.Context, cycle string, files ...string) ([]string, error)
}

// Manager executes pipeline runs.
type Manager struct {
	cfg       *config.Config
	store     *ledger.Store
	base      *slog.Logger
	logger    *slog.Logger
	metrics   *observability.Metrics
	tools     *transcode.Tools
	publisher Publisher
	preflight func(*config.Config) []preflight.Result
	// bundleKinds limits the package stage; empty packages every kind.
	bundleKinds map[string]bool
}

// ManagerOption configures optional Manager behavior.
type ManagerOption func(*Manager)

// WithTools replaces the external tool clients (used in tests).
func WithTools(tools transcode.Tools) ManagerOption {
	return func(m *Manager) {
		m.tools = &tools
	}
}

// WithPublisher replaces the S3 publisher.
func WithPublisher(p Publisher) ManagerOption {
	return func(m *Manager) {
		m.publisher = p
	}
}

// WithMetrics shares a metrics set with the caller.
func WithMetrics(metrics *observability.Metrics) ManagerOption {
	return func(m *Manager) {
		if metrics != nil {
			m.metrics = metrics
		}
	}
}

// WithBundleKinds restricts the package stage to the given bundle kinds.
func WithBundleKinds(kinds ...string) ManagerOption {
	return func(m *Manager) {
		if len(kinds) == 0 {
			m.bundleKinds = nil
			return
		}
		m.bundleKinds = make(map[string]bool, len(kinds))
		for _, kind := range kinds {
			m.bundleKinds[kind] = true
		}
	}
}

// WithPreflight replaces the readiness checks.
func WithPreflight(fn func(*config.Config) []preflight.Result) ManagerOption {
	return func(m *Manager) {
		m.preflight = fn
	}
}

// NewManager constructs a Manager. The ledger is required; the tool clients
// are built from cfg unless WithTools is given.
func NewManager(cfg *config.Config, store *ledger.Store, logger *slog.Logger, opts ...ManagerOption) (*Manager, error) {
	if cfg == nil {
		return nil, errors.New("workflow: config required")
	}
	if store == nil {
		return nil, errors.New("workflow: ledger required")
	}
	m := &Manager{
		cfg:       cfg,
		store:     store,
		base:      logger,
		logger:    logging.NewComponentLogger(logger, "workflow"),
		metrics:   observability.NewMetrics(),
		preflight: preflight.RunAll,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.tools == nil {
		tools, err := BuildTools(cfg)
		if err != nil {
			return nil, err
		}
		m.tools = &tools
	}
	return m, nil
}

// Metrics exposes the metrics the manager records into.
func (m *Manager) Metrics() *observability.Metrics {
	return m.metrics
}

// BuildTools constructs the external tool clients from configuration.
func BuildTools(cfg *config.Config) (transcode.Tools, error) {
	exec := services.CommandExecutor{Timeout: cfg.ToolTimeout()}
	settings := imagemagick.Settings{
		Density: cfg.Conversion.Density,
		Colors:  cfg.Conversion.Colors,
		Quality: cfg.Conversion.Quality,
	}
	converter, err := imagemagick.New(cfg.Tools.Mogrify, settings, imagemagick.WithExecutor(exec))
	if err != nil {
		return transcode.Tools{}, services.Wrap(services.ErrConfiguration, "workflow", "build tools", "mogrify", err)
	}
	geo, err := gdal.New(cfg.Tools.GDALInfo, cfg.Tools.GDALWarp,
		gdal.WithExecutor(exec),
		gdal.WithProjection(cfg.Conversion.TargetSRS, cfg.Conversion.Resampling),
	)
	if err != nil {
		return transcode.Tools{}, services.Wrap(services.ErrConfiguration, "workflow", "build tools", "gdal", err)
	}
	commenter, err := exiftool.New(cfg.Tools.ExifTool, exiftool.WithExecutor(exec))
	if err != nil {
		return transcode.Tools{}, services.Wrap(services.ErrConfiguration, "workflow", "build tools", "exiftool", err)
	}
	pages, err := poppler.New(cfg.Tools.PDFToText, poppler.WithExecutor(exec))
	if err != nil {
		return transcode.Tools{}, services.Wrap(services.ErrConfiguration, "workflow", "build tools", "pdftotext", err)
	}
	return transcode.Tools{Converter: converter, Geo: geo, Commenter: commenter, Pages: pages}, nil
}

// NewPublisher builds the configured S3 publisher, or nil when publishing is
// disabled.
func NewPublisher(ctx context.Context, cfg *config.Config) (Publisher, error) {
	if !cfg.Publish.Enabled {
		return nil, nil
	}
	publisher, err := s3publish.New(ctx, s3publish.Settings{
		Bucket:          cfg.Publish.Bucket,
		Prefix:          cfg.Publish.Prefix,
		Region:          cfg.Publish.Region,
		Endpoint:        cfg.Publish.Endpoint,
		AccessKeyID:     cfg.Publish.AccessKeyID,
		SecretAccessKey: cfg.Publish.SecretAccessKey,
	})
	if err != nil {
		return nil, err
	}
	return publisher, nil
}
