package transcode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"platebundle/internal/catalog"
	"platebundle/internal/fileutil"
	"platebundle/internal/geo"
	"platebundle/internal/logging"
	"platebundle/internal/services"
	"platebundle/internal/services/imagemagick"
)

// Converter rasterises a source into a PNG.
type Converter interface {
	Convert(ctx context.Context, job imagemagick.Job) error
}

// GeoReferencer probes, reprojects and describes geo-referenced rasters.
type GeoReferencer interface {
	IsGeoreferenced(ctx context.Context, path string) (bool, error)
	Warp(ctx context.Context, src, dst string) error
	Info(ctx context.Context, path string) (string, error)
}

// Commenter embeds a comment into an image in place.
type Commenter interface {
	SetComment(ctx context.Context, path, comment string) error
}

// PageReader extracts per-page text from a PDF.
type PageReader interface {
	PageTexts(ctx context.Context, path string) ([]string, error)
}

// Tools bundles the external tool boundaries.
type Tools struct {
	Converter Converter
	Geo       GeoReferencer
	Commenter Commenter
	Pages     PageReader
}

// Config locates inputs and outputs.
type Config struct {
	SourceDir      string
	PlatesDir      string
	SupplementsDir string
	Tags           Tags
}

// Result describes what happened to one document.
type Result struct {
	Source   string
	Airport  string
	Strategy Strategy
	Outputs  []string
	// Skipped is set when the source file was absent.
	Skipped bool
}

// Transcoder converts catalog documents into images.
type Transcoder struct {
	cfg    Config
	tools  Tools
	logger *slog.Logger
}

// New constructs a Transcoder. Every tool is required.
func New(cfg Config, tools Tools, logger *slog.Logger) (*Transcoder, error) {
	if tools.Converter == nil || tools.Geo == nil || tools.Commenter == nil || tools.Pages == nil {
		return nil, errors.New("transcode: converter, geo, commenter and page reader required")
	}
	if cfg.SourceDir == "" || cfg.PlatesDir == "" || cfg.SupplementsDir == "" {
		return nil, errors.New("transcode: source, plates and supplements directories required")
	}
	return &Transcoder{
		cfg:    cfg,
		tools:  tools,
		logger: logging.NewComponentLogger(logger, "transcode"),
	}, nil
}

// Transcode converts one chart document. A missing source yields a skipped
// result together with an ErrNotFound error so callers can carry on.
func (t *Transcoder) Transcode(ctx context.Context, doc catalog.ChartDocument) (Result, error) {
	ctx = services.WithAirport(ctx, doc.AirportID)
	logger := logging.WithContext(ctx, t.logger)
	result := Result{Source: doc.Source, Airport: doc.AirportID}

	src := filepath.Join(t.cfg.SourceDir, doc.Source)
	present, err := fileutil.Exists(src)
	if err != nil {
		return result, fmt.Errorf("stat source %s: %w", src, err)
	}
	if !present {
		result.Skipped = true
		return result, services.Wrap(services.ErrNotFound, "transcode", "locate source", doc.Source, nil)
	}

	airportDir := filepath.Join(t.cfg.PlatesDir, doc.AirportID)
	if err := os.MkdirAll(airportDir, 0o755); err != nil {
		return result, fmt.Errorf("create airport directory: %w", err)
	}

	georeferenced, err := t.tools.Geo.IsGeoreferenced(ctx, src)
	if err != nil {
		return result, err
	}
	if georeferenced {
		result.Strategy = StrategyGeo
		result.Outputs, err = t.transcodeGeo(ctx, src, airportDir, doc.BaseName)
	} else {
		result.Strategy = Classify(doc.BaseName)
		switch result.Strategy {
		case StrategyDiagram:
			result.Outputs, err = t.transcodeDiagram(ctx, src, airportDir, doc)
		case StrategyMinimums:
			result.Outputs, err = t.transcodeMinimums(ctx, src, airportDir, doc)
		default:
			result.Outputs, err = t.convertWhole(ctx, src, airportDir, doc.BaseName)
		}
	}
	if err != nil {
		return result, err
	}
	logger.Debug("chart converted",
		logging.String("chart", doc.BaseName),
		logging.String("strategy", string(result.Strategy)),
		logging.Int("outputs", len(result.Outputs)),
	)
	return result, nil
}

func (t *Transcoder) convertWhole(ctx context.Context, src, dir, base string) ([]string, error) {
	out := filepath.Join(dir, base+".png")
	job := imagemagick.Job{Source: src, Output: out, Page: imagemagick.WholeDocument, Trim: true}
	if err := t.tools.Converter.Convert(ctx, job); err != nil {
		return nil, err
	}
	return []string{out}, nil
}

func (t *Transcoder) transcodeDiagram(ctx context.Context, src, dir string, doc catalog.ChartDocument) ([]string, error) {
	outputs, err := t.convertWhole(ctx, src, dir, doc.BaseName)
	if err != nil {
		return nil, err
	}
	if err := t.tools.Commenter.SetComment(ctx, outputs[0], t.cfg.Tags.Lookup(doc.AirportID)); err != nil {
		return nil, err
	}
	return outputs, nil
}

// transcodeMinimums converts only the pages naming the airport. Documents
// without a page-local marker (radar minimums) convert whole.
func (t *Transcoder) transcodeMinimums(ctx context.Context, src, dir string, doc catalog.ChartDocument) ([]string, error) {
	pages, err := t.tools.Pages.PageTexts(ctx, src)
	if err != nil {
		return nil, err
	}
	matched := MatchingPages(pages, doc.AirportID)
	if len(matched) == 0 {
		return t.convertWhole(ctx, src, dir, doc.BaseName)
	}
	outputs := make([]string, 0, len(matched))
	for n, page := range matched {
		out := filepath.Join(dir, fmt.Sprintf("%s-%d.png", doc.BaseName, n))
		job := imagemagick.Job{Source: src, Output: out, Page: page, Trim: true}
		if err := t.tools.Converter.Convert(ctx, job); err != nil {
			return nil, err
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}

// transcodeGeo reprojects src, calibrates the warped raster and converts it
// without trimming so pixel coordinates stay aligned with the calibration.
func (t *Transcoder) transcodeGeo(ctx context.Context, src, dir, base string) ([]string, error) {
	warped := filepath.Join(dir, base+".tif")
	defer func() {
		if err := fileutil.RemoveIfExists(warped); err != nil {
			t.logger.Warn("remove intermediate raster failed", logging.String("path", warped), logging.Error(err))
		}
	}()

	if err := t.tools.Geo.Warp(ctx, src, warped); err != nil {
		return nil, err
	}
	report, err := t.tools.Geo.Info(ctx, warped)
	if err != nil {
		return nil, err
	}
	calibration, err := geo.CalibrateReport(report)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "geo", "calibrate", base, err)
	}

	out := filepath.Join(dir, base+".png")
	job := imagemagick.Job{Source: warped, Output: out, Page: imagemagick.WholeDocument}
	if err := t.tools.Converter.Convert(ctx, job); err != nil {
		return nil, err
	}
	if err := t.tools.Commenter.SetComment(ctx, out, calibration.Comment()); err != nil {
		return nil, err
	}
	return []string{out}, nil
}

// TranscodeSupplement converts each chart supplement page of an airport to
// CS-<REGION>_<n>.png, n being the page's position in the index.
func (t *Transcoder) TranscodeSupplement(ctx context.Context, sup catalog.Supplement) (Result, error) {
	ctx = services.WithAirport(ctx, sup.AirportID)
	logger := logging.WithContext(ctx, t.logger)
	result := Result{Airport: sup.AirportID, Strategy: StrategySupplement}

	dir := filepath.Join(t.cfg.SupplementsDir, sup.AirportID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return result, fmt.Errorf("create airport directory: %w", err)
	}
	for n, source := range sup.Sources {
		source = strings.ToUpper(source)
		src := filepath.Join(t.cfg.SourceDir, source)
		present, err := fileutil.Exists(src)
		if err != nil {
			return result, fmt.Errorf("stat source %s: %w", src, err)
		}
		if !present {
			logging.WarnWithContext(logger, "supplement source missing", "source_missing",
				logging.String("source", source),
				logging.String(logging.FieldImpact, "supplement page omitted from bundle"),
			)
			result.Skipped = true
			continue
		}
		out := filepath.Join(dir, fmt.Sprintf("%s_%d.png", supplementBase(source), n))
		job := imagemagick.Job{Source: src, Output: out, Page: imagemagick.WholeDocument, Trim: true}
		if err := t.tools.Converter.Convert(ctx, job); err != nil {
			return result, err
		}
		result.Outputs = append(result.Outputs, out)
	}
	return result, nil
}
