package workflow

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"platebundle/internal/catalog"
	"platebundle/internal/dispatch"
	"platebundle/internal/fileutil"
	"platebundle/internal/ledger"
	"platebundle/internal/logging"
	"platebundle/internal/services"
	"platebundle/internal/transcode"
)

const skipReasonSourceMissing = "source_missing"

func (m *Manager) newTranscoder() (*transcode.Transcoder, error) {
	tags, err := transcode.LoadTags(m.cfg.Catalog.DiagramTags)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "load diagram tags", m.cfg.Catalog.DiagramTags, err)
	}
	return transcode.New(transcode.Config{
		SourceDir:      m.cfg.Paths.WorkDir,
		PlatesDir:      m.cfg.Paths.PlatesDir,
		SupplementsDir: m.cfg.Paths.SupplementsDir,
		Tags:           tags,
	}, *m.tools, m.base)
}

// normalizeSources upper-cases the source file names so they match the
// upper-cased catalog references.
func (m *Manager) normalizeSources(logger *slog.Logger) error {
	renamed, err := fileutil.UppercaseNames(m.cfg.Paths.WorkDir, "*.pdf")
	if err != nil {
		return fmt.Errorf("normalize source names: %w", err)
	}
	if renamed > 0 {
		logger.Info("source names normalized", logging.Int("renamed", renamed))
	}
	return nil
}

func (m *Manager) runPlates(ctx context.Context, state *runState) error {
	logger := logging.WithContext(ctx, m.logger)
	if err := m.normalizeSources(logger); err != nil {
		return err
	}

	path := m.cfg.PlatesMetafilePath()
	cat, err := catalog.ParseFile(path)
	if err != nil {
		marker := services.ErrValidation
		if errors.Is(err, fs.ErrNotExist) {
			marker = services.ErrNotFound
		}
		return services.Wrap(marker, "plates", "parse catalog", path, err)
	}
	if cat.Cycle != "" && cat.Cycle != state.report.Cycle {
		logging.WarnWithContext(logger, "catalog cycle differs from computed cycle", "cycle_mismatch",
			logging.String("catalog_cycle", cat.Cycle),
			logging.String(logging.FieldImpact, "bundles are labelled with the computed cycle"),
		)
	}

	transcoder, err := m.newTranscoder()
	if err != nil {
		return err
	}
	logger.Info("converting plates",
		logging.Int("airports", len(cat.Airports)),
		logging.Int("documents", cat.DocumentCount()),
	)

	results, err := dispatch.Run(ctx, cat.Airports, func(ctx context.Context, airport catalog.Airport) ([]transcode.Result, error) {
		out := make([]transcode.Result, 0, len(airport.Documents))
		for _, doc := range airport.Documents {
			result, err := transcoder.Transcode(ctx, doc)
			if services.IsRecoverable(err) {
				logging.WarnWithContext(logging.WithContext(services.WithAirport(ctx, doc.AirportID), m.logger),
					"chart source missing", skipReasonSourceMissing,
					logging.String("chart", doc.BaseName),
					logging.Error(err),
					logging.String(logging.FieldImpact, "chart omitted from bundle"),
				)
				out = append(out, result)
				continue
			}
			if err != nil {
				return out, fmt.Errorf("%s %s: %w", doc.AirportID, doc.BaseName, err)
			}
			out = append(out, result)
		}
		return out, nil
	}, m.cfg.Pipeline.BatchSize, dispatch.WithBatchHook(m.batchHook(logger)))

	m.record(ctx, state, filepath.Dir(m.cfg.Paths.PlatesDir), results)
	return err
}

func (m *Manager) runSupplements(ctx context.Context, state *runState) error {
	logger := logging.WithContext(ctx, m.logger)
	if err := m.normalizeSources(logger); err != nil {
		return err
	}

	pattern := m.cfg.Catalog.SupplementsGlob
	matches, err := fs.Glob(os.DirFS(m.cfg.Paths.WorkDir), pattern)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "supplements", "glob", pattern, err)
	}
	if len(matches) == 0 {
		logging.WarnWithContext(logger, "no supplement index found", "supplements_missing",
			logging.String("work_dir", m.cfg.Paths.WorkDir),
			logging.String("pattern", pattern),
			logging.String(logging.FieldImpact, "supplement bundles will be empty"),
		)
		return nil
	}

	indexes := make([]string, 0, len(matches))
	for _, match := range matches {
		indexes = append(indexes, filepath.Join(m.cfg.Paths.WorkDir, filepath.FromSlash(match)))
	}
	var supplements []catalog.Supplement
	for _, index := range indexes {
		parsed, err := catalog.ParseSupplementsFile(index)
		if err != nil {
			return services.Wrap(services.ErrValidation, "supplements", "parse index", index, err)
		}
		supplements = append(supplements, parsed...)
	}

	transcoder, err := m.newTranscoder()
	if err != nil {
		return err
	}
	logger.Info("converting supplements",
		logging.Int("indexes", len(indexes)),
		logging.Int("airports", len(supplements)),
	)

	results, err := dispatch.Run(ctx, supplements, func(ctx context.Context, sup catalog.Supplement) ([]transcode.Result, error) {
		result, err := transcoder.TranscodeSupplement(ctx, sup)
		if err != nil {
			return nil, fmt.Errorf("%s supplement: %w", sup.AirportID, err)
		}
		return []transcode.Result{result}, nil
	}, m.cfg.Pipeline.BatchSize, dispatch.WithBatchHook(m.batchHook(logger)))

	m.record(ctx, state, filepath.Dir(m.cfg.Paths.SupplementsDir), results)
	return err
}

func (m *Manager) batchHook(logger *slog.Logger) func(dispatch.Batch) {
	return func(b dispatch.Batch) {
		m.metrics.ObserveBatch(b.Elapsed, b.Err != nil)
		logger.Debug("batch drained",
			logging.Int("batch", b.Index+1),
			logging.Int("size", b.Size),
			logging.Duration("elapsed", b.Elapsed),
			logging.Bool("failed", b.Err != nil),
		)
	}
}

// record folds conversion results into the report, metrics and ledger.
// Output paths are stored relative to root, matching bundle member paths.
func (m *Manager) record(ctx context.Context, state *runState, root string, batches [][]transcode.Result) {
	var outputs []ledger.Output
	for _, results := range batches {
		for _, result := range results {
			if result.Skipped {
				state.report.Skipped++
				m.metrics.DocumentsSkipped.WithLabelValues(skipReasonSourceMissing).Inc()
			}
			if len(result.Outputs) == 0 {
				continue
			}
			state.report.Documents++
			m.metrics.DocumentsConverted.WithLabelValues(string(result.Strategy)).Inc()
			m.metrics.OutputsWritten.Add(float64(len(result.Outputs)))
			for _, path := range result.Outputs {
				rel, err := filepath.Rel(root, path)
				if err != nil {
					rel = path
				}
				outputs = append(outputs, ledger.Output{
					Airport:  result.Airport,
					Source:   result.Source,
					Strategy: string(result.Strategy),
					Path:     filepath.ToSlash(rel),
				})
			}
		}
	}
	state.report.Outputs = append(state.report.Outputs, outputs...)
	if err := m.store.RecordOutputs(context.WithoutCancel(ctx), state.report.RunID, outputs); err != nil {
		logging.WarnWithContext(state.logger, "outputs not recorded", "ledger_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "history omits this run's outputs"),
		)
	}
}
