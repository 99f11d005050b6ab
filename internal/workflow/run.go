package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"platebundle/internal/airac"
	"platebundle/internal/ledger"
	"platebundle/internal/logging"
	"platebundle/internal/packager"
	"platebundle/internal/preflight"
	"platebundle/internal/services"
)

// Report summarises a finished run.
type Report struct {
	RunID     string
	Cycle     string
	Effective string
	Stages    StageSet
	Documents int
	Skipped   int
	Outputs   []ledger.Output
	Bundles   []packager.Bundle
	URIs      []string
	Elapsed   time.Duration
}

// runState carries per-run values between stages.
type runState struct {
	report     *Report
	cycleStart time.Time
	logger     *slog.Logger
}

// Run executes the selected stages for the configured cycle. The returned
// report is populated as far as the run progressed, even on error.
func (m *Manager) Run(ctx context.Context, stages StageSet) (*Report, error) {
	if len(stages.Ordered()) == 0 {
		return nil, services.Wrap(services.ErrValidation, "workflow", "run", "no stages selected", nil)
	}

	cycle, effective := airac.Current(m.cfg.Cycle.Offset)
	if cycle == "" {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "resolve cycle",
			fmt.Sprintf("no cycle anchor for offset %d", m.cfg.Cycle.Offset), nil)
	}
	cycleStart, ok := airac.StartOf(cycle)
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "resolve cycle",
			fmt.Sprintf("no start date for cycle %s", cycle), nil)
	}

	report := &Report{
		RunID:     uuid.NewString(),
		Cycle:     cycle,
		Effective: effective,
		Stages:    stages,
	}
	ctx = services.WithRunID(ctx, report.RunID)
	ctx = services.WithCycle(ctx, cycle)
	state := &runState{
		report:     report,
		cycleStart: cycleStart,
		logger:     logging.WithContext(ctx, m.logger),
	}

	if err := m.cfg.EnsureDirectories(); err != nil {
		return report, services.Wrap(services.ErrConfiguration, "workflow", "prepare directories", "", err)
	}
	if err := m.runPreflightChecks(state.logger); err != nil {
		return report, err
	}

	started := airac.Now()
	if err := m.store.StartRun(ctx, ledger.Run{
		ID:        report.RunID,
		Cycle:     cycle,
		Effective: effective,
		Stages:    stages.String(),
		StartedAt: started,
	}); err != nil {
		return report, fmt.Errorf("record run start: %w", err)
	}
	state.logger.Info("run started",
		logging.String("effective", effective),
		logging.String("stages", stages.String()),
		logging.String(logging.FieldEventType, "run_started"),
	)

	runErr := m.runStages(ctx, state)

	finished := airac.Now()
	report.Elapsed = finished.Sub(started)
	m.finish(ctx, state, finished, runErr)
	return report, runErr
}

func (m *Manager) runStages(ctx context.Context, state *runState) error {
	for _, stage := range state.report.Stages.Ordered() {
		if err := ctx.Err(); err != nil {
			return err
		}
		stageCtx := services.WithStage(ctx, string(stage))
		var err error
		switch stage {
		case StagePlates:
			err = m.runPlates(stageCtx, state)
		case StageSupplements:
			err = m.runSupplements(stageCtx, state)
		case StagePackage:
			err = m.runPackage(stageCtx, state)
		case StagePublish:
			err = m.runPublish(stageCtx, state)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", stage, err)
		}
	}
	return nil
}

// finish records the outcome in the ledger and metrics. Failures here are
// logged rather than returned so they never mask the run error.
func (m *Manager) finish(ctx context.Context, state *runState, finished time.Time, runErr error) {
	report := state.report
	m.metrics.ObserveRun(finished, report.Elapsed, runErr == nil)
	if err := m.metrics.WriteTextfile(m.cfg.Metrics.Textfile); err != nil {
		logging.WarnWithContext(state.logger, "metrics textfile not written", "metrics_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "metrics for this run are unavailable"),
		)
	}
	// The run context may already be cancelled; the ledger write must still land.
	recordCtx := context.WithoutCancel(ctx)
	if err := m.store.FinishRun(recordCtx, report.RunID, finished, report.Documents, report.Skipped, runErr); err != nil {
		logging.WarnWithContext(state.logger, "run outcome not recorded", "ledger_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "history shows this run as running"),
		)
	}
	if runErr != nil {
		state.logger.Error("run failed",
			logging.Error(runErr),
			logging.Duration("elapsed", report.Elapsed),
			logging.String(logging.FieldEventType, "run_failed"),
		)
		return
	}
	state.logger.Info("run completed",
		logging.Int("documents", report.Documents),
		logging.Int("skipped", report.Skipped),
		logging.Int("bundles", len(report.Bundles)),
		logging.Duration("elapsed", report.Elapsed),
		logging.String(logging.FieldEventType, "run_completed"),
	)
}

// runPreflightChecks validates tools and directories before any work starts.
func (m *Manager) runPreflightChecks(logger *slog.Logger) error {
	if m.preflight == nil {
		return nil
	}
	results := m.preflight(m.cfg)
	for _, r := range results {
		if r.Passed {
			logger.Debug("preflight check passed",
				logging.String("check", r.Name),
				logging.String("detail", r.Detail),
			)
		}
	}
	failed := preflight.Failed(results)
	if len(failed) == 0 {
		return nil
	}
	failures := make([]string, 0, len(failed))
	for _, r := range failed {
		logger.Error("preflight check failed",
			logging.String("check", r.Name),
			logging.String("detail", r.Detail),
			logging.String(logging.FieldEventType, "preflight_failed"),
		)
		failures = append(failures, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	return services.Wrap(services.ErrConfiguration, "workflow", "preflight",
		strings.Join(failures, "; "), errors.New("preflight checks failed"))
}
