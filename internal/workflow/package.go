package workflow

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"platebundle/internal/ledger"
	"platebundle/internal/logging"
	"platebundle/internal/packager"
	"platebundle/internal/services"
)

type bundleFamily struct {
	kind  string
	root  string
	specs []packager.Spec
}

// bundleFamilies lays out the plates and supplements bundle plans. Member
// paths are relative to the parent of each output directory.
func (m *Manager) bundleFamilies() []bundleFamily {
	plates := m.cfg.Paths.PlatesDir
	supplements := m.cfg.Paths.SupplementsDir
	families := []bundleFamily{
		{kind: packager.KindPlates, root: filepath.Dir(plates), specs: packager.PlateSpecs(filepath.Base(plates))},
		{kind: packager.KindSupplements, root: filepath.Dir(supplements), specs: packager.SupplementSpecs(filepath.Base(supplements))},
	}
	if len(m.bundleKinds) == 0 {
		return families
	}
	selected := families[:0]
	for _, family := range families {
		if m.bundleKinds[family.kind] {
			selected = append(selected, family)
		}
	}
	return selected
}

func (m *Manager) runPackage(ctx context.Context, state *runState) error {
	return m.packageFamilies(ctx, state, m.bundleFamilies())
}

func (m *Manager) packageFamilies(ctx context.Context, state *runState, families []bundleFamily) error {
	logger := logging.WithContext(ctx, m.logger)
	for _, family := range families {
		p, err := packager.New(family.root, m.cfg.Paths.BundleDir, state.report.Cycle, state.cycleStart, m.base)
		if err != nil {
			return err
		}
		for _, spec := range family.specs {
			if err := ctx.Err(); err != nil {
				return err
			}
			bundle, err := p.Package(ctx, spec)
			if err != nil {
				return fmt.Errorf("bundle %s: %w", spec.Name, err)
			}
			state.report.Bundles = append(state.report.Bundles, bundle)
			m.metrics.BundlesWritten.WithLabelValues(spec.Kind).Inc()
			m.metrics.BundleMembers.WithLabelValues(spec.Kind).Observe(float64(len(bundle.Members)))
			m.metrics.BundleBytes.WithLabelValues(spec.Name).Set(float64(bundle.Size))
			if err := m.store.RecordBundle(ctx, state.report.RunID, ledger.Bundle{
				Name:    bundle.Name,
				Kind:    bundle.Kind,
				Archive: bundle.Archive,
				Members: len(bundle.Members),
				SHA256:  bundle.SHA256,
				Size:    bundle.Size,
			}); err != nil {
				logging.WarnWithContext(logger, "bundle not recorded", "ledger_write_failed",
					logging.String("bundle", bundle.Name),
					logging.Error(err),
					logging.String(logging.FieldImpact, "history omits this bundle"),
				)
			}
		}
	}
	logger.Info("bundles written", logging.Int("bundles", len(state.report.Bundles)))
	return nil
}

func (m *Manager) runPublish(ctx context.Context, state *runState) error {
	logger := logging.WithContext(ctx, m.logger)
	if m.publisher == nil {
		logger.Info("publishing disabled")
		return nil
	}
	if len(state.report.Bundles) == 0 {
		return services.Wrap(services.ErrValidation, "publish", "upload", "no bundles built in this run", errors.New("package stage required"))
	}
	for _, bundle := range state.report.Bundles {
		uris, err := m.publisher.Upload(ctx, state.report.Cycle, bundle.Archive, bundle.Manifest)
		if err != nil {
			return services.Wrap(services.ErrExternalTool, "publish", "upload", bundle.Name, err)
		}
		state.report.URIs = append(state.report.URIs, uris...)
		if len(uris) > 0 {
			if err := m.store.SetBundleURI(ctx, state.report.RunID, bundle.Name, uris[0]); err != nil {
				logging.WarnWithContext(logger, "bundle uri not recorded", "ledger_write_failed",
					logging.String("bundle", bundle.Name),
					logging.Error(err),
					logging.String(logging.FieldImpact, "history omits the published location"),
				)
			}
		}
	}
	logger.Info("bundles published",
		logging.Int("bundles", len(state.report.Bundles)),
		logging.Int("objects", len(state.report.URIs)),
	)
	return nil
}
