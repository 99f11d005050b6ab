package workflow_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"platebundle/internal/airac"
	"platebundle/internal/config"
	"platebundle/internal/ledger"
	"platebundle/internal/logging"
	"platebundle/internal/packager"
	"platebundle/internal/preflight"
	"platebundle/internal/services"
	"platebundle/internal/testsupport"
	"platebundle/internal/transcode"
	"platebundle/internal/workflow"
)

const plateCatalog = `<?xml version="1.0" encoding="UTF-8"?>
<digital_tpp cycle="%s">
  <state_code ID="CA">
    <city_name ID="San Francisco">
      <airport_name ID="San Francisco Intl" military="N" apt_ident="SFO" icao_ident="KSFO">
        <record>
          <chart_code>IAP</chart_code>
          <chart_name>ILS RWY 28L</chart_name>
          <useraction></useraction>
          <pdf_name>SFO_IAP.PDF</pdf_name>
        </record>
        <record>
          <chart_code>IAP</chart_code>
          <chart_name>RNAV (GPS) RWY 28R</chart_name>
          <pdf_name>WITHDRAWN.PDF</pdf_name>
        </record>
      </airport_name>
    </city_name>
  </state_code>
</digital_tpp>`

const supplementIndex = `<?xml version="1.0"?>
<airports>
  <airport>
    <aptid>SFO</aptid>
    <pages><pdf>sw_273_11JUL2024.pdf</pdf></pages>
  </airport>
</airports>`

type fakePublisher struct {
	mu    sync.Mutex
	files []string
}

func (p *fakePublisher) Upload(_ context.Context, cycle string, files ...string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	uris := make([]string, 0, len(files))
	for _, file := range files {
		p.files = append(p.files, file)
		uris = append(uris, "s3://charts/"+cycle+"/"+filepath.Base(file))
	}
	return uris, nil
}

func noPreflight(*config.Config) []preflight.Result { return nil }

func freezeClock(t *testing.T) string {
	t.Helper()
	airac.SetClock(clockwork.NewFakeClockAt(time.Date(2024, time.February, 1, 12, 0, 0, 0, time.UTC)))
	t.Cleanup(func() { airac.SetClock(nil) })
	cycle, _ := airac.Current(0)
	require.NotEmpty(t, cycle)
	return cycle
}

type fixture struct {
	cfg   *config.Config
	store *ledger.Store
	tools *testsupport.FakeTools
}

func newFixture(t *testing.T, cycle string, opts ...testsupport.ConfigOption) fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	work := cfg.Paths.WorkDir
	testsupport.WriteText(t, filepath.Join(work, cfg.Catalog.PlatesMetafile), strings.Replace(plateCatalog, "%s", cycle, 1))
	testsupport.WriteText(t, filepath.Join(work, "sfo_iap.pdf"), "pdf")
	testsupport.WriteText(t, filepath.Join(work, "afd_11JUL2024.xml"), supplementIndex)
	testsupport.WriteText(t, filepath.Join(work, "SW_273_11JUL2024.PDF"), "pdf")
	return fixture{cfg: cfg, store: testsupport.MustOpenLedger(t, cfg), tools: testsupport.NewFakeTools()}
}

func (f fixture) manager(t *testing.T, opts ...workflow.ManagerOption) *workflow.Manager {
	t.Helper()
	tools := transcode.Tools{Converter: f.tools, Geo: f.tools, Commenter: f.tools, Pages: f.tools}
	opts = append([]workflow.ManagerOption{workflow.WithTools(tools), workflow.WithPreflight(noPreflight)}, opts...)
	m, err := workflow.NewManager(f.cfg, f.store, logging.NewNop(), opts...)
	require.NoError(t, err)
	return m
}

func findBundle(bundles []packager.Bundle, name string) (packager.Bundle, bool) {
	for _, b := range bundles {
		if b.Name == name {
			return b, true
		}
	}
	return packager.Bundle{}, false
}

func TestRunPlatesAndPackage(t *testing.T) {
	cycle := freezeClock(t)
	f := newFixture(t, cycle)
	m := f.manager(t)

	report, err := m.Run(context.Background(), workflow.NewStageSet(workflow.StagePlates, workflow.StagePackage))
	require.NoError(t, err)

	plate := filepath.Join(f.cfg.Paths.PlatesDir, "SFO", "IAP-CA-ILS RWY 28L.png")
	_, err = os.Stat(plate)
	require.NoError(t, err, "expected converted plate")
	entries, err := os.ReadDir(filepath.Join(f.cfg.Paths.PlatesDir, "SFO"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	assert.Equal(t, cycle, report.Cycle)
	assert.Equal(t, 1, report.Documents)
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, report.Outputs, 1)
	assert.Equal(t, "plates/SFO/IAP-CA-ILS RWY 28L.png", report.Outputs[0].Path)

	sw, ok := findBundle(report.Bundles, "PLATES_SW")
	require.True(t, ok, "expected PLATES_SW bundle")
	assert.Equal(t, []string{"plates/SFO/IAP-CA-ILS RWY 28L.png"}, sw.Members)
	manifestCycle, listed, err := packager.ReadManifest(sw.Manifest)
	require.NoError(t, err)
	assert.Equal(t, cycle, manifestCycle)
	assert.Equal(t, sw.Members, listed)

	state, ok := findBundle(report.Bundles, "STATE_CA")
	require.True(t, ok)
	assert.Equal(t, sw.Members, state.Members)
	nv, ok := findBundle(report.Bundles, "STATE_NV")
	require.True(t, ok)
	assert.Empty(t, nv.Members)

	run, err := f.store.Run(context.Background(), report.RunID)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, ledger.StatusSucceeded, run.Status)
	assert.Equal(t, "plates,package", run.Stages)

	bundles, err := f.store.Bundles(context.Background(), report.RunID)
	require.NoError(t, err)
	assert.Len(t, bundles, len(report.Bundles))
}

func TestRunSupplements(t *testing.T) {
	cycle := freezeClock(t)
	f := newFixture(t, cycle)
	m := f.manager(t)

	report, err := m.Run(context.Background(), workflow.NewStageSet(workflow.StageSupplements, workflow.StagePackage))
	require.NoError(t, err)

	cs, ok := findBundle(report.Bundles, "CS_SW")
	require.True(t, ok)
	assert.Equal(t, []string{"afd/SFO/CS-SW_0.png"}, cs.Members)
	assert.Equal(t, 1, f.tools.JobCount())
}

func TestRunWorkDirWithGlobMetacharacters(t *testing.T) {
	cycle := freezeClock(t)
	f := newFixture(t, cycle, testsupport.WithWorkDirName("work [2024]"))
	m := f.manager(t)

	report, err := m.Run(context.Background(), workflow.NewStageSet(workflow.StagePlates, workflow.StageSupplements, workflow.StagePackage))
	require.NoError(t, err)

	cs, ok := findBundle(report.Bundles, "CS_SW")
	require.True(t, ok)
	assert.Equal(t, []string{"afd/SFO/CS-SW_0.png"}, cs.Members)
	ca, ok := findBundle(report.Bundles, "STATE_CA")
	require.True(t, ok)
	assert.Equal(t, []string{"plates/SFO/IAP-CA-ILS RWY 28L.png"}, ca.Members)
}

func TestRunAbortsOnToolFailure(t *testing.T) {
	cycle := freezeClock(t)
	f := newFixture(t, cycle)
	f.tools.FailOn = "SFO_IAP.PDF"
	m := f.manager(t)

	report, err := m.Run(context.Background(), workflow.NewStageSet(workflow.StagePlates, workflow.StagePackage))
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrExternalTool)
	assert.Empty(t, report.Bundles, "packaging must not run after a failed conversion")

	run, err := f.store.Run(context.Background(), report.RunID)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, ledger.StatusFailed, run.Status)
	assert.Contains(t, run.ErrorMessage, "SFO")
}

func TestRunPublishesBundles(t *testing.T) {
	cycle := freezeClock(t)
	f := newFixture(t, cycle)
	publisher := &fakePublisher{}
	m := f.manager(t, workflow.WithPublisher(publisher))

	report, err := m.Run(context.Background(), workflow.NewStageSet(workflow.StagePlates, workflow.StagePackage, workflow.StagePublish))
	require.NoError(t, err)
	assert.Len(t, publisher.files, 2*len(report.Bundles))
	assert.Len(t, report.URIs, 2*len(report.Bundles))

	bundles, err := f.store.Bundles(context.Background(), report.RunID)
	require.NoError(t, err)
	for _, b := range bundles {
		assert.Equal(t, "s3://charts/"+cycle+"/"+b.Name+".zip", b.URI)
	}
}

func TestRunPublishRequiresBundles(t *testing.T) {
	cycle := freezeClock(t)
	f := newFixture(t, cycle)
	m := f.manager(t, workflow.WithPublisher(&fakePublisher{}))

	_, err := m.Run(context.Background(), workflow.NewStageSet(workflow.StagePublish))
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestRunWritesMetricsTextfile(t *testing.T) {
	cycle := freezeClock(t)
	f := newFixture(t, cycle)
	f.cfg.Metrics.Textfile = filepath.Join(t.TempDir(), "platebundle.prom")
	m := f.manager(t)

	_, err := m.Run(context.Background(), workflow.NewStageSet(workflow.StagePlates))
	require.NoError(t, err)

	data, err := os.ReadFile(f.cfg.Metrics.Textfile)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `platebundle_documents_converted_total{strategy="plain"} 1`)
	assert.Contains(t, text, `platebundle_documents_skipped_total{reason="source_missing"} 1`)
	assert.Contains(t, text, "platebundle_last_run_success 1")
}

func TestRunFailsPreflight(t *testing.T) {
	cycle := freezeClock(t)
	f := newFixture(t, cycle)
	failing := func(*config.Config) []preflight.Result {
		return []preflight.Result{{Name: "mogrify", Detail: "not found on PATH"}}
	}
	m := f.manager(t, workflow.WithPreflight(failing))

	_, err := m.Run(context.Background(), workflow.NewStageSet(workflow.StagePlates))
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrConfiguration)
	assert.Equal(t, 0, f.tools.JobCount())
}

func TestRunRequiresStages(t *testing.T) {
	freezeClock(t)
	f := newFixture(t, "2401")
	m := f.manager(t)
	_, err := m.Run(context.Background(), workflow.NewStageSet())
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestParseStage(t *testing.T) {
	stage, err := workflow.ParseStage(" Package ")
	require.NoError(t, err)
	assert.Equal(t, workflow.StagePackage, stage)
	_, err = workflow.ParseStage("encode")
	assert.Error(t, err)

	set := workflow.NewStageSet(workflow.StagePublish, workflow.StagePlates)
	assert.Equal(t, "plates,publish", set.String())
	assert.Equal(t, workflow.AllStages()[0], workflow.StagePlates)
}

func TestPackageRestrictedToKind(t *testing.T) {
	cycle := freezeClock(t)
	f := newFixture(t, cycle)
	m := f.manager(t, workflow.WithBundleKinds(packager.KindSupplements))

	report, err := m.Run(context.Background(), workflow.NewStageSet(workflow.StagePackage))
	require.NoError(t, err)
	require.NotEmpty(t, report.Bundles)
	for _, b := range report.Bundles {
		assert.Equal(t, packager.KindSupplements, b.Kind, b.Name)
	}
	assert.Len(t, report.Bundles, 9)
}
