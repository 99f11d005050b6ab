package testsupport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"platebundle/internal/services"
	"platebundle/internal/services/imagemagick"
)

// WarpedReport is a gdalinfo report for a reprojected 2000x1500 raster.
const WarpedReport = `Driver: GTiff/GeoTIFF
Size is 2000, 1500
Coordinate System is:
PROJCRS["WGS 84 / Pseudo-Mercator",
    BASEGEOGCRS["WGS 84"]]
Corner Coordinates:
Upper Left  (-13650000.000, 4570000.000) (122d37'12.00"W, 37d52'30.00"N)
Lower Right (-13610000.000, 4540000.000) (122d15'36.00"W, 37d39'45.00"N)
`

// FakeTools implements every tool boundary the transcoder uses. Conversions
// write a small placeholder file so downstream packaging sees real files.
// It is safe for concurrent use.
type FakeTools struct {
	mu sync.Mutex
	// Georeferenced lists source base names that probe as projected.
	Georeferenced map[string]bool
	// Pages maps a source base name to its page texts.
	Pages map[string][]string
	// FailOn makes any conversion of a source with this base name fail.
	FailOn string

	Jobs     []imagemagick.Job
	Comments map[string]string
	Warped   []string
}

// NewFakeTools returns an empty fake toolchain.
func NewFakeTools() *FakeTools {
	return &FakeTools{
		Georeferenced: map[string]bool{},
		Pages:         map[string][]string{},
		Comments:      map[string]string{},
	}
}

func (f *FakeTools) Convert(_ context.Context, job imagemagick.Job) error {
	f.mu.Lock()
	f.Jobs = append(f.Jobs, job)
	fail := f.FailOn != "" && filepath.Base(job.Source) == f.FailOn
	f.mu.Unlock()
	if fail {
		return services.Wrap(services.ErrExternalTool, "convert", "mogrify", job.Source, errors.New("exit status 1"))
	}
	content := fmt.Sprintf("png:%s:%d", filepath.Base(job.Source), job.Page)
	return os.WriteFile(job.Output, []byte(content), 0o644)
}

func (f *FakeTools) IsGeoreferenced(_ context.Context, path string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Georeferenced[filepath.Base(path)], nil
}

func (f *FakeTools) Warp(_ context.Context, src, dst string) error {
	f.mu.Lock()
	f.Warped = append(f.Warped, filepath.Base(src))
	f.mu.Unlock()
	return os.WriteFile(dst, []byte("tif"), 0o644)
}

func (f *FakeTools) Info(_ context.Context, path string) (string, error) {
	if !strings.HasSuffix(path, ".tif") {
		return "", errors.New("info requested for unwarped source")
	}
	return WarpedReport, nil
}

func (f *FakeTools) SetComment(_ context.Context, path, comment string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Comments[path] = comment
	return nil
}

func (f *FakeTools) PageTexts(_ context.Context, path string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Pages[filepath.Base(path)], nil
}

// JobCount returns the number of conversions requested so far.
func (f *FakeTools) JobCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Jobs)
}
