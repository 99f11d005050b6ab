package packager

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zip"

	"platebundle/internal/fileutil"
	"platebundle/internal/logging"
)

// Bundle describes a written archive and manifest.
type Bundle struct {
	Name     string
	Kind     string
	Cycle    string
	Archive  string
	Manifest string
	Members  []string
	SHA256   string
	Size     int64
}

// Packager writes bundles for one cycle.
type Packager struct {
	root       string
	outDir     string
	cycle      string
	cycleStart time.Time
	logger     *slog.Logger
}

// New constructs a Packager. Member paths are recorded relative to root and
// artifacts are written to outDir. cycleStart stamps the manifest member.
func New(root, outDir, cycle string, cycleStart time.Time, logger *slog.Logger) (*Packager, error) {
	if root == "" || outDir == "" {
		return nil, errors.New("packager: root and output directories required")
	}
	if cycle == "" {
		return nil, errors.New("packager: cycle required")
	}
	return &Packager{
		root:       root,
		outDir:     outDir,
		cycle:      cycle,
		cycleStart: cycleStart.UTC(),
		logger:     logging.NewComponentLogger(logger, "packager"),
	}, nil
}

// Paths returns the archive and manifest locations for a bundle name.
func (p *Packager) Paths(name string) (archive, manifest string) {
	return filepath.Join(p.outDir, name+".zip"), filepath.Join(p.outDir, name)
}

// Members enumerates the files selected by spec, relative to the root with
// forward slashes. Patterns are matched inside the root, so metacharacters in
// the root path itself are taken literally.
func (p *Packager) Members(spec Spec) ([]string, error) {
	root := os.DirFS(p.root)
	seen := make(map[string]struct{})
	var members []string
	for _, pattern := range spec.Patterns {
		matches, err := fs.Glob(root, pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, match := range matches {
			info, err := fs.Stat(root, match)
			if err != nil {
				return nil, fmt.Errorf("stat %s: %w", match, err)
			}
			if !info.Mode().IsRegular() {
				continue
			}
			if _, dup := seen[match]; dup {
				continue
			}
			seen[match] = struct{}{}
			members = append(members, match)
		}
	}
	return members, nil
}

// Package rebuilds the archive and manifest for spec from the current file
// set. Both are written to temporary files and renamed into place.
func (p *Packager) Package(ctx context.Context, spec Spec) (Bundle, error) {
	archivePath, manifestPath := p.Paths(spec.Name)
	bundle := Bundle{Name: spec.Name, Kind: spec.Kind, Cycle: p.cycle, Archive: archivePath, Manifest: manifestPath}

	if err := fileutil.RemoveIfExists(archivePath, manifestPath); err != nil {
		return bundle, err
	}
	if err := os.MkdirAll(p.outDir, 0o755); err != nil {
		return bundle, fmt.Errorf("create bundle directory: %w", err)
	}

	members, err := p.Members(spec)
	if err != nil {
		return bundle, err
	}

	archiveTmp, err := os.CreateTemp(p.outDir, "."+spec.Name+"-*.zip")
	if err != nil {
		return bundle, fmt.Errorf("create archive: %w", err)
	}
	manifestTmp, err := os.CreateTemp(p.outDir, "."+spec.Name+"-*.manifest")
	if err != nil {
		archiveTmp.Close()
		os.Remove(archiveTmp.Name())
		return bundle, fmt.Errorf("create manifest: %w", err)
	}
	cleanup := func() {
		archiveTmp.Close()
		manifestTmp.Close()
		os.Remove(archiveTmp.Name())
		os.Remove(manifestTmp.Name())
	}

	if err := p.write(ctx, archiveTmp, manifestTmp, filepath.Base(manifestPath), members); err != nil {
		cleanup()
		return bundle, err
	}
	if err := archiveTmp.Close(); err != nil {
		cleanup()
		return bundle, fmt.Errorf("close archive: %w", err)
	}
	for _, f := range []*os.File{manifestTmp, archiveTmp} {
		if err := os.Chmod(f.Name(), 0o644); err != nil {
			cleanup()
			return bundle, fmt.Errorf("chmod %s: %w", f.Name(), err)
		}
	}
	if err := os.Rename(manifestTmp.Name(), manifestPath); err != nil {
		cleanup()
		return bundle, fmt.Errorf("install manifest: %w", err)
	}
	if err := os.Rename(archiveTmp.Name(), archivePath); err != nil {
		cleanup()
		return bundle, fmt.Errorf("install archive: %w", err)
	}

	bundle.Members = members
	if bundle.SHA256, bundle.Size, err = fileutil.HashFile(archivePath); err != nil {
		return bundle, err
	}
	p.logger.Info("bundle written",
		logging.String("bundle", spec.Name),
		logging.String(logging.FieldCycle, p.cycle),
		logging.Int("members", len(members)),
		logging.Int64("bytes", bundle.Size),
	)
	return bundle, nil
}

// write streams members into the archive and manifest in lockstep, then
// closes the manifest and appends it as the final archive member. The
// manifest file handle is closed on success.
func (p *Packager) write(ctx context.Context, archive io.Writer, manifest *os.File, manifestName string, members []string) error {
	zw := zip.NewWriter(archive)
	mw := bufio.NewWriter(manifest)
	if _, err := fmt.Fprintln(mw, p.cycle); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	for _, member := range members {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := addFile(zw, filepath.Join(p.root, filepath.FromSlash(member)), member, time.Time{}); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(mw, member); err != nil {
			return fmt.Errorf("write manifest: %w", err)
		}
	}
	if err := mw.Flush(); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := manifest.Close(); err != nil {
		return fmt.Errorf("close manifest: %w", err)
	}
	if err := addFile(zw, manifest.Name(), manifestName, p.cycleStart); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}
	return nil
}

// addFile copies src into the archive as name. A zero modified time uses the
// source modification time.
func addFile(zw *zip.Writer, src, name string, modified time.Time) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer f.Close()
	if modified.IsZero() {
		info, err := f.Stat()
		if err != nil {
			return fmt.Errorf("stat %s: %w", src, err)
		}
		modified = info.ModTime()
	}
	header := &zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: modified.UTC().Truncate(time.Second),
	}
	header.SetMode(0o644)
	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("add %s: %w", name, err)
	}
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("add %s: %w", name, err)
	}
	return nil
}

// ReadManifest returns the cycle and member list of a manifest file.
func ReadManifest(path string) (string, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", nil, fmt.Errorf("read manifest: %w", err)
		}
		return "", nil, fmt.Errorf("manifest %s is empty", path)
	}
	cycle := scanner.Text()
	var members []string
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			members = append(members, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", nil, fmt.Errorf("read manifest: %w", err)
	}
	return cycle, members, nil
}
