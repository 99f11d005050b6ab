// Package fileutil holds small filesystem helpers shared by the pipeline.
package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// UppercaseNames renames every file in dir matching pattern to its upper-case
// name and returns the number renamed. pattern is matched case-insensitively
// against the base name, so "*.pdf" also selects "Sfo_Iap.Pdf".
func UppercaseNames(dir, pattern string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", dir, err)
	}
	pattern = strings.ToUpper(pattern)
	renamed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		upper := strings.ToUpper(name)
		if upper == name {
			continue
		}
		ok, err := filepath.Match(pattern, upper)
		if err != nil {
			return renamed, fmt.Errorf("match %q: %w", pattern, err)
		}
		if !ok {
			continue
		}
		if err := os.Rename(filepath.Join(dir, name), filepath.Join(dir, upper)); err != nil {
			return renamed, fmt.Errorf("rename %s: %w", name, err)
		}
		renamed++
	}
	return renamed, nil
}

// RemoveIfExists deletes each path. Paths that do not exist are ignored.
func RemoveIfExists(paths ...string) error {
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", path, err)
		}
	}
	return nil
}

// Exists reports whether path names an existing regular file.
func Exists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// HashFile returns the hex SHA-256 digest and size of the file at path.
func HashFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}
