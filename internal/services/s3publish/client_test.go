package s3publish_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"platebundle/internal/services"
	"platebundle/internal/services/s3publish"
)

type fakeS3 struct {
	keys   []string
	bodies map[string]string
	types  map[string]string
	err    error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	key := aws.ToString(in.Key)
	f.keys = append(f.keys, key)
	f.bodies[key] = string(data)
	f.types[key] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func TestUploadUsesCyclePrefix(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "PLATES_SW.zip")
	manifest := filepath.Join(dir, "PLATES_SW")
	if err := os.WriteFile(zipPath, []byte("zip"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(manifest, []byte("2407\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	api := &fakeS3{bodies: map[string]string{}, types: map[string]string{}}
	pub := s3publish.NewWithAPI("charts", "/bundles/", api)
	uris, err := pub.Upload(context.Background(), "2407", zipPath, manifest)
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if len(uris) != 2 || uris[0] != "s3://charts/bundles/2407/PLATES_SW.zip" {
		t.Fatalf("unexpected uris %v", uris)
	}
	if api.bodies["bundles/2407/PLATES_SW"] != "2407\n" {
		t.Fatalf("unexpected manifest body %q", api.bodies["bundles/2407/PLATES_SW"])
	}
	if api.types["bundles/2407/PLATES_SW.zip"] != "application/zip" {
		t.Fatalf("unexpected content type %q", api.types["bundles/2407/PLATES_SW.zip"])
	}
}

func TestKeyWithoutPrefix(t *testing.T) {
	pub := s3publish.NewWithAPI("charts", "", &fakeS3{})
	if got := pub.Key("2407", "CS_NE.zip"); got != "2407/CS_NE.zip" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestUploadErrors(t *testing.T) {
	pub := s3publish.NewWithAPI("charts", "", &fakeS3{err: errors.New("denied")})
	if _, err := pub.Upload(context.Background(), "2407", filepath.Join(t.TempDir(), "missing.zip")); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "a.zip")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := pub.Upload(context.Background(), "2407", path); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := s3publish.New(context.Background(), s3publish.Settings{}); err == nil {
		t.Fatal("expected error without bucket")
	}
}
