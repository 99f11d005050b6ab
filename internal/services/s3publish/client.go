// Package s3publish uploads finished bundles to an S3-compatible bucket.
package s3publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"platebundle/internal/services"
)

// Settings configures the destination bucket.
type Settings struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// ObjectPutter is the subset of the S3 API the publisher needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Publisher uploads bundle files under <prefix>/<cycle>/<name>.
type Publisher struct {
	bucket string
	prefix string
	api    ObjectPutter
}

// New builds a publisher backed by the AWS SDK. Static credentials are used
// when both keys are set, otherwise the default credential chain applies.
// A custom endpoint switches to path-style addressing for MinIO and friends.
func New(ctx context.Context, settings Settings) (*Publisher, error) {
	if strings.TrimSpace(settings.Bucket) == "" {
		return nil, errors.New("publish bucket required")
	}
	region := settings.Region
	if region == "" {
		region = "us-east-1"
	}
	loaders := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if settings.AccessKeyID != "" && settings.SecretAccessKey != "" {
		loaders = append(loaders, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			settings.AccessKeyID,
			settings.SecretAccessKey,
			"",
		)))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "publish", "load aws config", "", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if settings.Endpoint != "" {
			o.BaseEndpoint = aws.String(settings.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewWithAPI(settings.Bucket, settings.Prefix, client), nil
}

// NewWithAPI builds a publisher around an existing client (primarily for tests).
func NewWithAPI(bucket, prefix string, api ObjectPutter) *Publisher {
	return &Publisher{
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		api:    api,
	}
}

// Key returns the object key for a file published under cycle.
func (p *Publisher) Key(cycle, name string) string {
	if p.prefix == "" {
		return path.Join(cycle, name)
	}
	return path.Join(p.prefix, cycle, name)
}

// Upload puts each file and returns the resulting s3:// URIs in order.
func (p *Publisher) Upload(ctx context.Context, cycle string, files ...string) ([]string, error) {
	uris := make([]string, 0, len(files))
	for _, file := range files {
		key := p.Key(cycle, filepath.Base(file))
		if err := p.put(ctx, file, key); err != nil {
			return uris, err
		}
		uris = append(uris, fmt.Sprintf("s3://%s/%s", p.bucket, key))
	}
	return uris, nil
}

func (p *Publisher) put(ctx context.Context, file, key string) error {
	f, err := os.Open(file)
	if err != nil {
		return services.Wrap(services.ErrNotFound, "publish", "open", file, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", file, err)
	}
	contentType := "text/plain"
	if strings.HasSuffix(file, ".zip") {
		contentType = "application/zip"
	}
	_, err = p.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "publish", "put object", key, err)
	}
	return nil
}
