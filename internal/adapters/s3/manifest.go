// Package s3 reads manifests stored in S3 or an S3-compatible object store.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// DefaultMaxBytes caps how much of a manifest object is read.
const DefaultMaxBytes = 256 << 20

// ErrInvalidURI is returned for manifest locations that are not s3://bucket/key.
var ErrInvalidURI = errors.New("invalid s3 uri")

// ErrTooLarge is returned when the object exceeds the configured size cap.
var ErrTooLarge = errors.New("manifest object too large")

// ObjectGetter is the subset of the S3 API the manifest source needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Options configure the S3 client.
type Options struct {
	Region    string
	Endpoint  string
	PathStyle bool
	MaxBytes  int64
}

// ManifestSource implements ports.ManifestSource for an S3 object.
type ManifestSource struct {
	bucket   string
	key      string
	client   ObjectGetter
	maxBytes int64
}

// IsURI reports whether location uses the s3 scheme.
func IsURI(location string) bool {
	return strings.HasPrefix(location, "s3://")
}

// ParseURI splits s3://bucket/key into its parts.
func ParseURI(location string) (bucket, key string, err error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidURI, err)
	}
	if u.Scheme != "s3" {
		return "", "", fmt.Errorf("%w: scheme %q", ErrInvalidURI, u.Scheme)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidURI, location)
	}
	return u.Host, key, nil
}

// NewManifestSource builds an S3 client from the default AWS credential
// chain and returns a source for location.
func NewManifestSource(ctx context.Context, location string, opts Options) (*ManifestSource, error) {
	bucket, key, err := ParseURI(location)
	if err != nil {
		return nil, err
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.PathStyle
	})
	return NewManifestSourceWithClient(bucket, key, client, opts.MaxBytes), nil
}

// NewManifestSourceWithClient returns a source backed by an existing client.
func NewManifestSourceWithClient(bucket, key string, client ObjectGetter, maxBytes int64) *ManifestSource {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &ManifestSource{bucket: bucket, key: key, client: client, maxBytes: maxBytes}
}

// Name returns the s3:// location of the manifest.
func (m *ManifestSource) Name() string {
	return "s3://" + m.bucket + "/" + m.key
}

// Read downloads the manifest object.
func (m *ManifestSource) Read(ctx context.Context) ([]byte, error) {
	out, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(m.key),
	})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", m.Name(), err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, m.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", m.Name(), err)
	}
	if int64(len(data)) > m.maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, m.Name(), m.maxBytes)
	}
	return data, nil
}
