package exportarchive

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yanqian/weather-records/internal/domain/records"
)

// R2Archive copies export files to an S3-compatible bucket such as Cloudflare R2.
type R2Archive struct {
	client *minio.Client
	bucket string
	prefix string
	logger *slog.Logger

	buckets     bucketAPI
	bucketMu    sync.Mutex
	bucketReady bool
}

type bucketAPI interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
}

// NewR2Archive constructs the archive adapter.
func NewR2Archive(endpoint, accessKey, secretKey, bucket, region, prefix string, logger *slog.Logger) (*R2Archive, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(bucket) == "" {
		return nil, fmt.Errorf("archive bucket is required")
	}
	useSSL := !strings.HasPrefix(strings.ToLower(strings.TrimSpace(endpoint)), "http://")
	client, err := minio.New(sanitizeEndpoint(endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure:       useSSL,
		Region:       region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init archive client: %w", err)
	}
	return &R2Archive{
		client:  client,
		buckets: client,
		bucket:  bucket,
		prefix:  strings.Trim(prefix, "/"),
		logger:  logger.With("component", "exportarchive.r2"),
	}, nil
}

// ensureBucket checks or creates the bucket once. Failures are not
// remembered, so the next export tries again.
func (a *R2Archive) ensureBucket(ctx context.Context) error {
	a.bucketMu.Lock()
	defer a.bucketMu.Unlock()
	if a.bucketReady {
		return nil
	}
	if err := a.prepareBucket(ctx); err != nil {
		return err
	}
	a.bucketReady = true
	return nil
}

func (a *R2Archive) prepareBucket(ctx context.Context) error {
	exists, err := a.buckets.BucketExists(ctx, a.bucket)
	if err == nil && exists {
		return nil
	}
	err = a.buckets.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
		return fmt.Errorf("prepare archive bucket %s: %w", a.bucket, err)
	}
	return nil
}

// Put implements records.Archive.
func (a *R2Archive) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if err := a.ensureBucket(ctx); err != nil {
		return err
	}
	objectKey := objectKey(a.prefix, key)
	info, err := a.client.PutObject(ctx, a.bucket, objectKey, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:      contentType,
		DisableMultipart: len(data) < 5*1024*1024,
	})
	if err != nil {
		return err
	}
	a.logger.Info("export archived", "key", objectKey, "size", info.Size)
	return nil
}

func objectKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "/" + key
}

// sanitizeEndpoint strips the scheme and any path since minio.New wants host[:port].
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	host, _, _ := strings.Cut(raw, "/")
	return host
}

var _ records.Archive = (*R2Archive)(nil)
