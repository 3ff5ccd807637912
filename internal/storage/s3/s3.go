// Package s3 stores resume documents in S3 or any S3-compatible service.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"github.com/spigell/resume-rank/internal/awsutil"
	"github.com/spigell/resume-rank/internal/storage"
)

// PresignOp selects which request a presigned URL authorizes.
type PresignOp string

const (
	PresignGet PresignOp = "get"
	PresignPut PresignOp = "put"
)

// Config describes the bucket and how to reach it. EndpointURL and
// UsePathStyle are meant for MinIO and similar services.
type Config struct {
	Bucket       string
	Region       string
	EndpointURL  string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
	MaxAttempts  int
}

// objectAPI is the part of *s3.Client used outside the transfer managers.
type objectAPI interface {
	manager.DownloadAPIClient
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// FileStore reads and writes objects in a default bucket.
type FileStore struct {
	api        objectAPI
	bucket     string
	downloader *manager.Downloader
	uploader   *manager.Uploader
	presigner  *s3.PresignClient
	logger     *zap.Logger
}

// NewFileStore builds a FileStore from explicit configuration.
func NewFileStore(ctx context.Context, conf Config, logger *zap.Logger) (*FileStore, error) {
	cfg, err := awsutil.LoadConfig(ctx, awsutil.Options{
		Region:      conf.Region,
		AccessKey:   conf.AccessKey,
		SecretKey:   conf.SecretKey,
		MaxAttempts: conf.MaxAttempts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load s3 config: %w", err)
	}

	if conf.EndpointURL != "" {
		cfg.BaseEndpoint = aws.String(conf.EndpointURL)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = conf.UsePathStyle
	})

	if logger == nil {
		logger = zap.NewNop()
	}

	return &FileStore{
		api:        client,
		bucket:     strings.TrimSpace(conf.Bucket),
		downloader: manager.NewDownloader(client),
		uploader:   manager.NewUploader(client),
		presigner:  s3.NewPresignClient(client),
		logger:     logger,
	}, nil
}

func (fs *FileStore) resolveBucket(bucket string) (string, error) {
	if bucket = strings.TrimSpace(bucket); bucket != "" {
		return bucket, nil
	}
	if fs.bucket == "" {
		return "", errors.New("no bucket given and no default bucket configured")
	}
	return fs.bucket, nil
}

// Download returns the object body. A missing object yields storage.ErrNotFound.
func (fs *FileStore) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	bucket, err := fs.resolveBucket(bucket)
	if err != nil {
		return nil, err
	}

	buf := manager.NewWriteAtBuffer([]byte{})
	n, err := fs.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: s3://%s/%s", storage.ErrNotFound, bucket, key)
		}
		return nil, wrapErr("failed to download file", err)
	}

	fs.logger.Debug("downloaded object",
		zap.String("bucket", bucket),
		zap.String("key", key),
		zap.Int64("bytes", n),
	)

	return buf.Bytes(), nil
}

// Upload stores the body and returns its s3:// uri.
func (fs *FileStore) Upload(ctx context.Context, file io.Reader, bucket, key, contentType string) (string, error) {
	bucket, err := fs.resolveBucket(bucket)
	if err != nil {
		return "", err
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   file,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := fs.uploader.Upload(ctx, input); err != nil {
		return "", wrapErr("failed to upload file", err)
	}

	location := storage.Location{Bucket: bucket, Key: key}.URI()
	fs.logger.Debug("uploaded object", zap.String("uri", location))

	return location, nil
}

// Delete removes the object. Deleting a missing object is not an error.
func (fs *FileStore) Delete(ctx context.Context, bucket, key string) error {
	bucket, err := fs.resolveBucket(bucket)
	if err != nil {
		return err
	}

	if _, err := fs.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		return wrapErr("failed to delete file", err)
	}

	return nil
}

// Exists reports whether the object is present.
func (fs *FileStore) Exists(ctx context.Context, bucket, key string) (bool, error) {
	bucket, err := fs.resolveBucket(bucket)
	if err != nil {
		return false, err
	}

	_, err = fs.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}

	return false, wrapErr("failed to check file", err)
}

// Presign returns a time-limited URL for reading or writing the object.
func (fs *FileStore) Presign(ctx context.Context, bucket, key string, expiry time.Duration, op PresignOp) (string, error) {
	bucket, err := fs.resolveBucket(bucket)
	if err != nil {
		return "", err
	}

	expires := s3.WithPresignExpires(expiry)

	switch op {
	case PresignGet, "":
		req, err := fs.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		}, expires)
		if err != nil {
			return "", fmt.Errorf("failed to presign get: %w", err)
		}
		return req.URL, nil
	case PresignPut:
		req, err := fs.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		}, expires)
		if err != nil {
			return "", fmt.Errorf("failed to presign put: %w", err)
		}
		return req.URL, nil
	default:
		return "", fmt.Errorf("unsupported presign operation %q", op)
	}
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}

	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound {
		return true
	}

	return false
}

// wrapErr marks throttling and timeouts with storage.ErrUnavailable so callers
// can tell a struggling service from a broken request.
func wrapErr(msg string, err error) error {
	if isUnavailable(err) {
		return fmt.Errorf("%s: %w: %w", msg, storage.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func isUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "SlowDown", "Throttling", "ThrottlingException", "RequestLimitExceeded",
			"TooManyRequests", "RequestTimeout", "RequestTimeoutException", "ServiceUnavailable":
			return true
		}
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.HTTPStatusCode() {
		case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
	}

	return false
}
