package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"gogotalk/internal/domain/entity"
	"gogotalk/internal/domain/service"
)

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// MinioStorageClient stores chat images in an S3-compatible bucket with a
// public-read policy, so the object URL itself is the durable link.
type MinioStorageClient struct {
	cfg    MinioConfig
	client *minio.Client
}

func NewMinioStorageClient(cfg MinioConfig) (*MinioStorageClient, error) {
	cl, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %v", err)
	}
	return &MinioStorageClient{cfg: cfg, client: cl}, nil
}

func (s *MinioStorageClient) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return err
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return err
		}
	}

	policy := fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, s.cfg.Bucket)
	return s.client.SetBucketPolicy(ctx, s.cfg.Bucket, policy)
}

func (s *MinioStorageClient) Upload(ctx context.Context, key, contentType string, r io.Reader, size int64, progress service.ProgressFunc) (*entity.UploadHandle, error) {
	opts := minio.PutObjectOptions{ContentType: contentType}
	if progress != nil {
		opts.Progress = &progressReader{report: progress}
	}

	info, err := s.client.PutObject(ctx, s.cfg.Bucket, key, r, size, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to put object: %v", err)
	}

	return &entity.UploadHandle{
		Key:         key,
		Bucket:      s.cfg.Bucket,
		ContentType: contentType,
		Size:        info.Size,
	}, nil
}

func (s *MinioStorageClient) DownloadURL(ctx context.Context, handle *entity.UploadHandle) (string, error) {
	scheme := "http"
	if s.cfg.UseSSL {
		scheme = "https"
	}
	u := url.URL{
		Scheme: scheme,
		Host:   s.cfg.Endpoint,
		Path:   "/" + handle.Bucket + "/" + handle.Key,
	}
	return u.String(), nil
}

func (s *MinioStorageClient) Close() error {
	return nil
}
