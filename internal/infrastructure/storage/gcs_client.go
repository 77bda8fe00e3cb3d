package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"gogotalk/internal/domain/entity"
	"gogotalk/internal/domain/service"
)

// Firebase Storage serves objects carrying this metadata key through a
// durable, token-authorised download URL.
const downloadTokensKey = "firebaseStorageDownloadTokens"

type CloudStorageClient struct {
	client     *storage.Client
	bucketName string
}

func NewCloudStorageClient(ctx context.Context, bucketName string, opts ...option.ClientOption) (*CloudStorageClient, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %v", err)
	}

	return &CloudStorageClient{
		client:     client,
		bucketName: bucketName,
	}, nil
}

func (c *CloudStorageClient) Upload(ctx context.Context, key, contentType string, r io.Reader, size int64, progress service.ProgressFunc) (*entity.UploadHandle, error) {
	token := uuid.New().String()

	obj := c.client.Bucket(c.bucketName).Object(key)
	wc := obj.NewWriter(ctx)
	wc.ContentType = contentType
	wc.CacheControl = "public, max-age=86400"
	wc.Metadata = map[string]string{downloadTokensKey: token}
	if progress != nil {
		wc.ProgressFunc = progress
	}

	written, err := io.Copy(wc, r)
	if err != nil {
		wc.Close()
		return nil, fmt.Errorf("failed to copy file to GCS: %v", err)
	}

	if err := wc.Close(); err != nil {
		return nil, fmt.Errorf("failed to close writer: %v", err)
	}

	if progress != nil {
		progress(written)
	}

	return &entity.UploadHandle{
		Key:         key,
		Bucket:      c.bucketName,
		ContentType: contentType,
		Size:        written,
		Token:       token,
	}, nil
}

func (c *CloudStorageClient) DownloadURL(ctx context.Context, handle *entity.UploadHandle) (string, error) {
	token := handle.Token
	if token == "" {
		attrs, err := c.client.Bucket(handle.Bucket).Object(handle.Key).Attrs(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to read object attributes: %v", err)
		}
		token = attrs.Metadata[downloadTokensKey]
		if token == "" {
			return "", fmt.Errorf("object %s has no download token", handle.Key)
		}
	}

	return firebaseDownloadURL(handle.Bucket, handle.Key, token), nil
}

func (c *CloudStorageClient) Close() error {
	return c.client.Close()
}

func firebaseDownloadURL(bucket, key, token string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		bucket, url.PathEscape(key), url.QueryEscape(token))
}
