package service

import (
	"context"
	"io"

	"gogotalk/internal/domain/entity"
)

// ProgressFunc receives the number of bytes written so far.
type ProgressFunc func(transferred int64)

type ObjectStorage interface {
	Upload(ctx context.Context, key, contentType string, r io.Reader, size int64, progress ProgressFunc) (*entity.UploadHandle, error)
	DownloadURL(ctx context.Context, handle *entity.UploadHandle) (string, error)
	Close() error
}
