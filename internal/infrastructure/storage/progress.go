package storage

import (
	"sync/atomic"

	"gogotalk/internal/domain/service"
)

// progressReader receives a copy of the uploaded bytes from minio and turns
// them into running totals.
type progressReader struct {
	total  atomic.Int64
	report service.ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n := p.total.Add(int64(len(b)))
	p.report(n)
	return len(b), nil
}
