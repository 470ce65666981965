package storage

import "context"

// ObjectStorage captures the minimal blob operations the forecasting
// subsystem needs. GetObject returns found=false for a missing key, never
// an error; errors mean real infrastructure failure.
type ObjectStorage interface {
	GetObject(ctx context.Context, key string) (data []byte, found bool, err error)
	PutObject(ctx context.Context, key string, data []byte) error
}
