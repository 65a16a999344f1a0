package ports

import (
	"context"
	"io"
)

// ObjectStorage archives uploaded import files. Upload returns the stored
// object key.
type ObjectStorage interface {
	Upload(ctx context.Context, bucket, objectName, contentType string, reader io.Reader, size int64) (string, error)
}
