package object

import (
	"context"
	"io"
)

// ObjectStore defines the contract for saving and retrieving binary objects.
// Keys are namespaced by the owning deal; callers never see bucket layout.
type ObjectStore interface {
	Save(ctx context.Context, dealID string, fileName string, r io.Reader) (objectPath string, sizeBytes int64, mimeType string, err error)
	SaveWithKey(ctx context.Context, objectPath string, contentType string, r io.Reader) (int64, error)
	Open(ctx context.Context, objectPath string) (io.ReadCloser, error)
}
