package blobsvc

import (
	"context"
	"io"

	"github.com/kurin/blazer/b2"
	"github.com/pkg/errors"

	"github.com/trezcool/asistente/core"
)

// B2Storage keeps blobs in a Backblaze B2 bucket.
type B2Storage struct {
	bucket *b2.Bucket
}

var _ core.BlobStorage = (*B2Storage)(nil)

func NewB2Storage(ctx context.Context, conf *core.Config) (*B2Storage, error) {
	client, err := b2.NewClient(ctx, conf.Storage.B2AccountID, conf.Storage.B2AppKey)
	if err != nil {
		return nil, errors.Wrap(err, "creating b2 client")
	}
	bucket, err := client.Bucket(ctx, conf.Storage.B2BucketName)
	if err != nil {
		return nil, errors.Wrap(err, "getting b2 bucket")
	}
	return &B2Storage{bucket: bucket}, nil
}

func (s *B2Storage) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	w := s.bucket.Object(key).NewWriter(ctx).WithAttrs(&b2.Attrs{ContentType: contentType})
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", errors.Wrap(err, "writing b2 object")
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrap(err, "closing b2 object")
	}
	return s.bucket.Object(key).URL(), nil
}

func (s *B2Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj := s.bucket.Object(key)
	if _, err := obj.Attrs(ctx); err != nil {
		if b2.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "getting b2 object attrs")
	}
	return obj.NewReader(ctx), nil
}

func (s *B2Storage) Delete(ctx context.Context, key string) error {
	if err := s.bucket.Object(key).Delete(ctx); err != nil && !b2.IsNotExist(err) {
		return errors.Wrap(err, "deleting b2 object")
	}
	return nil
}
