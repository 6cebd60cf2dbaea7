package blobsvc

import (
	"bytes"
	"context"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"

	"github.com/trezcool/asistente/core"
)

var (
	ErrNotFound = core.NewNotFoundError("blob")

	blobBucket = []byte("blobs")
)

// BoltStorage keeps blobs in a local bbolt file. Meant for development and single node deployments.
type BoltStorage struct {
	db *bbolt.DB
}

var _ core.BlobStorage = (*BoltStorage)(nil)

func NewBoltStorage(path string) (*BoltStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrap(err, "creating blob store dir")
	}
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, errors.Wrap(err, "opening blob store")
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(blobBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "creating blob buckets")
	}
	return &BoltStorage{db: db}, nil
}

// Put returns the key itself: bolt blobs are only reachable through the API.
// The content type is not kept; callers store it with the blob metadata.
func (s *BoltStorage) Put(_ context.Context, key string, r io.Reader, _ string) (string, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return "", errors.Wrap(err, "reading blob")
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(blobBucket).Put([]byte(key), data)
	})
	if err != nil {
		return "", errors.Wrap(err, "saving blob")
	}
	return key, nil
}

func (s *BoltStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	var data []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(blobBucket).Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		// v is only valid during the tx
		data = append([]byte{}, v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ioutil.NopCloser(bytes.NewReader(data)), nil
}

func (s *BoltStorage) Delete(_ context.Context, key string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(blobBucket).Delete([]byte(key))
	})
	return errors.Wrap(err, "deleting blob")
}

func (s *BoltStorage) Close() error {
	return s.db.Close()
}
