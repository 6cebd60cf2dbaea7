package blobsvc

import (
	"context"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/asistente/core"
)

func TestBoltStorage(t *testing.T) {
	ctx := context.Background()
	s, err := NewBoltStorage(filepath.Join(t.TempDir(), "blobs", "test.db"))
	require.NoError(t, err)
	defer s.Close()

	loc, err := s.Put(ctx, "users/1/notes/a.txt", strings.NewReader("hello"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "users/1/notes/a.txt", loc)

	rc, err := s.Get(ctx, loc)
	require.NoError(t, err)
	data, err := ioutil.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "hello", string(data))

	require.NoError(t, s.Delete(ctx, loc))
	_, err = s.Get(ctx, loc)
	assert.True(t, core.IsNotFound(err))

	// deleting twice is fine
	assert.NoError(t, s.Delete(ctx, loc))
}
