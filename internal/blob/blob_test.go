package blob

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/clipstack/internal/model"
)

func TestPutGet(t *testing.T) {
	s := NewStore(t.TempDir())

	require.NoError(t, s.Put(1, []byte("hello")))
	got, err := s.Get(1)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)
}

func TestPutCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "db")
	s := NewStore(dir)

	require.NoError(t, s.Put(7, []byte{0, 1, 2}))
	_, err := os.Stat(filepath.Join(dir, "7"))
	require.NoError(t, err)
}

func TestPutOverwrites(t *testing.T) {
	s := NewStore(t.TempDir())

	require.NoError(t, s.Put(3, []byte("first")))
	require.NoError(t, s.Put(3, []byte("second")))
	got, err := s.Get(3)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
}

func TestGetMissing(t *testing.T) {
	s := NewStore(t.TempDir())

	_, err := s.Get(42)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestDelete(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, s.Put(5, []byte("x")))

	require.NoError(t, s.Delete(5))
	_, err := s.Get(5)
	require.ErrorIs(t, err, model.ErrNotFound)

	// a second delete must not pass silently
	require.ErrorIs(t, s.Delete(5), model.ErrNotFound)
}

func TestSize(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, s.Put(9, make([]byte, 2048)))

	n, err := s.Size(9)
	require.NoError(t, err)
	assert.EqualValues(t, 2048, n)
}
