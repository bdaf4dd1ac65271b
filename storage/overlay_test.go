package storage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOverlayReadsPendingWrites(t *testing.T) {
	base := NewMemDB()
	require.NoError(t, base.Put([]byte("a"), []byte("base")))
	require.NoError(t, base.Put([]byte("b"), []byte("base")))

	o := NewOverlay(base)
	require.NoError(t, o.Put([]byte("a"), []byte("over")))
	require.NoError(t, o.Delete([]byte("b")))
	require.NoError(t, o.Put([]byte("c"), []byte("new")))

	value, err := o.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("over"), value)
	_, err = o.Get([]byte("b"))
	require.True(t, errors.Is(err, ErrNotFound))
	has, err := o.Has([]byte("c"))
	require.NoError(t, err)
	require.True(t, has)

	baseValue, err := base.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("base"), baseValue, "base must be untouched before commit")
	require.Equal(t, 3, o.Dirty())
}

func TestOverlayIterateMerges(t *testing.T) {
	base := NewMemDB()
	require.NoError(t, base.Put([]byte("k1"), []byte("1")))
	require.NoError(t, base.Put([]byte("k3"), []byte("3")))
	o := NewOverlay(base)
	require.NoError(t, o.Put([]byte("k2"), []byte("2")))
	require.NoError(t, o.Delete([]byte("k3")))

	var seen []string
	require.NoError(t, o.Iterate([]byte("k"), func(key, value []byte) bool {
		seen = append(seen, string(key)+"="+string(value))
		return true
	}))
	require.Equal(t, []string{"k1=1", "k2=2"}, seen)
}

func TestOverlayCommitAndDiscard(t *testing.T) {
	base := NewMemDB()
	o := NewOverlay(base)
	require.NoError(t, o.Put([]byte("x"), []byte("1")))
	o.Discard()
	require.Zero(t, o.Dirty())
	_, err := base.Get([]byte("x"))
	require.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, o.Put([]byte("y"), []byte("2")))
	require.NoError(t, o.Commit())
	require.Zero(t, o.Dirty())
	value, err := base.Get([]byte("y"))
	require.NoError(t, err)
	require.Equal(t, []byte("2"), value)

	require.NoError(t, o.Delete([]byte("y")))
	require.NoError(t, o.Commit())
	_, err = base.Get([]byte("y"))
	require.True(t, errors.Is(err, ErrNotFound))
}
