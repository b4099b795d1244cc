package pkg

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Name  string
	Count int
}

func TestFileSpill(t *testing.T) {
	t.Run("NewFileSpill creates the file in dir", func(t *testing.T) {
		dir := t.TempDir()

		spill, err := NewFileSpill[int](dir)
		require.NoError(t, err)
		defer spill.Close()

		assert.Equal(t, dir, filepath.Dir(spill.Path()))
		assert.FileExists(t, spill.Path())
	})

	t.Run("NewFileSpill fails for a missing dir", func(t *testing.T) {
		_, err := NewFileSpill[int](filepath.Join(t.TempDir(), "missing"))
		require.Error(t, err)
	})

	t.Run("Append and Len", func(t *testing.T) {
		spill, err := NewFileSpill[int](t.TempDir())
		require.NoError(t, err)
		defer spill.Close()

		require.Equal(t, uint64(0), spill.Len())

		require.NoError(t, spill.Append(1))
		require.NoError(t, spill.Append(2))
		require.NoError(t, spill.Append(3))

		require.Equal(t, uint64(3), spill.Len())
	})

	t.Run("Range replays items in order", func(t *testing.T) {
		spill, err := NewFileSpill[record](t.TempDir())
		require.NoError(t, err)
		defer spill.Close()

		want := []record{{"a", 1}, {"b", 2}, {"c", 3}}
		for _, item := range want {
			require.NoError(t, spill.Append(item))
		}

		var (
			got     []record
			indices []uint64
		)

		err = spill.Range(func(index uint64, item record) error {
			indices = append(indices, index)
			got = append(got, item)

			return nil
		})
		require.NoError(t, err)

		assert.Equal(t, want, got)
		assert.Equal(t, []uint64{0, 1, 2}, indices)
	})

	t.Run("Range stops on callback error", func(t *testing.T) {
		spill, err := NewFileSpill[int](t.TempDir())
		require.NoError(t, err)
		defer spill.Close()

		for i := range 5 {
			require.NoError(t, spill.Append(i))
		}

		stop := errors.New("stop")
		seen := 0

		err = spill.Range(func(index uint64, _ int) error {
			seen++
			if index == 1 {
				return stop
			}

			return nil
		})

		require.ErrorIs(t, err, stop)
		assert.Equal(t, 2, seen)
	})

	t.Run("Collect after more appends", func(t *testing.T) {
		spill, err := NewFileSpill[string](t.TempDir())
		require.NoError(t, err)
		defer spill.Close()

		require.NoError(t, spill.Append("first"))

		items, err := spill.Collect()
		require.NoError(t, err)
		assert.Equal(t, []string{"first"}, items)

		require.NoError(t, spill.Append("second"))

		items, err = spill.Collect()
		require.NoError(t, err)
		assert.Equal(t, []string{"first", "second"}, items)
	})

	t.Run("Collect on empty spill", func(t *testing.T) {
		spill, err := NewFileSpill[string](t.TempDir())
		require.NoError(t, err)
		defer spill.Close()

		items, err := spill.Collect()
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("Close removes the file and is idempotent", func(t *testing.T) {
		spill, err := NewFileSpill[int](t.TempDir())
		require.NoError(t, err)

		require.NoError(t, spill.Append(7))
		require.NoError(t, spill.Close())

		_, statErr := os.Stat(spill.Path())
		assert.True(t, os.IsNotExist(statErr))

		require.NoError(t, spill.Close())
	})

	t.Run("use after Close", func(t *testing.T) {
		spill, err := NewFileSpill[int](t.TempDir())
		require.NoError(t, err)
		require.NoError(t, spill.Close())

		require.ErrorIs(t, spill.Append(1), ErrSpillClosed)
		require.ErrorIs(t, spill.Range(func(uint64, int) error { return nil }), ErrSpillClosed)
	})
}
