// Package pkg holds generic helpers that do not depend on profbisect types.
package pkg

import (
	"bufio"
	"encoding/gob"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// ErrSpillClosed is returned when a closed FileSpill is used.
var ErrSpillClosed = errors.New("file spill is closed")

// FileSpill is an append-only journal of items kept in a gob file instead of
// memory. The file is private to the spill and removed by Close.
type FileSpill[T any] interface {
	Len() uint64
	Path() string
	Append(item T) error
	Range(fn func(index uint64, item T) error) error
	Collect() ([]T, error)
	Close() error
}

type fileSpill[T any] struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	writer  *bufio.Writer
	encoder *gob.Encoder
	length  uint64
}

// NewFileSpill creates a spill file in dir, or in the OS temp dir when dir is
// empty.
func NewFileSpill[T any](dir string) (FileSpill[T], error) {
	file, err := os.CreateTemp(dir, "profbisect-spill-*.gob")
	if err != nil {
		slog.Error("Failed to create spill file", "dir", dir, "error", err)
		return nil, fmt.Errorf("create spill file: %w", err)
	}

	writer := bufio.NewWriter(file)

	slog.Debug("Created file spill", "path", file.Name())

	return &fileSpill[T]{
		path:    file.Name(),
		file:    file,
		writer:  writer,
		encoder: gob.NewEncoder(writer),
	}, nil
}

func (f *fileSpill[T]) Len() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.length
}

func (f *fileSpill[T]) Path() string {
	return f.path
}

func (f *fileSpill[T]) Append(item T) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return ErrSpillClosed
	}

	if err := f.encoder.Encode(item); err != nil {
		return fmt.Errorf("encode item %d: %w", f.length, err)
	}

	f.length++

	return nil
}

// Range flushes pending writes and replays every item in append order. It
// stops at the first error returned by fn.
func (f *fileSpill[T]) Range(fn func(index uint64, item T) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return ErrSpillClosed
	}

	if err := f.writer.Flush(); err != nil {
		return fmt.Errorf("flush spill: %w", err)
	}

	reader, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("open spill: %w", err)
	}

	defer func() { _ = reader.Close() }()

	decoder := gob.NewDecoder(bufio.NewReader(reader))

	for i := range f.length {
		var item T
		if err := decoder.Decode(&item); err != nil {
			return fmt.Errorf("decode item %d: %w", i, err)
		}

		if err := fn(i, item); err != nil {
			return err
		}
	}

	return nil
}

// Collect reads every item back into memory.
func (f *fileSpill[T]) Collect() ([]T, error) {
	items := make([]T, 0, f.Len())

	err := f.Range(func(_ uint64, item T) error {
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return items, nil
}

// Close closes and removes the spill file. Closing twice is a no-op.
func (f *fileSpill[T]) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return nil
	}

	closeErr := f.file.Close()
	f.file = nil

	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		slog.Error("Failed to remove spill file", "path", f.path, "error", err)
		return errors.Join(closeErr, fmt.Errorf("remove spill: %w", err))
	}

	slog.Debug("Closed file spill", "path", f.path, "length", f.length)

	return closeErr
}
