// Package report renders the dashboard views as console tables, reading
// either a local dataset file or a running dashboard server.
package report

import (
	"context"
	"io"

	repository "github.com/okian/attrition/internal/adapters/repository"
	"github.com/okian/attrition/internal/domain/views"
)

// Source yields dashboard views and the selectable departments.
type Source interface {
	Views(ctx context.Context, department string) (views.Views, error)
	Departments(ctx context.Context) ([]string, error)
}

// FileSource derives views locally from a loaded dataset.
type FileSource struct {
	store repository.Store
}

// NewFileSource wraps an already loaded store.
func NewFileSource(store repository.Store) *FileSource {
	return &FileSource{store: store}
}

// OpenFile loads path and wraps it. Load failures are returned unchanged so
// callers can match repository.ErrLoad.
func OpenFile(ctx context.Context, path string, comma rune) (*FileSource, error) {
	store, err := repository.Load(ctx, path, repository.WithComma(comma))
	if err != nil {
		return nil, err
	}
	return NewFileSource(store), nil
}

// ReadFrom parses a dataset from r, e.g. standard input.
func ReadFrom(ctx context.Context, r io.Reader, name string, comma rune) (*FileSource, error) {
	store, err := repository.Parse(ctx, r, repository.WithComma(comma), repository.WithSourceName(name))
	if err != nil {
		return nil, err
	}
	return NewFileSource(store), nil
}

// Views derives the three views for department.
func (s *FileSource) Views(ctx context.Context, department string) (views.Views, error) {
	if err := ctx.Err(); err != nil {
		return views.Views{}, err
	}
	return views.Derive(s.store.Records(ctx), department), nil
}

// Departments lists the dataset departments sorted ascending.
func (s *FileSource) Departments(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.Departments(ctx), nil
}
