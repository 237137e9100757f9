// Package repository holds the read-only attrition dataset.
package repository

import (
	"context"
	"time"

	"github.com/okian/attrition/internal/domain/model"
)

// Store provides read-only access to the loaded dataset. Implementations
// never change after construction, so all methods are safe for concurrent use.
type Store interface {
	// Records returns every row. Callers must treat the slice as read-only.
	Records(ctx context.Context) []model.Employee

	// Departments returns the distinct department values sorted ascending.
	Departments(ctx context.Context) []string

	// JobRoles returns the distinct job roles sorted ascending.
	JobRoles(ctx context.Context) []string

	// Count returns the number of rows.
	Count(ctx context.Context) int

	// ID identifies this snapshot of the dataset.
	ID() string

	// LoadedAt reports when the snapshot was built.
	LoadedAt() time.Time
}
