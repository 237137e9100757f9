package repository

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/okian/attrition/internal/domain/model"
)

// MemoryStore is the immutable in-memory dataset.
type MemoryStore struct {
	id          string
	loadedAt    time.Time
	records     []model.Employee
	departments []string
	roles       []string
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore builds a store over a private copy of records.
func NewMemoryStore(records []model.Employee, loadedAt time.Time) *MemoryStore {
	rows := make([]model.Employee, len(records))
	copy(rows, records)

	return &MemoryStore{
		id:          uuid.NewString(),
		loadedAt:    loadedAt,
		records:     rows,
		departments: distinct(rows, func(e model.Employee) string { return e.Department }),
		roles:       distinct(rows, func(e model.Employee) string { return e.JobRole }),
	}
}

// Records returns every row.
func (s *MemoryStore) Records(_ context.Context) []model.Employee { return s.records }

// Departments returns the sorted distinct departments.
func (s *MemoryStore) Departments(_ context.Context) []string { return cloneStrings(s.departments) }

// JobRoles returns the sorted distinct job roles.
func (s *MemoryStore) JobRoles(_ context.Context) []string { return cloneStrings(s.roles) }

// Count returns the number of rows.
func (s *MemoryStore) Count(_ context.Context) int { return len(s.records) }

// ID returns the snapshot identifier minted at construction.
func (s *MemoryStore) ID() string { return s.id }

// LoadedAt returns the construction timestamp.
func (s *MemoryStore) LoadedAt() time.Time { return s.loadedAt }

func distinct(rows []model.Employee, key func(model.Employee) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range rows {
		k := key(r)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
