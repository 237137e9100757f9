// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	repository "github.com/okian/attrition/internal/adapters/repository"
	"github.com/okian/attrition/internal/domain/views"
	"github.com/okian/attrition/pkg/logger"
	"github.com/okian/attrition/pkg/metrics"
)

// ErrNotStarted is returned by read operations before Start succeeded.
var ErrNotStarted = errors.New("service not started")

// Service serves dashboard views over the immutable dataset.
type Service struct {
	mu sync.RWMutex

	store repository.Store
	group singleflight.Group

	// Configuration
	dataPath  string
	comma     rune
	preloaded repository.Store

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDataPath sets the dataset file loaded by Start.
func WithDataPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dataPath = path
		}
	}
}

// WithDelimiter sets the dataset field delimiter.
func WithDelimiter(r rune) Option {
	return func(s *Service) {
		if r != 0 {
			s.comma = r
		}
	}
}

// WithStore makes Start use an already built store instead of reading a file.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.preloaded = store
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dataPath: "attrition_dashboard_data.csv",
		comma:    ',',
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the dataset. A load failure is returned as is and leaves the
// service stopped.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}

	store := s.preloaded
	if store == nil {
		s.logger.Info(ctx, "loading dataset", logger.String("path", s.dataPath))
		loaded, err := repository.Load(ctx, s.dataPath, repository.WithComma(s.comma))
		if err != nil {
			metrics.RecordDatasetLoadError(loadErrorKind(err))
			return err
		}
		store = loaded
	}

	s.store = store
	s.started = true

	rows := store.Count(ctx)
	depts := len(store.Departments(ctx))
	roles := len(store.JobRoles(ctx))
	metrics.UpdateDatasetSize(rows, depts, roles)

	s.logger.Info(ctx, "dataset ready",
		logger.String("datasetId", store.ID()),
		logger.Int("rows", rows),
		logger.Int("departments", depts),
		logger.Int("jobRoles", roles),
	)
	if rows == 0 {
		s.logger.Warn(ctx, "dataset has no rows; all charts will be empty")
	}
	return nil
}

// Stop releases the dataset. It is safe to call more than once.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.store = nil
	s.started = false
	s.logger.Info(context.Background(), "dashboard service stopped")
}

func (s *Service) current() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// Views derives the three dashboard views for department; empty means all.
// Identical concurrent requests share one derivation.
func (s *Service) Views(ctx context.Context, department string) (views.Views, error) {
	store, err := s.current()
	if err != nil {
		return views.Views{}, err
	}

	ch := s.group.DoChan(store.ID()+"\x00"+department, func() (any, error) {
		start := time.Now()
		v := views.Derive(store.Records(ctx), department)
		metrics.RecordViewDerivation(outcome(v), float64(time.Since(start).Microseconds())/1000)

		if errors.Is(v.Err(), views.ErrFilterMiss) {
			s.logger.Debug(ctx, "department filter matched no records", logger.String("department", department))
		}
		return v, nil
	})

	select {
	case <-ctx.Done():
		return views.Views{}, ctx.Err()
	case res := <-ch:
		if res.Shared {
			metrics.RecordViewCoalesced()
		}
		if res.Err != nil {
			return views.Views{}, res.Err
		}
		return res.Val.(views.Views), nil
	}
}

// Departments returns the selectable departments sorted ascending.
func (s *Service) Departments(ctx context.Context) ([]string, error) {
	store, err := s.current()
	if err != nil {
		return nil, err
	}
	return store.Departments(ctx), nil
}

// DatasetID identifies the loaded snapshot, or "" before Start.
func (s *Service) DatasetID() string {
	store, err := s.current()
	if err != nil {
		return ""
	}
	return store.ID()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":  s.started,
		"dataPath": s.dataPath,
	}
	if s.started {
		ctx := context.Background()
		stats["datasetId"] = s.store.ID()
		stats["loadedAt"] = s.store.LoadedAt().UTC().Format(time.RFC3339)
		stats["rows"] = s.store.Count(ctx)
		stats["departments"] = len(s.store.Departments(ctx))
		stats["jobRoles"] = len(s.store.JobRoles(ctx))
	}
	return stats
}

func outcome(v views.Views) string {
	switch {
	case v.Department == "":
		return metrics.OutcomeAll
	case v.FilterMiss:
		return metrics.OutcomeMiss
	default:
		return metrics.OutcomeHit
	}
}

func loadErrorKind(err error) string {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return "not_found"
	case errors.Is(err, repository.ErrMissingColumn):
		return "missing_column"
	case errors.Is(err, repository.ErrMalformed):
		return "malformed"
	default:
		return "other"
	}
}
