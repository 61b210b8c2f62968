package permit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	reloadKey     = "permits"
	reloadTimeout = 10 * time.Second
	// failedReloadDelay spaces out retries after a failed load.
	failedReloadDelay = 30 * time.Second
)

// Lister loads every permit record.
type Lister interface {
	ListPermits(ctx context.Context) ([]Permit, error)
}

// Service serves the permit set from memory and reloads it after ttl.
// Safe for concurrent use by request handlers. Once a set has been loaded,
// callers never wait for a reload: the current set is served while a single
// background load refreshes it.
type Service struct {
	repo   Lister
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
	group  singleflight.Group

	mu       sync.RWMutex
	set      Set
	loaded   bool
	lastErr  error
	nextLoad time.Time
}

func NewService(repo Lister, ttl time.Duration, logger *slog.Logger) *Service {
	logger.Debug("Initializing permit service", "cache_ttl", ttl)

	return &Service{
		repo:   repo,
		ttl:    ttl,
		now:    time.Now,
		logger: logger.With("component", "permit_service"),
	}
}

// Set returns the current permit set. A failed reload keeps serving the
// previous set when there is one; before the first successful load the
// failure is returned until the retry delay has passed.
func (s *Service) Set(ctx context.Context) (Set, error) {
	s.mu.RLock()
	set, loaded, lastErr := s.set, s.loaded, s.lastErr
	due := !s.now().Before(s.nextLoad)
	s.mu.RUnlock()

	switch {
	case !due && loaded:
		return set, nil
	case !due:
		return Set{}, lastErr
	case loaded:
		s.group.DoChan(reloadKey, func() (interface{}, error) {
			return s.reload(context.WithoutCancel(ctx))
		})
		return set, nil
	}

	v, err, _ := s.group.Do(reloadKey, func() (interface{}, error) {
		return s.reload(ctx)
	})
	if err != nil {
		return Set{}, err
	}
	return v.(Set), nil
}

func (s *Service) reload(ctx context.Context) (Set, error) {
	logger := s.logger.With("operation", "reload")

	ctx, cancel := context.WithTimeout(ctx, reloadTimeout)
	defer cancel()

	permits, err := s.repo.ListPermits(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()

	if err != nil {
		s.nextLoad = now.Add(s.retryDelay())
		if s.loaded {
			logger.Warn("Permit reload failed, serving stale set", "error", err, "retry_in", s.retryDelay())
			return s.set, nil
		}
		logger.Error("Permit load failed", "error", err, "retry_in", s.retryDelay())
		s.lastErr = err
		return Set{}, err
	}

	s.set = NewSet(permits)
	s.loaded = true
	s.lastErr = nil
	s.nextLoad = now.Add(s.ttl)
	logger.Debug("Permit set loaded", "count", s.set.Len())
	return s.set, nil
}

func (s *Service) retryDelay() time.Duration {
	if s.ttl < failedReloadDelay {
		return s.ttl
	}
	return failedReloadDelay
}
