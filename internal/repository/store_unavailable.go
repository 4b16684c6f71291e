package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/launchpad-labs/copilot-backend/internal/entity"
)

var _ Store = &UnavailableStore{}

// StoreOpener opens the configured store and returns the functions that
// release it.
type StoreOpener func(ctx context.Context) (Store, []func() error, error)

// UnavailableStore stands in when the configured store could not be reached
// at startup, so dashboards land on the error view instead of the process
// refusing to start. Ping and Watch retry the opener; once it succeeds every
// call goes to the real store.
type UnavailableStore struct {
	open StoreOpener

	mu      sync.Mutex
	cause   error
	store   Store
	closers []func() error
}

// NewUnavailableStore returns a stand-in failing with cause. A nil open never
// recovers.
func NewUnavailableStore(cause error, open StoreOpener) *UnavailableStore {
	return &UnavailableStore{cause: cause, open: open}
}

func (r *UnavailableStore) current() (Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.store != nil {
		return r.store, nil
	}
	return nil, fmt.Errorf("%w: %v", entity.ErrServicesUnavailable, r.cause)
}

// reopen attempts to open the real store once per call.
func (r *UnavailableStore) reopen(ctx context.Context) (Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.store != nil {
		return r.store, nil
	}
	if r.open != nil {
		store, closers, err := r.open(ctx)
		if err == nil {
			r.store, r.closers = store, closers
			return store, nil
		}
		r.cause = err
	}
	return nil, fmt.Errorf("%w: %v", entity.ErrServicesUnavailable, r.cause)
}

func (r *UnavailableStore) EnsureProfile(ctx context.Context, userID string) (*entity.UserProfile, error) {
	s, err := r.current()
	if err != nil {
		return nil, err
	}
	return s.EnsureProfile(ctx, userID)
}

func (r *UnavailableStore) GetProfile(ctx context.Context, userID string) (*entity.UserProfile, error) {
	s, err := r.current()
	if err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, userID)
}

func (r *UnavailableStore) MarkOnboardingComplete(ctx context.Context, userID, projectID string) error {
	s, err := r.current()
	if err != nil {
		return err
	}
	return s.MarkOnboardingComplete(ctx, userID, projectID)
}

func (r *UnavailableStore) CreateProject(ctx context.Context, userID string, project entity.Project) (*entity.Project, error) {
	s, err := r.current()
	if err != nil {
		return nil, err
	}
	return s.CreateProject(ctx, userID, project)
}

func (r *UnavailableStore) GetProject(ctx context.Context, userID, projectID string) (*entity.Project, error) {
	s, err := r.current()
	if err != nil {
		return nil, err
	}
	return s.GetProject(ctx, userID, projectID)
}

func (r *UnavailableStore) ListProjects(ctx context.Context, userID string) ([]*entity.Project, error) {
	s, err := r.current()
	if err != nil {
		return nil, err
	}
	return s.ListProjects(ctx, userID)
}

func (r *UnavailableStore) Watch(ctx context.Context, userID string) (<-chan entity.StoreSnapshot, error) {
	s, err := r.reopen(ctx)
	if err != nil {
		return nil, err
	}
	return s.Watch(ctx, userID)
}

func (r *UnavailableStore) Ping(ctx context.Context) error {
	s, err := r.reopen(ctx)
	if err != nil {
		return err
	}
	return s.Ping(ctx)
}

// Close releases the recovered store, if any.
func (r *UnavailableStore) Close() error {
	r.mu.Lock()
	closers := r.closers
	r.store, r.closers = nil, nil
	r.mu.Unlock()

	var first error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}
