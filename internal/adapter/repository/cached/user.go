package cached

import (
	"context"
	"strconv"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"user-api-service/internal/adapter/cache"
	domain "user-api-service/internal/domain/user"
	"user-api-service/internal/usecase/user"
	"user-api-service/pkg/logger"
)

// UserRepository decorates a user.Repository with a read-through cache for
// lookups by id. Writes go straight to the store; update and delete then
// drop the affected entry. Cache failures degrade to store reads.
//
// Users returned from GetByID carry no password hash; GetByEmail, which
// login depends on, is never cached.
type UserRepository struct {
	next  user.Repository
	cache cache.UserCache
	log   *zap.Logger
	group singleflight.Group

	// generation advances after every committed write that invalidates an
	// entry. A fill only lands if no write happened since its store read began.
	generation atomic.Uint64
}

var _ user.Repository = (*UserRepository)(nil)

// NewUserRepository wraps next with c.
func NewUserRepository(next user.Repository, c cache.UserCache, log *zap.Logger) *UserRepository {
	return &UserRepository{
		next:  next,
		cache: c,
		log:   log.Named("cached_repo"),
	}
}

// Create delegates to the store.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (int64, error) {
	return r.next.Create(ctx, u)
}

// GetByID serves from cache when possible. Concurrent misses for the same id
// share a single store read.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	log := logger.WithContext(ctx, r.log)

	if u, err := r.cache.Get(ctx, id); err != nil {
		log.Warn("cache read failed, using store", zap.Int64("id", id), zap.Error(err))
	} else if u != nil {
		return u, nil
	}

	key := strconv.FormatInt(id, 10)
	ch := r.group.DoChan(key, func() (any, error) {
		// the shared read must outlive any single caller
		fctx := context.WithoutCancel(ctx)
		if u, err := r.cache.Get(fctx, id); err == nil && u != nil {
			return u, nil
		}

		gen := r.generation.Load()
		u, err := r.next.GetByID(fctx, id)
		if err != nil {
			return nil, err
		}
		r.fill(fctx, gen, u)
		return u, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		u := res.Val.(*domain.User)
		if res.Shared {
			clone := *u
			u = &clone
		}
		return u, nil
	}
}

// fill caches u unless a write committed after gen was observed. A write that
// lands between the check and the Set is caught by the second check.
func (r *UserRepository) fill(ctx context.Context, gen uint64, u *domain.User) {
	log := logger.WithContext(ctx, r.log)
	if r.generation.Load() != gen {
		log.Debug("skipping cache fill after concurrent write", zap.Int64("id", u.ID))
		return
	}
	if err := r.cache.Set(ctx, u); err != nil {
		log.Warn("cache fill failed", zap.Int64("id", u.ID), zap.Error(err))
		return
	}
	if r.generation.Load() != gen {
		r.dropEntry(ctx, u.ID)
	}
}

// GetByEmail delegates to the store.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.next.GetByEmail(ctx, email)
}

// Update writes through and invalidates id.
func (r *UserRepository) Update(ctx context.Context, id int64, changes domain.Changes) error {
	if err := r.next.Update(ctx, id, changes); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

// Delete writes through and invalidates id.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

// List delegates to the store.
func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	return r.next.List(ctx)
}

func (r *UserRepository) invalidate(ctx context.Context, id int64) {
	r.generation.Add(1)
	// later readers must not join a flight that may have read the old row
	r.group.Forget(strconv.FormatInt(id, 10))
	r.dropEntry(ctx, id)
}

func (r *UserRepository) dropEntry(ctx context.Context, id int64) {
	if err := r.cache.Invalidate(ctx, id); err != nil {
		// the entry expires on its own after the TTL
		logger.WithContext(ctx, r.log).Warn("cache invalidation failed", zap.Int64("id", id), zap.Error(err))
	}
}
