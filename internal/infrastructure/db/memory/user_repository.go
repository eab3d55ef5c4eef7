// Package memory provides map-backed repositories for local development and
// tests. Data does not survive a restart.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/99minutos/user-product-api/internal/core/domain"
)

type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*domain.User
	byEmail map[string]string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]string),
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return nil, domain.ErrUserExists
	}
	clone := *user
	r.byID[clone.ID] = &clone
	r.byEmail[clone.Email] = clone.ID
	out := clone
	return &out, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *r.byID[id]
	return &clone, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

// List returns users ordered by creation time.
func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		clone := *u
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[user.ID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if user.Email != current.Email {
		if _, taken := r.byEmail[user.Email]; taken {
			return nil, domain.ErrUserExists
		}
		delete(r.byEmail, current.Email)
		r.byEmail[user.Email] = user.ID
	}
	clone := *user
	r.byID[user.ID] = &clone
	out := clone
	return &out, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	delete(r.byEmail, u.Email)
	delete(r.byID, id)
	return nil
}
