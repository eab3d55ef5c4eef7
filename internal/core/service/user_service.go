package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/user-product-api/internal/core/domain"
	"github.com/99minutos/user-product-api/internal/core/ports"
)

type UserService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	logger zerolog.Logger
}

func NewUserService(repo ports.UserRepository, hasher ports.PasswordHasher, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, hasher: hasher, logger: logger}
}

// Create validates the role, hashes the password and inserts the user. The
// plaintext password never reaches the repository.
func (s *UserService) Create(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	role := domain.Role(in.Role)
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: digest,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", created.ID).Str("email", created.Email).Msg("user created")
	return created, nil
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.repo.List(ctx)
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

// Update applies a partial update. A changed password is rehashed before the
// write.
func (s *UserService) Update(ctx context.Context, actor domain.Claims, id string, in ports.UpdateUserInput) (*domain.User, error) {
	isAdmin := actor.Role == domain.RoleAdmin
	if !isAdmin && actor.Subject != id {
		return nil, domain.ErrForbidden
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.Role != nil {
		role := domain.Role(*in.Role)
		if !role.Valid() {
			return nil, domain.ErrInvalidRole
		}
		if role != user.Role && !isAdmin {
			return nil, domain.ErrForbidden
		}
		user.Role = role
	}
	if in.Password != nil {
		digest, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
		user.PasswordHash = digest
	}
	user.UpdatedAt = time.Now().UTC()

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", id).Str("actor", actor.Subject).Msg("user updated")
	return updated, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", id).Msg("user deleted")
	return nil
}
