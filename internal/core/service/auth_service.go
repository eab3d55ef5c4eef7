package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/user-product-api/internal/api/metrics"
	"github.com/99minutos/user-product-api/internal/core/domain"
	"github.com/99minutos/user-product-api/internal/core/ports"
)

// AuthOptions tunes the login flow.
type AuthOptions struct {
	// TrustClientRole issues the role claim from the login request instead of
	// the stored user. Off by default: with it on, any user can obtain an
	// admin token by asking for one.
	TrustClientRole bool
}

// AuthService implements registration and login.
type AuthService struct {
	users  ports.UserService
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	tokens ports.TokenIssuer
	audit  ports.AuditRecorder
	opts   AuthOptions
	logger zerolog.Logger

	// decoy is compared against on a lookup miss so both failure paths do
	// the same bcrypt work.
	decoy string
}

func NewAuthService(
	users ports.UserService,
	repo ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	audit ports.AuditRecorder,
	opts AuthOptions,
	logger zerolog.Logger,
) *AuthService {
	if audit == nil {
		audit = discardRecorder{}
	}
	decoy, err := hasher.Hash("decoy-password-for-missing-users")
	if err != nil {
		logger.Warn().Err(err).Msg("failed to prepare decoy digest")
	}
	return &AuthService{
		users:  users,
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		audit:  audit,
		opts:   opts,
		logger: logger,
		decoy:  decoy,
	}
}

// Register creates a new account. No token is issued; the caller logs in
// separately.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	user, err := s.users.Create(ctx, ports.CreateUserInput{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Password:  in.Password,
		Role:      in.Role,
	})

	switch {
	case err == nil:
		metrics.RegistrationsTotal.WithLabelValues("success").Inc()
		s.record(domain.AuthEventRegister, in.Email, in.IP, domain.OutcomeSuccess)
		s.logger.Info().Str("email", in.Email).Str("user_id", user.ID).Msg("registration successful")
		return user, nil
	case errors.Is(err, domain.ErrUserExists):
		metrics.RegistrationsTotal.WithLabelValues("conflict").Inc()
		s.record(domain.AuthEventRegister, in.Email, in.IP, domain.OutcomeFailure)
	case errors.Is(err, domain.ErrInvalidRole):
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		s.record(domain.AuthEventRegister, in.Email, in.IP, domain.OutcomeFailure)
	default:
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		s.record(domain.AuthEventRegister, in.Email, in.IP, domain.OutcomeError)
	}

	s.logger.Warn().Err(err).Str("email", in.Email).Msg("registration failed")
	return nil, err
}

// Login verifies the credentials and issues an access token. An unknown
// email and a wrong password both yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
	user, err := s.repo.FindByEmail(ctx, in.Email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, s.loginError(in, fmt.Errorf("login: %w", err))
		}
		if s.decoy != "" {
			_, _ = s.hasher.Verify(in.Password, s.decoy)
		}
		return nil, s.loginFailure(in)
	}

	ok, err := s.hasher.Verify(in.Password, user.PasswordHash)
	if err != nil {
		return nil, s.loginError(in, fmt.Errorf("login: %w", err))
	}
	if !ok {
		return nil, s.loginFailure(in)
	}

	role := user.Role
	if s.opts.TrustClientRole && in.Role != "" {
		role = domain.Role(in.Role)
	} else if in.Role != "" && domain.Role(in.Role) != user.Role {
		s.logger.Warn().
			Str("email", in.Email).
			Str("claimed_role", in.Role).
			Str("stored_role", string(user.Role)).
			Msg("claimed role ignored, issuing stored role")
	}

	token, err := s.tokens.Issue(domain.Identity{UserID: user.ID, Email: user.Email, Role: role})
	if err != nil {
		return nil, s.loginError(in, fmt.Errorf("login: %w", err))
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	s.record(domain.AuthEventLogin, in.Email, in.IP, domain.OutcomeSuccess)
	s.logger.Info().Str("email", in.Email).Str("user_id", user.ID).Msg("login successful")

	return &ports.LoginResult{User: user, Token: token}, nil
}

func (s *AuthService) loginFailure(in ports.LoginInput) error {
	metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
	s.record(domain.AuthEventLogin, in.Email, in.IP, domain.OutcomeFailure)
	s.logger.Info().Str("email", in.Email).Msg("login failed")
	return domain.ErrInvalidCredentials
}

func (s *AuthService) loginError(in ports.LoginInput, err error) error {
	metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
	s.record(domain.AuthEventLogin, in.Email, in.IP, domain.OutcomeError)
	s.logger.Error().Err(err).Str("email", in.Email).Msg("login error")
	return err
}

func (s *AuthService) record(typ domain.AuthEventType, email, ip string, outcome domain.AuthOutcome) {
	s.audit.Record(domain.AuthEvent{
		Type:       typ,
		Email:      email,
		Outcome:    outcome,
		IP:         ip,
		OccurredAt: time.Now().UTC(),
	})
}

type discardRecorder struct{}

func (discardRecorder) Record(domain.AuthEvent) {}
