package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/user-product-api/internal/core/domain"
	"github.com/99minutos/user-product-api/internal/core/ports"
	"github.com/99minutos/user-product-api/internal/infrastructure/security"
)

type stubUserRepo struct {
	users     map[string]*domain.User // keyed by email
	findErr   error
	createErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, exists := r.users[user.Email]; exists {
		return nil, domain.ErrUserExists
	}
	r.users[user.Email] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	for email, u := range r.users {
		if u.ID == user.ID {
			delete(r.users, email)
			r.users[user.Email] = cloneUser(user)
			return cloneUser(user), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	for email, u := range r.users {
		if u.ID == id {
			delete(r.users, email)
			return nil
		}
	}
	return domain.ErrUserNotFound
}

type recordingAudit struct {
	mu     sync.Mutex
	events []domain.AuthEvent
}

func (a *recordingAudit) Record(e domain.AuthEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *recordingAudit) last() domain.AuthEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.events[len(a.events)-1]
}

type authFixture struct {
	svc    *AuthService
	repo   *stubUserRepo
	tokens *security.TokenManager
	audit  *recordingAudit
}

func newAuthFixture(t *testing.T, opts AuthOptions) *authFixture {
	t.Helper()
	hasher, err := security.NewBcryptHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hasher: %v", err)
	}
	tokens, err := security.NewTokenManager("secret", time.Hour)
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}
	repo := newStubUserRepo()
	audit := &recordingAudit{}
	users := NewUserService(repo, hasher, zerolog.Nop())
	svc := NewAuthService(users, repo, hasher, tokens, audit, opts, zerolog.Nop())
	return &authFixture{svc: svc, repo: repo, tokens: tokens, audit: audit}
}

func (f *authFixture) register(t *testing.T, email, password string, role domain.Role) *domain.User {
	t.Helper()
	u, err := f.svc.Register(context.Background(), ports.RegisterInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		Password:  password,
		Role:      string(role),
	})
	if err != nil {
		t.Fatalf("Register(%s): %v", email, err)
	}
	return u
}

func TestAuthService_Register_HashesPassword(t *testing.T) {
	f := newAuthFixture(t, AuthOptions{})

	user := f.register(t, "a@x.com", "secret1", domain.RoleUser)
	if user.ID == "" {
		t.Fatalf("expected id to be assigned")
	}

	stored := f.repo.users["a@x.com"]
	if stored.PasswordHash == "secret1" || stored.PasswordHash == "" {
		t.Fatalf("expected password to be hashed, got %q", stored.PasswordHash)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if got := f.audit.last(); got.Type != domain.AuthEventRegister || got.Outcome != domain.OutcomeSuccess {
		t.Fatalf("unexpected audit event: %+v", got)
	}
}

func TestAuthService_Register_InvalidRole(t *testing.T) {
	f := newAuthFixture(t, AuthOptions{})

	_, err := f.svc.Register(context.Background(), ports.RegisterInput{
		Email: "a@x.com", Password: "secret1", Role: "superuser",
	})
	if !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
	if len(f.repo.users) != 0 {
		t.Fatalf("nothing should be stored")
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	f := newAuthFixture(t, AuthOptions{})
	f.register(t, "a@x.com", "secret1", domain.RoleUser)

	_, err := f.svc.Register(context.Background(), ports.RegisterInput{
		Email: "a@x.com", Password: "secret2", Role: "user",
	})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if got := f.audit.last(); got.Outcome != domain.OutcomeFailure {
		t.Fatalf("expected failure audit, got %+v", got)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	f := newAuthFixture(t, AuthOptions{})
	registered := f.register(t, "a@x.com", "secret1", domain.RoleUser)

	res, err := f.svc.Login(context.Background(), ports.LoginInput{
		Email: "a@x.com", Password: "secret1", Role: "user", IP: "10.0.0.1",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token == nil || res.Token.Value == "" {
		t.Fatalf("expected token")
	}
	if res.User.ID != registered.ID {
		t.Fatalf("unexpected user: %+v", res.User)
	}

	claims, err := f.tokens.Verify(res.Token.Value)
	if err != nil {
		t.Fatalf("issued token invalid: %v", err)
	}
	if claims.Email != "a@x.com" || claims.Role != domain.RoleUser || claims.Subject != registered.ID {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	ev := f.audit.last()
	if ev.Type != domain.AuthEventLogin || ev.Outcome != domain.OutcomeSuccess || ev.IP != "10.0.0.1" {
		t.Fatalf("unexpected audit event: %+v", ev)
	}
}

func TestAuthService_Login_FailuresAreIndistinguishable(t *testing.T) {
	f := newAuthFixture(t, AuthOptions{})
	f.register(t, "a@x.com", "secret1", domain.RoleUser)

	res1, wrongPwd := f.svc.Login(context.Background(), ports.LoginInput{Email: "a@x.com", Password: "wrong"})
	res2, unknown := f.svc.Login(context.Background(), ports.LoginInput{Email: "ghost@x.com", Password: "secret1"})

	if res1 != nil || res2 != nil {
		t.Fatalf("expected no result on failure")
	}
	if !errors.Is(wrongPwd, domain.ErrInvalidCredentials) || !errors.Is(unknown, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v / %v", wrongPwd, unknown)
	}
	if wrongPwd.Error() != unknown.Error() {
		t.Fatalf("failure messages differ: %q vs %q", wrongPwd, unknown)
	}
}

func TestAuthService_Login_StoredRoleWins(t *testing.T) {
	f := newAuthFixture(t, AuthOptions{})
	f.register(t, "a@x.com", "secret1", domain.RoleUser)

	res, err := f.svc.Login(context.Background(), ports.LoginInput{
		Email: "a@x.com", Password: "secret1", Role: "admin",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	claims, _ := f.tokens.Verify(res.Token.Value)
	if claims.Role != domain.RoleUser {
		t.Fatalf("expected stored role %q in token, got %q", domain.RoleUser, claims.Role)
	}
}

func TestAuthService_Login_TrustClientRole(t *testing.T) {
	f := newAuthFixture(t, AuthOptions{TrustClientRole: true})
	f.register(t, "a@x.com", "secret1", domain.RoleUser)

	res, err := f.svc.Login(context.Background(), ports.LoginInput{
		Email: "a@x.com", Password: "secret1", Role: "admin",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	claims, _ := f.tokens.Verify(res.Token.Value)
	if claims.Role != domain.RoleAdmin {
		t.Fatalf("expected client-supplied role in token, got %q", claims.Role)
	}
}

func TestAuthService_Login_StoreErrorPropagates(t *testing.T) {
	f := newAuthFixture(t, AuthOptions{})
	storeErr := errors.New("connection refused")
	f.repo.findErr = storeErr

	_, err := f.svc.Login(context.Background(), ports.LoginInput{Email: "a@x.com", Password: "secret1"})
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected store error, got %v", err)
	}
	if errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("store errors must not look like bad credentials")
	}
	if got := f.audit.last(); got.Outcome != domain.OutcomeError {
		t.Fatalf("expected error audit, got %+v", got)
	}
}
