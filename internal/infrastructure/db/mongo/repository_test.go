package mongo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/user-product-api/internal/core/domain"
)

// testDatabase connects to TEST_MONGO_URI and returns a throwaway database
// that is dropped when the test ends.
func testDatabase(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}

	ctx := context.Background()
	client, db, err := Connect(ctx, Config{URI: uri, Database: "test_" + uuid.NewString()[:8]})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	if err := EnsureIndexes(ctx, db); err != nil {
		t.Fatalf("EnsureIndexes: %v", err)
	}
	return db
}

func newUser(email string) *domain.User {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &domain.User{
		ID:           uuid.NewString(),
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        email,
		PasswordHash: "$2a$10$digest",
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUserRepository_UniqueEmail(t *testing.T) {
	repo := NewUserRepository(testDatabase(t))
	ctx := context.Background()

	if _, err := repo.Create(ctx, newUser("a@x.com")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.Create(ctx, newUser("a@x.com")); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	got, err := repo.FindByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if got.PasswordHash != "$2a$10$digest" || got.Role != domain.RoleUser {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestUserRepository_UpdateAndDelete(t *testing.T) {
	repo := NewUserRepository(testDatabase(t))
	ctx := context.Background()

	a, _ := repo.Create(ctx, newUser("a@x.com"))
	if _, err := repo.Create(ctx, newUser("b@x.com")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	a.Email = "b@x.com"
	if _, err := repo.Update(ctx, a); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists when taking another email, got %v", err)
	}

	if err := repo.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, a.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := repo.Update(ctx, a); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestProductRepository_CRUD(t *testing.T) {
	repo := NewProductRepository(testDatabase(t))
	ctx := context.Background()

	p := &domain.Product{ID: uuid.NewString(), Name: "Lamp", Price: 9.5, Quantity: 2, OwnerID: "u-1", CreatedAt: time.Now().UTC()}
	if _, err := repo.Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	p.Quantity = 0
	if _, err := repo.Update(ctx, p); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := repo.FindByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Quantity != 0 || got.OwnerID != "u-1" {
		t.Fatalf("unexpected product: %+v", got)
	}

	list, err := repo.List(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("List: %v, %d items", err, len(list))
	}

	if err := repo.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.FindByID(ctx, p.ID); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestAuditRepository_Insert(t *testing.T) {
	db := testDatabase(t)
	repo := NewAuditRepository(db)
	ctx := context.Background()

	err := repo.InsertAuthEvent(ctx, &domain.AuthEvent{
		ID: uuid.NewString(), Type: domain.AuthEventLogin, Email: "a@x.com",
		Outcome: domain.OutcomeFailure, IP: "10.0.0.1", OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("InsertAuthEvent: %v", err)
	}

	n, err := db.Collection(collectionAuthEvents).CountDocuments(ctx, map[string]string{"email": "a@x.com"})
	if err != nil || n != 1 {
		t.Fatalf("expected 1 stored event, got %d (%v)", n, err)
	}
}
