package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/craftbay/marketplace-api/internal/apperr"
	"github.com/craftbay/marketplace-api/internal/config"
	"github.com/craftbay/marketplace-api/internal/store"
)

func testTables() store.Tables {
	return store.Tables{
		Users:      store.Table{BaseID: "appU", Name: "Users"},
		Products:   store.Table{BaseID: "appP", Name: "Products"},
		Orders:     store.Table{BaseID: "appO", Name: "Orders"},
		MyProducts: store.Table{BaseID: "appM", Name: "MyProducts"},
	}
}

func newTestIdentity() (*IdentityService, *store.MemoryStore) {
	ms := store.NewMemoryStore()
	svc := NewIdentityService(ms, testTables(), config.AuthConfig{
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
	})
	svc.hashCost = bcrypt.MinCost // keep hashing fast in tests
	return svc, ms
}

func TestSignupAndLogin(t *testing.T) {
	svc, _ := newTestIdentity()
	ctx := context.Background()

	signup, err := svc.Signup(ctx, "alice@example.com", "hunter2")
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}
	if signup.UserID == "" || signup.Token == "" {
		t.Fatalf("Expected userId and token, got %+v", signup)
	}
	if signup.Email != "alice@example.com" {
		t.Errorf("Expected email echoed back, got %s", signup.Email)
	}

	login, err := svc.Login(ctx, "alice@example.com", "hunter2")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if login.UserID != signup.UserID {
		t.Errorf("Expected stable userId across signup and login, got %s and %s", signup.UserID, login.UserID)
	}

	ident, err := svc.VerifyToken(login.Token)
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}
	if ident.UserID != signup.UserID || ident.Email != "alice@example.com" {
		t.Errorf("Expected token to carry identity, got %+v", ident)
	}
}

func TestSignupMintsOwnUserID(t *testing.T) {
	svc, ms := newTestIdentity()
	ctx := context.Background()

	signup, err := svc.Signup(ctx, "bob@example.com", "pw")
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}

	// The public userId must not be the store's row id.
	records, err := ms.FilterByField(ctx, testTables().Users, "email", "bob@example.com")
	if err != nil || len(records) != 1 {
		t.Fatalf("Expected one stored user, got %d (err %v)", len(records), err)
	}
	if records[0].ID == signup.UserID {
		t.Error("Expected userId distinct from the store record id")
	}
	if strings.HasPrefix(signup.UserID, "rec") {
		t.Errorf("Expected minted userId, got store-shaped id %s", signup.UserID)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc, ms := newTestIdentity()
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "carol@example.com", "pw"); err != nil {
		t.Fatalf("First signup failed: %v", err)
	}

	_, err := svc.Signup(ctx, "carol@example.com", "other")
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("Expected ErrConflict, got %v", err)
	}
	if got := ms.Count(testTables().Users); got != 1 {
		t.Errorf("Expected 1 stored user after rejected duplicate, got %d", got)
	}
}

func TestSignupValidation(t *testing.T) {
	svc, _ := newTestIdentity()
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"missing email", "", "pw"},
		{"blank email", "   ", "pw"},
		{"missing password", "dave@example.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Signup(ctx, tt.email, tt.password)
			var validationErr *apperr.ValidationError
			if !errors.As(err, &validationErr) {
				t.Errorf("Expected ValidationError, got %v", err)
			}
		})
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newTestIdentity()
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "erin@example.com", "correct"); err != nil {
		t.Fatalf("Signup failed: %v", err)
	}

	// Unknown email and wrong password must be indistinguishable.
	if _, err := svc.Login(ctx, "nobody@example.com", "correct"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized for unknown email, got %v", err)
	}
	if _, err := svc.Login(ctx, "erin@example.com", "wrong"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized for wrong password, got %v", err)
	}
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	svc, _ := newTestIdentity()

	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := svc.VerifyToken(raw); !errors.Is(err, apperr.ErrUnauthorized) {
			t.Errorf("VerifyToken(%q): expected ErrUnauthorized, got %v", raw, err)
		}
	}
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	svc, _ := newTestIdentity()
	svc.tokenTTL = -2 * time.Minute // beyond the verification leeway

	token, err := svc.IssueToken("user-1", "frank@example.com")
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	if _, err := svc.VerifyToken(token); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized for expired token, got %v", err)
	}
}

func TestVerifyTokenRejectsWrongSecret(t *testing.T) {
	svc, _ := newTestIdentity()
	other := NewIdentityService(store.NewMemoryStore(), testTables(), config.AuthConfig{
		JWTSecret: "different-secret",
		TokenTTL:  time.Hour,
	})

	token, err := other.IssueToken("user-1", "grace@example.com")
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	if _, err := svc.VerifyToken(token); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized for foreign signature, got %v", err)
	}
}
