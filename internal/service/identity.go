package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/craftbay/marketplace-api/internal/apperr"
	"github.com/craftbay/marketplace-api/internal/config"
	"github.com/craftbay/marketplace-api/internal/logging"
	"github.com/craftbay/marketplace-api/internal/models"
	"github.com/craftbay/marketplace-api/internal/store"
)

const bcryptCost = 10

// Identity is the authenticated caller extracted from a verified token.
type Identity struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

// IdentityService registers and authenticates users and mints bearer tokens.
type IdentityService struct {
	store    store.RecordStore
	users    store.Table
	secret   []byte
	tokenTTL time.Duration
	hashCost int
	logger   *slog.Logger
}

// NewIdentityService creates an identity service over the users table.
func NewIdentityService(s store.RecordStore, tables store.Tables, cfg config.AuthConfig) *IdentityService {
	return &IdentityService{
		store:    s,
		users:    tables.Users,
		secret:   []byte(cfg.JWTSecret),
		tokenTTL: cfg.TokenTTL,
		hashCost: bcryptCost,
		logger:   logging.New("identity-service"),
	}
}

// Signup registers a new user. The public userId is minted here rather than
// reusing the store's row id, which stays store-internal. Fails with
// ErrConflict when the email is already registered.
func (s *IdentityService) Signup(ctx context.Context, email, password string) (*AuthResponse, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperr.NewValidationError("email", "email is required")
	}
	if password == "" {
		return nil, apperr.NewValidationError("password", "password is required")
	}

	existing, err := s.store.FilterByField(ctx, s.users, "email", email)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, apperr.ErrConflict
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		UserID:       uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
	}

	if _, err := s.store.Create(ctx, s.users, models.UserFields(user)); err != nil {
		s.logger.Error("failed to create user", "email", email, "error", err.Error())
		return nil, err
	}

	token, err := s.IssueToken(user.UserID, user.Email)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.UserID)
	return &AuthResponse{UserID: user.UserID, Email: user.Email, Token: token}, nil
}

// Login authenticates by email and password. Unknown email and wrong
// password return the same ErrUnauthorized so callers cannot probe for
// registered addresses.
func (s *IdentityService) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	records, err := s.store.FilterByField(ctx, s.users, "email", strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperr.ErrUnauthorized
	}

	user := models.UserFromFields(records[0].ID, records[0].Fields)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.ErrUnauthorized
	}

	token, err := s.IssueToken(user.UserID, user.Email)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", "user_id", user.UserID)
	return &AuthResponse{UserID: user.UserID, Email: user.Email, Token: token}, nil
}

// IssueToken mints a signed, time-limited bearer token for the user.
func (s *IdentityService) IssueToken(userID, email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"userId": userID,
		"email":  email,
		"iat":    now.Unix(),
		"exp":    now.Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// VerifyToken checks signature and expiry and returns the embedded identity.
func (s *IdentityService) VerifyToken(raw string) (*Identity, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithLeeway(30*time.Second)) // small clock skew

	if err != nil || !token.Valid {
		return nil, apperr.ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperr.ErrUnauthorized
	}

	userID, _ := claims["userId"].(string)
	email, _ := claims["email"].(string)
	if userID == "" {
		return nil, apperr.ErrUnauthorized
	}

	return &Identity{UserID: userID, Email: email}, nil
}
