package account

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// UseCase contains the account business logic.
type UseCase struct {
	repository Repository
	jwtSecret  []byte
	tokenTTL   time.Duration
}

func NewUseCase(repository Repository, jwtSecret string, tokenTTL time.Duration) *UseCase {
	return &UseCase{
		repository: repository,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTL,
	}
}

// Register creates an account and returns it with a signed token.
func (uc *UseCase) Register(ctx context.Context, email, password string) (*User, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	if err := uc.repository.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := uc.issueToken(user.ID)
	if err != nil {
		return nil, "", err
	}

	log.Printf("✅ User registered: %s", user.Email)
	return user, token, nil
}

// Login verifies credentials and returns the user with a signed token.
func (uc *UseCase) Login(ctx context.Context, email, password string) (*User, string, error) {
	user, err := uc.repository.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := uc.issueToken(user.ID)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// GetProfile returns a user with their game accounts resolved.
func (uc *UseCase) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	user, err := uc.repository.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	accounts, err := uc.repository.ListGameAccounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load game accounts: %w", err)
	}

	return &Profile{User: *user, GameAccounts: accounts}, nil
}

// SetGameID stores the user's external identifier for one game.
func (uc *UseCase) SetGameID(ctx context.Context, userID string, account GameAccount) error {
	if account.GameType == "" || account.GameID == "" {
		return fmt.Errorf("gameType and gameId are required")
	}
	return uc.repository.UpsertGameAccount(ctx, userID, account)
}

func (uc *UseCase) issueToken(userID string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(uc.tokenTTL)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(uc.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// ParseToken validates a bearer token and returns the user ID it carries.
func (uc *UseCase) ParseToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return uc.jwtSecret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", errors.New("token missing subject")
	}
	return claims.Subject, nil
}
