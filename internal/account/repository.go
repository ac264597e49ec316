package account

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

// Repository defines the database operations for user accounts.
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, userID string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ListGameAccounts(ctx context.Context, userID string) ([]GameAccount, error)
	UpsertGameAccount(ctx context.Context, userID string, account GameAccount) error
}

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *User) error {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO NOTHING
	`, user.ID, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEmailTaken
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID string) (*User, error) {
	return r.get(ctx, "SELECT id, email, password_hash, created_at FROM users WHERE id = $1", userID)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.get(ctx, "SELECT id, email, password_hash, created_at FROM users WHERE email = $1", email)
}

func (r *PostgresRepository) get(ctx context.Context, query, arg string) (*User, error) {
	var user User
	err := r.db.QueryRow(ctx, query, arg).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *PostgresRepository) ListGameAccounts(ctx context.Context, userID string) ([]GameAccount, error) {
	rows, err := r.db.Query(ctx, `
		SELECT game_type, game_id FROM game_accounts WHERE user_id = $1 ORDER BY game_type
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := []GameAccount{}
	for rows.Next() {
		var a GameAccount
		if err := rows.Scan(&a.GameType, &a.GameID); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *PostgresRepository) UpsertGameAccount(ctx context.Context, userID string, account GameAccount) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO game_accounts (user_id, game_type, game_id, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, game_type)
		DO UPDATE SET game_id = EXCLUDED.game_id, updated_at = NOW()
	`, userID, account.GameType, account.GameID)
	return err
}
