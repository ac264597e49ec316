package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrTransactionNotFound means no transaction matches the lookup.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrNotPending means the transaction already left the pending state.
	ErrNotPending = errors.New("transaction is not pending")
	// ErrOutOfStock means the item's quantity was already exhausted.
	ErrOutOfStock = errors.New("item is out of stock")
	// ErrTransferNotAllowed covers every mark-transferred precondition
	// failure; callers get one error, the log carries the sub-reason.
	ErrTransferNotAllowed = errors.New("transaction not found or already transferred")
)

// Repository defines the database operations for the order workflow.
type Repository interface {
	Create(ctx context.Context, transaction *Transaction) error
	GetByOrderID(ctx context.Context, orderID string) (*Transaction, error)
	GetByID(ctx context.Context, transactionID string) (*Transaction, error)

	// CompleteAndDecrement atomically completes a pending transaction and
	// decrements its item's quantity in one database transaction. It
	// returns ErrNotPending when the status guard fails and ErrOutOfStock
	// when the quantity guard fails; neither leaves any change behind.
	CompleteAndDecrement(ctx context.Context, orderID, paymentID, itemID string) error

	// MarkFailed moves a pending transaction to failed. Terminal statuses
	// are left untouched.
	MarkFailed(ctx context.Context, orderID string) error

	// MarkTransferred sets the transfer flag, guarded on seller ownership,
	// completed status and the flag not being set yet.
	MarkTransferred(ctx context.Context, transactionID, sellerID string) error

	GetDetail(ctx context.Context, transactionID string) (*Detail, error)
	ListForUser(ctx context.Context, userID string) ([]Detail, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, t *Transaction) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO transactions
			(id, buyer_id, seller_id, item_id, amount, status, item_transferred,
			 order_id, game_id, game_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, t.ID, t.BuyerID, t.SellerID, t.ItemID, t.Amount, t.Status, t.ItemTransferred,
		t.OrderID, t.GameDetails.GameID, t.GameDetails.GameType, t.CreatedAt, t.UpdatedAt)
	return err
}

const transactionColumns = `id, buyer_id, seller_id, item_id, amount, status,
		item_transferred, order_id, payment_id, game_id, game_type, created_at, updated_at`

func (r *PostgresRepository) GetByOrderID(ctx context.Context, orderID string) (*Transaction, error) {
	return r.get(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE order_id = $1`, orderID)
}

func (r *PostgresRepository) GetByID(ctx context.Context, transactionID string) (*Transaction, error) {
	return r.get(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, transactionID)
}

func (r *PostgresRepository) get(ctx context.Context, query, arg string) (*Transaction, error) {
	var t Transaction
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&t.ID, &t.BuyerID, &t.SellerID, &t.ItemID, &t.Amount, &t.Status,
		&t.ItemTransferred, &t.OrderID, &t.PaymentID,
		&t.GameDetails.GameID, &t.GameDetails.GameType, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PostgresRepository) CompleteAndDecrement(ctx context.Context, orderID, paymentID, itemID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Status guard first: a concurrent verification of the same order
	// loses here and never reaches the decrement.
	tag, err := tx.Exec(ctx, `
		UPDATE transactions
		SET status = $1, payment_id = $2, updated_at = NOW()
		WHERE order_id = $3 AND status = $4
	`, StatusCompleted, paymentID, orderID, StatusPending)
	if err != nil {
		return fmt.Errorf("complete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotPending
	}

	tag, err = tx.Exec(ctx, `
		UPDATE items
		SET quantity = quantity - 1
		WHERE id = $1 AND quantity > 0
	`, itemID)
	if err != nil {
		return fmt.Errorf("decrement quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Rollback leaves the transaction pending
		return ErrOutOfStock
	}

	return tx.Commit(ctx)
}

func (r *PostgresRepository) MarkFailed(ctx context.Context, orderID string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE transactions
		SET status = $1, updated_at = NOW()
		WHERE order_id = $2 AND status = $3
	`, StatusFailed, orderID, StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotPending
	}
	return nil
}

func (r *PostgresRepository) MarkTransferred(ctx context.Context, transactionID, sellerID string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE transactions
		SET item_transferred = TRUE, updated_at = NOW()
		WHERE id = $1 AND seller_id = $2 AND status = $3 AND item_transferred = FALSE
	`, transactionID, sellerID, StatusCompleted)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTransferNotAllowed
	}
	return nil
}

const detailQuery = `
	SELECT t.id, t.buyer_id, t.seller_id, t.item_id, t.amount, t.status,
		t.item_transferred, t.order_id, t.payment_id, t.game_id, t.game_type,
		t.created_at, t.updated_at,
		b.email, s.email,
		i.id, i.name, i.price, i.game, i.rarity, i.image_url
	FROM transactions t
	JOIN users b ON b.id = t.buyer_id
	JOIN users s ON s.id = t.seller_id
	LEFT JOIN items i ON i.id = t.item_id`

func (r *PostgresRepository) GetDetail(ctx context.Context, transactionID string) (*Detail, error) {
	row := r.db.QueryRow(ctx, detailQuery+` WHERE t.id = $1`, transactionID)

	detail, err := scanDetail(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTransactionNotFound
	}
	return detail, err
}

func (r *PostgresRepository) ListForUser(ctx context.Context, userID string) ([]Detail, error) {
	rows, err := r.db.Query(ctx, detailQuery+`
		WHERE t.buyer_id = $1 OR t.seller_id = $1
		ORDER BY t.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := []Detail{}
	for rows.Next() {
		detail, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, *detail)
	}
	return details, rows.Err()
}

func scanDetail(row pgx.Row) (*Detail, error) {
	var (
		d        Detail
		itemID   *string
		itemName *string
		price    *float64
		game     *string
		rarity   *string
		imageURL *string
	)

	err := row.Scan(
		&d.ID, &d.BuyerID, &d.SellerID, &d.ItemID, &d.Amount, &d.Status,
		&d.ItemTransferred, &d.OrderID, &d.PaymentID,
		&d.GameDetails.GameID, &d.GameDetails.GameType, &d.CreatedAt, &d.UpdatedAt,
		&d.Buyer.Email, &d.Seller.Email,
		&itemID, &itemName, &price, &game, &rarity, &imageURL,
	)
	if err != nil {
		return nil, err
	}

	d.Buyer.ID = d.BuyerID
	d.Seller.ID = d.SellerID
	if itemID != nil {
		d.Item = &ItemSummary{
			ID:       *itemID,
			Name:     *itemName,
			Price:    *price,
			Game:     *game,
			Rarity:   *rarity,
			ImageURL: *imageURL,
		}
	}
	return &d, nil
}
