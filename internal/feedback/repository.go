package feedback

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrFeedbackNotFound = errors.New("feedback not found")

// Repository defines the database operations for feedback.
type Repository interface {
	// Upsert inserts the feedback or, when one already exists for the
	// (item, buyer) pair, updates its rating and comment in place. The
	// returned record is the persisted row either way.
	Upsert(ctx context.Context, feedback *Feedback) (*Feedback, error)

	// HasCompletedPurchase reports whether a completed transaction links
	// the buyer, seller and item.
	HasCompletedPurchase(ctx context.Context, buyerID, sellerID, itemID string) (bool, error)

	// GetDisplay returns one record with buyer email and item summary
	// resolved.
	GetDisplay(ctx context.Context, feedbackID string) (*Feedback, error)

	ListForItem(ctx context.Context, itemID string) ([]Feedback, error)
	ListForSeller(ctx context.Context, sellerID string) ([]Feedback, error)

	// RatingCounts returns the seller's rating-value → count mapping.
	RatingCounts(ctx context.Context, sellerID string) (map[int]int, error)

	// IncrementHelpful bumps the helpful counter and returns the record.
	IncrementHelpful(ctx context.Context, feedbackID string) (*Feedback, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, f *Feedback) (*Feedback, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO feedback (id, item_id, seller_id, buyer_id, rating, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (item_id, buyer_id)
		DO UPDATE SET rating = EXCLUDED.rating, comment = EXCLUDED.comment, updated_at = NOW()
		RETURNING id, item_id, seller_id, buyer_id, rating, comment, helpful_count, created_at, updated_at
	`, f.ID, f.ItemID, f.SellerID, f.BuyerID, f.Rating, f.Comment)

	return scanFeedback(row)
}

func (r *PostgresRepository) HasCompletedPurchase(ctx context.Context, buyerID, sellerID, itemID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM transactions
			WHERE buyer_id = $1 AND seller_id = $2 AND item_id = $3 AND status = 'completed'
		)
	`, buyerID, sellerID, itemID).Scan(&exists)
	return exists, err
}

const displayColumns = `f.id, f.item_id, f.seller_id, f.buyer_id, f.rating, f.comment,
		f.helpful_count, f.created_at, f.updated_at, u.email, i.name, i.image_url`

func (r *PostgresRepository) GetDisplay(ctx context.Context, feedbackID string) (*Feedback, error) {
	var f Feedback
	err := r.db.QueryRow(ctx, `
		SELECT `+displayColumns+`
		FROM feedback f
		JOIN users u ON u.id = f.buyer_id
		LEFT JOIN items i ON i.id = f.item_id
		WHERE f.id = $1
	`, feedbackID).Scan(&f.ID, &f.ItemID, &f.SellerID, &f.BuyerID, &f.Rating, &f.Comment,
		&f.HelpfulCount, &f.CreatedAt, &f.UpdatedAt, &f.BuyerEmail, &f.ItemName, &f.ItemImage)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrFeedbackNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *PostgresRepository) ListForItem(ctx context.Context, itemID string) ([]Feedback, error) {
	return r.list(ctx, `
		SELECT `+displayColumns+`
		FROM feedback f
		JOIN users u ON u.id = f.buyer_id
		LEFT JOIN items i ON i.id = f.item_id
		WHERE f.item_id = $1
		ORDER BY f.created_at DESC
	`, itemID)
}

func (r *PostgresRepository) ListForSeller(ctx context.Context, sellerID string) ([]Feedback, error) {
	return r.list(ctx, `
		SELECT `+displayColumns+`
		FROM feedback f
		JOIN users u ON u.id = f.buyer_id
		LEFT JOIN items i ON i.id = f.item_id
		WHERE f.seller_id = $1
		ORDER BY f.created_at DESC
	`, sellerID)
}

func (r *PostgresRepository) list(ctx context.Context, query, arg string) ([]Feedback, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	feedbacks := []Feedback{}
	for rows.Next() {
		var f Feedback
		err := rows.Scan(&f.ID, &f.ItemID, &f.SellerID, &f.BuyerID, &f.Rating, &f.Comment,
			&f.HelpfulCount, &f.CreatedAt, &f.UpdatedAt, &f.BuyerEmail, &f.ItemName, &f.ItemImage)
		if err != nil {
			return nil, err
		}
		feedbacks = append(feedbacks, f)
	}
	return feedbacks, rows.Err()
}

func (r *PostgresRepository) RatingCounts(ctx context.Context, sellerID string) (map[int]int, error) {
	rows, err := r.db.Query(ctx, `
		SELECT rating, COUNT(*) FROM feedback WHERE seller_id = $1 GROUP BY rating
	`, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[int]int{}
	for rows.Next() {
		var rating, count int
		if err := rows.Scan(&rating, &count); err != nil {
			return nil, err
		}
		counts[rating] = count
	}
	return counts, rows.Err()
}

func (r *PostgresRepository) IncrementHelpful(ctx context.Context, feedbackID string) (*Feedback, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE feedback
		SET helpful_count = helpful_count + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING id, item_id, seller_id, buyer_id, rating, comment, helpful_count, created_at, updated_at
	`, feedbackID)

	feedback, err := scanFeedback(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrFeedbackNotFound
	}
	return feedback, err
}

func scanFeedback(row pgx.Row) (*Feedback, error) {
	var f Feedback
	err := row.Scan(&f.ID, &f.ItemID, &f.SellerID, &f.BuyerID, &f.Rating, &f.Comment,
		&f.HelpfulCount, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
