package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrItemNotFound = errors.New("item not found")

// Repository defines the database operations for catalog items.
type Repository interface {
	List(ctx context.Context, filter Filter) ([]Item, error)
	Get(ctx context.Context, itemID string) (*Item, error)
	GetForSeller(ctx context.Context, itemID, sellerID string) (*Item, error)
	ListBySeller(ctx context.Context, sellerID string) ([]Item, error)
	Create(ctx context.Context, item *Item) error
	Delete(ctx context.Context, itemID string) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &PostgresRepository{db: db}
}

const itemColumns = `i.id, i.name, i.description, i.price, i.quantity, i.game, i.rarity,
		i.image_url, i.video_url, i.seller_id, u.email, i.created_at`

// buildListQuery turns a Filter into SQL. Search matches name or
// description case-insensitively; price bounds are inclusive.
func buildListQuery(filter Filter) (string, []any) {
	var (
		conditions []string
		args       []any
	)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Game != "" {
		conditions = append(conditions, "i.game = "+arg(filter.Game))
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		conditions = append(conditions, "(i.name ILIKE "+p+" OR i.description ILIKE "+p+")")
	}
	if filter.MinPrice != nil {
		conditions = append(conditions, "i.price >= "+arg(*filter.MinPrice))
	}
	if filter.MaxPrice != nil {
		conditions = append(conditions, "i.price <= "+arg(*filter.MaxPrice))
	}

	query := `SELECT ` + itemColumns + `
		FROM items i
		LEFT JOIN users u ON u.id = i.seller_id`
	if len(conditions) > 0 {
		query += "\n\t\tWHERE " + strings.Join(conditions, " AND ")
	}

	switch filter.Sort {
	case SortPriceDesc:
		query += "\n\t\tORDER BY i.price DESC"
	case SortName:
		query += "\n\t\tORDER BY i.name ASC"
	case SortRarity:
		query += "\n\t\tORDER BY i.rarity ASC"
	default:
		query += "\n\t\tORDER BY i.price ASC"
	}

	return query, args
}

func (r *PostgresRepository) List(ctx context.Context, filter Filter) ([]Item, error) {
	query, args := buildListQuery(filter)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanItems(rows)
}

func (r *PostgresRepository) Get(ctx context.Context, itemID string) (*Item, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+itemColumns+`
		FROM items i
		LEFT JOIN users u ON u.id = i.seller_id
		WHERE i.id = $1
	`, itemID)

	item, err := scanItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	return item, err
}

func (r *PostgresRepository) GetForSeller(ctx context.Context, itemID, sellerID string) (*Item, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+itemColumns+`
		FROM items i
		LEFT JOIN users u ON u.id = i.seller_id
		WHERE i.id = $1 AND i.seller_id = $2
	`, itemID, sellerID)

	item, err := scanItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	return item, err
}

func (r *PostgresRepository) ListBySeller(ctx context.Context, sellerID string) ([]Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+itemColumns+`
		FROM items i
		LEFT JOIN users u ON u.id = i.seller_id
		WHERE i.seller_id = $1
		ORDER BY i.created_at DESC
	`, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanItems(rows)
}

func (r *PostgresRepository) Create(ctx context.Context, item *Item) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO items (id, name, description, price, quantity, game, rarity, image_url, video_url, seller_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, item.ID, item.Name, item.Description, item.Price, item.Quantity, item.Game,
		item.Rarity, item.ImageURL, item.VideoURL, item.SellerID, item.CreatedAt)
	return err
}

func (r *PostgresRepository) Delete(ctx context.Context, itemID string) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM items WHERE id = $1", itemID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func scanItem(row pgx.Row) (*Item, error) {
	var item Item
	err := row.Scan(&item.ID, &item.Name, &item.Description, &item.Price, &item.Quantity,
		&item.Game, &item.Rarity, &item.ImageURL, &item.VideoURL, &item.SellerID,
		&item.SellerEmail, &item.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func scanItems(rows pgx.Rows) ([]Item, error) {
	items := []Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}
