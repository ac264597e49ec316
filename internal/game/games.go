package game

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Game is a reference-catalog entry for a supported game.
type Game struct {
	ID    string `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Image string `json:"image" db:"image"`
	Slug  string `json:"slug" db:"slug"`
}

var demoGames = []Game{
	{Name: "CS:GO", Image: "https://images.unsplash.com/photo-1542751371-adc38448a05e", Slug: "csgo"},
	{Name: "Valorant", Image: "https://images.unsplash.com/photo-1538481199705-c710c4e965fc", Slug: "valorant"},
	{Name: "PUBG/BGMI", Image: "https://images.unsplash.com/photo-1560253023-3ec5d502959f", Slug: "pubg-bgmi"},
}

// Repository defines the database operations for games.
type Repository interface {
	List(ctx context.Context) ([]Game, error)
	Count(ctx context.Context) (int, error)
	InsertAll(ctx context.Context, games []Game) error
}

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]Game, error) {
	rows, err := r.db.Query(ctx, "SELECT id, name, image, slug FROM games ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := []Game{}
	for rows.Next() {
		var g Game
		if err := rows.Scan(&g.ID, &g.Name, &g.Image, &g.Slug); err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM games").Scan(&count)
	return count, err
}

func (r *PostgresRepository) InsertAll(ctx context.Context, games []Game) error {
	for _, g := range games {
		_, err := r.db.Exec(ctx, `
			INSERT INTO games (id, name, image, slug)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (name) DO NOTHING
		`, g.ID, g.Name, g.Image, g.Slug)
		if err != nil {
			return err
		}
	}
	return nil
}

// Seed inserts the demo games when the table is empty.
func Seed(ctx context.Context, repository Repository) error {
	count, err := repository.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	games := make([]Game, len(demoGames))
	for i, g := range demoGames {
		g.ID = uuid.New().String()
		games[i] = g
	}
	if err := repository.InsertAll(ctx, games); err != nil {
		return err
	}

	log.Println("✅ Demo games initialized")
	return nil
}

// Handler contains the games HTTP handlers.
type Handler struct {
	repository Repository
}

func NewHandler(repository Repository) *Handler {
	return &Handler{repository: repository}
}

// List handles GET /games.
func (h *Handler) List(c *gin.Context) {
	games, err := h.repository.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch games"})
		return
	}

	c.JSON(http.StatusOK, games)
}
