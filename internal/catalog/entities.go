package catalog

import (
	"time"
)

// Item represents a marketplace listing for a virtual gaming good.
type Item struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Price       float64   `json:"price" db:"price"`
	Quantity    int       `json:"quantity" db:"quantity"`
	Game        string    `json:"game" db:"game"`
	Rarity      string    `json:"rarity" db:"rarity"`
	ImageURL    string    `json:"imageUrl" db:"image_url"`
	VideoURL    *string   `json:"videoUrl,omitempty" db:"video_url"`
	SellerID    *string   `json:"sellerId,omitempty" db:"seller_id"`
	SellerEmail *string   `json:"sellerEmail,omitempty" db:"seller_email"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// Supported games and rarities. These mirror the values the frontend
// renders and the schema enforces.
var (
	Games    = []string{"CS:GO", "Valorant", "PUBG/BGMI"}
	Rarities = []string{"Common", "Rare", "Epic", "Legendary", "Mythic", "Premium"}
)

func ValidGame(game string) bool {
	for _, g := range Games {
		if g == game {
			return true
		}
	}
	return false
}

func ValidRarity(rarity string) bool {
	for _, r := range Rarities {
		if r == rarity {
			return true
		}
	}
	return false
}

// Sort keys accepted by List.
const (
	SortPrice     = "price"
	SortPriceDesc = "price-desc"
	SortName      = "name"
	SortRarity    = "rarity"
)

// Filter narrows and orders a catalog listing. All fields are optional;
// the zero value lists everything by ascending price.
type Filter struct {
	Game     string
	Search   string
	MinPrice *float64
	MaxPrice *float64
	Sort     string
}
