package order

import (
	"errors"
	"time"
)

// Transaction statuses. Transitions are one-directional: pending may move
// to completed or failed; completed and failed are terminal.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// GameDetails carries the buyer's delivery coordinates: their external
// identifier in the game the item belongs to.
type GameDetails struct {
	GameID   string `json:"gameId" db:"game_id"`
	GameType string `json:"gameType" db:"game_type"`
}

// Transaction records one buyer's purchase of one item from one seller,
// including payment and delivery-acknowledgement state.
type Transaction struct {
	ID              string      `json:"id" db:"id"`
	BuyerID         string      `json:"buyerId" db:"buyer_id"`
	SellerID        string      `json:"sellerId" db:"seller_id"`
	ItemID          string      `json:"itemId" db:"item_id"`
	Amount          float64     `json:"amount" db:"amount"`
	Status          string      `json:"status" db:"status"`
	ItemTransferred bool        `json:"itemTransferred" db:"item_transferred"`
	OrderID         string      `json:"orderId" db:"order_id"`
	PaymentID       *string     `json:"paymentId,omitempty" db:"payment_id"`
	GameDetails     GameDetails `json:"gameDetails"`
	CreatedAt       time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time   `json:"updatedAt" db:"updated_at"`
}

// NewTransaction creates a pending transaction for a freshly issued remote
// payment order.
func NewTransaction(id, buyerID, sellerID, itemID, orderID string, amount float64, details GameDetails) *Transaction {
	return &Transaction{
		ID:          id,
		BuyerID:     buyerID,
		SellerID:    sellerID,
		ItemID:      itemID,
		Amount:      amount,
		Status:      StatusPending,
		OrderID:     orderID,
		GameDetails: details,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

// Complete marks the transaction as paid. Only pending transactions may
// complete.
func (t *Transaction) Complete(paymentID string) error {
	if t.Status != StatusPending {
		return errors.New("only pending transactions can be completed")
	}

	t.Status = StatusCompleted
	t.PaymentID = &paymentID
	t.UpdatedAt = time.Now()
	return nil
}

// Fail marks the transaction as failed. Only pending transactions may fail.
func (t *Transaction) Fail() error {
	if t.Status != StatusPending {
		return errors.New("only pending transactions can be marked as failed")
	}

	t.Status = StatusFailed
	t.UpdatedAt = time.Now()
	return nil
}

// MarkTransferred records the seller's acknowledgement that the item was
// handed over in-game. Allowed exactly once, and only after completion.
func (t *Transaction) MarkTransferred() error {
	if t.Status != StatusCompleted {
		return errors.New("only completed transactions can be transferred")
	}
	if t.ItemTransferred {
		return errors.New("item already transferred")
	}

	t.ItemTransferred = true
	t.UpdatedAt = time.Now()
	return nil
}

// Party is the display projection of a buyer or seller.
type Party struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// ItemSummary is the display projection of the purchased item.
type ItemSummary struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Game     string  `json:"game"`
	Rarity   string  `json:"rarity"`
	ImageURL string  `json:"imageUrl"`
}

// Detail is a transaction with buyer, seller and item resolved for
// display. Item may be nil when the listing was deleted after purchase.
type Detail struct {
	Transaction
	Buyer  Party        `json:"buyer"`
	Seller Party        `json:"seller"`
	Item   *ItemSummary `json:"item,omitempty"`
}
