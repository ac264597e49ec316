package order

import (
	"context"
	"fmt"
	"sync"

	"github.com/skinsify/skinsify/internal/account"
	"github.com/skinsify/skinsify/internal/catalog"
	"github.com/skinsify/skinsify/internal/payment"
)

// memRepository is an in-memory Repository honoring the same guards as the
// Postgres implementation, including the atomic complete-and-decrement.
type memRepository struct {
	mu           sync.Mutex
	transactions map[string]*Transaction // keyed by order ID
	quantities   map[string]int          // item ID -> quantity
	emails       map[string]string       // user ID -> email
}

func newMemRepository() *memRepository {
	return &memRepository{
		transactions: make(map[string]*Transaction),
		quantities:   make(map[string]int),
		emails:       make(map[string]string),
	}
}

func (m *memRepository) Create(_ context.Context, t *Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *t
	m.transactions[t.OrderID] = &copied
	return nil
}

func (m *memRepository) GetByOrderID(_ context.Context, orderID string) (*Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.transactions[orderID]
	if !ok {
		return nil, ErrTransactionNotFound
	}
	copied := *t
	return &copied, nil
}

func (m *memRepository) GetByID(_ context.Context, transactionID string) (*Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.findByID(transactionID)
	if t == nil {
		return nil, ErrTransactionNotFound
	}
	copied := *t
	return &copied, nil
}

func (m *memRepository) CompleteAndDecrement(_ context.Context, orderID, paymentID, itemID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.transactions[orderID]
	if !ok || t.Status != StatusPending {
		return ErrNotPending
	}
	if m.quantities[itemID] <= 0 {
		return ErrOutOfStock
	}

	m.quantities[itemID]--
	t.Status = StatusCompleted
	t.PaymentID = &paymentID
	return nil
}

func (m *memRepository) MarkFailed(_ context.Context, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.transactions[orderID]
	if !ok || t.Status != StatusPending {
		return ErrNotPending
	}
	t.Status = StatusFailed
	return nil
}

func (m *memRepository) MarkTransferred(_ context.Context, transactionID, sellerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.findByID(transactionID)
	if t == nil || t.SellerID != sellerID || t.Status != StatusCompleted || t.ItemTransferred {
		return ErrTransferNotAllowed
	}
	t.ItemTransferred = true
	return nil
}

func (m *memRepository) GetDetail(_ context.Context, transactionID string) (*Detail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.findByID(transactionID)
	if t == nil {
		return nil, ErrTransactionNotFound
	}
	return &Detail{
		Transaction: *t,
		Buyer:       Party{ID: t.BuyerID, Email: m.emails[t.BuyerID]},
		Seller:      Party{ID: t.SellerID, Email: m.emails[t.SellerID]},
	}, nil
}

func (m *memRepository) ListForUser(_ context.Context, userID string) ([]Detail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	details := []Detail{}
	for _, t := range m.transactions {
		if t.BuyerID == userID || t.SellerID == userID {
			details = append(details, Detail{Transaction: *t})
		}
	}
	return details, nil
}

func (m *memRepository) findByID(transactionID string) *Transaction {
	for _, t := range m.transactions {
		if t.ID == transactionID {
			return t
		}
	}
	return nil
}

func (m *memRepository) quantity(itemID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.quantities[itemID]
}

// memItemStore serves items from the repository's quantity map so both
// views of stock stay consistent.
type memItemStore struct {
	repo  *memRepository
	items map[string]catalog.Item // keyed by item ID
}

func (s *memItemStore) GetForSeller(_ context.Context, itemID, sellerID string) (*catalog.Item, error) {
	item, ok := s.items[itemID]
	if !ok || item.SellerID == nil || *item.SellerID != sellerID {
		return nil, catalog.ErrItemNotFound
	}
	item.Quantity = s.repo.quantity(itemID)
	return &item, nil
}

type memUserStore struct {
	users map[string]*account.User
}

func (s *memUserStore) GetByID(_ context.Context, userID string) (*account.User, error) {
	user, ok := s.users[userID]
	if !ok {
		return nil, account.ErrUserNotFound
	}
	return user, nil
}

// fakeGateway issues sequential order IDs and verifies signatures with the
// real HMAC scheme.
type fakeGateway struct {
	mu          sync.Mutex
	secret      string
	failCreate  bool
	createCalls int
}

func (g *fakeGateway) CreateOrder(_ context.Context, amountMinor int64, currency, receipt string) (*payment.GatewayOrder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.createCalls++
	if g.failCreate {
		return nil, fmt.Errorf("gateway unreachable")
	}
	return &payment.GatewayOrder{
		ID:       fmt.Sprintf("order_test_%d", g.createCalls),
		Amount:   amountMinor,
		Currency: currency,
		Receipt:  receipt,
		Status:   "created",
	}, nil
}

func (g *fakeGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return payment.VerifySignature(g.secret, orderID, paymentID, signature)
}

func (g *fakeGateway) sign(orderID, paymentID string) string {
	return payment.Signature(g.secret, orderID, paymentID)
}

type memGuard struct {
	mu   sync.Mutex
	keys map[string]bool
}

func newMemGuard() *memGuard {
	return &memGuard{keys: make(map[string]bool)}
}

func (g *memGuard) SetIdempotency(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.keys[key] {
		return false, nil
	}
	g.keys[key] = true
	return true, nil
}
