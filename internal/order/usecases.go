package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/skinsify/skinsify/internal/account"
	"github.com/skinsify/skinsify/internal/cache"
	"github.com/skinsify/skinsify/internal/catalog"
	"github.com/skinsify/skinsify/internal/payment"
)

const currency = "INR"

var (
	ErrValidation        = errors.New("missing required parameters")
	ErrDuplicateRequest  = errors.New("duplicate request")
	ErrPartyNotFound     = errors.New("seller or item not found")
	ErrPaymentInit       = errors.New("payment initialization failed")
	ErrSignatureMismatch = errors.New("payment verification failed")
	ErrAlreadyFailed     = errors.New("transaction already failed")
)

// ItemStore is the slice of the catalog the workflow needs.
type ItemStore interface {
	GetForSeller(ctx context.Context, itemID, sellerID string) (*catalog.Item, error)
}

// UserStore is the slice of the account store the workflow needs.
type UserStore interface {
	GetByID(ctx context.Context, userID string) (*account.User, error)
}

// CreateOrderInput carries a checkout initiation.
type CreateOrderInput struct {
	Amount   float64
	ItemID   string
	SellerID string
	GameID   string
	GameType string
}

// CreateOrderResult is what the caller needs to drive the external
// checkout UI: the provider's order identifier, not ours.
type CreateOrderResult struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// UseCase orchestrates order creation, payment verification, inventory
// decrement and transfer acknowledgement.
type UseCase struct {
	repository Repository
	items      ItemStore
	users      UserStore
	gateway    payment.Gateway
	guard      cache.IdempotencyGuard

	ordersCreated    metric.Int64Counter
	paymentsVerified metric.Int64Counter
	paymentsFailed   metric.Int64Counter
}

func NewUseCase(
	repository Repository,
	items ItemStore,
	users UserStore,
	gateway payment.Gateway,
	guard cache.IdempotencyGuard,
) *UseCase {
	meter := otel.Meter("skinsify/order")
	ordersCreated, _ := meter.Int64Counter("orders.created")
	paymentsVerified, _ := meter.Int64Counter("payments.verified")
	paymentsFailed, _ := meter.Int64Counter("payments.failed")

	return &UseCase{
		repository:       repository,
		items:            items,
		users:            users,
		gateway:          gateway,
		guard:            guard,
		ordersCreated:    ordersCreated,
		paymentsVerified: paymentsVerified,
		paymentsFailed:   paymentsFailed,
	}
}

// CreateOrder validates the checkout, creates the remote payment order and
// only then persists the pending transaction. A gateway failure leaves
// nothing behind.
func (uc *UseCase) CreateOrder(ctx context.Context, buyerID string, input CreateOrderInput) (*CreateOrderResult, error) {
	if input.Amount <= 0 || input.ItemID == "" || input.SellerID == "" ||
		input.GameID == "" || input.GameType == "" {
		return nil, ErrValidation
	}

	// Guard against duplicate rapid submissions of the same checkout
	ok, err := uc.guard.SetIdempotency(ctx, fmt.Sprintf("order:%s:%s", buyerID, input.ItemID))
	if err != nil {
		return nil, fmt.Errorf("idempotency check failed: %w", err)
	}
	if !ok {
		return nil, ErrDuplicateRequest
	}

	if _, err := uc.users.GetByID(ctx, input.SellerID); err != nil {
		if errors.Is(err, account.ErrUserNotFound) {
			return nil, ErrPartyNotFound
		}
		return nil, fmt.Errorf("failed to load seller: %w", err)
	}

	item, err := uc.items.GetForSeller(ctx, input.ItemID, input.SellerID)
	if err != nil {
		if errors.Is(err, catalog.ErrItemNotFound) {
			return nil, ErrPartyNotFound
		}
		return nil, fmt.Errorf("failed to load item: %w", err)
	}
	if item.Quantity <= 0 {
		return nil, ErrOutOfStock
	}

	// Amount in the provider's minor currency unit
	amountMinor := int64(math.Round(input.Amount * 100))
	receipt := "rcpt_" + uuid.New().String()

	remoteOrder, err := uc.gateway.CreateOrder(ctx, amountMinor, currency, receipt)
	if err != nil {
		log.Printf("❌ Payment order creation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrPaymentInit, err)
	}

	transaction := NewTransaction(
		uuid.New().String(), buyerID, input.SellerID, input.ItemID,
		remoteOrder.ID, input.Amount,
		GameDetails{GameID: input.GameID, GameType: input.GameType},
	)
	if err := uc.repository.Create(ctx, transaction); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	uc.ordersCreated.Add(ctx, 1)
	log.Printf("➡️ Order created: %s (item %s, buyer %s)", remoteOrder.ID, input.ItemID, buyerID)

	return &CreateOrderResult{
		ID:       remoteOrder.ID,
		Amount:   remoteOrder.Amount,
		Currency: remoteOrder.Currency,
	}, nil
}

// VerifyOrder checks the gateway signature and, on success, completes the
// transaction and decrements the item's quantity exactly once. Verifying an
// already-completed order is a no-op that reports the existing state.
func (uc *UseCase) VerifyOrder(ctx context.Context, orderID, paymentID, signature string) (*Detail, error) {
	if orderID == "" || paymentID == "" || signature == "" {
		return nil, ErrValidation
	}

	if !uc.gateway.VerifySignature(orderID, paymentID, signature) {
		uc.paymentsFailed.Add(ctx, 1)
		if err := uc.repository.MarkFailed(ctx, orderID); err != nil && !errors.Is(err, ErrNotPending) {
			log.Printf("❌ Failed to mark transaction failed for order %s: %v", orderID, err)
		}
		log.Printf("❌ Signature mismatch for order %s", orderID)
		return nil, ErrSignatureMismatch
	}

	transaction, err := uc.repository.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch transaction.Status {
	case StatusCompleted:
		// Already verified: report the existing state, never re-decrement
		log.Printf("✅ Order %s already verified, skipping", orderID)
		return uc.repository.GetDetail(ctx, transaction.ID)
	case StatusFailed:
		return nil, ErrAlreadyFailed
	}

	err = uc.repository.CompleteAndDecrement(ctx, orderID, paymentID, transaction.ItemID)
	if errors.Is(err, ErrNotPending) {
		// Lost a race with a concurrent verification of the same order
		current, readErr := uc.repository.GetByOrderID(ctx, orderID)
		if readErr != nil {
			return nil, readErr
		}
		if current.Status == StatusCompleted {
			return uc.repository.GetDetail(ctx, current.ID)
		}
		return nil, ErrAlreadyFailed
	}
	if err != nil {
		return nil, err
	}

	uc.paymentsVerified.Add(ctx, 1)
	log.Printf("✅ Payment verified for order %s (payment %s)", orderID, paymentID)

	return uc.repository.GetDetail(ctx, transaction.ID)
}

// MarkTransferred records the seller's acknowledgement that the item was
// delivered to the buyer's game account.
func (uc *UseCase) MarkTransferred(ctx context.Context, transactionID, actingUserID string) (*Detail, error) {
	err := uc.repository.MarkTransferred(ctx, transactionID, actingUserID)
	if errors.Is(err, ErrTransferNotAllowed) {
		uc.logTransferRefusal(ctx, transactionID, actingUserID)
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update transfer status: %w", err)
	}

	log.Printf("✅ Transfer acknowledged for transaction %s", transactionID)
	return uc.repository.GetDetail(ctx, transactionID)
}

// ListTransactions returns the transactions where the caller is buyer or
// seller, newest first.
func (uc *UseCase) ListTransactions(ctx context.Context, userID string) ([]Detail, error) {
	return uc.repository.ListForUser(ctx, userID)
}

// logTransferRefusal reports why a transfer acknowledgement was refused.
// The caller only sees one error; the log keeps the sub-reasons distinct.
func (uc *UseCase) logTransferRefusal(ctx context.Context, transactionID, actingUserID string) {
	transaction, err := uc.repository.GetByID(ctx, transactionID)
	switch {
	case errors.Is(err, ErrTransactionNotFound):
		log.Printf("⚠️ Transfer refused: transaction %s not found", transactionID)
	case err != nil:
		log.Printf("⚠️ Transfer refused for %s, reason lookup failed: %v", transactionID, err)
	case transaction.SellerID != actingUserID:
		log.Printf("⚠️ Transfer refused: user %s is not the seller of %s", actingUserID, transactionID)
	case transaction.Status != StatusCompleted:
		log.Printf("⚠️ Transfer refused: transaction %s is %s", transactionID, transaction.Status)
	case transaction.ItemTransferred:
		log.Printf("⚠️ Transfer refused: transaction %s already transferred", transactionID)
	}
}
