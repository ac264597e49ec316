package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestTransaction() *Transaction {
	return NewTransaction(
		"tx-123", "buyer-1", "seller-1", "item-1", "order_abc", 800,
		GameDetails{GameID: "abc123", GameType: "Valorant"},
	)
}

func TestNewTransaction(t *testing.T) {
	// Act
	transaction := newTestTransaction()

	// Assert
	assert.Equal(t, StatusPending, transaction.Status)
	assert.False(t, transaction.ItemTransferred)
	assert.Nil(t, transaction.PaymentID)
	assert.Equal(t, "order_abc", transaction.OrderID)
	assert.Equal(t, "abc123", transaction.GameDetails.GameID)
	assert.Equal(t, "Valorant", transaction.GameDetails.GameType)
	assert.False(t, transaction.CreatedAt.IsZero())
}

func TestTransaction_Complete(t *testing.T) {
	// Arrange
	transaction := newTestTransaction()

	// Act
	err := transaction.Complete("pay_123")

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, StatusCompleted, transaction.Status)
	assert.Equal(t, "pay_123", *transaction.PaymentID)

	// Completed is terminal
	assert.Error(t, transaction.Complete("pay_456"))
	assert.Error(t, transaction.Fail())
	assert.Equal(t, "pay_123", *transaction.PaymentID)
}

func TestTransaction_Fail(t *testing.T) {
	// Arrange
	transaction := newTestTransaction()

	// Act
	err := transaction.Fail()

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, StatusFailed, transaction.Status)

	// Failed is terminal
	assert.Error(t, transaction.Complete("pay_123"))
	assert.Error(t, transaction.Fail())
}

func TestTransaction_MarkTransferred(t *testing.T) {
	transaction := newTestTransaction()

	// Pending transactions cannot be transferred
	assert.Error(t, transaction.MarkTransferred())
	assert.False(t, transaction.ItemTransferred)

	// Completed transactions can, exactly once
	assert.NoError(t, transaction.Complete("pay_123"))
	assert.NoError(t, transaction.MarkTransferred())
	assert.True(t, transaction.ItemTransferred)
	assert.Error(t, transaction.MarkTransferred())
}
