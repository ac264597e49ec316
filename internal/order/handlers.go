package order

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skinsify/skinsify/internal/account"
)

// Handler contains the payment workflow HTTP handlers.
type Handler struct {
	useCase *UseCase
}

func NewHandler(useCase *UseCase) *Handler {
	return &Handler{useCase: useCase}
}

type createOrderRequest struct {
	Amount   float64 `json:"amount" binding:"required,gt=0"`
	ItemID   string  `json:"itemId" binding:"required"`
	SellerID string  `json:"sellerId" binding:"required"`
	GameID   string  `json:"gameId" binding:"required"`
	GameType string  `json:"gameType" binding:"required"`
}

type verifyRequest struct {
	OrderID   string `json:"razorpay_order_id" binding:"required"`
	PaymentID string `json:"razorpay_payment_id" binding:"required"`
	Signature string `json:"razorpay_signature" binding:"required"`
}

// CreateOrder handles POST /payment/create-order.
func (h *Handler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required parameters"})
		return
	}

	result, err := h.useCase.CreateOrder(c.Request.Context(), account.UserID(c), CreateOrderInput{
		Amount:   req.Amount,
		ItemID:   req.ItemID,
		SellerID: req.SellerID,
		GameID:   req.GameID,
		GameType: req.GameType,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required parameters"})
		case errors.Is(err, ErrDuplicateRequest):
			c.JSON(http.StatusConflict, gin.H{"message": "An order for this item is already in progress"})
		case errors.Is(err, ErrPartyNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "Seller or item not found"})
		case errors.Is(err, ErrOutOfStock):
			c.JSON(http.StatusConflict, gin.H{"message": "Item is out of stock"})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"message": "Payment initialization failed"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// Verify handles POST /payment/verify.
func (h *Handler) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required payment verification parameters"})
		return
	}

	detail, err := h.useCase.VerifyOrder(c.Request.Context(), req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		switch {
		case errors.Is(err, ErrSignatureMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"verified": false, "message": "Payment verification failed"})
		case errors.Is(err, ErrTransactionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"verified": false, "message": "Transaction not found"})
		case errors.Is(err, ErrOutOfStock):
			c.JSON(http.StatusConflict, gin.H{"verified": false, "message": "Item is out of stock"})
		case errors.Is(err, ErrAlreadyFailed):
			c.JSON(http.StatusConflict, gin.H{"verified": false, "message": "Transaction already failed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"verified": false, "message": "Payment verification failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"verified":    true,
		"message":     "Payment successful! The seller will transfer the item to your game account.",
		"transaction": detail,
	})
}

// ListTransactions handles GET /payment/transactions.
func (h *Handler) ListTransactions(c *gin.Context) {
	details, err := h.useCase.ListTransactions(c.Request.Context(), account.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to get transactions"})
		return
	}

	c.JSON(http.StatusOK, details)
}

// MarkTransferred handles PUT /payment/transactions/:id/transfer.
func (h *Handler) MarkTransferred(c *gin.Context) {
	detail, err := h.useCase.MarkTransferred(c.Request.Context(), c.Param("id"), account.UserID(c))
	if err != nil {
		if errors.Is(err, ErrTransferNotAllowed) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Transaction not found or already transferred"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update transfer status"})
		return
	}

	c.JSON(http.StatusOK, detail)
}
