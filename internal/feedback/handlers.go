package feedback

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skinsify/skinsify/internal/account"
)

// Handler contains the feedback HTTP handlers.
type Handler struct {
	useCase *UseCase
}

func NewHandler(useCase *UseCase) *Handler {
	return &Handler{useCase: useCase}
}

type submitRequest struct {
	ItemID   string `json:"itemId" binding:"required"`
	SellerID string `json:"sellerId" binding:"required"`
	Rating   int    `json:"rating" binding:"required"`
	Comment  string `json:"comment" binding:"required"`
}

// Submit handles POST /feedback.
func (h *Handler) Submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	feedback, err := h.useCase.Submit(c.Request.Context(), account.UserID(c), SubmitInput{
		ItemID:   req.ItemID,
		SellerID: req.SellerID,
		Rating:   req.Rating,
		Comment:  req.Comment,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRating), errors.Is(err, ErrCommentTooShort):
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		case errors.Is(err, ErrNotPurchased):
			c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create feedback"})
		}
		return
	}

	c.JSON(http.StatusOK, feedback)
}

// ItemReviews handles GET /feedback/item/:itemId.
func (h *Handler) ItemReviews(c *gin.Context) {
	reviews, stats, err := h.useCase.ItemReviews(c.Request.Context(), c.Param("itemId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to get item feedback"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviews": reviews, "stats": stats})
}

// SellerReviews handles GET /feedback/seller/:sellerId.
func (h *Handler) SellerReviews(c *gin.Context) {
	reviews, err := h.useCase.SellerReviews(c.Request.Context(), c.Param("sellerId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to get seller feedback"})
		return
	}

	c.JSON(http.StatusOK, reviews)
}

// SellerStats handles GET /feedback/stats/:sellerId.
func (h *Handler) SellerStats(c *gin.Context) {
	stats, err := h.useCase.SellerStats(c.Request.Context(), c.Param("sellerId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to get seller statistics"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// MarkHelpful handles POST /feedback/:id/helpful.
func (h *Handler) MarkHelpful(c *gin.Context) {
	feedback, err := h.useCase.MarkHelpful(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrFeedbackNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Review not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to mark review as helpful"})
		return
	}

	c.JSON(http.StatusOK, feedback)
}
