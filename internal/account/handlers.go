package account

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler contains the auth HTTP handlers.
type Handler struct {
	useCase *UseCase
}

func NewHandler(useCase *UseCase) *Handler {
	return &Handler{useCase: useCase}
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type gameIDRequest struct {
	GameType string `json:"gameType" binding:"required"`
	GameID   string `json:"gameId" binding:"required"`
}

// Register handles POST /auth/register.
func (h *Handler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	user, token, err := h.useCase.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"message": "Email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to register"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	user, token, err := h.useCase.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to log in"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// Me handles GET /auth/me.
func (h *Handler) Me(c *gin.Context) {
	profile, err := h.useCase.GetProfile(c.Request.Context(), UserID(c))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// SetGameID handles PUT /auth/game-ids.
func (h *Handler) SetGameID(c *gin.Context) {
	var req gameIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if err := h.useCase.SetGameID(c.Request.Context(), UserID(c), GameAccount(req)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to save game ID"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Game ID saved"})
}
