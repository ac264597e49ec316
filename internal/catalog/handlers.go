package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/skinsify/skinsify/internal/account"
)

const maxUploadSize = 10 << 20 // 10MB per file

// Handler contains the catalog HTTP handlers.
type Handler struct {
	useCase *UseCase
}

func NewHandler(useCase *UseCase) *Handler {
	return &Handler{useCase: useCase}
}

// List handles GET /items with optional filter/sort/search query params.
func (h *Handler) List(c *gin.Context) {
	filter := Filter{
		Game:   c.Query("game"),
		Search: c.Query("search"),
		Sort:   c.DefaultQuery("sort", SortPrice),
	}

	if v := c.Query("minPrice"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid minPrice"})
			return
		}
		filter.MinPrice = &price
	}
	if v := c.Query("maxPrice"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid maxPrice"})
			return
		}
		filter.MaxPrice = &price
	}

	items, err := h.useCase.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch items"})
		return
	}

	c.JSON(http.StatusOK, items)
}

// Get handles GET /items/:id.
func (h *Handler) Get(c *gin.Context) {
	item, err := h.useCase.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch item"})
		return
	}

	c.JSON(http.StatusOK, item)
}

// ListMine handles GET /items/user/items for the authenticated seller.
func (h *Handler) ListMine(c *gin.Context) {
	items, err := h.useCase.ListBySeller(c.Request.Context(), account.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch your items"})
		return
	}

	c.JSON(http.StatusOK, items)
}

// Create handles POST /items (multipart: fields + image + optional video).
func (h *Handler) Create(c *gin.Context) {
	price, err := strconv.ParseFloat(c.PostForm("price"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid price"})
		return
	}
	quantity := 1
	if v := c.PostForm("quantity"); v != "" {
		if quantity, err = strconv.Atoi(v); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid quantity"})
			return
		}
	}

	input := CreateItemInput{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Price:       price,
		Quantity:    quantity,
		Game:        c.PostForm("game"),
		Rarity:      c.PostForm("rarity"),
	}

	image, err := h.formFile(c, "image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Image is required"})
		return
	}
	defer image.close()

	video, err := h.formFile(c, "video")
	if err == nil {
		defer video.close()
	}

	var videoUpload *UploadFile
	if video != nil {
		videoUpload = &video.UploadFile
	}

	item, err := h.useCase.Create(c.Request.Context(), account.UserID(c), input, &image.UploadFile, videoUpload)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to upload item"})
		return
	}

	c.JSON(http.StatusCreated, item)
}

// Delete handles DELETE /items/:id for the owning seller.
func (h *Handler) Delete(c *gin.Context) {
	err := h.useCase.Delete(c.Request.Context(), c.Param("id"), account.UserID(c))
	if err != nil {
		if errors.Is(err, ErrNotOwner) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Item not found or unauthorized"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item deleted successfully"})
}

type openedFile struct {
	UploadFile
	close func() error
}

func (h *Handler) formFile(c *gin.Context, field string) (*openedFile, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, err
	}
	if header.Size > maxUploadSize {
		return nil, errors.New("file too large")
	}

	f, err := header.Open()
	if err != nil {
		return nil, err
	}

	return &openedFile{
		UploadFile: UploadFile{Reader: f, Filename: header.Filename},
		close:      f.Close,
	}, nil
}
