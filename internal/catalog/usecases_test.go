package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skinsify/skinsify/internal/media"
)

type memRepository struct {
	items      map[string]*Item
	failCreate bool
}

func newMemRepository() *memRepository {
	return &memRepository{items: make(map[string]*Item)}
}

func (m *memRepository) List(_ context.Context, _ Filter) ([]Item, error) {
	result := []Item{}
	for _, item := range m.items {
		result = append(result, *item)
	}
	return result, nil
}

func (m *memRepository) Get(_ context.Context, itemID string) (*Item, error) {
	item, ok := m.items[itemID]
	if !ok {
		return nil, ErrItemNotFound
	}
	copied := *item
	return &copied, nil
}

func (m *memRepository) GetForSeller(_ context.Context, itemID, sellerID string) (*Item, error) {
	item, ok := m.items[itemID]
	if !ok || item.SellerID == nil || *item.SellerID != sellerID {
		return nil, ErrItemNotFound
	}
	copied := *item
	return &copied, nil
}

func (m *memRepository) ListBySeller(_ context.Context, sellerID string) ([]Item, error) {
	result := []Item{}
	for _, item := range m.items {
		if item.SellerID != nil && *item.SellerID == sellerID {
			result = append(result, *item)
		}
	}
	return result, nil
}

func (m *memRepository) Create(_ context.Context, item *Item) error {
	if m.failCreate {
		return errors.New("insert failed")
	}
	copied := *item
	m.items[item.ID] = &copied
	return nil
}

func (m *memRepository) Delete(_ context.Context, itemID string) error {
	if _, ok := m.items[itemID]; !ok {
		return ErrItemNotFound
	}
	delete(m.items, itemID)
	return nil
}

// fakeHost records uploads and destroys so tests can check cleanup.
type fakeHost struct {
	uploads    int
	destroyed  []string
	failUpload bool
}

func (h *fakeHost) Upload(_ context.Context, _ io.Reader, _ string) (*media.UploadResult, error) {
	if h.failUpload {
		return nil, errors.New("upload failed")
	}
	h.uploads++
	publicID := fmt.Sprintf("skinsify/upload_%d", h.uploads)
	return &media.UploadResult{
		URL:          "https://res.cloudinary.com/demo/" + publicID + ".png",
		PublicID:     publicID,
		ResourceType: "image",
	}, nil
}

func (h *fakeHost) Destroy(_ context.Context, publicID, _ string) error {
	h.destroyed = append(h.destroyed, publicID)
	return nil
}

func validCreateInput() CreateItemInput {
	return CreateItemInput{
		Name:        "Dragon Lore",
		Description: "Factory-new AWP skin",
		Price:       800,
		Quantity:    1,
		Game:        "CS:GO",
		Rarity:      "Legendary",
	}
}

func imageFile() *UploadFile {
	return &UploadFile{Reader: strings.NewReader("png-bytes"), Filename: "skin.png"}
}

func TestCreate_Success(t *testing.T) {
	// Arrange
	repo := newMemRepository()
	host := &fakeHost{}
	uc := NewUseCase(repo, host)

	// Act
	item, err := uc.Create(context.Background(), "seller-1", validCreateInput(), imageFile(), nil)

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "seller-1", *item.SellerID)
	assert.Contains(t, item.ImageURL, "skinsify/upload_1")
	assert.Nil(t, item.VideoURL)
	assert.Len(t, repo.items, 1)
}

func TestCreate_WithVideo(t *testing.T) {
	repo := newMemRepository()
	host := &fakeHost{}
	uc := NewUseCase(repo, host)

	video := &UploadFile{Reader: strings.NewReader("mp4-bytes"), Filename: "clip.mp4"}
	item, err := uc.Create(context.Background(), "seller-1", validCreateInput(), imageFile(), video)

	require.NoError(t, err)
	require.NotNil(t, item.VideoURL)
	assert.Equal(t, 2, host.uploads)
}

func TestCreate_ValidatesBeforeUploading(t *testing.T) {
	repo := newMemRepository()
	host := &fakeHost{}
	uc := NewUseCase(repo, host)

	invalid := []CreateItemInput{
		func() CreateItemInput { i := validCreateInput(); i.Name = ""; return i }(),
		func() CreateItemInput { i := validCreateInput(); i.Description = ""; return i }(),
		func() CreateItemInput { i := validCreateInput(); i.Price = -1; return i }(),
		func() CreateItemInput { i := validCreateInput(); i.Quantity = -1; return i }(),
		func() CreateItemInput { i := validCreateInput(); i.Game = "Fortnite"; return i }(),
		func() CreateItemInput { i := validCreateInput(); i.Rarity = "Shiny"; return i }(),
	}
	for _, input := range invalid {
		_, err := uc.Create(context.Background(), "seller-1", input, imageFile(), nil)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}

	// Missing image is rejected too, still without touching the host
	_, err := uc.Create(context.Background(), "seller-1", validCreateInput(), nil, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Zero(t, host.uploads)
}

func TestCreate_InsertFailureCleansUpMedia(t *testing.T) {
	// Arrange
	repo := newMemRepository()
	repo.failCreate = true
	host := &fakeHost{}
	uc := NewUseCase(repo, host)

	video := &UploadFile{Reader: strings.NewReader("mp4-bytes"), Filename: "clip.mp4"}

	// Act
	_, err := uc.Create(context.Background(), "seller-1", validCreateInput(), imageFile(), video)

	// Assert: both uploads were destroyed again
	require.Error(t, err)
	assert.Equal(t, []string{"skinsify/upload_1", "skinsify/upload_2"}, host.destroyed)
	assert.Empty(t, repo.items)
}

func TestDelete_Success(t *testing.T) {
	// Arrange
	repo := newMemRepository()
	host := &fakeHost{}
	uc := NewUseCase(repo, host)
	item, err := uc.Create(context.Background(), "seller-1", validCreateInput(), imageFile(), nil)
	require.NoError(t, err)

	// Act
	err = uc.Delete(context.Background(), item.ID, "seller-1")

	// Assert
	require.NoError(t, err)
	assert.Empty(t, repo.items)
	assert.Equal(t, []string{"skinsify/upload_1"}, host.destroyed)
}

func TestDelete_NotOwner(t *testing.T) {
	repo := newMemRepository()
	host := &fakeHost{}
	uc := NewUseCase(repo, host)
	item, err := uc.Create(context.Background(), "seller-1", validCreateInput(), imageFile(), nil)
	require.NoError(t, err)

	err = uc.Delete(context.Background(), item.ID, "seller-2")

	assert.ErrorIs(t, err, ErrNotOwner)
	assert.Len(t, repo.items, 1)
	assert.Empty(t, host.destroyed)
}
