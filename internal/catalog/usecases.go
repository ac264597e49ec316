package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/skinsify/skinsify/internal/media"
)

var (
	ErrInvalidInput = errors.New("invalid item input")
	ErrNotOwner     = errors.New("item not found or not owned by caller")
)

// UploadFile is one incoming multipart file.
type UploadFile struct {
	Reader   io.Reader
	Filename string
}

// CreateItemInput carries the listing fields supplied by the seller.
type CreateItemInput struct {
	Name        string
	Description string
	Price       float64
	Quantity    int
	Game        string
	Rarity      string
}

// UseCase contains the catalog business logic.
type UseCase struct {
	repository Repository
	host       media.Host
}

func NewUseCase(repository Repository, host media.Host) *UseCase {
	return &UseCase{
		repository: repository,
		host:       host,
	}
}

func (uc *UseCase) List(ctx context.Context, filter Filter) ([]Item, error) {
	return uc.repository.List(ctx, filter)
}

func (uc *UseCase) Get(ctx context.Context, itemID string) (*Item, error) {
	return uc.repository.Get(ctx, itemID)
}

func (uc *UseCase) ListBySeller(ctx context.Context, sellerID string) ([]Item, error) {
	return uc.repository.ListBySeller(ctx, sellerID)
}

// Create uploads the listing media and persists the item. A failed insert
// triggers best-effort cleanup of anything already uploaded.
func (uc *UseCase) Create(ctx context.Context, sellerID string, input CreateItemInput, image *UploadFile, video *UploadFile) (*Item, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if image == nil {
		return nil, fmt.Errorf("%w: image is required", ErrInvalidInput)
	}

	imageResult, err := uc.host.Upload(ctx, image.Reader, image.Filename)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	var videoResult *media.UploadResult
	if video != nil {
		videoResult, err = uc.host.Upload(ctx, video.Reader, video.Filename)
		if err != nil {
			uc.cleanup(ctx, imageResult, nil)
			return nil, fmt.Errorf("failed to upload video: %w", err)
		}
	}

	item := &Item{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Quantity:    input.Quantity,
		Game:        input.Game,
		Rarity:      input.Rarity,
		ImageURL:    imageResult.URL,
		SellerID:    &sellerID,
		CreatedAt:   time.Now(),
	}
	if videoResult != nil {
		item.VideoURL = &videoResult.URL
	}

	if err := uc.repository.Create(ctx, item); err != nil {
		uc.cleanup(ctx, imageResult, videoResult)
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	log.Printf("✅ Item listed: %s (%s)", item.Name, item.ID)
	return item, nil
}

// Delete removes an owned listing and its hosted media.
func (uc *UseCase) Delete(ctx context.Context, itemID, sellerID string) error {
	item, err := uc.repository.GetForSeller(ctx, itemID, sellerID)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return ErrNotOwner
		}
		return fmt.Errorf("failed to load item: %w", err)
	}

	if err := uc.host.Destroy(ctx, media.PublicIDFromURL(item.ImageURL), "image"); err != nil {
		log.Printf("⚠️ Image cleanup failed for item %s: %v", item.ID, err)
	}
	if item.VideoURL != nil {
		if err := uc.host.Destroy(ctx, media.PublicIDFromURL(*item.VideoURL), "video"); err != nil {
			log.Printf("⚠️ Video cleanup failed for item %s: %v", item.ID, err)
		}
	}

	if err := uc.repository.Delete(ctx, itemID); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	log.Printf("🗑️ Item deleted: %s", itemID)
	return nil
}

func (uc *UseCase) cleanup(ctx context.Context, image, video *media.UploadResult) {
	if image != nil {
		if err := uc.host.Destroy(ctx, image.PublicID, image.ResourceType); err != nil {
			log.Printf("⚠️ Image cleanup failed: %v", err)
		}
	}
	if video != nil {
		if err := uc.host.Destroy(ctx, video.PublicID, video.ResourceType); err != nil {
			log.Printf("⚠️ Video cleanup failed: %v", err)
		}
	}
}

func validateInput(input CreateItemInput) error {
	switch {
	case input.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	case input.Description == "":
		return fmt.Errorf("%w: description is required", ErrInvalidInput)
	case input.Price < 0:
		return fmt.Errorf("%w: price cannot be negative", ErrInvalidInput)
	case input.Quantity < 0:
		return fmt.Errorf("%w: quantity cannot be negative", ErrInvalidInput)
	case !ValidGame(input.Game):
		return fmt.Errorf("%w: unknown game %q", ErrInvalidInput, input.Game)
	case !ValidRarity(input.Rarity):
		return fmt.Errorf("%w: unknown rarity %q", ErrInvalidInput, input.Rarity)
	}
	return nil
}
