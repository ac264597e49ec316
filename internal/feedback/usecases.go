package feedback

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
)

var (
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrCommentTooShort = errors.New("review must be at least 10 characters long")
	ErrNotPurchased    = errors.New("you must purchase the item before leaving feedback")
)

const minCommentLength = 10

// SubmitInput carries a buyer's review of a completed purchase.
type SubmitInput struct {
	ItemID   string
	SellerID string
	Rating   int
	Comment  string
}

// UseCase contains the feedback business logic.
type UseCase struct {
	repository Repository
}

func NewUseCase(repository Repository) *UseCase {
	return &UseCase{repository: repository}
}

// Submit creates or updates the buyer's feedback for an item. Requires a
// completed purchase linking buyer, seller and item.
func (uc *UseCase) Submit(ctx context.Context, buyerID string, input SubmitInput) (*Feedback, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, ErrInvalidRating
	}
	if len(input.Comment) < minCommentLength {
		return nil, ErrCommentTooShort
	}

	purchased, err := uc.repository.HasCompletedPurchase(ctx, buyerID, input.SellerID, input.ItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to check purchase: %w", err)
	}
	if !purchased {
		return nil, ErrNotPurchased
	}

	feedback, err := uc.repository.Upsert(ctx, &Feedback{
		ID:       uuid.New().String(),
		ItemID:   input.ItemID,
		SellerID: input.SellerID,
		BuyerID:  buyerID,
		Rating:   input.Rating,
		Comment:  input.Comment,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save feedback: %w", err)
	}

	log.Printf("✅ Feedback saved for item %s by buyer %s (rating %d)", input.ItemID, buyerID, input.Rating)
	return uc.repository.GetDisplay(ctx, feedback.ID)
}

// ItemReviews returns an item's reviews with their aggregate stats,
// computed fresh from the listed rows.
func (uc *UseCase) ItemReviews(ctx context.Context, itemID string) ([]Feedback, Stats, error) {
	reviews, err := uc.repository.ListForItem(ctx, itemID)
	if err != nil {
		return nil, Stats{}, err
	}

	counts := map[int]int{}
	for _, review := range reviews {
		counts[review.Rating]++
	}
	return reviews, NewStats(counts), nil
}

// SellerReviews returns a seller's reviews, newest first.
func (uc *UseCase) SellerReviews(ctx context.Context, sellerID string) ([]Feedback, error) {
	return uc.repository.ListForSeller(ctx, sellerID)
}

// SellerStats aggregates a seller's ratings, computed fresh on every call.
func (uc *UseCase) SellerStats(ctx context.Context, sellerID string) (Stats, error) {
	counts, err := uc.repository.RatingCounts(ctx, sellerID)
	if err != nil {
		return Stats{}, err
	}
	return NewStats(counts), nil
}

// MarkHelpful bumps a review's helpful counter.
func (uc *UseCase) MarkHelpful(ctx context.Context, feedbackID string) (*Feedback, error) {
	return uc.repository.IncrementHelpful(ctx, feedbackID)
}
