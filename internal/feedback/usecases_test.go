package feedback

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRepository is an in-memory Repository enforcing the one-record-per-
// (item, buyer) rule the unique index enforces in Postgres.
type memRepository struct {
	feedbacks []*Feedback
	purchases map[string]bool // "buyer|seller|item" -> completed
}

func newMemRepository() *memRepository {
	return &memRepository{purchases: make(map[string]bool)}
}

func (m *memRepository) addPurchase(buyerID, sellerID, itemID string) {
	m.purchases[buyerID+"|"+sellerID+"|"+itemID] = true
}

func (m *memRepository) Upsert(_ context.Context, f *Feedback) (*Feedback, error) {
	for _, existing := range m.feedbacks {
		if existing.ItemID == f.ItemID && existing.BuyerID == f.BuyerID {
			existing.Rating = f.Rating
			existing.Comment = f.Comment
			copied := *existing
			return &copied, nil
		}
	}
	copied := *f
	m.feedbacks = append(m.feedbacks, &copied)
	result := copied
	return &result, nil
}

func (m *memRepository) HasCompletedPurchase(_ context.Context, buyerID, sellerID, itemID string) (bool, error) {
	return m.purchases[buyerID+"|"+sellerID+"|"+itemID], nil
}

func (m *memRepository) GetDisplay(_ context.Context, feedbackID string) (*Feedback, error) {
	for _, f := range m.feedbacks {
		if f.ID == feedbackID {
			copied := *f
			copied.BuyerEmail = "buyer@example.com"
			return &copied, nil
		}
	}
	return nil, ErrFeedbackNotFound
}

func (m *memRepository) ListForItem(_ context.Context, itemID string) ([]Feedback, error) {
	result := []Feedback{}
	for _, f := range m.feedbacks {
		if f.ItemID == itemID {
			result = append(result, *f)
		}
	}
	return result, nil
}

func (m *memRepository) ListForSeller(_ context.Context, sellerID string) ([]Feedback, error) {
	result := []Feedback{}
	for _, f := range m.feedbacks {
		if f.SellerID == sellerID {
			result = append(result, *f)
		}
	}
	return result, nil
}

func (m *memRepository) RatingCounts(_ context.Context, sellerID string) (map[int]int, error) {
	counts := map[int]int{}
	for _, f := range m.feedbacks {
		if f.SellerID == sellerID {
			counts[f.Rating]++
		}
	}
	return counts, nil
}

func (m *memRepository) IncrementHelpful(_ context.Context, feedbackID string) (*Feedback, error) {
	for _, f := range m.feedbacks {
		if f.ID == feedbackID {
			f.HelpfulCount++
			copied := *f
			return &copied, nil
		}
	}
	return nil, ErrFeedbackNotFound
}

func validSubmit() SubmitInput {
	return SubmitInput{
		ItemID:   "item-1",
		SellerID: "seller-1",
		Rating:   5,
		Comment:  "Fast and smooth transfer!",
	}
}

func TestSubmit_Success(t *testing.T) {
	// Arrange
	repo := newMemRepository()
	repo.addPurchase("buyer-1", "seller-1", "item-1")
	uc := NewUseCase(repo)

	// Act
	feedback, err := uc.Submit(context.Background(), "buyer-1", validSubmit())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 5, feedback.Rating)
	assert.Equal(t, "buyer@example.com", feedback.BuyerEmail)
	assert.Len(t, repo.feedbacks, 1)
}

func TestSubmit_RequiresCompletedPurchase(t *testing.T) {
	repo := newMemRepository()
	uc := NewUseCase(repo)

	_, err := uc.Submit(context.Background(), "buyer-1", validSubmit())

	assert.ErrorIs(t, err, ErrNotPurchased)
	assert.Empty(t, repo.feedbacks)
}

func TestSubmit_ValidatesInput(t *testing.T) {
	repo := newMemRepository()
	repo.addPurchase("buyer-1", "seller-1", "item-1")
	uc := NewUseCase(repo)

	for _, rating := range []int{0, -1, 6} {
		input := validSubmit()
		input.Rating = rating
		_, err := uc.Submit(context.Background(), "buyer-1", input)
		assert.ErrorIs(t, err, ErrInvalidRating)
	}

	input := validSubmit()
	input.Comment = "too short"
	_, err := uc.Submit(context.Background(), "buyer-1", input)
	assert.ErrorIs(t, err, ErrCommentTooShort)
}

func TestSubmit_ResubmissionUpdatesInPlace(t *testing.T) {
	// Arrange
	repo := newMemRepository()
	repo.addPurchase("buyer-1", "seller-1", "item-1")
	uc := NewUseCase(repo)

	_, err := uc.Submit(context.Background(), "buyer-1", validSubmit())
	require.NoError(t, err)

	// Act: same buyer reviews the same item again
	updated := validSubmit()
	updated.Rating = 2
	updated.Comment = "Changed my mind after a week."
	feedback, err := uc.Submit(context.Background(), "buyer-1", updated)

	// Assert: still one record, carrying the latest values
	require.NoError(t, err)
	assert.Len(t, repo.feedbacks, 1)
	assert.Equal(t, 2, feedback.Rating)
	assert.Equal(t, "Changed my mind after a week.", feedback.Comment)
}

func TestItemReviews_Stats(t *testing.T) {
	// Arrange
	repo := newMemRepository()
	for i, rating := range []int{5, 5, 4, 1} {
		repo.addPurchase("buyer-"+string(rune('a'+i)), "seller-1", "item-1")
		input := validSubmit()
		input.Rating = rating
		_, err := NewUseCase(repo).Submit(context.Background(), "buyer-"+string(rune('a'+i)), input)
		require.NoError(t, err)
	}
	uc := NewUseCase(repo)

	// Act
	reviews, stats, err := uc.ItemReviews(context.Background(), "item-1")

	// Assert
	require.NoError(t, err)
	assert.Len(t, reviews, 4)
	assert.Equal(t, 4, stats.TotalFeedbacks)
	assert.InDelta(t, 3.75, stats.AverageRating, 1e-9)
	assert.Equal(t, map[int]int{5: 2, 4: 1, 1: 1}, stats.RatingDistribution)
}

func TestSellerStats_Empty(t *testing.T) {
	uc := NewUseCase(newMemRepository())

	stats, err := uc.SellerStats(context.Background(), "seller-1")

	require.NoError(t, err)
	assert.Zero(t, stats.AverageRating)
	assert.Zero(t, stats.TotalFeedbacks)
	assert.Empty(t, stats.RatingDistribution)
	assert.NotNil(t, stats.RatingDistribution)
}

func TestMarkHelpful(t *testing.T) {
	repo := newMemRepository()
	repo.addPurchase("buyer-1", "seller-1", "item-1")
	uc := NewUseCase(repo)

	submitted, err := uc.Submit(context.Background(), "buyer-1", validSubmit())
	require.NoError(t, err)

	first, err := uc.MarkHelpful(context.Background(), submitted.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.HelpfulCount)

	second, err := uc.MarkHelpful(context.Background(), submitted.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, second.HelpfulCount)

	_, err = uc.MarkHelpful(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrFeedbackNotFound)
}
