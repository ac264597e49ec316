package feedback

import "time"

// Feedback is a buyer's rating and comment about a completed purchase.
// One record exists per (item, buyer); resubmission updates it in place.
type Feedback struct {
	ID           string    `json:"id" db:"id"`
	ItemID       string    `json:"itemId" db:"item_id"`
	SellerID     string    `json:"sellerId" db:"seller_id"`
	BuyerID      string    `json:"buyerId" db:"buyer_id"`
	Rating       int       `json:"rating" db:"rating"`
	Comment      string    `json:"comment" db:"comment"`
	HelpfulCount int       `json:"helpfulCount" db:"helpful_count"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`

	// resolved for display
	BuyerEmail string  `json:"buyerEmail,omitempty"`
	ItemName   *string `json:"itemName,omitempty"`
	ItemImage  *string `json:"itemImage,omitempty"`
}

// Stats aggregates a seller's (or item's) ratings. Computed fresh on every
// call; no materialized view.
type Stats struct {
	AverageRating      float64     `json:"averageRating"`
	TotalFeedbacks     int         `json:"totalFeedbacks"`
	RatingDistribution map[int]int `json:"ratingDistribution"`
}

// NewStats folds a rating-value → count mapping into Stats. Average is 0
// when there are no ratings.
func NewStats(counts map[int]int) Stats {
	stats := Stats{RatingDistribution: map[int]int{}}

	var sum int
	for rating, count := range counts {
		stats.RatingDistribution[rating] = count
		stats.TotalFeedbacks += count
		sum += rating * count
	}
	if stats.TotalFeedbacks > 0 {
		stats.AverageRating = float64(sum) / float64(stats.TotalFeedbacks)
	}
	return stats
}
