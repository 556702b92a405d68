package item

import (
	"fmt"
	"strings"
	"time"

	inErrors "github.com/Alturino/marketplace/internal/errors"
)

type Review struct {
	Reviewer  string    `json:"reviewer"`
	Comment   string    `json:"comment"`
	Rating    float64   `json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
}

// AverageRating is 0 for an item without reviews.
func AverageRating(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	var sum float64
	for _, r := range reviews {
		sum += r.Rating
	}
	return sum / float64(len(reviews))
}

func AddReview(reviews []Review, review Review) []Review {
	return append(append([]Review{}, reviews...), review)
}

// UpdateReview replaces the comment and rating of the review written by review.Reviewer.
func UpdateReview(reviews []Review, review Review) ([]Review, error) {
	i := indexOfReviewer(reviews, review.Reviewer)
	if i < 0 {
		return nil, fmt.Errorf("review by reviewer=%s with error=%w", review.Reviewer, inErrors.ErrNotFound)
	}
	updated := append([]Review{}, reviews...)
	updated[i].Comment = review.Comment
	updated[i].Rating = review.Rating
	return updated, nil
}

func DeleteReview(reviews []Review, reviewer string) ([]Review, error) {
	i := indexOfReviewer(reviews, reviewer)
	if i < 0 {
		return nil, fmt.Errorf("review by reviewer=%s with error=%w", reviewer, inErrors.ErrNotFound)
	}
	updated := make([]Review, 0, len(reviews)-1)
	updated = append(updated, reviews[:i]...)
	return append(updated, reviews[i+1:]...), nil
}

func indexOfReviewer(reviews []Review, reviewer string) int {
	for i, r := range reviews {
		if strings.EqualFold(r.Reviewer, reviewer) {
			return i
		}
	}
	return -1
}
