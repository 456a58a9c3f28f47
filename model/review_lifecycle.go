package model

import (
	"context"

	"github.com/Md-IrfanS/DevCamper-API/model/review"
)

// CreateReview stores a new review and refreshes its bootcamp's average
// rating.
func CreateReview(ctx context.Context, r *review.Review) error {
	if err := review.Insert(ctx, r); err != nil {
		return err
	}
	return UpdateAverageRating(ctx, r.Bootcamp)
}

func UpdateReview(ctx context.Context, r *review.Review) error {
	if err := review.Replace(ctx, r); err != nil {
		return err
	}
	return UpdateAverageRating(ctx, r.Bootcamp)
}

func DeleteReview(ctx context.Context, r *review.Review) error {
	if err := review.Remove(ctx, r.Id); err != nil {
		return err
	}
	return UpdateAverageRating(ctx, r.Bootcamp)
}
