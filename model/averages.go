package model

import (
	"context"
	"math"

	"github.com/Md-IrfanS/DevCamper-API/model/bootcamp"
	"github.com/Md-IrfanS/DevCamper-API/model/course"
	"github.com/Md-IrfanS/DevCamper-API/model/review"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoundCost rounds a mean tuition up to the next multiple of ten.
func RoundCost(mean float64) float64 {
	return math.Ceil(mean/10) * 10
}

// RoundRating rounds a mean rating to one decimal place, with halves rounded
// away from zero.
func RoundRating(mean float64) float64 {
	return math.Round(mean*10) / 10
}

// UpdateAverageCost recomputes a bootcamp's average cost from its current
// courses. A bootcamp without courses costs 0.
func UpdateAverageCost(ctx context.Context, bootcampID primitive.ObjectID) error {
	mean, ok, err := course.AverageTuition(ctx, bootcampID)
	if err == nil {
		cost := 0.0
		if ok {
			cost = RoundCost(mean)
		}
		err = bootcamp.SetAverageCost(ctx, bootcampID, cost)
	}

	grip.Error(message.WrapError(err, message.Fields{
		"message":     "could not update average cost",
		"bootcamp_id": bootcampID.Hex(),
	}))
	return err
}

// UpdateAverageRating recomputes a bootcamp's average rating from its
// current reviews. A bootcamp without reviews has no rating.
func UpdateAverageRating(ctx context.Context, bootcampID primitive.ObjectID) error {
	mean, ok, err := review.AverageRating(ctx, bootcampID)
	if err == nil {
		var rating *float64
		if ok {
			rounded := RoundRating(mean)
			rating = &rounded
		}
		err = bootcamp.SetAverageRating(ctx, bootcampID, rating)
	}

	grip.Error(message.WrapError(err, message.Fields{
		"message":     "could not update average rating",
		"bootcamp_id": bootcampID.Hex(),
	}))
	return err
}
