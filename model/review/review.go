package review

import (
	"strings"
	"time"

	devcamper "github.com/Md-IrfanS/DevCamper-API"
	"github.com/mongodb/grip"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Review struct {
	Id        primitive.ObjectID `bson:"_id" json:"_id"`
	Title     string             `bson:"title" json:"title"`
	Text      string             `bson:"text" json:"text"`
	Rating    int                `bson:"rating" json:"rating"`
	Bootcamp  primitive.ObjectID `bson:"bootcamp" json:"bootcamp"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (r *Review) Validate() error {
	catcher := grip.NewBasicCatcher()
	title := strings.TrimSpace(r.Title)
	catcher.NewWhen(title == "", "please add a title for the review")
	catcher.ErrorfWhen(len(title) > devcamper.MaxReviewTitleLength,
		"title can not be more than %d characters", devcamper.MaxReviewTitleLength)
	catcher.NewWhen(strings.TrimSpace(r.Text) == "", "please add some text")
	catcher.ErrorfWhen(r.Rating < devcamper.MinRating || r.Rating > devcamper.MaxRating,
		"please add a rating between %d and %d", devcamper.MinRating, devcamper.MaxRating)
	catcher.NewWhen(r.Bootcamp.IsZero(), "review must belong to a bootcamp")
	catcher.NewWhen(r.User.IsZero(), "review must belong to a user")
	return catcher.Resolve()
}
