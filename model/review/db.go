package review

import (
	"context"
	"net/http"
	"time"

	"github.com/Md-IrfanS/DevCamper-API/db"
	"github.com/Md-IrfanS/DevCamper-API/model/listing"
	"github.com/evergreen-ci/gimlet"
	"github.com/mongodb/anser/bsonutil"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const Collection = "reviews"

var (
	IdKey        = bsonutil.MustHaveTag(Review{}, "Id")
	RatingKey    = bsonutil.MustHaveTag(Review{}, "Rating")
	BootcampKey  = bsonutil.MustHaveTag(Review{}, "Bootcamp")
	UserKey      = bsonutil.MustHaveTag(Review{}, "User")
	CreatedAtKey = bsonutil.MustHaveTag(Review{}, "CreatedAt")
)

var ListingSchema = listing.Schema{
	IdKey:        listing.ObjectID,
	RatingKey:    listing.Number,
	BootcampKey:  listing.ObjectID,
	UserKey:      listing.ObjectID,
	CreatedAtKey: listing.Date,
}

var errDuplicate = gimlet.ErrorResponse{
	StatusCode: http.StatusConflict,
	Message:    "user has already reviewed this bootcamp",
}

// ByBootcamp matches the reviews of a bootcamp.
func ByBootcamp(bootcampID primitive.ObjectID) bson.M {
	return bson.M{BootcampKey: bootcampID}
}

func findOne(ctx context.Context, filter bson.M) (*Review, error) {
	r := &Review{}
	err := db.FindOneQ(ctx, Collection, db.Query(filter), r)
	if db.ResultsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "finding review")
	}
	return r, nil
}

// FindOneById returns the review with the given id, or nil if there is none.
func FindOneById(ctx context.Context, id primitive.ObjectID) (*Review, error) {
	return findOne(ctx, bson.M{IdKey: id})
}

// FindOneByBootcampAndUser returns the user's review of a bootcamp, or nil
// if they have not reviewed it.
func FindOneByBootcampAndUser(ctx context.Context, bootcampID, userID primitive.ObjectID) (*Review, error) {
	return findOne(ctx, bson.M{BootcampKey: bootcampID, UserKey: userID})
}

// FindByBootcamp returns every review of a bootcamp.
func FindByBootcamp(ctx context.Context, bootcampID primitive.ObjectID) ([]Review, error) {
	out := []Review{}
	q := db.Query(ByBootcamp(bootcampID)).Sort([]string{"-" + CreatedAtKey})
	if err := db.FindAllQ(ctx, Collection, q, &out); err != nil {
		return nil, errors.Wrapf(err, "finding reviews of bootcamp '%s'", bootcampID.Hex())
	}
	return out, nil
}

// Insert stores a new review. A second review of the same bootcamp by the
// same user is a conflict.
func Insert(ctx context.Context, r *Review) error {
	if r.Id.IsZero() {
		r.Id = primitive.NewObjectID()
	}
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now
	if err := r.Validate(); err != nil {
		return gimlet.ErrorResponse{StatusCode: http.StatusBadRequest, Message: err.Error()}
	}

	err := db.Insert(ctx, Collection, r)
	if db.IsDuplicateKey(err) {
		return errDuplicate
	}
	return errors.Wrapf(err, "inserting review '%s'", r.Title)
}

// Replace overwrites the stored review with the given one.
func Replace(ctx context.Context, r *Review) error {
	r.UpdatedAt = time.Now()
	if err := r.Validate(); err != nil {
		return gimlet.ErrorResponse{StatusCode: http.StatusBadRequest, Message: err.Error()}
	}

	err := db.ReplaceId(ctx, Collection, r.Id, r)
	switch {
	case db.IsDuplicateKey(err):
		return errDuplicate
	case db.ResultsNotFound(err):
		return gimlet.ErrorResponse{StatusCode: http.StatusNotFound, Message: "review not found"}
	}
	return errors.Wrapf(err, "updating review '%s'", r.Id.Hex())
}

// Remove deletes the review with the given id.
func Remove(ctx context.Context, id primitive.ObjectID) error {
	return errors.Wrapf(db.Remove(ctx, Collection, bson.M{IdKey: id}), "removing review '%s'", id.Hex())
}

// RemoveByBootcamp deletes every review of a bootcamp.
func RemoveByBootcamp(ctx context.Context, bootcampID primitive.ObjectID) (int, error) {
	n, err := db.RemoveAll(ctx, Collection, ByBootcamp(bootcampID))
	return n, errors.Wrapf(err, "removing reviews of bootcamp '%s'", bootcampID.Hex())
}

// RemoveAll deletes every review.
func RemoveAll(ctx context.Context) (int, error) {
	return db.RemoveAll(ctx, Collection, bson.M{})
}

// AverageRating returns the mean rating of a bootcamp's reviews. The
// boolean is false when the bootcamp has no reviews.
func AverageRating(ctx context.Context, bootcampID primitive.ObjectID) (float64, bool, error) {
	out := []struct {
		Average float64 `bson:"average"`
	}{}
	pipeline := []bson.M{
		{"$match": ByBootcamp(bootcampID)},
		{"$group": bson.M{
			"_id":     "$" + BootcampKey,
			"average": bson.M{"$avg": "$" + RatingKey},
		}},
	}
	if err := db.Aggregate(ctx, Collection, pipeline, &out); err != nil {
		return 0, false, errors.Wrapf(err, "averaging rating of bootcamp '%s'", bootcampID.Hex())
	}
	if len(out) == 0 {
		return 0, false, nil
	}
	return out[0].Average, true, nil
}

// EnsureIndexes creates the one-review-per-user-per-bootcamp index.
func EnsureIndexes(ctx context.Context) error {
	return db.EnsureIndex(ctx, Collection, mongo.IndexModel{
		Keys:    bson.D{{Key: BootcampKey, Value: 1}, {Key: UserKey, Value: 1}},
		Options: options.Index().SetUnique(true),
	})
}
