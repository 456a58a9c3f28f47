package course

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
)

const Collection = "courses"

var (
	IdKey          = bsonutil.MustHaveTag(Course{}, "Id")
	TitleKey       = bsonutil.MustHaveTag(Course{}, "Title")
	DescriptionKey = bsonutil.MustHaveTag(Course{}, "Description")
	TuitionKey     = bsonutil.MustHaveTag(Course{}, "Tuition")
	BootcampKey    = bsonutil.MustHaveTag(Course{}, "Bootcamp")
	UserKey        = bsonutil.MustHaveTag(Course{}, "User")
	CreatedAtKey   = bsonutil.MustHaveTag(Course{}, "CreatedAt")
)

var ListingSchema = listing.Schema{
	IdKey:                  listing.ObjectID,
	TuitionKey:             listing.Number,
	"scholarshipAvailable": listing.Bool,
	BootcampKey:            listing.ObjectID,
	UserKey:                listing.ObjectID,
	CreatedAtKey:           listing.Date,
}

// ByBootcamp matches the courses of a bootcamp.
func ByBootcamp(bootcampID primitive.ObjectID) bson.M {
	return bson.M{BootcampKey: bootcampID}
}

// FindOneById returns the course with the given id, or nil if there is none.
func FindOneById(ctx context.Context, id primitive.ObjectID) (*Course, error) {
	c := &Course{}
	err := db.FindOneQ(ctx, Collection, db.Query(bson.M{IdKey: id}), c)
	if db.ResultsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "finding course '%s'", id.Hex())
	}
	return c, nil
}

// FindByBootcamp returns every course of a bootcamp.
func FindByBootcamp(ctx context.Context, bootcampID primitive.ObjectID) ([]Course, error) {
	out := []Course{}
	q := db.Query(ByBootcamp(bootcampID)).Sort([]string{"-" + CreatedAtKey})
	if err := db.FindAllQ(ctx, Collection, q, &out); err != nil {
		return nil, errors.Wrapf(err, "finding courses of bootcamp '%s'", bootcampID.Hex())
	}
	return out, nil
}

// Insert stores a new course.
func Insert(ctx context.Context, c *Course) error {
	if c.Id.IsZero() {
		c.Id = primitive.NewObjectID()
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	if err := c.Validate(); err != nil {
		return gimlet.ErrorResponse{StatusCode: http.StatusBadRequest, Message: err.Error()}
	}
	return errors.Wrapf(db.Insert(ctx, Collection, c), "inserting course '%s'", c.Title)
}

// Replace overwrites the stored course with the given one.
func Replace(ctx context.Context, c *Course) error {
	c.UpdatedAt = time.Now()
	if err := c.Validate(); err != nil {
		return gimlet.ErrorResponse{StatusCode: http.StatusBadRequest, Message: err.Error()}
	}
	err := db.ReplaceId(ctx, Collection, c.Id, c)
	if db.ResultsNotFound(err) {
		return gimlet.ErrorResponse{StatusCode: http.StatusNotFound, Message: "course not found"}
	}
	return errors.Wrapf(err, "updating course '%s'", c.Id.Hex())
}

// Remove deletes the course with the given id.
func Remove(ctx context.Context, id primitive.ObjectID) error {
	return errors.Wrapf(db.Remove(ctx, Collection, bson.M{IdKey: id}), "removing course '%s'", id.Hex())
}

// RemoveByBootcamp deletes every course of a bootcamp.
func RemoveByBootcamp(ctx context.Context, bootcampID primitive.ObjectID) (int, error) {
	n, err := db.RemoveAll(ctx, Collection, ByBootcamp(bootcampID))
	return n, errors.Wrapf(err, "removing courses of bootcamp '%s'", bootcampID.Hex())
}

// RemoveAll deletes every course.
func RemoveAll(ctx context.Context) (int, error) {
	return db.RemoveAll(ctx, Collection, bson.M{})
}

// AverageTuition returns the mean tuition of a bootcamp's courses. The
// boolean is false when the bootcamp has no courses.
func AverageTuition(ctx context.Context, bootcampID primitive.ObjectID) (float64, bool, error) {
	out := []struct {
		Average float64 `bson:"average"`
	}{}
	pipeline := []bson.M{
		{"$match": ByBootcamp(bootcampID)},
		{"$group": bson.M{
			"_id":     "$" + BootcampKey,
			"average": bson.M{"$avg": "$" + TuitionKey},
		}},
	}
	if err := db.Aggregate(ctx, Collection, pipeline, &out); err != nil {
		return 0, false, errors.Wrapf(err, "averaging tuition of bootcamp '%s'", bootcampID.Hex())
	}
	if len(out) == 0 {
		return 0, false, nil
	}
	return out[0].Average, true, nil
}

// EnsureIndexes creates the bootcamp lookup index.
func EnsureIndexes(ctx context.Context) error {
	return db.EnsureIndex(ctx, Collection, mongo.IndexModel{
		Keys: bson.D{{Key: BootcampKey, Value: 1}},
	})
}
