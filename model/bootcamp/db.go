package bootcamp

import (
	"context"
	"net/http"
	"time"

	devcamper "github.com/Md-IrfanS/DevCamper-API"
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

const Collection = "bootcamps"

var (
	IdKey            = bsonutil.MustHaveTag(Bootcamp{}, "Id")
	NameKey          = bsonutil.MustHaveTag(Bootcamp{}, "Name")
	SlugKey          = bsonutil.MustHaveTag(Bootcamp{}, "Slug")
	DescriptionKey   = bsonutil.MustHaveTag(Bootcamp{}, "Description")
	WebsiteKey       = bsonutil.MustHaveTag(Bootcamp{}, "Website")
	PhoneKey         = bsonutil.MustHaveTag(Bootcamp{}, "Phone")
	EmailKey         = bsonutil.MustHaveTag(Bootcamp{}, "Email")
	AddressKey       = bsonutil.MustHaveTag(Bootcamp{}, "Address")
	LocationKey      = bsonutil.MustHaveTag(Bootcamp{}, "Location")
	CareersKey       = bsonutil.MustHaveTag(Bootcamp{}, "Careers")
	AverageRatingKey = bsonutil.MustHaveTag(Bootcamp{}, "AverageRating")
	AverageCostKey   = bsonutil.MustHaveTag(Bootcamp{}, "AverageCost")
	PhotoKey         = bsonutil.MustHaveTag(Bootcamp{}, "Photo")
	PhotoKeyKey      = bsonutil.MustHaveTag(Bootcamp{}, "PhotoKey")
	UploadDocsKey    = bsonutil.MustHaveTag(Bootcamp{}, "UploadDocs")
	UploadDocIdKey   = bsonutil.MustHaveTag(UploadDoc{}, "Id")
	UploadDocKeyKey  = bsonutil.MustHaveTag(UploadDoc{}, "Key")
	HousingKey       = bsonutil.MustHaveTag(Bootcamp{}, "Housing")
	JobAssistanceKey = bsonutil.MustHaveTag(Bootcamp{}, "JobAssistance")
	JobGuaranteeKey  = bsonutil.MustHaveTag(Bootcamp{}, "JobGuarantee")
	AcceptGiKey      = bsonutil.MustHaveTag(Bootcamp{}, "AcceptGi")
	SinceKey         = bsonutil.MustHaveTag(Bootcamp{}, "Since")
	UserKey          = bsonutil.MustHaveTag(Bootcamp{}, "User")
	CreatedAtKey     = bsonutil.MustHaveTag(Bootcamp{}, "CreatedAt")
	UpdatedAtKey     = bsonutil.MustHaveTag(Bootcamp{}, "UpdatedAt")
)

// ListingSchema types the fields clients may filter bootcamps on.
var ListingSchema = listing.Schema{
	IdKey:            listing.ObjectID,
	AverageCostKey:   listing.Number,
	AverageRatingKey: listing.Number,
	HousingKey:       listing.Bool,
	JobAssistanceKey: listing.Bool,
	JobGuaranteeKey:  listing.Bool,
	AcceptGiKey:      listing.Bool,
	SinceKey:         listing.Number,
	UserKey:          listing.ObjectID,
	CreatedAtKey:     listing.Date,
	UpdatedAtKey:     listing.Date,
}

// HiddenFields are never returned to clients.
var HiddenFields = []string{PhotoKeyKey, bsonutil.GetDottedKeyName(UploadDocsKey, UploadDocKeyKey)}

// ByOwner matches the bootcamps created by the given user.
func ByOwner(userID primitive.ObjectID) bson.M {
	return bson.M{UserKey: userID}
}

// WithinRadius matches bootcamps located within the given distance in miles
// of a point.
func WithinRadius(lng, lat, miles float64) bson.M {
	return bson.M{
		LocationKey: bson.M{
			"$geoWithin": bson.M{
				"$centerSphere": bson.A{bson.A{lng, lat}, miles / devcamper.EarthRadiusMiles},
			},
		},
	}
}

// FindOneById returns the bootcamp with the given id, or nil if there is
// none.
func FindOneById(ctx context.Context, id primitive.ObjectID) (*Bootcamp, error) {
	b := &Bootcamp{}
	err := db.FindOneQ(ctx, Collection, db.Query(bson.M{IdKey: id}), b)
	if db.ResultsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "finding bootcamp '%s'", id.Hex())
	}
	return b, nil
}

// Find returns all bootcamps matching the query.
func Find(ctx context.Context, q db.Q) ([]Bootcamp, error) {
	out := []Bootcamp{}
	if err := db.FindAllQ(ctx, Collection, q, &out); err != nil {
		return nil, errors.Wrap(err, "finding bootcamps")
	}
	return out, nil
}

// FindByOwner returns the bootcamps created by the user, newest first.
func FindByOwner(ctx context.Context, userID primitive.ObjectID) ([]Bootcamp, error) {
	return Find(ctx, db.Query(ByOwner(userID)).Sort([]string{"-" + CreatedAtKey}))
}

// CountByOwner returns how many bootcamps the user has created.
func CountByOwner(ctx context.Context, userID primitive.ObjectID) (int, error) {
	return db.Count(ctx, Collection, ByOwner(userID))
}

// FindWithinRadius returns the bootcamps within the given distance in miles
// of a point.
func FindWithinRadius(ctx context.Context, lng, lat, miles float64) ([]Bootcamp, error) {
	return Find(ctx, db.Query(WithinRadius(lng, lat, miles)))
}

func conflictOrWrap(err error, b *Bootcamp, op string) error {
	if db.IsDuplicateKey(err) {
		return gimlet.ErrorResponse{
			StatusCode: http.StatusConflict,
			Message:    "a bootcamp named '" + b.Name + "' already exists",
		}
	}
	return errors.Wrapf(err, "%s bootcamp '%s'", op, b.Name)
}

// Insert stores a new bootcamp. A bootcamp with the same name is a conflict.
func Insert(ctx context.Context, b *Bootcamp) error {
	now := time.Now()
	b.SetDefaults(now)
	b.CreatedAt = now
	b.UpdatedAt = now
	if err := b.Validate(); err != nil {
		return gimlet.ErrorResponse{StatusCode: http.StatusBadRequest, Message: err.Error()}
	}

	return conflictOrWrap(db.Insert(ctx, Collection, b), b, "inserting")
}

// Update stores the fields clients may edit and refreshes b with the stored
// document. Derived averages, the photo and uploaded documents are only
// written by their own operations, so a concurrent change to them is kept.
func Update(ctx context.Context, b *Bootcamp) error {
	b.UpdatedAt = time.Now()
	if err := b.Validate(); err != nil {
		return gimlet.ErrorResponse{StatusCode: http.StatusBadRequest, Message: err.Error()}
	}

	set := bson.M{
		NameKey:          b.Name,
		SlugKey:          b.Slug,
		DescriptionKey:   b.Description,
		CareersKey:       b.Careers,
		HousingKey:       b.Housing,
		JobAssistanceKey: b.JobAssistance,
		JobGuaranteeKey:  b.JobGuarantee,
		AcceptGiKey:      b.AcceptGi,
		SinceKey:         b.Since,
		UpdatedAtKey:     b.UpdatedAt,
	}
	unset := bson.M{}
	for key, val := range map[string]string{
		WebsiteKey: b.Website,
		PhoneKey:   b.Phone,
		EmailKey:   b.Email,
		AddressKey: b.Address,
	} {
		if val == "" {
			unset[key] = 1
		} else {
			set[key] = val
		}
	}
	if b.Location != nil {
		set[LocationKey] = b.Location
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	err := db.FindAndUpdateId(ctx, Collection, b.Id, update, true, b)
	if db.ResultsNotFound(err) {
		return gimlet.ErrorResponse{StatusCode: http.StatusNotFound, Message: "bootcamp not found"}
	}
	return conflictOrWrap(err, b, "updating")
}

// SetPhoto points the bootcamp at a new photo and returns the storage key of
// the photo it replaced. An empty key restores the default photo.
func SetPhoto(ctx context.Context, id primitive.ObjectID, photo, key string) (string, error) {
	update := bson.M{"$set": bson.M{PhotoKey: photo, PhotoKeyKey: key, UpdatedAtKey: time.Now()}}
	if key == "" {
		update = bson.M{
			"$set":   bson.M{PhotoKey: devcamper.DefaultPhoto, UpdatedAtKey: time.Now()},
			"$unset": bson.M{PhotoKeyKey: 1},
		}
	}

	previous := &Bootcamp{}
	err := db.FindAndUpdateId(ctx, Collection, id, update, false, previous)
	if db.ResultsNotFound(err) {
		return "", gimlet.ErrorResponse{StatusCode: http.StatusNotFound, Message: "bootcamp not found"}
	}
	if err != nil {
		return "", errors.Wrapf(err, "setting photo of bootcamp '%s'", id.Hex())
	}
	return previous.PhotoKey, nil
}

// AddUploadDocs appends documents to the bootcamp.
func AddUploadDocs(ctx context.Context, id primitive.ObjectID, docs []UploadDoc) error {
	err := db.UpdateId(ctx, Collection, id, bson.M{
		"$push": bson.M{UploadDocsKey: bson.M{"$each": docs}},
		"$set":  bson.M{UpdatedAtKey: time.Now()},
	})
	if db.ResultsNotFound(err) {
		return gimlet.ErrorResponse{StatusCode: http.StatusNotFound, Message: "bootcamp not found"}
	}
	return errors.Wrapf(err, "adding documents to bootcamp '%s'", id.Hex())
}

// RemoveUploadDoc removes one document from the bootcamp.
func RemoveUploadDoc(ctx context.Context, id, docID primitive.ObjectID) error {
	err := db.UpdateId(ctx, Collection, id, bson.M{
		"$pull": bson.M{UploadDocsKey: bson.M{UploadDocIdKey: docID}},
		"$set":  bson.M{UpdatedAtKey: time.Now()},
	})
	if db.ResultsNotFound(err) {
		return gimlet.ErrorResponse{StatusCode: http.StatusNotFound, Message: "bootcamp not found"}
	}
	return errors.Wrapf(err, "removing document '%s' from bootcamp '%s'", docID.Hex(), id.Hex())
}

// Remove deletes the bootcamp with the given id.
func Remove(ctx context.Context, id primitive.ObjectID) error {
	return errors.Wrapf(db.Remove(ctx, Collection, bson.M{IdKey: id}), "removing bootcamp '%s'", id.Hex())
}

// RemoveAll deletes every bootcamp.
func RemoveAll(ctx context.Context) (int, error) {
	return db.RemoveAll(ctx, Collection, bson.M{})
}

// SetAverageCost stores the derived average course cost.
func SetAverageCost(ctx context.Context, id primitive.ObjectID, cost float64) error {
	err := db.UpdateId(ctx, Collection, id, bson.M{"$set": bson.M{AverageCostKey: cost}})
	if db.ResultsNotFound(err) {
		return nil
	}
	return errors.Wrapf(err, "setting average cost of bootcamp '%s'", id.Hex())
}

// SetAverageRating stores the derived average review rating. A nil rating
// clears it.
func SetAverageRating(ctx context.Context, id primitive.ObjectID, rating *float64) error {
	err := db.UpdateId(ctx, Collection, id, bson.M{"$set": bson.M{AverageRatingKey: rating}})
	if db.ResultsNotFound(err) {
		return nil
	}
	return errors.Wrapf(err, "setting average rating of bootcamp '%s'", id.Hex())
}

// EnsureIndexes creates the geospatial and unique name indexes.
func EnsureIndexes(ctx context.Context) error {
	if err := db.EnsureIndex(ctx, Collection, mongo.IndexModel{
		Keys: bson.D{{Key: LocationKey, Value: "2dsphere"}},
	}); err != nil {
		return err
	}
	if err := db.EnsureIndex(ctx, Collection, mongo.IndexModel{
		Keys:    bson.D{{Key: NameKey, Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return err
	}
	return db.EnsureIndex(ctx, Collection, mongo.IndexModel{
		Keys: bson.D{{Key: UserKey, Value: 1}},
	})
}
