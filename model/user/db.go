package user

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

const Collection = "users"

var (
	IdKey                  = bsonutil.MustHaveTag(DBUser{}, "Id")
	NameKey                = bsonutil.MustHaveTag(DBUser{}, "Name")
	EmailKey               = bsonutil.MustHaveTag(DBUser{}, "Email")
	RoleKey                = bsonutil.MustHaveTag(DBUser{}, "Role")
	PasswordKey            = bsonutil.MustHaveTag(DBUser{}, "Password")
	ResetPasswordTokenKey  = bsonutil.MustHaveTag(DBUser{}, "ResetPasswordToken")
	ResetPasswordExpireKey = bsonutil.MustHaveTag(DBUser{}, "ResetPasswordExpire")
	CreatedAtKey           = bsonutil.MustHaveTag(DBUser{}, "CreatedAt")
)

var ListingSchema = listing.Schema{
	IdKey:        listing.ObjectID,
	CreatedAtKey: listing.Date,
}

// HiddenFields are never returned to clients.
var HiddenFields = []string{PasswordKey, ResetPasswordTokenKey, ResetPasswordExpireKey}

func findOne(ctx context.Context, q db.Q) (*DBUser, error) {
	u := &DBUser{}
	err := db.FindOneQ(ctx, Collection, q, u)
	if db.ResultsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "finding user")
	}
	return u, nil
}

// FindOneById returns the user with the given id, or nil if there is none.
func FindOneById(ctx context.Context, id primitive.ObjectID) (*DBUser, error) {
	return findOne(ctx, db.Query(bson.M{IdKey: id}))
}

// FindOneByEmail returns the user with the given email, or nil if there is
// none.
func FindOneByEmail(ctx context.Context, email string) (*DBUser, error) {
	return findOne(ctx, db.Query(bson.M{EmailKey: email}))
}

// FindOneByResetToken returns the user holding the given hashed reset token
// if the token has not expired.
func FindOneByResetToken(ctx context.Context, hashed string, now time.Time) (*DBUser, error) {
	if hashed == "" {
		return nil, nil
	}
	return findOne(ctx, db.Query(bson.M{
		ResetPasswordTokenKey:  hashed,
		ResetPasswordExpireKey: bson.M{"$gt": now},
	}))
}

// Insert stores a new user. A user with the same email is a conflict.
func Insert(ctx context.Context, u *DBUser) error {
	if u.Id.IsZero() {
		u.Id = primitive.NewObjectID()
	}
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	if err := u.Validate(); err != nil {
		return gimlet.ErrorResponse{StatusCode: http.StatusBadRequest, Message: err.Error()}
	}

	err := db.Insert(ctx, Collection, u)
	if db.IsDuplicateKey(err) {
		return gimlet.ErrorResponse{
			StatusCode: http.StatusConflict,
			Message:    "a user with that email already exists",
		}
	}
	return errors.Wrapf(err, "inserting user '%s'", u.Email)
}

// Replace overwrites the stored user with the given one.
func Replace(ctx context.Context, u *DBUser) error {
	u.UpdatedAt = time.Now()
	if err := u.Validate(); err != nil {
		return gimlet.ErrorResponse{StatusCode: http.StatusBadRequest, Message: err.Error()}
	}

	err := db.ReplaceId(ctx, Collection, u.Id, u)
	switch {
	case db.IsDuplicateKey(err):
		return gimlet.ErrorResponse{
			StatusCode: http.StatusConflict,
			Message:    "a user with that email already exists",
		}
	case db.ResultsNotFound(err):
		return gimlet.ErrorResponse{
			StatusCode: http.StatusNotFound,
			Message:    "user not found",
		}
	}
	return errors.Wrapf(err, "updating user '%s'", u.Id.Hex())
}

// Remove deletes the user with the given id.
func Remove(ctx context.Context, id primitive.ObjectID) error {
	return errors.Wrapf(db.Remove(ctx, Collection, bson.M{IdKey: id}), "removing user '%s'", id.Hex())
}

// RemoveAll deletes every user.
func RemoveAll(ctx context.Context) (int, error) {
	return db.RemoveAll(ctx, Collection, bson.M{})
}

// Count returns the number of users matching the filter.
func Count(ctx context.Context, filter bson.M) (int, error) {
	return db.Count(ctx, Collection, filter)
}

// EnsureIndexes creates the unique email index.
func EnsureIndexes(ctx context.Context) error {
	return db.EnsureIndex(ctx, Collection, mongo.IndexModel{
		Keys:    bson.D{{Key: EmailKey, Value: 1}},
		Options: options.Index().SetUnique(true),
	})
}
