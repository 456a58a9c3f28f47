package data

import (
	"context"
	"time"

	devcamper "github.com/Md-IrfanS/DevCamper-API"
	"github.com/Md-IrfanS/DevCamper-API/db"
	"github.com/Md-IrfanS/DevCamper-API/db/cache"
	"github.com/Md-IrfanS/DevCamper-API/model"
	"github.com/Md-IrfanS/DevCamper-API/model/bootcamp"
	"github.com/Md-IrfanS/DevCamper-API/model/course"
	"github.com/Md-IrfanS/DevCamper-API/model/listing"
	"github.com/Md-IrfanS/DevCamper-API/model/review"
	"github.com/Md-IrfanS/DevCamper-API/model/user"
	"github.com/Md-IrfanS/DevCamper-API/notify"
	"github.com/Md-IrfanS/DevCamper-API/thirdparty"
	"github.com/Md-IrfanS/DevCamper-API/units"
	"github.com/Md-IrfanS/DevCamper-API/upload"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DBConnector implements the Connector against the store. Stored files go
// to the environment's bucket and their cleanup runs on its local queue.
type DBConnector struct {
	Env      devcamper.Environment
	Geocoder thirdparty.Geocoder
	Mailer   notify.Mailer
}

func list(ctx context.Context, coll string, q listing.Query, hidden []string, populate ...listing.Populate) (*listing.Result, error) {
	total, err := db.Count(ctx, coll, q.Filter)
	if err != nil {
		return nil, errors.Wrapf(err, "counting '%s'", coll)
	}
	q.Hidden = hidden
	docs := []bson.M{}
	if err = db.Aggregate(ctx, coll, q.Pipeline(populate...), &docs); err != nil {
		return nil, errors.Wrapf(err, "listing '%s'", coll)
	}
	res := listing.NewResult(q, total, docs)
	return &res, nil
}

// FindUserById consults the request's user cache before the store. Callers
// get their own copy of a cached user.
func (c *DBConnector) FindUserById(ctx context.Context, id string) (*user.DBUser, error) {
	if cached, ok := cache.GetFromCache[*user.DBUser](ctx, cache.Users, id); ok {
		if cached == nil {
			return nil, NotFound("user", id)
		}
		u := *cached
		return &u, nil
	}

	oid, err := ParseID("user", id)
	if err != nil {
		return nil, err
	}
	u, err := user.FindOneById(ctx, oid)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, NotFound("user", id)
	}
	cacheUser(ctx, u)
	return u, nil
}

func cacheUser(ctx context.Context, u *user.DBUser) {
	cp := *u
	cache.SetInCache(ctx, cache.Users, u.Id.Hex(), &cp)
}

func (c *DBConnector) FindUserByEmail(ctx context.Context, email string) (*user.DBUser, error) {
	return user.FindOneByEmail(ctx, email)
}

func (c *DBConnector) FindUserByResetToken(ctx context.Context, token string) (*user.DBUser, error) {
	return user.FindOneByResetToken(ctx, user.HashResetToken(token), time.Now())
}

func (c *DBConnector) ListUsers(ctx context.Context, q listing.Query) (*listing.Result, error) {
	return list(ctx, user.Collection, q, user.HiddenFields)
}

func (c *DBConnector) CreateUser(ctx context.Context, u *user.DBUser) error {
	return user.Insert(ctx, u)
}

func (c *DBConnector) UpdateUser(ctx context.Context, u *user.DBUser) error {
	if err := user.Replace(ctx, u); err != nil {
		return err
	}
	cacheUser(ctx, u)
	return nil
}

func (c *DBConnector) DeleteUser(ctx context.Context, id string) error {
	u, err := c.FindUserById(ctx, id)
	if err != nil {
		return err
	}
	if err = user.Remove(ctx, u.Id); err != nil {
		return err
	}
	cache.SetInCache[*user.DBUser](ctx, cache.Users, id, nil)
	return nil
}

func (c *DBConnector) FindBootcampById(ctx context.Context, id string) (*bootcamp.Bootcamp, error) {
	oid, err := ParseID("bootcamp", id)
	if err != nil {
		return nil, err
	}
	b, err := bootcamp.FindOneById(ctx, oid)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, NotFound("bootcamp", id)
	}
	return b, nil
}

func (c *DBConnector) ListBootcamps(ctx context.Context, q listing.Query) (*listing.Result, error) {
	return list(ctx, bootcamp.Collection, q, bootcamp.HiddenFields, bootcampCoursesPopulate)
}

func (c *DBConnector) FindBootcampsByOwner(ctx context.Context, userID primitive.ObjectID) ([]bootcamp.Bootcamp, error) {
	return bootcamp.FindByOwner(ctx, userID)
}

func (c *DBConnector) FindBootcampsWithinRadius(ctx context.Context, zipcode string, miles float64) ([]bootcamp.Bootcamp, error) {
	results, err := c.Geocoder.Geocode(ctx, zipcode)
	if err != nil {
		return nil, errors.Wrapf(err, "geocoding zipcode '%s'", zipcode)
	}
	if len(results) == 0 {
		return nil, geocodeFailed(zipcode)
	}
	return bootcamp.FindWithinRadius(ctx, results[0].Longitude, results[0].Latitude, miles)
}

func (c *DBConnector) CreateBootcamp(ctx context.Context, owner *user.DBUser, b *bootcamp.Bootcamp) error {
	return model.CreateBootcamp(ctx, c.Geocoder, owner, b)
}

func (c *DBConnector) UpdateBootcamp(ctx context.Context, b *bootcamp.Bootcamp) error {
	return model.UpdateBootcamp(ctx, c.Geocoder, b)
}

func (c *DBConnector) SetBootcampPhoto(ctx context.Context, id primitive.ObjectID, url, key string) (string, error) {
	return bootcamp.SetPhoto(ctx, id, url, key)
}

func (c *DBConnector) AddBootcampDocs(ctx context.Context, id primitive.ObjectID, docs []bootcamp.UploadDoc) error {
	return bootcamp.AddUploadDocs(ctx, id, docs)
}

func (c *DBConnector) RemoveBootcampDoc(ctx context.Context, id, docID primitive.ObjectID) error {
	return bootcamp.RemoveUploadDoc(ctx, id, docID)
}

func (c *DBConnector) DeleteBootcamp(ctx context.Context, b *bootcamp.Bootcamp) error {
	if err := model.DeleteBootcamp(ctx, b); err != nil {
		return err
	}
	c.enqueueCleanup(ctx, b.Id.Hex(), b.StoredKeys())
	return nil
}

func (c *DBConnector) DeleteAllBootcamps(ctx context.Context) (int, error) {
	bootcamps, err := bootcamp.Find(ctx, db.Query(bson.M{}).WithFields(bootcamp.IdKey, bootcamp.PhotoKeyKey, bootcamp.UploadDocsKey))
	if err != nil {
		return 0, err
	}
	var keys []string
	for _, b := range bootcamps {
		keys = append(keys, b.StoredKeys()...)
	}

	if _, err = course.RemoveAll(ctx); err != nil {
		return 0, errors.Wrap(err, "removing courses")
	}
	if _, err = review.RemoveAll(ctx); err != nil {
		return 0, errors.Wrap(err, "removing reviews")
	}
	n, err := bootcamp.RemoveAll(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "removing bootcamps")
	}

	c.enqueueCleanup(ctx, "all", keys)
	return n, nil
}

func (c *DBConnector) enqueueCleanup(ctx context.Context, bootcampID string, keys []string) {
	if len(keys) == 0 {
		return
	}
	j := units.NewBootcampFilesCleanupJob(bootcampID, keys, time.Now())
	grip.Error(message.WrapError(c.Env.LocalQueue().Put(ctx, j), message.Fields{
		"message":     "could not enqueue bootcamp files cleanup",
		"bootcamp_id": bootcampID,
		"keys":        keys,
	}))
}

func (c *DBConnector) StoreFile(ctx context.Context, f *upload.File, name string) (string, error) {
	return upload.Store(ctx, c.Env.Bucket(), f, name)
}

func (c *DBConnector) DeleteFile(ctx context.Context, key string) error {
	return upload.Delete(ctx, c.Env.Bucket(), key)
}

func (c *DBConnector) FileURL(key string) string {
	return c.Env.Settings().Upload.URL + "/" + key
}

func (c *DBConnector) FindCourseById(ctx context.Context, id string) (*course.Course, error) {
	oid, err := ParseID("course", id)
	if err != nil {
		return nil, err
	}
	out, err := course.FindOneById(ctx, oid)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, NotFound("course", id)
	}
	return out, nil
}

func (c *DBConnector) FindCoursesByBootcamp(ctx context.Context, bootcampID primitive.ObjectID) ([]course.Course, error) {
	return course.FindByBootcamp(ctx, bootcampID)
}

func (c *DBConnector) ListCourses(ctx context.Context, q listing.Query) (*listing.Result, error) {
	return list(ctx, course.Collection, q, nil, courseBootcampPopulate)
}

func (c *DBConnector) CreateCourse(ctx context.Context, in *course.Course) error {
	return model.CreateCourse(ctx, in)
}

func (c *DBConnector) UpdateCourse(ctx context.Context, in *course.Course) error {
	return model.UpdateCourse(ctx, in)
}

func (c *DBConnector) DeleteCourse(ctx context.Context, in *course.Course) error {
	return model.DeleteCourse(ctx, in)
}

func (c *DBConnector) FindReviewById(ctx context.Context, id string) (*review.Review, error) {
	oid, err := ParseID("review", id)
	if err != nil {
		return nil, err
	}
	r, err := review.FindOneById(ctx, oid)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, NotFound("review", id)
	}
	return r, nil
}

func (c *DBConnector) FindReviewsByBootcamp(ctx context.Context, bootcampID primitive.ObjectID) ([]review.Review, error) {
	return review.FindByBootcamp(ctx, bootcampID)
}

func (c *DBConnector) FindReviewByBootcampAndUser(ctx context.Context, bootcampID, userID primitive.ObjectID) (*review.Review, error) {
	return review.FindOneByBootcampAndUser(ctx, bootcampID, userID)
}

func (c *DBConnector) ListReviews(ctx context.Context, q listing.Query) (*listing.Result, error) {
	return list(ctx, review.Collection, q, nil, reviewBootcampPopulate)
}

func (c *DBConnector) CreateReview(ctx context.Context, r *review.Review) error {
	return model.CreateReview(ctx, r)
}

func (c *DBConnector) UpdateReview(ctx context.Context, r *review.Review) error {
	return model.UpdateReview(ctx, r)
}

func (c *DBConnector) DeleteReview(ctx context.Context, r *review.Review) error {
	return model.DeleteReview(ctx, r)
}

func (c *DBConnector) SendEmail(ctx context.Context, email message.Email) error {
	return c.Mailer.Send(ctx, email)
}
