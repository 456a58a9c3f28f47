/*
Package data is the link between the REST routes and the service layer.

The Connector interface holds every read and write the routes perform. The
DBConnector implements it against the store and the MockConnector keeps
everything in memory for route tests. Both enforce the same uniqueness,
ownership limit and derived average semantics, so a route behaves the same
against either.

To add to the Connector, add the method to the interface, implement it on
the DBConnector by calling into the model packages, and give the
MockConnector an in-memory version.
*/
package data

import (
	"context"

	"github.com/Md-IrfanS/DevCamper-API/model/bootcamp"
	"github.com/Md-IrfanS/DevCamper-API/model/course"
	"github.com/Md-IrfanS/DevCamper-API/model/listing"
	"github.com/Md-IrfanS/DevCamper-API/model/review"
	"github.com/Md-IrfanS/DevCamper-API/model/user"
	"github.com/Md-IrfanS/DevCamper-API/upload"
	"github.com/mongodb/grip/message"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Connector is the data access used by the REST routes. Lookups by id
// return a 404 error response when nothing matches. Lookups by other keys
// return nil without an error.
type Connector interface {
	FindUserById(context.Context, string) (*user.DBUser, error)
	FindUserByEmail(context.Context, string) (*user.DBUser, error)
	// FindUserByResetToken takes the plain token sent to the user and only
	// matches while the token has not expired.
	FindUserByResetToken(context.Context, string) (*user.DBUser, error)
	ListUsers(context.Context, listing.Query) (*listing.Result, error)
	CreateUser(context.Context, *user.DBUser) error
	UpdateUser(context.Context, *user.DBUser) error
	DeleteUser(context.Context, string) error

	FindBootcampById(context.Context, string) (*bootcamp.Bootcamp, error)
	// ListBootcamps populates each bootcamp with its courses.
	ListBootcamps(context.Context, listing.Query) (*listing.Result, error)
	FindBootcampsByOwner(context.Context, primitive.ObjectID) ([]bootcamp.Bootcamp, error)
	// FindBootcampsWithinRadius geocodes the zipcode and returns the
	// bootcamps within the given distance in miles.
	FindBootcampsWithinRadius(ctx context.Context, zipcode string, miles float64) ([]bootcamp.Bootcamp, error)
	// CreateBootcamp enforces the one bootcamp per non-admin owner limit
	// and geocodes the address.
	CreateBootcamp(context.Context, *user.DBUser, *bootcamp.Bootcamp) error
	// UpdateBootcamp stores the editable fields and refreshes the bootcamp
	// from the store. Averages, the photo and documents are left as stored.
	UpdateBootcamp(context.Context, *bootcamp.Bootcamp) error
	// SetBootcampPhoto records the bootcamp's photo and returns the storage
	// key of the photo it replaced. An empty key restores the default.
	SetBootcampPhoto(ctx context.Context, id primitive.ObjectID, url, key string) (string, error)
	AddBootcampDocs(context.Context, primitive.ObjectID, []bootcamp.UploadDoc) error
	RemoveBootcampDoc(ctx context.Context, id, docID primitive.ObjectID) error
	// DeleteBootcamp removes the bootcamp's courses, reviews and stored
	// files along with it.
	DeleteBootcamp(context.Context, *bootcamp.Bootcamp) error
	DeleteAllBootcamps(context.Context) (int, error)

	// StoreFile saves an upload under the given name and returns its key.
	StoreFile(ctx context.Context, f *upload.File, name string) (string, error)
	DeleteFile(ctx context.Context, key string) error
	// FileURL is where clients can fetch a stored file.
	FileURL(key string) string

	FindCourseById(context.Context, string) (*course.Course, error)
	FindCoursesByBootcamp(context.Context, primitive.ObjectID) ([]course.Course, error)
	// ListCourses populates each course with its bootcamp's name and
	// description.
	ListCourses(context.Context, listing.Query) (*listing.Result, error)
	CreateCourse(context.Context, *course.Course) error
	UpdateCourse(context.Context, *course.Course) error
	DeleteCourse(context.Context, *course.Course) error

	FindReviewById(context.Context, string) (*review.Review, error)
	FindReviewsByBootcamp(context.Context, primitive.ObjectID) ([]review.Review, error)
	FindReviewByBootcampAndUser(ctx context.Context, bootcampID, userID primitive.ObjectID) (*review.Review, error)
	// ListReviews populates each review with its bootcamp's name and
	// description.
	ListReviews(context.Context, listing.Query) (*listing.Result, error)
	CreateReview(context.Context, *review.Review) error
	UpdateReview(context.Context, *review.Review) error
	DeleteReview(context.Context, *review.Review) error

	SendEmail(context.Context, message.Email) error
}

var (
	bootcampCoursesPopulate = listing.Populate{
		From:         course.Collection,
		LocalField:   bootcamp.IdKey,
		ForeignField: course.BootcampKey,
		As:           "courses",
		Fields:       []string{course.TitleKey, course.DescriptionKey, course.TuitionKey},
	}
	courseBootcampPopulate = listing.Populate{
		From:         bootcamp.Collection,
		LocalField:   course.BootcampKey,
		ForeignField: bootcamp.IdKey,
		As:           "bootcamp",
		Fields:       []string{bootcamp.NameKey, bootcamp.DescriptionKey},
		Single:       true,
	}
	reviewBootcampPopulate = listing.Populate{
		From:         bootcamp.Collection,
		LocalField:   review.BootcampKey,
		ForeignField: bootcamp.IdKey,
		As:           "bootcamp",
		Fields:       []string{bootcamp.NameKey, bootcamp.DescriptionKey},
		Single:       true,
	}
)
