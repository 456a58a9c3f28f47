package data

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	devcamper "github.com/Md-IrfanS/DevCamper-API"
	"github.com/Md-IrfanS/DevCamper-API/model"
	"github.com/Md-IrfanS/DevCamper-API/model/bootcamp"
	"github.com/Md-IrfanS/DevCamper-API/model/course"
	"github.com/Md-IrfanS/DevCamper-API/model/listing"
	"github.com/Md-IrfanS/DevCamper-API/model/review"
	"github.com/Md-IrfanS/DevCamper-API/model/user"
	"github.com/Md-IrfanS/DevCamper-API/notify"
	"github.com/Md-IrfanS/DevCamper-API/thirdparty"
	"github.com/Md-IrfanS/DevCamper-API/upload"
	"github.com/evergreen-ci/gimlet"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockConnector is an in-memory Connector. Records are kept in insertion
// order and copied on the way in and out.
type MockConnector struct {
	Users     []user.DBUser
	Bootcamps []bootcamp.Bootcamp
	Courses   []course.Course
	Reviews   []review.Review
	Files     map[string][]byte

	Geocoder *thirdparty.MockGeocoder
	Mailer   *notify.MockMailer
	URL      string

	mu sync.RWMutex
}

func (mc *MockConnector) geocoder() thirdparty.Geocoder {
	if mc.Geocoder == nil {
		return nil
	}
	return mc.Geocoder
}

func conflict(format string, args ...any) error {
	return gimlet.ErrorResponse{StatusCode: http.StatusConflict, Message: fmt.Sprintf(format, args...)}
}

func invalid(err error) error {
	return gimlet.ErrorResponse{StatusCode: http.StatusBadRequest, Message: err.Error()}
}

func (mc *MockConnector) userIndex(id primitive.ObjectID) int {
	for i := range mc.Users {
		if mc.Users[i].Id == id {
			return i
		}
	}
	return -1
}

func (mc *MockConnector) bootcampIndex(id primitive.ObjectID) int {
	for i := range mc.Bootcamps {
		if mc.Bootcamps[i].Id == id {
			return i
		}
	}
	return -1
}

func (mc *MockConnector) courseIndex(id primitive.ObjectID) int {
	for i := range mc.Courses {
		if mc.Courses[i].Id == id {
			return i
		}
	}
	return -1
}

func (mc *MockConnector) reviewIndex(id primitive.ObjectID) int {
	for i := range mc.Reviews {
		if mc.Reviews[i].Id == id {
			return i
		}
	}
	return -1
}

func (mc *MockConnector) FindUserById(_ context.Context, id string) (*user.DBUser, error) {
	oid, err := ParseID("user", id)
	if err != nil {
		return nil, err
	}
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	if i := mc.userIndex(oid); i >= 0 {
		u := mc.Users[i]
		return &u, nil
	}
	return nil, NotFound("user", id)
}

func (mc *MockConnector) FindUserByEmail(_ context.Context, email string) (*user.DBUser, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	for _, u := range mc.Users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (mc *MockConnector) FindUserByResetToken(_ context.Context, token string) (*user.DBUser, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	hashed := user.HashResetToken(token)
	now := time.Now()
	for _, u := range mc.Users {
		if u.ResetPasswordToken != "" && u.ResetPasswordToken == hashed && u.ResetPasswordExpire.After(now) {
			return &u, nil
		}
	}
	return nil, nil
}

func (mc *MockConnector) ListUsers(_ context.Context, q listing.Query) (*listing.Result, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	docs := make([]bson.M, 0, len(mc.Users))
	for _, u := range mc.Users {
		doc, err := toDoc(u)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	res := listDocs(docs, q, user.HiddenFields, "", nil)
	return &res, nil
}

func (mc *MockConnector) emailTaken(email string, except primitive.ObjectID) bool {
	for _, u := range mc.Users {
		if u.Email == email && u.Id != except {
			return true
		}
	}
	return false
}

func (mc *MockConnector) CreateUser(_ context.Context, u *user.DBUser) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if u.Id.IsZero() {
		u.Id = primitive.NewObjectID()
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	if err := u.Validate(); err != nil {
		return invalid(err)
	}
	if mc.emailTaken(u.Email, u.Id) {
		return conflict("a user with that email already exists")
	}
	mc.Users = append(mc.Users, *u)
	return nil
}

func (mc *MockConnector) UpdateUser(_ context.Context, u *user.DBUser) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	i := mc.userIndex(u.Id)
	if i < 0 {
		return NotFound("user", u.Id.Hex())
	}
	u.UpdatedAt = time.Now()
	if err := u.Validate(); err != nil {
		return invalid(err)
	}
	if mc.emailTaken(u.Email, u.Id) {
		return conflict("a user with that email already exists")
	}
	mc.Users[i] = *u
	return nil
}

func (mc *MockConnector) DeleteUser(_ context.Context, id string) error {
	oid, err := ParseID("user", id)
	if err != nil {
		return err
	}
	mc.mu.Lock()
	defer mc.mu.Unlock()

	i := mc.userIndex(oid)
	if i < 0 {
		return NotFound("user", id)
	}
	mc.Users = append(mc.Users[:i], mc.Users[i+1:]...)
	return nil
}

func (mc *MockConnector) FindBootcampById(_ context.Context, id string) (*bootcamp.Bootcamp, error) {
	oid, err := ParseID("bootcamp", id)
	if err != nil {
		return nil, err
	}
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	if i := mc.bootcampIndex(oid); i >= 0 {
		b := mc.Bootcamps[i]
		return &b, nil
	}
	return nil, NotFound("bootcamp", id)
}

func (mc *MockConnector) ListBootcamps(_ context.Context, q listing.Query) (*listing.Result, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	docs := make([]bson.M, 0, len(mc.Bootcamps))
	for _, b := range mc.Bootcamps {
		doc, err := toDoc(b)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	courseDocs := make([]bson.M, 0, len(mc.Courses))
	for _, c := range mc.Courses {
		doc, err := toDoc(c)
		if err != nil {
			return nil, err
		}
		courseDocs = append(courseDocs, doc)
	}

	res := listDocs(docs, q, bootcamp.HiddenFields, bootcampCoursesPopulate.As, func(doc bson.M) {
		populated := bson.A{}
		for _, c := range courseDocs {
			if equalValues(c[course.BootcampKey], doc[bootcamp.IdKey]) {
				populated = append(populated, pickFields(c, bootcampCoursesPopulate.Fields...))
			}
		}
		doc[bootcampCoursesPopulate.As] = populated
	})
	return &res, nil
}

func (mc *MockConnector) FindBootcampsByOwner(_ context.Context, userID primitive.ObjectID) ([]bootcamp.Bootcamp, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	out := []bootcamp.Bootcamp{}
	for i := len(mc.Bootcamps) - 1; i >= 0; i-- {
		if mc.Bootcamps[i].User == userID {
			out = append(out, mc.Bootcamps[i])
		}
	}
	return out, nil
}

// milesBetween is the great circle distance between two points.
func milesBetween(lng1, lat1, lng2, lat2 float64) float64 {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLng := rad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * devcamper.EarthRadiusMiles * math.Asin(math.Min(1, math.Sqrt(a)))
}

func (mc *MockConnector) FindBootcampsWithinRadius(ctx context.Context, zipcode string, miles float64) ([]bootcamp.Bootcamp, error) {
	if mc.Geocoder == nil {
		return nil, errors.New("no geocoder is configured")
	}
	results, err := mc.Geocoder.Geocode(ctx, zipcode)
	if err != nil {
		return nil, errors.Wrapf(err, "geocoding zipcode '%s'", zipcode)
	}
	if len(results) == 0 {
		return nil, geocodeFailed(zipcode)
	}
	center := results[0]

	mc.mu.RLock()
	defer mc.mu.RUnlock()

	out := []bootcamp.Bootcamp{}
	for _, b := range mc.Bootcamps {
		if b.Location == nil || len(b.Location.Coordinates) != 2 {
			continue
		}
		if milesBetween(center.Longitude, center.Latitude, b.Location.Coordinates[0], b.Location.Coordinates[1]) <= miles {
			out = append(out, b)
		}
	}
	return out, nil
}

func (mc *MockConnector) nameTaken(name string, except primitive.ObjectID) bool {
	for _, b := range mc.Bootcamps {
		if b.Name == name && b.Id != except {
			return true
		}
	}
	return false
}

func (mc *MockConnector) CreateBootcamp(ctx context.Context, owner *user.DBUser, b *bootcamp.Bootcamp) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	owned := 0
	for _, existing := range mc.Bootcamps {
		if existing.User == owner.Id {
			owned++
		}
	}
	if err := model.CheckBootcampLimit(owner, owned); err != nil {
		return err
	}

	b.User = owner.Id
	if err := model.GeocodeBootcamp(ctx, mc.geocoder(), b); err != nil {
		return err
	}
	now := time.Now()
	b.SetDefaults(now)
	b.CreatedAt = now
	b.UpdatedAt = now
	if err := b.Validate(); err != nil {
		return invalid(err)
	}
	if mc.nameTaken(b.Name, b.Id) {
		return conflict("a bootcamp named '%s' already exists", b.Name)
	}
	mc.Bootcamps = append(mc.Bootcamps, *b)
	return nil
}

func (mc *MockConnector) UpdateBootcamp(ctx context.Context, b *bootcamp.Bootcamp) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	i := mc.bootcampIndex(b.Id)
	if i < 0 {
		return NotFound("bootcamp", b.Id.Hex())
	}
	b.SetSlug()
	if err := model.GeocodeBootcamp(ctx, mc.geocoder(), b); err != nil {
		return err
	}
	b.UpdatedAt = time.Now()
	if err := b.Validate(); err != nil {
		return invalid(err)
	}
	if mc.nameTaken(b.Name, b.Id) {
		return conflict("a bootcamp named '%s' already exists", b.Name)
	}

	stored := mc.Bootcamps[i]
	b.AverageCost = stored.AverageCost
	b.AverageRating = stored.AverageRating
	b.Photo = stored.Photo
	b.PhotoKey = stored.PhotoKey
	b.UploadDocs = append([]bootcamp.UploadDoc{}, stored.UploadDocs...)
	b.User = stored.User
	b.CreatedAt = stored.CreatedAt
	mc.Bootcamps[i] = *b
	return nil
}

func (mc *MockConnector) SetBootcampPhoto(_ context.Context, id primitive.ObjectID, url, key string) (string, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	i := mc.bootcampIndex(id)
	if i < 0 {
		return "", NotFound("bootcamp", id.Hex())
	}
	b := &mc.Bootcamps[i]
	previous := b.PhotoKey
	b.Photo, b.PhotoKey = url, key
	if key == "" {
		b.Photo = devcamper.DefaultPhoto
	}
	b.UpdatedAt = time.Now()
	return previous, nil
}

func (mc *MockConnector) AddBootcampDocs(_ context.Context, id primitive.ObjectID, docs []bootcamp.UploadDoc) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	i := mc.bootcampIndex(id)
	if i < 0 {
		return NotFound("bootcamp", id.Hex())
	}
	b := &mc.Bootcamps[i]
	b.UploadDocs = append(append([]bootcamp.UploadDoc{}, b.UploadDocs...), docs...)
	b.UpdatedAt = time.Now()
	return nil
}

func (mc *MockConnector) RemoveBootcampDoc(_ context.Context, id, docID primitive.ObjectID) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	i := mc.bootcampIndex(id)
	if i < 0 {
		return NotFound("bootcamp", id.Hex())
	}
	b := &mc.Bootcamps[i]
	remaining := make([]bootcamp.UploadDoc, 0, len(b.UploadDocs))
	for _, doc := range b.UploadDocs {
		if doc.Id != docID {
			remaining = append(remaining, doc)
		}
	}
	b.UploadDocs = remaining
	b.UpdatedAt = time.Now()
	return nil
}

func (mc *MockConnector) removeFiles(keys []string) {
	for _, key := range keys {
		delete(mc.Files, key)
	}
}

func (mc *MockConnector) DeleteBootcamp(_ context.Context, b *bootcamp.Bootcamp) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	i := mc.bootcampIndex(b.Id)
	if i < 0 {
		return NotFound("bootcamp", b.Id.Hex())
	}
	mc.removeFiles(mc.Bootcamps[i].StoredKeys())
	mc.Bootcamps = append(mc.Bootcamps[:i], mc.Bootcamps[i+1:]...)

	courses := mc.Courses[:0]
	for _, c := range mc.Courses {
		if c.Bootcamp != b.Id {
			courses = append(courses, c)
		}
	}
	mc.Courses = courses

	reviews := mc.Reviews[:0]
	for _, r := range mc.Reviews {
		if r.Bootcamp != b.Id {
			reviews = append(reviews, r)
		}
	}
	mc.Reviews = reviews
	return nil
}

func (mc *MockConnector) DeleteAllBootcamps(_ context.Context) (int, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	n := len(mc.Bootcamps)
	for _, b := range mc.Bootcamps {
		mc.removeFiles(b.StoredKeys())
	}
	mc.Bootcamps = nil
	mc.Courses = nil
	mc.Reviews = nil
	return n, nil
}

func (mc *MockConnector) StoreFile(_ context.Context, f *upload.File, name string) (string, error) {
	src, err := f.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()
	contents, err := io.ReadAll(src)
	if err != nil {
		return "", errors.Wrap(err, "reading upload")
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	if mc.Files == nil {
		mc.Files = map[string][]byte{}
	}
	key := upload.Key(f.Folder, name)
	mc.Files[key] = contents
	return key, nil
}

func (mc *MockConnector) DeleteFile(_ context.Context, key string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if _, ok := mc.Files[key]; !ok {
		return gimlet.ErrorResponse{StatusCode: http.StatusNotFound, Message: "file not found"}
	}
	delete(mc.Files, key)
	return nil
}

func (mc *MockConnector) FileURL(key string) string {
	return strings.TrimRight(mc.URL, "/") + "/" + key
}

func (mc *MockConnector) FindCourseById(_ context.Context, id string) (*course.Course, error) {
	oid, err := ParseID("course", id)
	if err != nil {
		return nil, err
	}
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	if i := mc.courseIndex(oid); i >= 0 {
		c := mc.Courses[i]
		return &c, nil
	}
	return nil, NotFound("course", id)
}

func (mc *MockConnector) FindCoursesByBootcamp(_ context.Context, bootcampID primitive.ObjectID) ([]course.Course, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	out := []course.Course{}
	for _, c := range mc.Courses {
		if c.Bootcamp == bootcampID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (mc *MockConnector) bootcampSummaries() (map[string]bson.M, error) {
	out := map[string]bson.M{}
	for _, b := range mc.Bootcamps {
		doc, err := toDoc(b)
		if err != nil {
			return nil, err
		}
		out[b.Id.Hex()] = pickFields(doc, courseBootcampPopulate.Fields...)
	}
	return out, nil
}

func (mc *MockConnector) ListCourses(_ context.Context, q listing.Query) (*listing.Result, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	summaries, err := mc.bootcampSummaries()
	if err != nil {
		return nil, err
	}
	docs := make([]bson.M, 0, len(mc.Courses))
	for _, c := range mc.Courses {
		doc, err := toDoc(c)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	res := listDocs(docs, q, nil, courseBootcampPopulate.As, func(doc bson.M) {
		id, _ := doc[course.BootcampKey].(primitive.ObjectID)
		if summary, ok := summaries[id.Hex()]; ok {
			doc[courseBootcampPopulate.As] = summary
		} else {
			delete(doc, courseBootcampPopulate.As)
		}
	})
	return &res, nil
}

// refreshAverageCost mirrors model.UpdateAverageCost. The lock must be held.
func (mc *MockConnector) refreshAverageCost(bootcampID primitive.ObjectID) {
	i := mc.bootcampIndex(bootcampID)
	if i < 0 {
		return
	}
	sum, n := 0.0, 0
	for _, c := range mc.Courses {
		if c.Bootcamp == bootcampID {
			sum += c.Tuition
			n++
		}
	}
	mc.Bootcamps[i].AverageCost = 0
	if n > 0 {
		mc.Bootcamps[i].AverageCost = model.RoundCost(sum / float64(n))
	}
}

// refreshAverageRating mirrors model.UpdateAverageRating. The lock must be
// held.
func (mc *MockConnector) refreshAverageRating(bootcampID primitive.ObjectID) {
	i := mc.bootcampIndex(bootcampID)
	if i < 0 {
		return
	}
	sum, n := 0, 0
	for _, r := range mc.Reviews {
		if r.Bootcamp == bootcampID {
			sum += r.Rating
			n++
		}
	}
	mc.Bootcamps[i].AverageRating = nil
	if n > 0 {
		rating := model.RoundRating(float64(sum) / float64(n))
		mc.Bootcamps[i].AverageRating = &rating
	}
}

func (mc *MockConnector) CreateCourse(_ context.Context, c *course.Course) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if c.Id.IsZero() {
		c.Id = primitive.NewObjectID()
	}
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	if err := c.Validate(); err != nil {
		return invalid(err)
	}
	mc.Courses = append(mc.Courses, *c)
	mc.refreshAverageCost(c.Bootcamp)
	return nil
}

func (mc *MockConnector) UpdateCourse(_ context.Context, c *course.Course) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	i := mc.courseIndex(c.Id)
	if i < 0 {
		return NotFound("course", c.Id.Hex())
	}
	c.UpdatedAt = time.Now()
	if err := c.Validate(); err != nil {
		return invalid(err)
	}
	mc.Courses[i] = *c
	mc.refreshAverageCost(c.Bootcamp)
	return nil
}

func (mc *MockConnector) DeleteCourse(_ context.Context, c *course.Course) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	i := mc.courseIndex(c.Id)
	if i < 0 {
		return NotFound("course", c.Id.Hex())
	}
	mc.Courses = append(mc.Courses[:i], mc.Courses[i+1:]...)
	mc.refreshAverageCost(c.Bootcamp)
	return nil
}

func (mc *MockConnector) FindReviewById(_ context.Context, id string) (*review.Review, error) {
	oid, err := ParseID("review", id)
	if err != nil {
		return nil, err
	}
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	if i := mc.reviewIndex(oid); i >= 0 {
		r := mc.Reviews[i]
		return &r, nil
	}
	return nil, NotFound("review", id)
}

func (mc *MockConnector) FindReviewsByBootcamp(_ context.Context, bootcampID primitive.ObjectID) ([]review.Review, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	out := []review.Review{}
	for _, r := range mc.Reviews {
		if r.Bootcamp == bootcampID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (mc *MockConnector) FindReviewByBootcampAndUser(_ context.Context, bootcampID, userID primitive.ObjectID) (*review.Review, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	for _, r := range mc.Reviews {
		if r.Bootcamp == bootcampID && r.User == userID {
			return &r, nil
		}
	}
	return nil, nil
}

func (mc *MockConnector) ListReviews(_ context.Context, q listing.Query) (*listing.Result, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	summaries, err := mc.bootcampSummaries()
	if err != nil {
		return nil, err
	}
	docs := make([]bson.M, 0, len(mc.Reviews))
	for _, r := range mc.Reviews {
		doc, err := toDoc(r)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	res := listDocs(docs, q, nil, reviewBootcampPopulate.As, func(doc bson.M) {
		id, _ := doc[review.BootcampKey].(primitive.ObjectID)
		if summary, ok := summaries[id.Hex()]; ok {
			doc[reviewBootcampPopulate.As] = summary
		} else {
			delete(doc, reviewBootcampPopulate.As)
		}
	})
	return &res, nil
}

func (mc *MockConnector) reviewTaken(r *review.Review) bool {
	for _, existing := range mc.Reviews {
		if existing.Bootcamp == r.Bootcamp && existing.User == r.User && existing.Id != r.Id {
			return true
		}
	}
	return false
}

func (mc *MockConnector) CreateReview(_ context.Context, r *review.Review) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if r.Id.IsZero() {
		r.Id = primitive.NewObjectID()
	}
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	if err := r.Validate(); err != nil {
		return invalid(err)
	}
	if mc.reviewTaken(r) {
		return conflict("user has already reviewed this bootcamp")
	}
	mc.Reviews = append(mc.Reviews, *r)
	mc.refreshAverageRating(r.Bootcamp)
	return nil
}

func (mc *MockConnector) UpdateReview(_ context.Context, r *review.Review) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	i := mc.reviewIndex(r.Id)
	if i < 0 {
		return NotFound("review", r.Id.Hex())
	}
	r.UpdatedAt = time.Now()
	if err := r.Validate(); err != nil {
		return invalid(err)
	}
	mc.Reviews[i] = *r
	mc.refreshAverageRating(r.Bootcamp)
	return nil
}

func (mc *MockConnector) DeleteReview(_ context.Context, r *review.Review) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	i := mc.reviewIndex(r.Id)
	if i < 0 {
		return NotFound("review", r.Id.Hex())
	}
	mc.Reviews = append(mc.Reviews[:i], mc.Reviews[i+1:]...)
	mc.refreshAverageRating(r.Bootcamp)
	return nil
}

func (mc *MockConnector) SendEmail(ctx context.Context, email message.Email) error {
	if mc.Mailer == nil {
		return notify.DisabledMailer{}.Send(ctx, email)
	}
	return mc.Mailer.Send(ctx, email)
}
