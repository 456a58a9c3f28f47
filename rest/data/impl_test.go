package data

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	devcamper "github.com/Md-IrfanS/DevCamper-API"
	"github.com/Md-IrfanS/DevCamper-API/db"
	"github.com/Md-IrfanS/DevCamper-API/db/cache"
	"github.com/Md-IrfanS/DevCamper-API/mock"
	"github.com/Md-IrfanS/DevCamper-API/model/bootcamp"
	"github.com/Md-IrfanS/DevCamper-API/model/course"
	"github.com/Md-IrfanS/DevCamper-API/model/listing"
	"github.com/Md-IrfanS/DevCamper-API/model/review"
	"github.com/Md-IrfanS/DevCamper-API/model/user"
	"github.com/Md-IrfanS/DevCamper-API/notify"
	"github.com/Md-IrfanS/DevCamper-API/thirdparty"
	"github.com/Md-IrfanS/DevCamper-API/upload"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DBConnectorSuite struct {
	ctx    context.Context
	cancel context.CancelFunc
	env    *mock.Environment
	conn   *DBConnector
	admin  *user.DBUser
	suite.Suite
}

func TestDBConnectorSuite(t *testing.T) {
	suite.Run(t, new(DBConnectorSuite))
}

func (s *DBConnectorSuite) SetupSuite() {
	s.env = mock.NewDBEnvironment(context.Background(), s.T())
	s.Require().NoError(bootcamp.EnsureIndexes(context.Background()))
	s.Require().NoError(course.EnsureIndexes(context.Background()))
	s.Require().NoError(review.EnsureIndexes(context.Background()))
	s.Require().NoError(user.EnsureIndexes(context.Background()))
}

func (s *DBConnectorSuite) SetupTest() {
	ctx, cancel := context.WithCancel(context.Background())
	s.ctx = cache.Embed(ctx, "test")
	s.cancel = cancel
	s.Require().NoError(db.ClearCollections(s.ctx, user.Collection, bootcamp.Collection, course.Collection, review.Collection))

	s.conn = &DBConnector{
		Env: s.env,
		Geocoder: &thirdparty.MockGeocoder{Results: map[string][]thirdparty.GeoResult{
			"02215": {{Latitude: 42.35, Longitude: -71.10, City: "Boston"}},
			"02118": {{Latitude: 42.34, Longitude: -71.07, City: "Boston"}},
			"10001": {{Latitude: 40.75, Longitude: -73.99, City: "New York"}},
		}},
		Mailer: &notify.MockMailer{},
	}
	s.admin = &user.DBUser{Id: primitive.NewObjectID(), Role: devcamper.AdminRole}
}

func (s *DBConnectorSuite) TearDownTest() {
	s.cancel()
}

func (s *DBConnectorSuite) createBootcamp(name, zipcode string) *bootcamp.Bootcamp {
	b := &bootcamp.Bootcamp{
		Name:        name,
		Description: "description of " + name,
		Address:     zipcode,
		Careers:     []devcamper.Career{devcamper.CareerWebDevelopment},
	}
	s.Require().NoError(s.conn.CreateBootcamp(s.ctx, s.admin, b))
	return b
}

func (s *DBConnectorSuite) createCourse(b *bootcamp.Bootcamp, title string, tuition float64) *course.Course {
	c := &course.Course{
		Title:        title,
		Description:  "a course",
		Weeks:        "8",
		Tuition:      tuition,
		MinimumSkill: devcamper.SkillBeginner,
		Bootcamp:     b.Id,
		User:         s.admin.Id,
	}
	s.Require().NoError(s.conn.CreateCourse(s.ctx, c))
	return c
}

func (s *DBConnectorSuite) storeFile(key string) {
	s.Require().NoError(s.env.Bucket().Put(s.ctx, key, bytes.NewReader([]byte(key))))
}

func (s *DBConnectorSuite) TestListBootcampsFiltersAndPopulates() {
	for i, name := range []string{"Alpha", "Bravo", "Charlie", "Delta"} {
		b := s.createBootcamp(name, "02215")
		s.createCourse(b, name+" course", float64(1000*(i+1)))
	}

	res, err := s.conn.ListBootcamps(s.ctx, listing.ParseQuery(url.Values{
		"averageCost[lte]": {"3000"},
		"select":           {"name,averageCost"},
		"sort":             {"-averageCost"},
		"limit":            {"2"},
		"page":             {"1"},
	}, bootcamp.ListingSchema))
	s.Require().NoError(err)

	s.Equal(3, res.Total)
	s.Equal(2, res.Count)
	s.Equal(2, res.Pagination.TotalPages)
	s.Require().NotNil(res.Pagination.Next)
	s.Nil(res.Pagination.Prev)

	s.Require().Len(res.Data, 2)
	s.Equal("Charlie", res.Data[0]["name"])
	s.Equal(3000.0, res.Data[0]["averageCost"])
	s.Equal("Bravo", res.Data[1]["name"])
	s.NotContains(res.Data[0], "description")

	courses, ok := res.Data[0]["courses"].(bson.A)
	s.Require().True(ok)
	s.Require().Len(courses, 1)
	populated, ok := courses[0].(bson.M)
	s.Require().True(ok)
	s.Equal("Charlie course", populated[course.TitleKey])
	s.NotContains(populated, "minimumSkill")

	res, err = s.conn.ListBootcamps(s.ctx, listing.ParseQuery(url.Values{"page": {"2"}, "limit": {"3"}}, bootcamp.ListingSchema))
	s.Require().NoError(err)
	s.Equal(4, res.Total)
	s.Equal(1, res.Count)
	s.Nil(res.Pagination.Next)
	s.Require().NotNil(res.Pagination.Prev)
}

func (s *DBConnectorSuite) TestListCoursesPopulatesBootcamp() {
	b := s.createBootcamp("Parent", "02215")
	s.createCourse(b, "Child", 5000)

	res, err := s.conn.ListCourses(s.ctx, listing.ParseQuery(url.Values{}, course.ListingSchema))
	s.Require().NoError(err)
	s.Require().Len(res.Data, 1)
	parent, ok := res.Data[0]["bootcamp"].(bson.M)
	s.Require().True(ok)
	s.Equal("Parent", parent[bootcamp.NameKey])
	s.Equal("description of Parent", parent[bootcamp.DescriptionKey])
	s.NotContains(parent, bootcamp.CareersKey)
}

func (s *DBConnectorSuite) TestListBootcampsHidesStorageKeys() {
	b := s.createBootcamp("Keys", "02215")
	_, err := s.conn.SetBootcampPhoto(s.ctx, b.Id, "/uploads/images/p.png", "images/p.png")
	s.Require().NoError(err)
	s.Require().NoError(s.conn.AddBootcampDocs(s.ctx, b.Id, []bootcamp.UploadDoc{
		{Id: primitive.NewObjectID(), FileName: "a.pdf", FileType: "application/pdf", URL: "/uploads/documents/a.pdf", Key: "documents/a.pdf"},
	}))

	for _, query := range []url.Values{{}, {"select": {"name,uploadDoc,photoKey"}}} {
		res, err := s.conn.ListBootcamps(s.ctx, listing.ParseQuery(query, bootcamp.ListingSchema))
		s.Require().NoError(err)
		s.Require().Len(res.Data, 1)
		s.NotContains(res.Data[0], bootcamp.PhotoKeyKey)

		docs, ok := res.Data[0][bootcamp.UploadDocsKey].(bson.A)
		s.Require().True(ok)
		s.Require().Len(docs, 1)
		doc, ok := docs[0].(bson.M)
		s.Require().True(ok)
		s.NotContains(doc, bootcamp.UploadDocKeyKey)
		s.Equal("a.pdf", doc["fileName"])
	}
}

func (s *DBConnectorSuite) TestFindBootcampsWithinRadius() {
	s.createBootcamp("Boston", "02215")
	s.createBootcamp("New York", "10001")

	near, err := s.conn.FindBootcampsWithinRadius(s.ctx, "02118", 10)
	s.Require().NoError(err)
	s.Require().Len(near, 1)
	s.Equal("Boston", near[0].Name)

	all, err := s.conn.FindBootcampsWithinRadius(s.ctx, "02118", 500)
	s.Require().NoError(err)
	s.Len(all, 2)

	_, err = s.conn.FindBootcampsWithinRadius(s.ctx, "00000", 10)
	s.Equal(http.StatusBadRequest, statusOf(err))
}

func (s *DBConnectorSuite) TestUpdateBootcampKeepsConcurrentWrites() {
	b := s.createBootcamp("Stale", "02215")
	stale := *b

	s.createCourse(b, "Later course", 2500)
	_, err := s.conn.SetBootcampPhoto(s.ctx, b.Id, "/uploads/images/p.png", "images/p.png")
	s.Require().NoError(err)
	s.Require().NoError(s.conn.AddBootcampDocs(s.ctx, b.Id, []bootcamp.UploadDoc{{Id: primitive.NewObjectID(), FileName: "a.pdf", Key: "documents/a.pdf"}}))

	stale.Name = "Stale Renamed"
	stale.Website = "https://stale.devcamper.io"
	s.Require().NoError(s.conn.UpdateBootcamp(s.ctx, &stale))
	s.Equal(2500.0, stale.AverageCost)
	s.Equal("stale-renamed", stale.Slug)

	stored, err := s.conn.FindBootcampById(s.ctx, b.Id.Hex())
	s.Require().NoError(err)
	s.Equal("Stale Renamed", stored.Name)
	s.Equal("https://stale.devcamper.io", stored.Website)
	s.Equal(2500.0, stored.AverageCost)
	s.Equal("images/p.png", stored.PhotoKey)
	s.Len(stored.UploadDocs, 1)
	s.Equal(b.CreatedAt.Unix(), stored.CreatedAt.Unix())
}

func (s *DBConnectorSuite) TestUpdateBootcampConflictsAndMissing() {
	s.createBootcamp("Taken", "02215")
	other := s.createBootcamp("Other", "02215")

	other.Name = "Taken"
	s.Equal(http.StatusConflict, statusOf(s.conn.UpdateBootcamp(s.ctx, other)))

	missing := *other
	missing.Id = primitive.NewObjectID()
	missing.Name = "Missing"
	s.Equal(http.StatusNotFound, statusOf(s.conn.UpdateBootcamp(s.ctx, &missing)))
}

func (s *DBConnectorSuite) TestBootcampPhotoAndDocs() {
	b := s.createBootcamp("Files", "02215")

	previous, err := s.conn.SetBootcampPhoto(s.ctx, b.Id, "/uploads/images/one.png", "images/one.png")
	s.Require().NoError(err)
	s.Empty(previous)
	previous, err = s.conn.SetBootcampPhoto(s.ctx, b.Id, "/uploads/images/two.png", "images/two.png")
	s.Require().NoError(err)
	s.Equal("images/one.png", previous)
	previous, err = s.conn.SetBootcampPhoto(s.ctx, b.Id, "", "")
	s.Require().NoError(err)
	s.Equal("images/two.png", previous)

	first := bootcamp.UploadDoc{Id: primitive.NewObjectID(), FileName: "a.pdf", Key: "documents/a.pdf"}
	second := bootcamp.UploadDoc{Id: primitive.NewObjectID(), FileName: "b.pdf", Key: "documents/b.pdf"}
	s.Require().NoError(s.conn.AddBootcampDocs(s.ctx, b.Id, []bootcamp.UploadDoc{first}))
	s.Require().NoError(s.conn.AddBootcampDocs(s.ctx, b.Id, []bootcamp.UploadDoc{second}))
	s.Require().NoError(s.conn.RemoveBootcampDoc(s.ctx, b.Id, first.Id))

	stored, err := s.conn.FindBootcampById(s.ctx, b.Id.Hex())
	s.Require().NoError(err)
	s.Equal(devcamper.DefaultPhoto, stored.Photo)
	s.Empty(stored.PhotoKey)
	s.Require().Len(stored.UploadDocs, 1)
	s.Equal(second.Id, stored.UploadDocs[0].Id)

	_, err = s.conn.SetBootcampPhoto(s.ctx, primitive.NewObjectID(), "x", "y")
	s.Equal(http.StatusNotFound, statusOf(err))
	s.Equal(http.StatusNotFound, statusOf(s.conn.AddBootcampDocs(s.ctx, primitive.NewObjectID(), []bootcamp.UploadDoc{second})))
}

func (s *DBConnectorSuite) TestDeleteAllBootcampsCascades() {
	n, err := s.conn.DeleteAllBootcamps(s.ctx)
	s.Require().NoError(err)
	s.Zero(n)

	var keys []string
	for _, name := range []string{"First", "Second"} {
		b := s.createBootcamp(name, "02215")
		s.createCourse(b, name+" course", 1000)
		s.Require().NoError(s.conn.CreateReview(s.ctx, &review.Review{Title: "r", Text: "t", Rating: 7, Bootcamp: b.Id, User: primitive.NewObjectID()}))

		key := "images/" + b.Id.Hex() + ".png"
		s.storeFile(key)
		_, err = s.conn.SetBootcampPhoto(s.ctx, b.Id, s.conn.FileURL(key), key)
		s.Require().NoError(err)
		keys = append(keys, key)
	}

	n, err = s.conn.DeleteAllBootcamps(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, n)

	for _, coll := range []string{bootcamp.Collection, course.Collection, review.Collection} {
		count, err := db.Count(s.ctx, coll, bson.M{})
		s.Require().NoError(err)
		s.Zero(count, coll)
	}
	s.Eventually(func() bool {
		for _, key := range keys {
			if exists, err := upload.Exists(s.ctx, s.env.Bucket(), key); err != nil || exists {
				return false
			}
		}
		return true
	}, 5*time.Second, 20*time.Millisecond)
}

func (s *DBConnectorSuite) TestDeleteBootcampCascades() {
	b := s.createBootcamp("Cascade", "02215")
	keep := s.createBootcamp("Keep", "02215")
	s.createCourse(b, "Gone", 1000)
	s.createCourse(keep, "Stays", 1000)

	s.Require().NoError(s.conn.DeleteBootcamp(s.ctx, b))

	_, err := s.conn.FindBootcampById(s.ctx, b.Id.Hex())
	s.Equal(http.StatusNotFound, statusOf(err))
	courses, err := s.conn.FindCoursesByBootcamp(s.ctx, b.Id)
	s.Require().NoError(err)
	s.Empty(courses)
	courses, err = s.conn.FindCoursesByBootcamp(s.ctx, keep.Id)
	s.Require().NoError(err)
	s.Len(courses, 1)
}

func (s *DBConnectorSuite) TestFindUserByIdReadsThroughCache() {
	u := &user.DBUser{Name: "Cached", Email: "cached@devcamper.io", Role: devcamper.UserRole}
	s.Require().NoError(u.SetPassword("secret123", 4))
	s.Require().NoError(s.conn.CreateUser(s.ctx, u))

	found, err := s.conn.FindUserById(s.ctx, u.Id.Hex())
	s.Require().NoError(err)
	s.Equal("Cached", found.Name)

	// the request's cache still answers after the record is gone
	s.Require().NoError(user.Remove(s.ctx, u.Id))
	found, err = s.conn.FindUserById(s.ctx, u.Id.Hex())
	s.Require().NoError(err)
	s.Equal(u.Id, found.Id)

	_, err = s.conn.FindUserById(cache.Embed(context.Background(), "fresh"), u.Id.Hex())
	s.Equal(http.StatusNotFound, statusOf(err))
}

func (s *DBConnectorSuite) TestUpdateAndDeleteUserRefreshCache() {
	u := &user.DBUser{Name: "Before", Email: "before@devcamper.io", Role: devcamper.UserRole}
	s.Require().NoError(u.SetPassword("secret123", 4))
	s.Require().NoError(s.conn.CreateUser(s.ctx, u))
	_, err := s.conn.FindUserById(s.ctx, u.Id.Hex())
	s.Require().NoError(err)

	u.Name = "After"
	s.Require().NoError(s.conn.UpdateUser(s.ctx, u))
	found, err := s.conn.FindUserById(s.ctx, u.Id.Hex())
	s.Require().NoError(err)
	s.Equal("After", found.Name)

	s.Require().NoError(s.conn.DeleteUser(s.ctx, u.Id.Hex()))
	_, err = s.conn.FindUserById(s.ctx, u.Id.Hex())
	s.Equal(http.StatusNotFound, statusOf(err))
}
