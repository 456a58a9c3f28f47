package model

import (
	"context"
	"net/http"
	"testing"

	devcamper "github.com/Md-IrfanS/DevCamper-API"
	"github.com/Md-IrfanS/DevCamper-API/db"
	"github.com/Md-IrfanS/DevCamper-API/mock"
	"github.com/Md-IrfanS/DevCamper-API/model/bootcamp"
	"github.com/Md-IrfanS/DevCamper-API/model/course"
	"github.com/Md-IrfanS/DevCamper-API/model/review"
	"github.com/Md-IrfanS/DevCamper-API/model/user"
	"github.com/Md-IrfanS/DevCamper-API/thirdparty"
	"github.com/evergreen-ci/gimlet"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRounding(t *testing.T) {
	Convey("When rounding derived averages", t, func() {
		Convey("costs round up to the next multiple of ten", func() {
			for mean, expected := range map[float64]float64{
				0:       0,
				10:      10,
				10.01:   20,
				2499.67: 2500,
				12500:   12500,
			} {
				So(RoundCost(mean), ShouldEqual, expected)
			}
		})
		Convey("ratings round half away from zero to one decimal", func() {
			for mean, expected := range map[float64]float64{
				8:    8,
				7.5:  7.5,
				8.25: 8.3,
				8.24: 8.2,
				9.95: 10,
			} {
				So(RoundRating(mean), ShouldAlmostEqual, expected, 1e-9)
			}
		})
	})
}

func TestCheckBootcampLimit(t *testing.T) {
	publisher := &user.DBUser{Id: primitive.NewObjectID(), Role: devcamper.PublisherRole}
	admin := &user.DBUser{Id: primitive.NewObjectID(), Role: devcamper.AdminRole}

	assert.NoError(t, CheckBootcampLimit(publisher, 0))
	assert.NoError(t, CheckBootcampLimit(admin, 3))

	err := CheckBootcampLimit(publisher, 1)
	require.Error(t, err)
	resp, ok := err.(gimlet.ErrorResponse)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestGeocodeBootcamp(t *testing.T) {
	ctx := context.Background()
	g := &thirdparty.MockGeocoder{Results: map[string][]thirdparty.GeoResult{
		"233 Bay State Rd Boston MA 02215": {{Latitude: 42.35, Longitude: -71.1, City: "Boston", Zipcode: "02215"}},
	}}

	b := &bootcamp.Bootcamp{Name: "Devworks", Address: "233 Bay State Rd Boston MA 02215"}
	require.NoError(t, GeocodeBootcamp(ctx, g, b))
	assert.Empty(t, b.Address)
	require.NotNil(t, b.Location)
	assert.Equal(t, []float64{-71.1, 42.35}, b.Location.Coordinates)
	assert.Equal(t, "Boston", b.Location.City)

	unknown := &bootcamp.Bootcamp{Name: "Nowhere", Address: "nowhere"}
	err := GeocodeBootcamp(ctx, g, unknown)
	require.Error(t, err)
	resp, ok := err.(gimlet.ErrorResponse)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	located := &bootcamp.Bootcamp{Location: bootcamp.NewPoint(1, 2)}
	require.NoError(t, GeocodeBootcamp(ctx, nil, located))
	assert.Equal(t, []float64{1, 2}, located.Location.Coordinates)
}

func newTestBootcamp(name string) *bootcamp.Bootcamp {
	return &bootcamp.Bootcamp{
		Name:        name,
		Description: "a bootcamp used in tests",
		Address:     "02215",
		Careers:     []devcamper.Career{devcamper.CareerWebDevelopment},
	}
}

func TestLifecycleWithDB(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mock.NewDBEnvironment(ctx, t)
	require.NoError(t, bootcamp.EnsureIndexes(ctx))
	require.NoError(t, review.EnsureIndexes(ctx))
	require.NoError(t, course.EnsureIndexes(ctx))

	g := &thirdparty.MockGeocoder{Results: map[string][]thirdparty.GeoResult{
		"02215": {{Latitude: 42.35, Longitude: -71.1}},
	}}

	for name, test := range map[string]func(*testing.T, *user.DBUser, *bootcamp.Bootcamp){
		"AverageCostFollowsCourses": func(t *testing.T, owner *user.DBUser, b *bootcamp.Bootcamp) {
			var courses []*course.Course
			for _, tuition := range []float64{1000, 2500, 3999} {
				c := &course.Course{
					Title:        "course",
					Description:  "a course",
					Weeks:        "8",
					Tuition:      tuition,
					MinimumSkill: devcamper.SkillBeginner,
					Bootcamp:     b.Id,
					User:         owner.Id,
				}
				require.NoError(t, CreateCourse(ctx, c))
				courses = append(courses, c)
			}
			stored, err := bootcamp.FindOneById(ctx, b.Id)
			require.NoError(t, err)
			assert.Equal(t, 2500.0, stored.AverageCost)

			courses[2].Tuition = 1500
			require.NoError(t, UpdateCourse(ctx, courses[2]))
			stored, err = bootcamp.FindOneById(ctx, b.Id)
			require.NoError(t, err)
			assert.Equal(t, 1670.0, stored.AverageCost)

			for _, c := range courses {
				require.NoError(t, DeleteCourse(ctx, c))
			}
			stored, err = bootcamp.FindOneById(ctx, b.Id)
			require.NoError(t, err)
			assert.Zero(t, stored.AverageCost)
		},
		"AverageRatingFollowsReviews": func(t *testing.T, _ *user.DBUser, b *bootcamp.Bootcamp) {
			var reviews []*review.Review
			for _, rating := range []int{7, 8} {
				r := &review.Review{
					Title:    "review",
					Text:     "text",
					Rating:   rating,
					Bootcamp: b.Id,
					User:     primitive.NewObjectID(),
				}
				require.NoError(t, CreateReview(ctx, r))
				reviews = append(reviews, r)
			}
			stored, err := bootcamp.FindOneById(ctx, b.Id)
			require.NoError(t, err)
			require.NotNil(t, stored.AverageRating)
			assert.Equal(t, 7.5, *stored.AverageRating)

			reviews[0].Rating = 10
			require.NoError(t, UpdateReview(ctx, reviews[0]))
			stored, err = bootcamp.FindOneById(ctx, b.Id)
			require.NoError(t, err)
			require.NotNil(t, stored.AverageRating)
			assert.Equal(t, 9.0, *stored.AverageRating)

			for _, r := range reviews {
				require.NoError(t, DeleteReview(ctx, r))
			}
			stored, err = bootcamp.FindOneById(ctx, b.Id)
			require.NoError(t, err)
			assert.Nil(t, stored.AverageRating)
		},
		"DuplicateReviewConflicts": func(t *testing.T, _ *user.DBUser, b *bootcamp.Bootcamp) {
			reviewer := primitive.NewObjectID()
			r := &review.Review{Title: "first", Text: "text", Rating: 5, Bootcamp: b.Id, User: reviewer}
			require.NoError(t, CreateReview(ctx, r))

			err := CreateReview(ctx, &review.Review{Title: "second", Text: "text", Rating: 6, Bootcamp: b.Id, User: reviewer})
			require.Error(t, err)
			resp, ok := err.(gimlet.ErrorResponse)
			require.True(t, ok)
			assert.Equal(t, http.StatusConflict, resp.StatusCode)
		},
		"SecondBootcampConflictsForNonAdmin": func(t *testing.T, owner *user.DBUser, _ *bootcamp.Bootcamp) {
			err := CreateBootcamp(ctx, g, owner, newTestBootcamp("Second Bootcamp"))
			require.Error(t, err)
			resp, ok := err.(gimlet.ErrorResponse)
			require.True(t, ok)
			assert.Equal(t, http.StatusConflict, resp.StatusCode)

			owner.Role = devcamper.AdminRole
			assert.NoError(t, CreateBootcamp(ctx, g, owner, newTestBootcamp("Admin Bootcamp")))
		},
		"UpdateReslugsAndGeocodes": func(t *testing.T, _ *user.DBUser, b *bootcamp.Bootcamp) {
			g.Results["10001"] = []thirdparty.GeoResult{{Latitude: 40.75, Longitude: -73.99}}
			b.Name = "Renamed Bootcamp"
			b.Address = "10001"
			require.NoError(t, UpdateBootcamp(ctx, g, b))

			stored, err := bootcamp.FindOneById(ctx, b.Id)
			require.NoError(t, err)
			assert.Equal(t, "renamed-bootcamp", stored.Slug)
			assert.Equal(t, []float64{-73.99, 40.75}, stored.Location.Coordinates)
			assert.Empty(t, stored.Address)
		},
		"DeleteCascades": func(t *testing.T, owner *user.DBUser, b *bootcamp.Bootcamp) {
			require.NoError(t, CreateCourse(ctx, &course.Course{
				Title: "course", Description: "d", Weeks: "4", Tuition: 100,
				MinimumSkill: devcamper.SkillAdvanced, Bootcamp: b.Id, User: owner.Id,
			}))
			require.NoError(t, CreateReview(ctx, &review.Review{
				Title: "review", Text: "text", Rating: 4, Bootcamp: b.Id, User: owner.Id,
			}))

			require.NoError(t, DeleteBootcamp(ctx, b))

			stored, err := bootcamp.FindOneById(ctx, b.Id)
			require.NoError(t, err)
			assert.Nil(t, stored)
			courses, err := course.FindByBootcamp(ctx, b.Id)
			require.NoError(t, err)
			assert.Empty(t, courses)
			reviews, err := review.FindByBootcamp(ctx, b.Id)
			require.NoError(t, err)
			assert.Empty(t, reviews)
		},
	} {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, db.ClearCollections(ctx, bootcamp.Collection, course.Collection, review.Collection))

			owner := &user.DBUser{Id: primitive.NewObjectID(), Role: devcamper.PublisherRole}
			b := newTestBootcamp("Devworks Bootcamp")
			require.NoError(t, CreateBootcamp(ctx, g, owner, b))
			require.NotNil(t, b.Location)

			test(t, owner, b)
		})
	}
}
