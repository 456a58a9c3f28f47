package route

import (
	"context"
	"net/http"
	"testing"

	devcamper "github.com/Md-IrfanS/DevCamper-API"
	"github.com/Md-IrfanS/DevCamper-API/model/bootcamp"
	"github.com/Md-IrfanS/DevCamper-API/model/course"
	"github.com/Md-IrfanS/DevCamper-API/model/listing"
	"github.com/Md-IrfanS/DevCamper-API/model/user"
	"github.com/Md-IrfanS/DevCamper-API/rest/data"
	"github.com/Md-IrfanS/DevCamper-API/rest/model"
	"github.com/stretchr/testify/suite"
)

type BootcampRouteSuite struct {
	sc        *data.MockConnector
	ctx       context.Context
	publisher *user.DBUser
	rival     *user.DBUser
	admin     *user.DBUser
	camp      *bootcamp.Bootcamp

	suite.Suite
}

func TestBootcampRouteSuite(t *testing.T) {
	suite.Run(t, new(BootcampRouteSuite))
}

func (s *BootcampRouteSuite) SetupTest() {
	s.ctx = context.Background()
	s.sc = newMockConnector()
	s.publisher = addUser(s.T(), s.sc, "publisher", devcamper.PublisherRole)
	s.rival = addUser(s.T(), s.sc, "rival", devcamper.PublisherRole)
	s.admin = addUser(s.T(), s.sc, "admin", devcamper.AdminRole)
	s.camp = addBootcamp(s.T(), s.sc, s.publisher, "Devworks Bootcamp")
}

func (s *BootcampRouteSuite) TestCreate() {
	r := jsonRequest(s.T(), http.MethodPost, "/api/v1/bootcamps", map[string]any{
		"name":        "ModernTech Bootcamp",
		"description": "Learn the modern stack",
		"address":     "10001",
		"careers":     []string{"Web Development", "UI/UX"},
		"housing":     true,
	})
	resp := run(s.T(), makeCreateBootcamp(s.sc), r, nil, s.rival)
	s.Equal(http.StatusCreated, resp.Status())
	out := success(s.T(), resp)

	created, ok := out.Details.(model.APIBootcamp)
	s.Require().True(ok)
	s.Equal("moderntech-bootcamp", *created.Slug)
	s.Equal(s.rival.Id.Hex(), *created.User)
	s.Require().NotNil(created.Location)
	s.Equal([]float64{-73.99, 40.75}, created.Location.Coordinates)
	s.Equal(devcamper.DefaultPhoto, *created.Photo)
}

func (s *BootcampRouteSuite) TestCreateSecondBootcampConflicts() {
	r := jsonRequest(s.T(), http.MethodPost, "/api/v1/bootcamps", map[string]any{
		"name":        "Second Bootcamp",
		"description": "One too many",
		"address":     testZipcode,
		"careers":     []string{"Business"},
	})
	failure(s.T(), run(s.T(), makeCreateBootcamp(s.sc), r, nil, s.publisher), http.StatusConflict)
}

func (s *BootcampRouteSuite) TestCreateAdminHasNoLimit() {
	for _, name := range []string{"Admin One", "Admin Two"} {
		r := jsonRequest(s.T(), http.MethodPost, "/api/v1/bootcamps", map[string]any{
			"name":        name,
			"description": "Run by an admin",
			"address":     testZipcode,
			"careers":     []string{"Other"},
		})
		success(s.T(), run(s.T(), makeCreateBootcamp(s.sc), r, nil, s.admin))
	}
}

func (s *BootcampRouteSuite) TestCreateInvalid() {
	for name, body := range map[string]map[string]any{
		"UnknownCareer": {
			"name": "Bad Careers", "description": "x", "address": testZipcode, "careers": []string{"Juggling"},
		},
		"MissingDescription": {
			"name": "No Description", "address": testZipcode, "careers": []string{"Other"},
		},
		"UnknownAddress": {
			"name": "Nowhere", "description": "x", "address": "00000", "careers": []string{"Other"},
		},
	} {
		s.Run(name, func() {
			r := jsonRequest(s.T(), http.MethodPost, "/api/v1/bootcamps", body)
			failure(s.T(), run(s.T(), makeCreateBootcamp(s.sc), r, nil, s.admin), http.StatusBadRequest)
		})
	}
}

func (s *BootcampRouteSuite) TestList() {
	addBootcamp(s.T(), s.sc, s.rival, "Codemasters")

	r := jsonRequest(s.T(), http.MethodGet, "/api/v1/bootcamps?select=name&sort=name&limit=1", nil)
	out := success(s.T(), run(s.T(), makeListBootcamps(s.sc), r, nil, nil))

	res, ok := out.Details.(*listing.Result)
	s.Require().True(ok)
	s.Equal(2, res.Total)
	s.Equal(1, res.Count)
	s.Require().Len(res.Data, 1)
	s.Equal("Codemasters", res.Data[0]["name"])
	s.NotContains(res.Data[0], "description")
	s.Require().NotNil(res.Pagination.Next)
	s.Equal(2, res.Pagination.Next.Page)
	s.Nil(res.Pagination.Prev)
}

func (s *BootcampRouteSuite) TestGetIncludesCourses() {
	s.Require().NoError(s.sc.CreateCourse(s.ctx, &course.Course{
		Title:        "Front End Web Development",
		Description:  "HTML, CSS and JavaScript",
		Weeks:        "8",
		Tuition:      8000,
		MinimumSkill: devcamper.SkillBeginner,
		Bootcamp:     s.camp.Id,
		User:         s.publisher.Id,
	}))

	r := jsonRequest(s.T(), http.MethodGet, "/api/v1/bootcamps/"+s.camp.Id.Hex(), nil)
	out := success(s.T(), run(s.T(), makeGetBootcamp(s.sc), r, map[string]string{"id": s.camp.Id.Hex()}, nil))

	populated, ok := out.Details.(bootcampWithCourses)
	s.Require().True(ok)
	s.Equal("Devworks Bootcamp", *populated.Name)
	s.Require().Len(populated.Courses, 1)
	s.Equal(8000.0, *populated.AverageCost)
}

func (s *BootcampRouteSuite) TestGetMissing() {
	for _, id := range []string{hexID(), "not-an-id"} {
		r := jsonRequest(s.T(), http.MethodGet, "/api/v1/bootcamps/"+id, nil)
		failure(s.T(), run(s.T(), makeGetBootcamp(s.sc), r, map[string]string{"id": id}, nil), http.StatusNotFound)
	}
}

func (s *BootcampRouteSuite) TestUpdateOwnership() {
	vars := map[string]string{"id": s.camp.Id.Hex()}
	body := map[string]any{"jobGuarantee": true}

	r := jsonRequest(s.T(), http.MethodPut, "/api/v1/bootcamps/"+s.camp.Id.Hex(), body)
	failure(s.T(), run(s.T(), makeUpdateBootcamp(s.sc), r, vars, s.rival), http.StatusForbidden)

	r = jsonRequest(s.T(), http.MethodPut, "/api/v1/bootcamps/"+s.camp.Id.Hex(), body)
	success(s.T(), run(s.T(), makeUpdateBootcamp(s.sc), r, vars, s.publisher))

	r = jsonRequest(s.T(), http.MethodPut, "/api/v1/bootcamps/"+s.camp.Id.Hex(), map[string]any{"name": "Devworks Reloaded"})
	out := success(s.T(), run(s.T(), makeUpdateBootcamp(s.sc), r, vars, s.admin))
	updated := out.Details.(model.APIBootcamp)
	s.Equal("devworks-reloaded", *updated.Slug)

	stored, err := s.sc.FindBootcampById(s.ctx, s.camp.Id.Hex())
	s.Require().NoError(err)
	s.True(stored.JobGuarantee)
	s.Equal("Devworks Reloaded", stored.Name)
}

func (s *BootcampRouteSuite) TestDelete() {
	vars := map[string]string{"id": s.camp.Id.Hex()}

	r := jsonRequest(s.T(), http.MethodDelete, "/api/v1/bootcamps/"+s.camp.Id.Hex(), nil)
	failure(s.T(), run(s.T(), makeDeleteBootcamp(s.sc), r, vars, s.rival), http.StatusForbidden)

	r = jsonRequest(s.T(), http.MethodDelete, "/api/v1/bootcamps/"+s.camp.Id.Hex(), nil)
	success(s.T(), run(s.T(), makeDeleteBootcamp(s.sc), r, vars, s.publisher))
	s.Empty(s.sc.Bootcamps)

	r = jsonRequest(s.T(), http.MethodDelete, "/api/v1/bootcamps/"+s.camp.Id.Hex(), nil)
	failure(s.T(), run(s.T(), makeDeleteBootcamp(s.sc), r, vars, s.publisher), http.StatusNotFound)
}

func (s *BootcampRouteSuite) TestDeleteAll() {
	addBootcamp(s.T(), s.sc, s.rival, "Codemasters")

	r := jsonRequest(s.T(), http.MethodDelete, "/api/v1/bootcamps/allDelete", nil)
	out := success(s.T(), run(s.T(), makeDeleteAllBootcamps(s.sc), r, nil, s.admin))
	s.Equal(map[string]int{"deletedCount": 2}, out.Details)

	r = jsonRequest(s.T(), http.MethodDelete, "/api/v1/bootcamps/allDelete", nil)
	failure(s.T(), run(s.T(), makeDeleteAllBootcamps(s.sc), r, nil, s.admin), http.StatusNotFound)
}

func (s *BootcampRouteSuite) TestUserBootcamps() {
	r := jsonRequest(s.T(), http.MethodGet, "/api/v1/bootcamps/user", nil)
	out := success(s.T(), run(s.T(), makeGetUserBootcamps(s.sc), r, nil, s.publisher))
	details := out.Details.(listDetails)
	s.Equal(1, details.Count)

	r = jsonRequest(s.T(), http.MethodGet, "/api/v1/bootcamps/user", nil)
	out = success(s.T(), run(s.T(), makeGetUserBootcamps(s.sc), r, nil, s.rival))
	s.Equal(0, out.Details.(listDetails).Count)
}

func (s *BootcampRouteSuite) TestRadius() {
	addBootcamp(s.T(), s.sc, s.rival, "Codemasters")
	s.Require().NoError(s.sc.CreateBootcamp(s.ctx, s.admin, &bootcamp.Bootcamp{
		Name:        "Big Apple Code",
		Description: "New York bootcamp",
		Address:     "10001",
		Careers:     []devcamper.Career{devcamper.CareerDataScience},
	}))

	for name, test := range map[string]struct {
		distance string
		count    int
	}{
		"Nearby":  {distance: "10", count: 2},
		"Distant": {distance: "500", count: 3},
		"Zero":    {distance: "0", count: 0},
	} {
		s.Run(name, func() {
			vars := map[string]string{"zipcode": "02118", "distance": test.distance}
			r := jsonRequest(s.T(), http.MethodGet, "/api/v1/bootcamps/radius/02118/"+test.distance, nil)
			out := success(s.T(), run(s.T(), makeGetBootcampsInRadius(s.sc), r, vars, nil))
			s.Equal(test.count, out.Details.(listDetails).Count)
		})
	}
}

func (s *BootcampRouteSuite) TestRadiusInvalid() {
	for name, vars := range map[string]map[string]string{
		"NotANumber":     {"zipcode": testZipcode, "distance": "far"},
		"Negative":       {"zipcode": testZipcode, "distance": "-5"},
		"UnknownZipcode": {"zipcode": "00000", "distance": "10"},
	} {
		s.Run(name, func() {
			r := jsonRequest(s.T(), http.MethodGet, "/api/v1/bootcamps/radius", nil)
			failure(s.T(), run(s.T(), makeGetBootcampsInRadius(s.sc), r, vars, nil), http.StatusBadRequest)
		})
	}
}
