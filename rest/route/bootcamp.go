package route

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Md-IrfanS/DevCamper-API/model/bootcamp"
	"github.com/Md-IrfanS/DevCamper-API/model/course"
	"github.com/Md-IrfanS/DevCamper-API/model/listing"
	"github.com/Md-IrfanS/DevCamper-API/rest/data"
	"github.com/Md-IrfanS/DevCamper-API/rest/model"
	"github.com/evergreen-ci/gimlet"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
)

func bootcampsToAPI(in []bootcamp.Bootcamp) []model.APIBootcamp {
	out := make([]model.APIBootcamp, 0, len(in))
	for _, b := range in {
		apiBootcamp := model.APIBootcamp{}
		apiBootcamp.BuildFromService(b)
		out = append(out, apiBootcamp)
	}
	return out
}

func coursesToAPI(in []course.Course) []model.APICourse {
	out := make([]model.APICourse, 0, len(in))
	for _, c := range in {
		apiCourse := model.APICourse{}
		apiCourse.BuildFromService(c)
		out = append(out, apiCourse)
	}
	return out
}

///////////////////////////////////////////////////////////////////////////////
//
// GET /bootcamps

type bootcampListHandler struct {
	query listing.Query
	sc    data.Connector
}

func makeListBootcamps(sc data.Connector) gimlet.RouteHandler {
	return &bootcampListHandler{sc: sc}
}

func (h *bootcampListHandler) Factory() gimlet.RouteHandler {
	return &bootcampListHandler{sc: h.sc}
}

func (h *bootcampListHandler) Parse(ctx context.Context, r *http.Request) error {
	h.query = listing.ParseQuery(r.URL.Query(), bootcamp.ListingSchema)
	return nil
}

func (h *bootcampListHandler) Run(ctx context.Context) gimlet.Responder {
	res, err := h.sc.ListBootcamps(ctx, h.query)
	if err != nil {
		return makeFailure(ctx, err)
	}
	return makeSuccess(http.StatusOK, "show all bootcamps", res)
}

///////////////////////////////////////////////////////////////////////////////
//
// POST /bootcamps

type bootcampCreateHandler struct {
	body model.APIBootcamp
	sc   data.Connector
}

func makeCreateBootcamp(sc data.Connector) gimlet.RouteHandler {
	return &bootcampCreateHandler{sc: sc}
}

func (h *bootcampCreateHandler) Factory() gimlet.RouteHandler {
	return &bootcampCreateHandler{sc: h.sc}
}

func (h *bootcampCreateHandler) Parse(ctx context.Context, r *http.Request) error {
	return readJSON(r, &h.body)
}

func (h *bootcampCreateHandler) Run(ctx context.Context) gimlet.Responder {
	u := MustHaveUser(ctx)
	b, err := h.body.ToService()
	if err != nil {
		return makeFailure(ctx, badRequest(err))
	}
	if err = h.sc.CreateBootcamp(ctx, u, b); err != nil {
		return makeFailure(ctx, err)
	}

	grip.Info(message.Fields{
		"message":     "created bootcamp",
		"bootcamp_id": b.Id.Hex(),
		"user_id":     u.Id.Hex(),
	})
	out := model.APIBootcamp{}
	out.BuildFromService(*b)
	return makeSuccess(http.StatusCreated, "bootcamp created", out)
}

///////////////////////////////////////////////////////////////////////////////
//
// DELETE /bootcamps/allDelete

type bootcampDeleteAllHandler struct {
	sc data.Connector
}

func makeDeleteAllBootcamps(sc data.Connector) gimlet.RouteHandler {
	return &bootcampDeleteAllHandler{sc: sc}
}

func (h *bootcampDeleteAllHandler) Factory() gimlet.RouteHandler {
	return &bootcampDeleteAllHandler{sc: h.sc}
}

func (h *bootcampDeleteAllHandler) Parse(ctx context.Context, r *http.Request) error { return nil }

func (h *bootcampDeleteAllHandler) Run(ctx context.Context) gimlet.Responder {
	n, err := h.sc.DeleteAllBootcamps(ctx)
	if err != nil {
		return makeFailure(ctx, err)
	}
	if n == 0 {
		return makeFailure(ctx, gimlet.ErrorResponse{StatusCode: http.StatusNotFound, Message: "no bootcamps found to delete"})
	}

	grip.Notice(message.Fields{
		"message": "deleted all bootcamps",
		"count":   n,
		"user_id": MustHaveUser(ctx).Id.Hex(),
	})
	return makeSuccess(http.StatusOK, "deleted all bootcamps", map[string]int{"deletedCount": n})
}

///////////////////////////////////////////////////////////////////////////////
//
// GET /bootcamps/user

type bootcampsByUserHandler struct {
	sc data.Connector
}

func makeGetUserBootcamps(sc data.Connector) gimlet.RouteHandler {
	return &bootcampsByUserHandler{sc: sc}
}

func (h *bootcampsByUserHandler) Factory() gimlet.RouteHandler {
	return &bootcampsByUserHandler{sc: h.sc}
}

func (h *bootcampsByUserHandler) Parse(ctx context.Context, r *http.Request) error { return nil }

func (h *bootcampsByUserHandler) Run(ctx context.Context) gimlet.Responder {
	bootcamps, err := h.sc.FindBootcampsByOwner(ctx, MustHaveUser(ctx).Id)
	if err != nil {
		return makeFailure(ctx, err)
	}
	return makeSuccess(http.StatusOK, "show user bootcamps", listDetails{
		Count: len(bootcamps),
		Data:  bootcampsToAPI(bootcamps),
	})
}

///////////////////////////////////////////////////////////////////////////////
//
// GET /bootcamps/radius/{zipcode}/{distance}

type bootcampRadiusHandler struct {
	zipcode  string
	distance float64
	sc       data.Connector
}

func makeGetBootcampsInRadius(sc data.Connector) gimlet.RouteHandler {
	return &bootcampRadiusHandler{sc: sc}
}

func (h *bootcampRadiusHandler) Factory() gimlet.RouteHandler {
	return &bootcampRadiusHandler{sc: h.sc}
}

func (h *bootcampRadiusHandler) Parse(ctx context.Context, r *http.Request) error {
	vars := gimlet.GetVars(r)
	h.zipcode = vars["zipcode"]
	distance, err := strconv.ParseFloat(vars["distance"], 64)
	if err != nil || distance < 0 {
		return gimlet.ErrorResponse{
			StatusCode: http.StatusBadRequest,
			Message:    fmt.Sprintf("distance '%s' must be a non-negative number of miles", vars["distance"]),
		}
	}
	h.distance = distance
	return nil
}

func (h *bootcampRadiusHandler) Run(ctx context.Context) gimlet.Responder {
	bootcamps, err := h.sc.FindBootcampsWithinRadius(ctx, h.zipcode, h.distance)
	if err != nil {
		return makeFailure(ctx, err)
	}
	return makeSuccess(http.StatusOK, "bootcamps within radius", listDetails{
		Count: len(bootcamps),
		Data:  bootcampsToAPI(bootcamps),
	})
}

///////////////////////////////////////////////////////////////////////////////
//
// GET /bootcamps/{id}

// bootcampWithCourses is a bootcamp populated with its courses.
type bootcampWithCourses struct {
	model.APIBootcamp
	Courses []model.APICourse `json:"courses"`
}

type bootcampGetHandler struct {
	id string
	sc data.Connector
}

func makeGetBootcamp(sc data.Connector) gimlet.RouteHandler {
	return &bootcampGetHandler{sc: sc}
}

func (h *bootcampGetHandler) Factory() gimlet.RouteHandler {
	return &bootcampGetHandler{sc: h.sc}
}

func (h *bootcampGetHandler) Parse(ctx context.Context, r *http.Request) error {
	h.id = gimlet.GetVars(r)["id"]
	return nil
}

func (h *bootcampGetHandler) Run(ctx context.Context) gimlet.Responder {
	b, err := h.sc.FindBootcampById(ctx, h.id)
	if err != nil {
		return makeFailure(ctx, err)
	}
	courses, err := h.sc.FindCoursesByBootcamp(ctx, b.Id)
	if err != nil {
		return makeFailure(ctx, err)
	}

	out := bootcampWithCourses{Courses: coursesToAPI(courses)}
	out.BuildFromService(*b)
	return makeSuccess(http.StatusOK, fmt.Sprintf("show bootcamp %s", h.id), out)
}

///////////////////////////////////////////////////////////////////////////////
//
// PUT /bootcamps/{id}

type bootcampUpdateHandler struct {
	id   string
	body model.APIBootcamp
	sc   data.Connector
}

func makeUpdateBootcamp(sc data.Connector) gimlet.RouteHandler {
	return &bootcampUpdateHandler{sc: sc}
}

func (h *bootcampUpdateHandler) Factory() gimlet.RouteHandler {
	return &bootcampUpdateHandler{sc: h.sc}
}

func (h *bootcampUpdateHandler) Parse(ctx context.Context, r *http.Request) error {
	h.id = gimlet.GetVars(r)["id"]
	return readJSON(r, &h.body)
}

func (h *bootcampUpdateHandler) Run(ctx context.Context) gimlet.Responder {
	b, err := h.sc.FindBootcampById(ctx, h.id)
	if err != nil {
		return makeFailure(ctx, err)
	}
	if err = checkOwner(MustHaveUser(ctx), b.User, "bootcamp", h.id); err != nil {
		return makeFailure(ctx, err)
	}
	if err = h.body.ApplyTo(b); err != nil {
		return makeFailure(ctx, badRequest(err))
	}
	if err = h.sc.UpdateBootcamp(ctx, b); err != nil {
		return makeFailure(ctx, err)
	}

	out := model.APIBootcamp{}
	out.BuildFromService(*b)
	return makeSuccess(http.StatusOK, fmt.Sprintf("updated bootcamp %s", h.id), out)
}

///////////////////////////////////////////////////////////////////////////////
//
// DELETE /bootcamps/{id}

type bootcampDeleteHandler struct {
	id string
	sc data.Connector
}

func makeDeleteBootcamp(sc data.Connector) gimlet.RouteHandler {
	return &bootcampDeleteHandler{sc: sc}
}

func (h *bootcampDeleteHandler) Factory() gimlet.RouteHandler {
	return &bootcampDeleteHandler{sc: h.sc}
}

func (h *bootcampDeleteHandler) Parse(ctx context.Context, r *http.Request) error {
	h.id = gimlet.GetVars(r)["id"]
	return nil
}

func (h *bootcampDeleteHandler) Run(ctx context.Context) gimlet.Responder {
	b, err := h.sc.FindBootcampById(ctx, h.id)
	if err != nil {
		return makeFailure(ctx, err)
	}
	u := MustHaveUser(ctx)
	if err = checkOwner(u, b.User, "bootcamp", h.id); err != nil {
		return makeFailure(ctx, err)
	}
	if err = h.sc.DeleteBootcamp(ctx, b); err != nil {
		return makeFailure(ctx, err)
	}

	grip.Info(message.Fields{
		"message":     "deleted bootcamp",
		"bootcamp_id": h.id,
		"user_id":     u.Id.Hex(),
	})
	return makeSuccess(http.StatusOK, fmt.Sprintf("deleted bootcamp %s", h.id), nil)
}
