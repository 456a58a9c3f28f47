package route

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Md-IrfanS/DevCamper-API/model/course"
	"github.com/Md-IrfanS/DevCamper-API/model/listing"
	"github.com/Md-IrfanS/DevCamper-API/rest/data"
	"github.com/Md-IrfanS/DevCamper-API/rest/model"
	"github.com/evergreen-ci/gimlet"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
)

///////////////////////////////////////////////////////////////////////////////
//
// GET /courses
// GET /bootcamps/{bootcampId}/courses

type courseListHandler struct {
	bootcampID string
	query      listing.Query
	sc         data.Connector
}

func makeListCourses(sc data.Connector) gimlet.RouteHandler {
	return &courseListHandler{sc: sc}
}

func (h *courseListHandler) Factory() gimlet.RouteHandler {
	return &courseListHandler{sc: h.sc}
}

func (h *courseListHandler) Parse(ctx context.Context, r *http.Request) error {
	h.bootcampID = gimlet.GetVars(r)["bootcampId"]
	h.query = listing.ParseQuery(r.URL.Query(), course.ListingSchema)
	return nil
}

func (h *courseListHandler) Run(ctx context.Context) gimlet.Responder {
	if h.bootcampID == "" {
		res, err := h.sc.ListCourses(ctx, h.query)
		if err != nil {
			return makeFailure(ctx, err)
		}
		return makeSuccess(http.StatusOK, "show all courses", res)
	}

	b, err := h.sc.FindBootcampById(ctx, h.bootcampID)
	if err != nil {
		return makeFailure(ctx, err)
	}
	courses, err := h.sc.FindCoursesByBootcamp(ctx, b.Id)
	if err != nil {
		return makeFailure(ctx, err)
	}
	return makeSuccess(http.StatusOK, fmt.Sprintf("show courses of bootcamp %s", h.bootcampID), listDetails{
		Count: len(courses),
		Data:  coursesToAPI(courses),
	})
}

///////////////////////////////////////////////////////////////////////////////
//
// POST /bootcamps/{bootcampId}/courses

type courseCreateHandler struct {
	bootcampID string
	body       model.APICourse
	sc         data.Connector
}

func makeCreateCourse(sc data.Connector) gimlet.RouteHandler {
	return &courseCreateHandler{sc: sc}
}

func (h *courseCreateHandler) Factory() gimlet.RouteHandler {
	return &courseCreateHandler{sc: h.sc}
}

func (h *courseCreateHandler) Parse(ctx context.Context, r *http.Request) error {
	h.bootcampID = gimlet.GetVars(r)["bootcampId"]
	return readJSON(r, &h.body)
}

func (h *courseCreateHandler) Run(ctx context.Context) gimlet.Responder {
	b, err := findOwnedBootcamp(ctx, h.sc, h.bootcampID)
	if err != nil {
		return makeFailure(ctx, err)
	}

	u := MustHaveUser(ctx)
	c := h.body.ToService()
	c.Bootcamp = b.Id
	c.User = u.Id
	if err = h.sc.CreateCourse(ctx, c); err != nil {
		return makeFailure(ctx, err)
	}

	grip.Info(message.Fields{
		"message":     "created course",
		"course_id":   c.Id.Hex(),
		"bootcamp_id": h.bootcampID,
		"user_id":     u.Id.Hex(),
	})
	out := model.APICourse{}
	out.BuildFromService(*c)
	return makeSuccess(http.StatusCreated, "course created", out)
}

///////////////////////////////////////////////////////////////////////////////
//
// GET /courses/{id}

type courseGetHandler struct {
	id string
	sc data.Connector
}

func makeGetCourse(sc data.Connector) gimlet.RouteHandler {
	return &courseGetHandler{sc: sc}
}

func (h *courseGetHandler) Factory() gimlet.RouteHandler {
	return &courseGetHandler{sc: h.sc}
}

func (h *courseGetHandler) Parse(ctx context.Context, r *http.Request) error {
	h.id = gimlet.GetVars(r)["id"]
	return nil
}

func (h *courseGetHandler) Run(ctx context.Context) gimlet.Responder {
	c, err := h.sc.FindCourseById(ctx, h.id)
	if err != nil {
		return makeFailure(ctx, err)
	}
	out := model.APICourse{}
	out.BuildFromService(*c)
	return makeSuccess(http.StatusOK, fmt.Sprintf("show course %s", h.id), out)
}

///////////////////////////////////////////////////////////////////////////////
//
// PUT /courses/{id}

type courseUpdateHandler struct {
	id   string
	body model.APICourse
	sc   data.Connector
}

func makeUpdateCourse(sc data.Connector) gimlet.RouteHandler {
	return &courseUpdateHandler{sc: sc}
}

func (h *courseUpdateHandler) Factory() gimlet.RouteHandler {
	return &courseUpdateHandler{sc: h.sc}
}

func (h *courseUpdateHandler) Parse(ctx context.Context, r *http.Request) error {
	h.id = gimlet.GetVars(r)["id"]
	return readJSON(r, &h.body)
}

func (h *courseUpdateHandler) Run(ctx context.Context) gimlet.Responder {
	c, err := h.sc.FindCourseById(ctx, h.id)
	if err != nil {
		return makeFailure(ctx, err)
	}
	if err = checkOwner(MustHaveUser(ctx), c.User, "course", h.id); err != nil {
		return makeFailure(ctx, err)
	}
	h.body.ApplyTo(c)
	if err = h.sc.UpdateCourse(ctx, c); err != nil {
		return makeFailure(ctx, err)
	}

	out := model.APICourse{}
	out.BuildFromService(*c)
	return makeSuccess(http.StatusOK, fmt.Sprintf("updated course %s", h.id), out)
}

///////////////////////////////////////////////////////////////////////////////
//
// DELETE /courses/{id}

type courseDeleteHandler struct {
	id string
	sc data.Connector
}

func makeDeleteCourse(sc data.Connector) gimlet.RouteHandler {
	return &courseDeleteHandler{sc: sc}
}

func (h *courseDeleteHandler) Factory() gimlet.RouteHandler {
	return &courseDeleteHandler{sc: h.sc}
}

func (h *courseDeleteHandler) Parse(ctx context.Context, r *http.Request) error {
	h.id = gimlet.GetVars(r)["id"]
	return nil
}

func (h *courseDeleteHandler) Run(ctx context.Context) gimlet.Responder {
	c, err := h.sc.FindCourseById(ctx, h.id)
	if err != nil {
		return makeFailure(ctx, err)
	}
	if err = checkOwner(MustHaveUser(ctx), c.User, "course", h.id); err != nil {
		return makeFailure(ctx, err)
	}
	if err = h.sc.DeleteCourse(ctx, c); err != nil {
		return makeFailure(ctx, err)
	}
	return makeSuccess(http.StatusOK, fmt.Sprintf("deleted course %s", h.id), nil)
}
