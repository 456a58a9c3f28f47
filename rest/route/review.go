package route

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Md-IrfanS/DevCamper-API/model/listing"
	"github.com/Md-IrfanS/DevCamper-API/model/review"
	"github.com/Md-IrfanS/DevCamper-API/rest/data"
	"github.com/Md-IrfanS/DevCamper-API/rest/model"
	"github.com/evergreen-ci/gimlet"
)

func reviewsToAPI(in []review.Review) []model.APIReview {
	out := make([]model.APIReview, 0, len(in))
	for _, r := range in {
		apiReview := model.APIReview{}
		apiReview.BuildFromService(r)
		out = append(out, apiReview)
	}
	return out
}

///////////////////////////////////////////////////////////////////////////////
//
// GET /reviews
// GET /bootcamps/{bootcampId}/reviews

type reviewListHandler struct {
	bootcampID string
	query      listing.Query
	sc         data.Connector
}

func makeListReviews(sc data.Connector) gimlet.RouteHandler {
	return &reviewListHandler{sc: sc}
}

func (h *reviewListHandler) Factory() gimlet.RouteHandler {
	return &reviewListHandler{sc: h.sc}
}

func (h *reviewListHandler) Parse(ctx context.Context, r *http.Request) error {
	h.bootcampID = gimlet.GetVars(r)["bootcampId"]
	h.query = listing.ParseQuery(r.URL.Query(), review.ListingSchema)
	return nil
}

func (h *reviewListHandler) Run(ctx context.Context) gimlet.Responder {
	if h.bootcampID == "" {
		res, err := h.sc.ListReviews(ctx, h.query)
		if err != nil {
			return makeFailure(ctx, err)
		}
		return makeSuccess(http.StatusOK, "show all reviews", res)
	}

	b, err := h.sc.FindBootcampById(ctx, h.bootcampID)
	if err != nil {
		return makeFailure(ctx, err)
	}
	reviews, err := h.sc.FindReviewsByBootcamp(ctx, b.Id)
	if err != nil {
		return makeFailure(ctx, err)
	}
	return makeSuccess(http.StatusOK, fmt.Sprintf("show reviews of bootcamp %s", h.bootcampID), listDetails{
		Count: len(reviews),
		Data:  reviewsToAPI(reviews),
	})
}

///////////////////////////////////////////////////////////////////////////////
//
// POST /bootcamps/{bootcampId}/reviews

type reviewCreateHandler struct {
	bootcampID string
	body       model.APIReview
	sc         data.Connector
}

func makeCreateReview(sc data.Connector) gimlet.RouteHandler {
	return &reviewCreateHandler{sc: sc}
}

func (h *reviewCreateHandler) Factory() gimlet.RouteHandler {
	return &reviewCreateHandler{sc: h.sc}
}

func (h *reviewCreateHandler) Parse(ctx context.Context, r *http.Request) error {
	h.bootcampID = gimlet.GetVars(r)["bootcampId"]
	return readJSON(r, &h.body)
}

func (h *reviewCreateHandler) Run(ctx context.Context) gimlet.Responder {
	b, err := h.sc.FindBootcampById(ctx, h.bootcampID)
	if err != nil {
		return makeFailure(ctx, err)
	}

	u := MustHaveUser(ctx)
	existing, err := h.sc.FindReviewByBootcampAndUser(ctx, b.Id, u.Id)
	if err != nil {
		return makeFailure(ctx, err)
	}
	if existing != nil {
		return makeFailure(ctx, gimlet.ErrorResponse{
			StatusCode: http.StatusConflict,
			Message:    fmt.Sprintf("user has already reviewed bootcamp %s", h.bootcampID),
		})
	}

	rev := h.body.ToService()
	rev.Bootcamp = b.Id
	rev.User = u.Id
	if err = h.sc.CreateReview(ctx, rev); err != nil {
		return makeFailure(ctx, err)
	}

	out := model.APIReview{}
	out.BuildFromService(*rev)
	return makeSuccess(http.StatusCreated, "review created", out)
}

///////////////////////////////////////////////////////////////////////////////
//
// GET /reviews/{id}

type reviewGetHandler struct {
	id string
	sc data.Connector
}

func makeGetReview(sc data.Connector) gimlet.RouteHandler {
	return &reviewGetHandler{sc: sc}
}

func (h *reviewGetHandler) Factory() gimlet.RouteHandler {
	return &reviewGetHandler{sc: h.sc}
}

func (h *reviewGetHandler) Parse(ctx context.Context, r *http.Request) error {
	h.id = gimlet.GetVars(r)["id"]
	return nil
}

func (h *reviewGetHandler) Run(ctx context.Context) gimlet.Responder {
	rev, err := h.sc.FindReviewById(ctx, h.id)
	if err != nil {
		return makeFailure(ctx, err)
	}
	out := model.APIReview{}
	out.BuildFromService(*rev)
	return makeSuccess(http.StatusOK, fmt.Sprintf("show review %s", h.id), out)
}

///////////////////////////////////////////////////////////////////////////////
//
// PUT /reviews/{id}

type reviewUpdateHandler struct {
	id   string
	body model.APIReview
	sc   data.Connector
}

func makeUpdateReview(sc data.Connector) gimlet.RouteHandler {
	return &reviewUpdateHandler{sc: sc}
}

func (h *reviewUpdateHandler) Factory() gimlet.RouteHandler {
	return &reviewUpdateHandler{sc: h.sc}
}

func (h *reviewUpdateHandler) Parse(ctx context.Context, r *http.Request) error {
	h.id = gimlet.GetVars(r)["id"]
	return readJSON(r, &h.body)
}

func (h *reviewUpdateHandler) Run(ctx context.Context) gimlet.Responder {
	rev, err := h.sc.FindReviewById(ctx, h.id)
	if err != nil {
		return makeFailure(ctx, err)
	}
	if err = checkOwner(MustHaveUser(ctx), rev.User, "review", h.id); err != nil {
		return makeFailure(ctx, err)
	}
	h.body.ApplyTo(rev)
	if err = h.sc.UpdateReview(ctx, rev); err != nil {
		return makeFailure(ctx, err)
	}

	out := model.APIReview{}
	out.BuildFromService(*rev)
	return makeSuccess(http.StatusOK, fmt.Sprintf("updated review %s", h.id), out)
}

///////////////////////////////////////////////////////////////////////////////
//
// DELETE /reviews/{id}

type reviewDeleteHandler struct {
	id string
	sc data.Connector
}

func makeDeleteReview(sc data.Connector) gimlet.RouteHandler {
	return &reviewDeleteHandler{sc: sc}
}

func (h *reviewDeleteHandler) Factory() gimlet.RouteHandler {
	return &reviewDeleteHandler{sc: h.sc}
}

func (h *reviewDeleteHandler) Parse(ctx context.Context, r *http.Request) error {
	h.id = gimlet.GetVars(r)["id"]
	return nil
}

func (h *reviewDeleteHandler) Run(ctx context.Context) gimlet.Responder {
	rev, err := h.sc.FindReviewById(ctx, h.id)
	if err != nil {
		return makeFailure(ctx, err)
	}
	if err = checkOwner(MustHaveUser(ctx), rev.User, "review", h.id); err != nil {
		return makeFailure(ctx, err)
	}
	if err = h.sc.DeleteReview(ctx, rev); err != nil {
		return makeFailure(ctx, err)
	}
	return makeSuccess(http.StatusOK, fmt.Sprintf("deleted review %s", h.id), nil)
}
