package route

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Md-IrfanS/DevCamper-API/model/listing"
	"github.com/Md-IrfanS/DevCamper-API/model/user"
	"github.com/Md-IrfanS/DevCamper-API/rest/data"
	"github.com/Md-IrfanS/DevCamper-API/rest/model"
	"github.com/evergreen-ci/gimlet"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
)

// The user routes are only reachable by admins.

///////////////////////////////////////////////////////////////////////////////
//
// GET /users

type userListHandler struct {
	query listing.Query
	sc    data.Connector
}

func makeListUsers(sc data.Connector) gimlet.RouteHandler {
	return &userListHandler{sc: sc}
}

func (h *userListHandler) Factory() gimlet.RouteHandler {
	return &userListHandler{sc: h.sc}
}

func (h *userListHandler) Parse(ctx context.Context, r *http.Request) error {
	h.query = listing.ParseQuery(r.URL.Query(), user.ListingSchema)
	return nil
}

func (h *userListHandler) Run(ctx context.Context) gimlet.Responder {
	res, err := h.sc.ListUsers(ctx, h.query)
	if err != nil {
		return makeFailure(ctx, err)
	}
	return makeSuccess(http.StatusOK, "show all users", res)
}

///////////////////////////////////////////////////////////////////////////////
//
// GET /users/{id}

type userGetHandler struct {
	id string
	sc data.Connector
}

func makeGetUser(sc data.Connector) gimlet.RouteHandler {
	return &userGetHandler{sc: sc}
}

func (h *userGetHandler) Factory() gimlet.RouteHandler {
	return &userGetHandler{sc: h.sc}
}

func (h *userGetHandler) Parse(ctx context.Context, r *http.Request) error {
	h.id = gimlet.GetVars(r)["id"]
	return nil
}

func (h *userGetHandler) Run(ctx context.Context) gimlet.Responder {
	u, err := h.sc.FindUserById(ctx, h.id)
	if err != nil {
		return makeFailure(ctx, err)
	}
	out := model.APIUser{}
	out.BuildFromService(*u)
	return makeSuccess(http.StatusOK, fmt.Sprintf("show user %s", h.id), out)
}

///////////////////////////////////////////////////////////////////////////////
//
// POST /users

type userCreateHandler struct {
	body       model.APIUser
	sc         data.Connector
	bcryptCost int
}

func makeCreateUser(sc data.Connector, opts HandlerOpts) gimlet.RouteHandler {
	return &userCreateHandler{sc: sc, bcryptCost: opts.BcryptCost}
}

func (h *userCreateHandler) Factory() gimlet.RouteHandler {
	return &userCreateHandler{sc: h.sc, bcryptCost: h.bcryptCost}
}

func (h *userCreateHandler) Parse(ctx context.Context, r *http.Request) error {
	return readJSON(r, &h.body)
}

func (h *userCreateHandler) Run(ctx context.Context) gimlet.Responder {
	u, err := h.body.ToService(h.bcryptCost)
	if err != nil {
		return makeFailure(ctx, badRequest(err))
	}
	if err = h.sc.CreateUser(ctx, u); err != nil {
		return makeFailure(ctx, err)
	}

	grip.Info(message.Fields{
		"message":  "admin created user",
		"user_id":  u.Id.Hex(),
		"role":     u.Role,
		"admin_id": MustHaveUser(ctx).Id.Hex(),
	})
	out := model.APIUser{}
	out.BuildFromService(*u)
	return makeSuccess(http.StatusCreated, "user created", out)
}

///////////////////////////////////////////////////////////////////////////////
//
// PUT /users/{id}

type userUpdateHandler struct {
	id         string
	body       model.APIUser
	sc         data.Connector
	bcryptCost int
}

func makeUpdateUser(sc data.Connector, opts HandlerOpts) gimlet.RouteHandler {
	return &userUpdateHandler{sc: sc, bcryptCost: opts.BcryptCost}
}

func (h *userUpdateHandler) Factory() gimlet.RouteHandler {
	return &userUpdateHandler{sc: h.sc, bcryptCost: h.bcryptCost}
}

func (h *userUpdateHandler) Parse(ctx context.Context, r *http.Request) error {
	h.id = gimlet.GetVars(r)["id"]
	return readJSON(r, &h.body)
}

func (h *userUpdateHandler) Run(ctx context.Context) gimlet.Responder {
	u, err := h.sc.FindUserById(ctx, h.id)
	if err != nil {
		return makeFailure(ctx, err)
	}
	if err = h.body.ApplyTo(u, h.bcryptCost); err != nil {
		return makeFailure(ctx, badRequest(err))
	}
	if err = h.sc.UpdateUser(ctx, u); err != nil {
		return makeFailure(ctx, err)
	}

	out := model.APIUser{}
	out.BuildFromService(*u)
	return makeSuccess(http.StatusOK, fmt.Sprintf("updated user %s", h.id), out)
}

///////////////////////////////////////////////////////////////////////////////
//
// DELETE /users/{id}

type userDeleteHandler struct {
	id string
	sc data.Connector
}

func makeDeleteUser(sc data.Connector) gimlet.RouteHandler {
	return &userDeleteHandler{sc: sc}
}

func (h *userDeleteHandler) Factory() gimlet.RouteHandler {
	return &userDeleteHandler{sc: h.sc}
}

func (h *userDeleteHandler) Parse(ctx context.Context, r *http.Request) error {
	h.id = gimlet.GetVars(r)["id"]
	return nil
}

func (h *userDeleteHandler) Run(ctx context.Context) gimlet.Responder {
	if err := h.sc.DeleteUser(ctx, h.id); err != nil {
		return makeFailure(ctx, err)
	}
	grip.Info(message.Fields{
		"message":  "admin deleted user",
		"user_id":  h.id,
		"admin_id": MustHaveUser(ctx).Id.Hex(),
	})
	return makeSuccess(http.StatusOK, fmt.Sprintf("deleted user %s", h.id), nil)
}
