package route

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	devcamper "github.com/Md-IrfanS/DevCamper-API"
	"github.com/Md-IrfanS/DevCamper-API/model/user"
	"github.com/Md-IrfanS/DevCamper-API/notify"
	"github.com/Md-IrfanS/DevCamper-API/rest/data"
	"github.com/Md-IrfanS/DevCamper-API/rest/model"
	"github.com/evergreen-ci/gimlet"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
)

// tokenDetails is returned by every route that signs the user in.
type tokenDetails struct {
	Token string        `json:"token"`
	User  model.APIUser `json:"user"`
}

// makeTokenResponse signs a token for the user and sends it both in the body
// and as the token cookie.
func makeTokenResponse(ctx context.Context, opts HandlerOpts, u *user.DBUser, msg string) gimlet.Responder {
	token, err := opts.Tokens.Sign(u.Id.Hex())
	if err != nil {
		return makeFailure(ctx, errors.Wrapf(err, "signing token for user '%s'", u.Id.Hex()))
	}
	setTokenCookie(ctx, opts, token)
	details := tokenDetails{Token: token}
	details.User.BuildFromService(*u)
	return makeSuccess(http.StatusOK, msg, details)
}

func invalidCredentials() error {
	return gimlet.ErrorResponse{StatusCode: http.StatusUnauthorized, Message: "invalid credentials"}
}

///////////////////////////////////////////////////////////////////////////////
//
// POST /auth/register

type registerHandler struct {
	body model.APIUser

	sc   data.Connector
	opts HandlerOpts
}

func makeRegister(sc data.Connector, opts HandlerOpts) gimlet.RouteHandler {
	return &registerHandler{sc: sc, opts: opts}
}

func (h *registerHandler) Factory() gimlet.RouteHandler {
	return &registerHandler{sc: h.sc, opts: h.opts}
}

func (h *registerHandler) Parse(ctx context.Context, r *http.Request) error {
	return readJSON(r, &h.body)
}

func (h *registerHandler) Run(ctx context.Context) gimlet.Responder {
	u, err := h.body.ToService(h.opts.BcryptCost, devcamper.RegisterableRoles...)
	if err != nil {
		return makeFailure(ctx, badRequest(err))
	}
	if err = h.sc.CreateUser(ctx, u); err != nil {
		return makeFailure(ctx, err)
	}

	grip.Info(message.Fields{
		"message": "registered user",
		"user_id": u.Id.Hex(),
		"role":    u.Role,
	})
	return makeTokenResponse(ctx, h.opts, u, "user registered")
}

///////////////////////////////////////////////////////////////////////////////
//
// POST /auth/login

type loginHandler struct {
	Email    string `json:"email"`
	Password string `json:"password"`

	sc   data.Connector
	opts HandlerOpts
}

func makeLogin(sc data.Connector, opts HandlerOpts) gimlet.RouteHandler {
	return &loginHandler{sc: sc, opts: opts}
}

func (h *loginHandler) Factory() gimlet.RouteHandler {
	return &loginHandler{sc: h.sc, opts: h.opts}
}

func (h *loginHandler) Parse(ctx context.Context, r *http.Request) error {
	if err := readJSON(r, h); err != nil {
		return err
	}
	if strings.TrimSpace(h.Email) == "" || h.Password == "" {
		return gimlet.ErrorResponse{StatusCode: http.StatusBadRequest, Message: "please provide an email and password"}
	}
	return nil
}

func (h *loginHandler) Run(ctx context.Context) gimlet.Responder {
	u, err := h.sc.FindUserByEmail(ctx, strings.TrimSpace(h.Email))
	if err != nil {
		return makeFailure(ctx, err)
	}
	if u == nil || !u.MatchPassword(h.Password) {
		return makeFailure(ctx, invalidCredentials())
	}
	return makeTokenResponse(ctx, h.opts, u, "login successful")
}

///////////////////////////////////////////////////////////////////////////////
//
// GET /auth/me

type meHandler struct{}

func makeMe() gimlet.RouteHandler { return &meHandler{} }

func (h *meHandler) Factory() gimlet.RouteHandler { return &meHandler{} }

func (h *meHandler) Parse(ctx context.Context, r *http.Request) error { return nil }

func (h *meHandler) Run(ctx context.Context) gimlet.Responder {
	apiUser := model.APIUser{}
	apiUser.BuildFromService(*MustHaveUser(ctx))
	return makeSuccess(http.StatusOK, "user details", apiUser)
}

///////////////////////////////////////////////////////////////////////////////
//
// POST /auth/forgotpassword

type forgotPasswordHandler struct {
	Email string `json:"email"`

	resetBase string
	sc        data.Connector
	opts      HandlerOpts
}

func makeForgotPassword(sc data.Connector, opts HandlerOpts) gimlet.RouteHandler {
	return &forgotPasswordHandler{sc: sc, opts: opts}
}

func (h *forgotPasswordHandler) Factory() gimlet.RouteHandler {
	return &forgotPasswordHandler{sc: h.sc, opts: h.opts}
}

func (h *forgotPasswordHandler) Parse(ctx context.Context, r *http.Request) error {
	if err := readJSON(r, h); err != nil {
		return err
	}
	if strings.TrimSpace(h.Email) == "" {
		return gimlet.ErrorResponse{StatusCode: http.StatusBadRequest, Message: "please provide an email"}
	}
	h.resetBase = h.opts.publicURL(r) + resetPasswordPath
	return nil
}

func (h *forgotPasswordHandler) Run(ctx context.Context) gimlet.Responder {
	email := strings.TrimSpace(h.Email)
	u, err := h.sc.FindUserByEmail(ctx, email)
	if err != nil {
		return makeFailure(ctx, err)
	}
	if u == nil {
		return makeFailure(ctx, gimlet.ErrorResponse{
			StatusCode: http.StatusNotFound,
			Message:    fmt.Sprintf("there is no user with email '%s'", email),
		})
	}

	token, err := u.NewResetToken(time.Now())
	if err != nil {
		return makeFailure(ctx, err)
	}
	if err = h.sc.UpdateUser(ctx, u); err != nil {
		return makeFailure(ctx, errors.Wrap(err, "saving reset token"))
	}

	if err = h.sc.SendEmail(ctx, notify.PasswordResetEmail(u.Email, h.resetBase+token)); err != nil {
		u.ClearResetToken()
		grip.Error(message.WrapError(h.sc.UpdateUser(ctx, u), message.Fields{
			"message": "could not clear reset token after failed email",
			"user_id": u.Id.Hex(),
		}))
		return makeFailure(ctx, gimlet.ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Message:    "email could not be sent",
		})
	}

	return makeSuccess(http.StatusOK, "email sent", nil)
}

///////////////////////////////////////////////////////////////////////////////
//
// PUT /auth/resetpassword/{resettoken}

type resetPasswordHandler struct {
	Password string `json:"password"`

	token string
	sc    data.Connector
	opts  HandlerOpts
}

func makeResetPassword(sc data.Connector, opts HandlerOpts) gimlet.RouteHandler {
	return &resetPasswordHandler{sc: sc, opts: opts}
}

func (h *resetPasswordHandler) Factory() gimlet.RouteHandler {
	return &resetPasswordHandler{sc: h.sc, opts: h.opts}
}

func (h *resetPasswordHandler) Parse(ctx context.Context, r *http.Request) error {
	h.token = gimlet.GetVars(r)["resettoken"]
	return readJSON(r, h)
}

func (h *resetPasswordHandler) Run(ctx context.Context) gimlet.Responder {
	u, err := h.sc.FindUserByResetToken(ctx, h.token)
	if err != nil {
		return makeFailure(ctx, err)
	}
	if u == nil {
		return makeFailure(ctx, gimlet.ErrorResponse{StatusCode: http.StatusBadRequest, Message: "invalid token"})
	}

	if err = u.SetPassword(h.Password, h.opts.BcryptCost); err != nil {
		return makeFailure(ctx, badRequest(err))
	}
	u.ClearResetToken()
	if err = h.sc.UpdateUser(ctx, u); err != nil {
		return makeFailure(ctx, err)
	}
	return makeTokenResponse(ctx, h.opts, u, "password reset")
}

///////////////////////////////////////////////////////////////////////////////
//
// PUT /auth/updatedetails

type updateDetailsHandler struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`

	sc data.Connector
}

func makeUpdateDetails(sc data.Connector) gimlet.RouteHandler {
	return &updateDetailsHandler{sc: sc}
}

func (h *updateDetailsHandler) Factory() gimlet.RouteHandler {
	return &updateDetailsHandler{sc: h.sc}
}

func (h *updateDetailsHandler) Parse(ctx context.Context, r *http.Request) error {
	return readJSON(r, h)
}

func (h *updateDetailsHandler) Run(ctx context.Context) gimlet.Responder {
	u := MustHaveUser(ctx)
	if h.Name != nil {
		u.Name = strings.TrimSpace(*h.Name)
	}
	if h.Email != nil {
		u.Email = strings.TrimSpace(*h.Email)
	}
	if err := h.sc.UpdateUser(ctx, u); err != nil {
		return makeFailure(ctx, err)
	}

	apiUser := model.APIUser{}
	apiUser.BuildFromService(*u)
	return makeSuccess(http.StatusOK, "user details updated", apiUser)
}

///////////////////////////////////////////////////////////////////////////////
//
// PUT /auth/updatepassword

type updatePasswordHandler struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`

	sc   data.Connector
	opts HandlerOpts
}

func makeUpdatePassword(sc data.Connector, opts HandlerOpts) gimlet.RouteHandler {
	return &updatePasswordHandler{sc: sc, opts: opts}
}

func (h *updatePasswordHandler) Factory() gimlet.RouteHandler {
	return &updatePasswordHandler{sc: h.sc, opts: h.opts}
}

func (h *updatePasswordHandler) Parse(ctx context.Context, r *http.Request) error {
	return readJSON(r, h)
}

func (h *updatePasswordHandler) Run(ctx context.Context) gimlet.Responder {
	u := MustHaveUser(ctx)
	if !u.MatchPassword(h.CurrentPassword) {
		return makeFailure(ctx, gimlet.ErrorResponse{StatusCode: http.StatusUnauthorized, Message: "password is incorrect"})
	}
	if err := u.SetPassword(h.NewPassword, h.opts.BcryptCost); err != nil {
		return makeFailure(ctx, badRequest(err))
	}
	if err := h.sc.UpdateUser(ctx, u); err != nil {
		return makeFailure(ctx, err)
	}
	return makeTokenResponse(ctx, h.opts, u, "password updated")
}

///////////////////////////////////////////////////////////////////////////////
//
// GET /auth/logout

// Tokens are not tracked server side, so logging out only replaces the token
// cookie with a short-lived placeholder.
type logoutHandler struct {
	opts HandlerOpts
}

func makeLogout(opts HandlerOpts) gimlet.RouteHandler { return &logoutHandler{opts: opts} }

func (h *logoutHandler) Factory() gimlet.RouteHandler { return &logoutHandler{opts: h.opts} }

func (h *logoutHandler) Parse(ctx context.Context, r *http.Request) error { return nil }

func (h *logoutHandler) Run(ctx context.Context) gimlet.Responder {
	clearTokenCookie(ctx, h.opts)
	return makeSuccess(http.StatusOK, "user logged out", nil)
}
