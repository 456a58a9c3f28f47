package route

import (
	"context"
	"fmt"
	"net/http"

	devcamper "github.com/Md-IrfanS/DevCamper-API"
	"github.com/Md-IrfanS/DevCamper-API/auth"
	"github.com/Md-IrfanS/DevCamper-API/model/user"
	"github.com/Md-IrfanS/DevCamper-API/rest/data"
	"github.com/evergreen-ci/gimlet"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type reqCtxKey int

const requestUser reqCtxKey = iota

const notAuthorizedMessage = "not authorized to access this route"

func setRequestUser(ctx context.Context, u *user.DBUser) context.Context {
	return context.WithValue(ctx, requestUser, u)
}

// GetUser returns the user that the protect middleware attached to the
// request, or nil.
func GetUser(ctx context.Context) *user.DBUser {
	u, _ := ctx.Value(requestUser).(*user.DBUser)
	return u
}

// MustHaveUser returns the user attached to the request. It panics if there
// is none, which can only happen on a route that is missing the protect
// middleware.
func MustHaveUser(ctx context.Context) *user.DBUser {
	u := GetUser(ctx)
	if u == nil {
		panic("no user attached to request")
	}
	return u
}

type protectMiddleware struct {
	sc     data.Connector
	tokens *auth.TokenManager
}

// NewProtectMiddleware requires a valid bearer token and attaches the user
// it was issued for to the request.
func NewProtectMiddleware(sc data.Connector, tokens *auth.TokenManager) gimlet.Middleware {
	return &protectMiddleware{sc: sc, tokens: tokens}
}

func (m *protectMiddleware) ServeHTTP(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	ctx := r.Context()
	userID, err := m.tokens.Verify(auth.BearerToken(r))
	if err != nil {
		grip.Debug(message.WrapError(err, message.Fields{
			"message": "rejected request token",
			"path":    r.URL.Path,
			"request": gimlet.GetRequestID(ctx),
		}))
		writeFailure(rw, http.StatusUnauthorized, notAuthorizedMessage)
		return
	}

	u, err := m.sc.FindUserById(ctx, userID)
	if err != nil {
		status, _ := classifyError(err)
		if status == http.StatusNotFound {
			writeFailure(rw, http.StatusUnauthorized, notAuthorizedMessage)
			return
		}
		grip.Error(message.WrapError(err, message.Fields{
			"message": "could not load request user",
			"user_id": userID,
			"request": gimlet.GetRequestID(ctx),
		}))
		writeFailure(rw, http.StatusInternalServerError, serverErrorMessage)
		return
	}

	next(rw, r.WithContext(setRequestUser(ctx, u)))
}

type authorizeMiddleware struct {
	roles []devcamper.Role
}

// NewAuthorizeMiddleware only lets users holding one of the roles through.
// It must run after the protect middleware.
func NewAuthorizeMiddleware(roles ...devcamper.Role) gimlet.Middleware {
	return &authorizeMiddleware{roles: roles}
}

func (m *authorizeMiddleware) ServeHTTP(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	u := GetUser(r.Context())
	if u == nil {
		writeFailure(rw, http.StatusUnauthorized, notAuthorizedMessage)
		return
	}
	if !u.Role.In(m.roles...) {
		writeFailure(rw, http.StatusForbidden, fmt.Sprintf("user role '%s' is not authorized to access this route", u.Role))
		return
	}
	next(rw, r)
}

// checkOwner allows admins and the owner of the record through.
func checkOwner(u *user.DBUser, owner primitive.ObjectID, kind, id string) error {
	if u.IsAdmin() || u.Id == owner {
		return nil
	}
	return gimlet.ErrorResponse{
		StatusCode: http.StatusForbidden,
		Message:    fmt.Sprintf("user '%s' is not authorized to modify %s '%s'", u.Id.Hex(), kind, id),
	}
}
