// Package route holds the REST API's request handlers and the middleware
// that authenticates and authorizes them.
//
// Every handler answers with the same envelope. Success responses carry the
// status code, a message and the details. Failures carry the status code, a
// message that is safe to show the client and the status text. Errors
// reach the client through makeFailure, which keeps the status of a
// gimlet.ErrorResponse and turns anything else into a server error.
package route

import (
	"net/http"
	"strings"
	"time"

	devcamper "github.com/Md-IrfanS/DevCamper-API"
	"github.com/Md-IrfanS/DevCamper-API/auth"
	"github.com/Md-IrfanS/DevCamper-API/db/cache"
	"github.com/Md-IrfanS/DevCamper-API/rest/data"
	"github.com/evergreen-ci/gimlet"
	"github.com/rs/cors"
)

const resetPasswordPath = "/api/v1/auth/resetpassword/"

// HandlerOpts configures the REST routes.
type HandlerOpts struct {
	Connector data.Connector
	Tokens    *auth.TokenManager

	BcryptCost     int
	MaxUploadBytes int64
	// CookieTTL is the lifetime of the token cookie set on sign in.
	CookieTTL    time.Duration
	SecureCookie bool
	// URL is the public base URL used in links sent to users. When it is
	// empty the request's host is used.
	URL         string
	CORSOrigins []string
}

// HandlerOptsFromSettings builds the route options from validated settings.
func HandlerOptsFromSettings(settings *devcamper.Settings, sc data.Connector, tokens *auth.TokenManager) HandlerOpts {
	return HandlerOpts{
		Connector:      sc,
		Tokens:         tokens,
		BcryptCost:     settings.Auth.BcryptCost,
		CookieTTL:      settings.Auth.CookieTTL(),
		SecureCookie:   settings.Auth.SecureCookie,
		MaxUploadBytes: settings.Upload.MaxBytes(),
		URL:            settings.Api.URL,
		CORSOrigins:    settings.Api.CORSOrigins,
	}
}

func (opts HandlerOpts) publicURL(r *http.Request) string {
	if opts.URL != "" {
		return strings.TrimRight(opts.URL, "/")
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// NewApp returns an application serving every route behind access logging,
// panic recovery, a per-request user cache, CORS and the token cookie.
func NewApp(opts HandlerOpts) *gimlet.APIApp {
	app := gimlet.NewApp()
	app.SetPrefix(devcamper.APIPrefix)
	app.ResetMiddleware()
	app.AddMiddleware(gimlet.MakeRecoveryLogger())
	app.AddMiddleware(gimlet.NewAppLogger())
	app.AddMiddleware(cache.NewGimletMiddleware("devcamper"))
	app.AddMiddleware(cors.New(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{"Authorization"},
	}))
	app.AddMiddleware(NewCookieMiddleware())

	AttachHandler(app, opts)
	return app
}

// AttachHandler attaches the API's request handlers to the given app.
// Static paths are added before the parameterized paths they overlap with.
func AttachHandler(app *gimlet.APIApp, opts HandlerOpts) {
	sc := opts.Connector
	protect := NewProtectMiddleware(sc, opts.Tokens)
	publisher := NewAuthorizeMiddleware(devcamper.PublisherRole, devcamper.AdminRole)
	reviewer := NewAuthorizeMiddleware(devcamper.UserRole, devcamper.AdminRole)
	admin := NewAuthorizeMiddleware(devcamper.AdminRole)

	app.AddRoute("/auth/register").Version(1).Post().RouteHandler(enveloped(makeRegister(sc, opts)))
	app.AddRoute("/auth/login").Version(1).Post().RouteHandler(enveloped(makeLogin(sc, opts)))
	app.AddRoute("/auth/me").Version(1).Get().Wrap(protect).RouteHandler(enveloped(makeMe()))
	app.AddRoute("/auth/forgotpassword").Version(1).Post().RouteHandler(enveloped(makeForgotPassword(sc, opts)))
	app.AddRoute("/auth/resetpassword/{resettoken}").Version(1).Put().RouteHandler(enveloped(makeResetPassword(sc, opts)))
	app.AddRoute("/auth/updatedetails").Version(1).Put().Wrap(protect).RouteHandler(enveloped(makeUpdateDetails(sc)))
	app.AddRoute("/auth/updatepassword").Version(1).Put().Wrap(protect).RouteHandler(enveloped(makeUpdatePassword(sc, opts)))
	app.AddRoute("/auth/logout").Version(1).Get().RouteHandler(enveloped(makeLogout(opts)))

	app.AddRoute("/bootcamps").Version(1).Get().RouteHandler(enveloped(makeListBootcamps(sc)))
	app.AddRoute("/bootcamps").Version(1).Post().Wrap(protect, publisher).RouteHandler(enveloped(makeCreateBootcamp(sc)))
	app.AddRoute("/bootcamps/allDelete").Version(1).Delete().Wrap(protect, admin).RouteHandler(enveloped(makeDeleteAllBootcamps(sc)))
	app.AddRoute("/bootcamps/user").Version(1).Get().Wrap(protect).RouteHandler(enveloped(makeGetUserBootcamps(sc)))
	app.AddRoute("/bootcamps/radius/{zipcode}/{distance}").Version(1).Get().RouteHandler(enveloped(makeGetBootcampsInRadius(sc)))
	app.AddRoute("/bootcamps/{id}").Version(1).Get().RouteHandler(enveloped(makeGetBootcamp(sc)))
	app.AddRoute("/bootcamps/{id}").Version(1).Put().Wrap(protect, publisher).RouteHandler(enveloped(makeUpdateBootcamp(sc)))
	app.AddRoute("/bootcamps/{id}").Version(1).Delete().Wrap(protect, publisher).RouteHandler(enveloped(makeDeleteBootcamp(sc)))
	app.AddRoute("/bootcamps/{bootcampId}/photo").Version(1).Put().Wrap(protect, publisher).RouteHandler(enveloped(makeUploadBootcampPhoto(sc, opts)))
	app.AddRoute("/bootcamps/{bootcampId}/photo").Version(1).Delete().Wrap(protect, publisher).RouteHandler(enveloped(makeDeleteBootcampPhoto(sc)))
	app.AddRoute("/bootcamps/{bootcampId}/uploaddoc").Version(1).Put().Wrap(protect, publisher).RouteHandler(enveloped(makeUploadBootcampDocs(sc, opts)))
	app.AddRoute("/bootcamps/{bootcampId}/uploaddoc/{docId}").Version(1).Delete().Wrap(protect, publisher).RouteHandler(enveloped(makeDeleteBootcampDoc(sc)))

	app.AddRoute("/bootcamps/{bootcampId}/courses").Version(1).Get().RouteHandler(enveloped(makeListCourses(sc)))
	app.AddRoute("/bootcamps/{bootcampId}/courses").Version(1).Post().Wrap(protect, publisher).RouteHandler(enveloped(makeCreateCourse(sc)))
	app.AddRoute("/courses").Version(1).Get().RouteHandler(enveloped(makeListCourses(sc)))
	app.AddRoute("/courses/{id}").Version(1).Get().RouteHandler(enveloped(makeGetCourse(sc)))
	app.AddRoute("/courses/{id}").Version(1).Put().Wrap(protect, publisher).RouteHandler(enveloped(makeUpdateCourse(sc)))
	app.AddRoute("/courses/{id}").Version(1).Delete().Wrap(protect, publisher).RouteHandler(enveloped(makeDeleteCourse(sc)))

	app.AddRoute("/bootcamps/{bootcampId}/reviews").Version(1).Get().RouteHandler(enveloped(makeListReviews(sc)))
	app.AddRoute("/bootcamps/{bootcampId}/reviews").Version(1).Post().Wrap(protect, reviewer).RouteHandler(enveloped(makeCreateReview(sc)))
	app.AddRoute("/reviews").Version(1).Get().RouteHandler(enveloped(makeListReviews(sc)))
	app.AddRoute("/reviews/{id}").Version(1).Get().RouteHandler(enveloped(makeGetReview(sc)))
	app.AddRoute("/reviews/{id}").Version(1).Put().Wrap(protect, reviewer).RouteHandler(enveloped(makeUpdateReview(sc)))
	app.AddRoute("/reviews/{id}").Version(1).Delete().Wrap(protect, reviewer).RouteHandler(enveloped(makeDeleteReview(sc)))

	app.AddRoute("/users").Version(1).Get().Wrap(protect, admin).RouteHandler(enveloped(makeListUsers(sc)))
	app.AddRoute("/users").Version(1).Post().Wrap(protect, admin).RouteHandler(enveloped(makeCreateUser(sc, opts)))
	app.AddRoute("/users/{id}").Version(1).Get().Wrap(protect, admin).RouteHandler(enveloped(makeGetUser(sc)))
	app.AddRoute("/users/{id}").Version(1).Put().Wrap(protect, admin).RouteHandler(enveloped(makeUpdateUser(sc, opts)))
	app.AddRoute("/users/{id}").Version(1).Delete().Wrap(protect, admin).RouteHandler(enveloped(makeDeleteUser(sc)))
}
