package route

import (
	"context"
	"net/http"
	"regexp"
	"testing"
	"time"

	devcamper "github.com/Md-IrfanS/DevCamper-API"
	"github.com/Md-IrfanS/DevCamper-API/auth"
	"github.com/Md-IrfanS/DevCamper-API/model/user"
	"github.com/Md-IrfanS/DevCamper-API/rest/data"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/suite"
)

var resetLinkPattern = regexp.MustCompile(`/api/v1/auth/resetpassword/(\S+)`)

type AuthRouteSuite struct {
	sc   *data.MockConnector
	opts HandlerOpts
	ctx  context.Context
	u    *user.DBUser

	suite.Suite
}

func TestAuthRouteSuite(t *testing.T) {
	suite.Run(t, new(AuthRouteSuite))
}

func (s *AuthRouteSuite) SetupTest() {
	s.ctx = context.Background()
	s.sc = newMockConnector()
	s.opts = newTestOpts(s.T(), s.sc)
	s.u = addUser(s.T(), s.sc, "existing", devcamper.UserRole)
}

func (s *AuthRouteSuite) tokenFor(resp SuccessResponse) string {
	details, ok := resp.Details.(tokenDetails)
	s.Require().True(ok)
	s.Require().NotEmpty(details.Token)
	userID, err := s.opts.Tokens.Verify(details.Token)
	s.Require().NoError(err)
	s.Equal(*details.User.Id, userID)
	s.Nil(details.User.Password)
	return details.Token
}

func (s *AuthRouteSuite) withCookieJar(r *http.Request) (*http.Request, *cookieJar) {
	jar := &cookieJar{}
	return r.WithContext(context.WithValue(r.Context(), cookieJarContextKey, jar)), jar
}

func (s *AuthRouteSuite) tokenCookie(jar *cookieJar) *http.Cookie {
	s.Require().Len(jar.cookies, 1)
	c := jar.cookies[0]
	s.Equal(devcamper.AuthTokenCookie, c.Name)
	s.True(c.HttpOnly)
	s.Equal("/", c.Path)
	return c
}

func (s *AuthRouteSuite) TestRegister() {
	r := jsonRequest(s.T(), http.MethodPost, "/api/v1/auth/register", map[string]string{
		"name":     "New Publisher",
		"email":    "publisher@devcamper.io",
		"password": "secret123",
		"role":     "publisher",
	})
	out := success(s.T(), run(s.T(), makeRegister(s.sc, s.opts), r, nil, nil))
	s.tokenFor(out)

	stored, err := s.sc.FindUserByEmail(s.ctx, "publisher@devcamper.io")
	s.Require().NoError(err)
	s.Require().NotNil(stored)
	s.Equal(devcamper.PublisherRole, stored.Role)
	s.NotEqual("secret123", stored.Password)
	s.True(stored.MatchPassword("secret123"))
}

func (s *AuthRouteSuite) TestRegisterDefaultsToUserRole() {
	r := jsonRequest(s.T(), http.MethodPost, "/api/v1/auth/register", map[string]string{
		"name":     "Plain",
		"email":    "plain@devcamper.io",
		"password": "secret123",
	})
	success(s.T(), run(s.T(), makeRegister(s.sc, s.opts), r, nil, nil))

	stored, err := s.sc.FindUserByEmail(s.ctx, "plain@devcamper.io")
	s.Require().NoError(err)
	s.Equal(devcamper.UserRole, stored.Role)
}

func (s *AuthRouteSuite) TestRegisterRejectsAdminRole() {
	r := jsonRequest(s.T(), http.MethodPost, "/api/v1/auth/register", map[string]string{
		"name":     "Sneaky",
		"email":    "sneaky@devcamper.io",
		"password": "secret123",
		"role":     "admin",
	})
	failure(s.T(), run(s.T(), makeRegister(s.sc, s.opts), r, nil, nil), http.StatusBadRequest)
	s.Len(s.sc.Users, 1)
}

func (s *AuthRouteSuite) TestRegisterShortPassword() {
	r := jsonRequest(s.T(), http.MethodPost, "/api/v1/auth/register", map[string]string{
		"name":     "Short",
		"email":    "short@devcamper.io",
		"password": "123",
	})
	failure(s.T(), run(s.T(), makeRegister(s.sc, s.opts), r, nil, nil), http.StatusBadRequest)
}

func (s *AuthRouteSuite) TestRegisterDuplicateEmail() {
	r := jsonRequest(s.T(), http.MethodPost, "/api/v1/auth/register", map[string]string{
		"name":     "Again",
		"email":    s.u.Email,
		"password": "secret123",
	})
	failure(s.T(), run(s.T(), makeRegister(s.sc, s.opts), r, nil, nil), http.StatusConflict)
}

func (s *AuthRouteSuite) TestLogin() {
	r := jsonRequest(s.T(), http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    s.u.Email,
		"password": testPassword,
	})
	r, jar := s.withCookieJar(r)
	out := success(s.T(), run(s.T(), makeLogin(s.sc, s.opts), r, nil, nil))
	s.Equal("login successful", out.Message)
	token := s.tokenFor(out)

	c := s.tokenCookie(jar)
	s.Equal(token, c.Value)
	s.WithinDuration(time.Now().Add(s.opts.CookieTTL), c.Expires, time.Minute)
	s.False(c.Secure)
}

func (s *AuthRouteSuite) TestLoginSecureCookie() {
	s.opts.SecureCookie = true
	r := jsonRequest(s.T(), http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    s.u.Email,
		"password": testPassword,
	})
	r, jar := s.withCookieJar(r)
	success(s.T(), run(s.T(), makeLogin(s.sc, s.opts), r, nil, nil))
	s.True(s.tokenCookie(jar).Secure)
}

func (s *AuthRouteSuite) TestLoginFailures() {
	for name, test := range map[string]struct {
		body   map[string]string
		status int
		msg    string
	}{
		"MissingPassword": {
			body:   map[string]string{"email": s.u.Email},
			status: http.StatusBadRequest,
			msg:    "please provide an email and password",
		},
		"UnknownEmail": {
			body:   map[string]string{"email": "nobody@devcamper.io", "password": testPassword},
			status: http.StatusUnauthorized,
			msg:    "invalid credentials",
		},
		"WrongPassword": {
			body:   map[string]string{"email": s.u.Email, "password": "wrong-password"},
			status: http.StatusUnauthorized,
			msg:    "invalid credentials",
		},
	} {
		s.Run(name, func() {
			r := jsonRequest(s.T(), http.MethodPost, "/api/v1/auth/login", test.body)
			out := failure(s.T(), run(s.T(), makeLogin(s.sc, s.opts), r, nil, nil), test.status)
			s.Equal(test.msg, out.Message)
		})
	}
}

func (s *AuthRouteSuite) TestMe() {
	r := jsonRequest(s.T(), http.MethodGet, "/api/v1/auth/me", nil)
	out := success(s.T(), run(s.T(), makeMe(), r, nil, s.u))
	s.Contains(out.Message, "user")
}

func (s *AuthRouteSuite) TestForgotAndResetPassword() {
	r := jsonRequest(s.T(), http.MethodPost, "/api/v1/auth/forgotpassword", map[string]string{"email": s.u.Email})
	success(s.T(), run(s.T(), makeForgotPassword(s.sc, s.opts), r, nil, nil))

	s.Require().Len(s.sc.Mailer.Emails, 1)
	email := s.sc.Mailer.Emails[0]
	s.Equal([]string{s.u.Email}, email.Recipients)
	s.Contains(email.Body, "http://devcamper.test/api/v1/auth/resetpassword/")
	match := resetLinkPattern.FindStringSubmatch(email.Body)
	s.Require().Len(match, 2)
	token := match[1]

	stored, err := s.sc.FindUserById(s.ctx, s.u.Id.Hex())
	s.Require().NoError(err)
	s.NotEmpty(stored.ResetPasswordToken)
	s.NotEqual(token, stored.ResetPasswordToken, "only the hash of the token is stored")

	r = jsonRequest(s.T(), http.MethodPut, "/api/v1/auth/resetpassword/"+token, map[string]string{"password": "brand-new"})
	out := success(s.T(), run(s.T(), makeResetPassword(s.sc, s.opts), r, map[string]string{"resettoken": token}, nil))
	s.tokenFor(out)

	stored, err = s.sc.FindUserById(s.ctx, s.u.Id.Hex())
	s.Require().NoError(err)
	s.True(stored.MatchPassword("brand-new"))
	s.Empty(stored.ResetPasswordToken)

	// tokens are single use
	r = jsonRequest(s.T(), http.MethodPut, "/api/v1/auth/resetpassword/"+token, map[string]string{"password": "another-one"})
	out2 := failure(s.T(), run(s.T(), makeResetPassword(s.sc, s.opts), r, map[string]string{"resettoken": token}, nil), http.StatusBadRequest)
	s.Equal("invalid token", out2.Message)
}

func (s *AuthRouteSuite) TestForgotPasswordUnknownEmail() {
	r := jsonRequest(s.T(), http.MethodPost, "/api/v1/auth/forgotpassword", map[string]string{"email": "nobody@devcamper.io"})
	failure(s.T(), run(s.T(), makeForgotPassword(s.sc, s.opts), r, nil, nil), http.StatusNotFound)
	s.Empty(s.sc.Mailer.Emails)
}

func (s *AuthRouteSuite) TestForgotPasswordMailFailureClearsToken() {
	s.sc.Mailer.Err = errors.New("smtp unavailable")

	r := jsonRequest(s.T(), http.MethodPost, "/api/v1/auth/forgotpassword", map[string]string{"email": s.u.Email})
	out := failure(s.T(), run(s.T(), makeForgotPassword(s.sc, s.opts), r, nil, nil), http.StatusInternalServerError)
	s.Equal("email could not be sent", out.Message)

	stored, err := s.sc.FindUserById(s.ctx, s.u.Id.Hex())
	s.Require().NoError(err)
	s.Empty(stored.ResetPasswordToken)
	s.True(stored.ResetPasswordExpire.IsZero())
}

func (s *AuthRouteSuite) TestUpdateDetails() {
	r := jsonRequest(s.T(), http.MethodPut, "/api/v1/auth/updatedetails", map[string]string{"name": "Renamed"})
	success(s.T(), run(s.T(), makeUpdateDetails(s.sc), r, nil, s.u))

	stored, err := s.sc.FindUserById(s.ctx, s.u.Id.Hex())
	s.Require().NoError(err)
	s.Equal("Renamed", stored.Name)
	s.Equal(s.u.Email, stored.Email)
}

func (s *AuthRouteSuite) TestUpdateDetailsEmailTaken() {
	other := addUser(s.T(), s.sc, "other", devcamper.UserRole)
	r := jsonRequest(s.T(), http.MethodPut, "/api/v1/auth/updatedetails", map[string]string{"email": other.Email})
	failure(s.T(), run(s.T(), makeUpdateDetails(s.sc), r, nil, s.u), http.StatusConflict)
}

func (s *AuthRouteSuite) TestUpdatePassword() {
	r := jsonRequest(s.T(), http.MethodPut, "/api/v1/auth/updatepassword", map[string]string{
		"currentPassword": "wrong-password",
		"newPassword":     "new-password",
	})
	out := failure(s.T(), run(s.T(), makeUpdatePassword(s.sc, s.opts), r, nil, s.u), http.StatusUnauthorized)
	s.Equal("password is incorrect", out.Message)

	r = jsonRequest(s.T(), http.MethodPut, "/api/v1/auth/updatepassword", map[string]string{
		"currentPassword": testPassword,
		"newPassword":     "new-password",
	})
	s.tokenFor(success(s.T(), run(s.T(), makeUpdatePassword(s.sc, s.opts), r, nil, s.u)))

	stored, err := s.sc.FindUserById(s.ctx, s.u.Id.Hex())
	s.Require().NoError(err)
	s.True(stored.MatchPassword("new-password"))
}

func (s *AuthRouteSuite) TestLogout() {
	r := jsonRequest(s.T(), http.MethodGet, "/api/v1/auth/logout", nil)
	r, jar := s.withCookieJar(r)
	out := success(s.T(), run(s.T(), makeLogout(s.opts), r, nil, nil))
	s.Nil(out.Details)

	c := s.tokenCookie(jar)
	s.Equal(auth.LoggedOutToken, c.Value)
	s.WithinDuration(time.Now().Add(loggedOutTTL), c.Expires, 5*time.Second)
}
