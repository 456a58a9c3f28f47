// Package auth issues and verifies the signed bearer tokens that identify
// users to the REST API.
package auth

import (
	"net/http"
	"strings"
	"time"

	devcamper "github.com/Md-IrfanS/DevCamper-API"
	"github.com/golang-jwt/jwt"
	"github.com/pkg/errors"
)

var (
	ErrMissingToken   = errors.New("no token provided")
	ErrMalformedToken = errors.New("token is malformed")
	ErrExpiredToken   = errors.New("token has expired")
	ErrInvalidToken   = errors.New("token is invalid")
)

// Claims are the contents of an issued token.
type Claims struct {
	UserID string `json:"id"`
	jwt.StandardClaims
}

// TokenManager signs and verifies tokens with a shared secret.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager returns a manager that issues tokens valid for ttl.
func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("token secret cannot be empty")
	}
	if ttl <= 0 {
		return nil, errors.New("token lifetime must be positive")
	}
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// NewTokenManagerFromSettings builds a manager from validated auth settings.
func NewTokenManagerFromSettings(conf devcamper.AuthConfig) (*TokenManager, error) {
	return NewTokenManager(conf.JWTSecret, conf.TokenTTL())
}

// TTL is the lifetime of issued tokens.
func (m *TokenManager) TTL() time.Duration { return m.ttl }

// Sign issues a token for the user.
func (m *TokenManager) Sign(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("cannot sign a token without a user id")
	}
	now := m.now()
	claims := Claims{
		UserID: userID,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(m.ttl).Unix(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	return signed, errors.Wrap(err, "signing token")
}

// Verify checks the token's signature and expiry and returns the user id it
// was issued for.
func (m *TokenManager) Verify(token string) (string, error) {
	if token == "" {
		return "", ErrMissingToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method '%v'", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		var verr *jwt.ValidationError
		if errors.As(err, &verr) {
			switch {
			case verr.Errors&jwt.ValidationErrorMalformed != 0:
				return "", ErrMalformedToken
			case verr.Errors&jwt.ValidationErrorExpired != 0:
				return "", ErrExpiredToken
			}
		}
		return "", errors.Wrap(ErrInvalidToken, err.Error())
	}
	if !parsed.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}

	return claims.UserID, nil
}

// LoggedOutToken is the token cookie's value after logout.
const LoggedOutToken = "none"

// BearerToken extracts the token from the Authorization header, falling
// back to the token cookie.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	if header != "" {
		return ""
	}
	if cookie, err := r.Cookie(devcamper.AuthTokenCookie); err == nil && cookie.Value != LoggedOutToken {
		return cookie.Value
	}
	return ""
}
