package user

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"time"

	devcamper "github.com/Md-IrfanS/DevCamper-API"
	"github.com/mongodb/grip"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const (
	resetTokenBytes = 20
	ResetTokenTTL   = 10 * time.Minute
)

var emailPattern = regexp.MustCompile(`^\w+([\.-]?\w+)*@\w+([\.-]?\w+)*(\.\w{2,3})+$`)

// ValidEmail reports whether the address is well formed.
func ValidEmail(email string) bool { return emailPattern.MatchString(email) }

type DBUser struct {
	Id                  primitive.ObjectID `bson:"_id" json:"_id"`
	Name                string             `bson:"name" json:"name"`
	Email               string             `bson:"email" json:"email"`
	Role                devcamper.Role     `bson:"role" json:"role"`
	Password            string             `bson:"password" json:"-"`
	ResetPasswordToken  string             `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetPasswordExpire time.Time          `bson:"resetPasswordExpire,omitempty" json:"-"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsAdmin reports whether the user has the admin role.
func (u *DBUser) IsAdmin() bool { return u.Role == devcamper.AdminRole }

// Validate checks the fields that must hold for every stored user.
func (u *DBUser) Validate() error {
	catcher := grip.NewBasicCatcher()
	catcher.NewWhen(strings.TrimSpace(u.Name) == "", "please add a name")
	catcher.ErrorfWhen(!ValidEmail(u.Email), "please add a valid email, '%s' is not valid", u.Email)
	catcher.Add(u.Role.Validate())
	catcher.NewWhen(u.Password == "", "please add a password")
	return catcher.Resolve()
}

// SetPassword hashes and stores a new password.
func (u *DBUser) SetPassword(password string, cost int) error {
	if len(password) < devcamper.MinPasswordLength {
		return errors.Errorf("password must be at least %d characters", devcamper.MinPasswordLength)
	}
	if cost == 0 {
		cost = devcamper.DefaultBcryptCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return errors.Wrap(err, "hashing password")
	}
	u.Password = string(hash)
	return nil
}

// MatchPassword reports whether the password matches the stored hash.
func (u *DBUser) MatchPassword(password string) bool {
	if u.Password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

// NewResetToken generates a reset token, stores its hash with an expiry and
// returns the plain token to send to the user.
func (u *DBUser) NewResetToken(now time.Time) (string, error) {
	raw := make([]byte, resetTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", errors.Wrap(err, "generating reset token")
	}
	token := hex.EncodeToString(raw)
	u.ResetPasswordToken = HashResetToken(token)
	u.ResetPasswordExpire = now.Add(ResetTokenTTL)
	return token, nil
}

// ClearResetToken forgets any outstanding reset token.
func (u *DBUser) ClearResetToken() {
	u.ResetPasswordToken = ""
	u.ResetPasswordExpire = time.Time{}
}

// HashResetToken returns the stored form of a reset token.
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
