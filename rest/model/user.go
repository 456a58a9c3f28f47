package model

import (
	"time"

	devcamper "github.com/Md-IrfanS/DevCamper-API"
	"github.com/Md-IrfanS/DevCamper-API/model/user"
	"github.com/evergreen-ci/utility"
	"github.com/pkg/errors"
)

// APIUser is the client view of a user. The password is only read, never
// written back.
type APIUser struct {
	Id        *string    `json:"_id,omitempty"`
	Name      *string    `json:"name"`
	Email     *string    `json:"email"`
	Role      *string    `json:"role"`
	Password  *string    `json:"password,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

func (u *APIUser) BuildFromService(in user.DBUser) {
	u.Id = utility.ToStringPtr(in.Id.Hex())
	u.Name = utility.ToStringPtr(in.Name)
	u.Email = utility.ToStringPtr(in.Email)
	u.Role = utility.ToStringPtr(string(in.Role))
	u.Password = nil
	u.CreatedAt = utility.ToTimePtr(in.CreatedAt)
}

// ToService returns a new user with a hashed password. Only the given roles
// may be requested. A missing role means the user role.
func (u *APIUser) ToService(bcryptCost int, allowed ...devcamper.Role) (*user.DBUser, error) {
	role, err := devcamper.ParseRole(utility.FromStringPtr(u.Role))
	if err != nil {
		return nil, err
	}
	if len(allowed) > 0 && !role.In(allowed...) {
		return nil, errors.Errorf("role '%s' cannot be assigned", role)
	}

	out := &user.DBUser{
		Name:  utility.FromStringPtr(u.Name),
		Email: utility.FromStringPtr(u.Email),
		Role:  role,
	}
	if err = out.SetPassword(utility.FromStringPtr(u.Password), bcryptCost); err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyTo copies the supplied fields onto an existing user. A new password
// is hashed.
func (u *APIUser) ApplyTo(out *user.DBUser, bcryptCost int) error {
	if u.Name != nil {
		out.Name = *u.Name
	}
	if u.Email != nil {
		out.Email = *u.Email
	}
	if u.Role != nil {
		role, err := devcamper.ParseRole(*u.Role)
		if err != nil {
			return err
		}
		out.Role = role
	}
	if u.Password != nil {
		return out.SetPassword(*u.Password, bcryptCost)
	}
	return nil
}
