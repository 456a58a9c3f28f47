package devcamper

import (
	"github.com/pkg/errors"
)

const (
	// APIPrefix is the versioned prefix shared by every REST route.
	APIPrefix  = "/api"
	APIVersion = 1

	DefaultPhoto = "no-photo.jpg"

	AuthTokenCookie = "token"

	// EarthRadiusMiles converts a distance in miles to radians for
	// spherical geo queries.
	EarthRadiusMiles = 3963

	DefaultBcryptCost = 10
	MinPasswordLength = 6

	MaxBootcampNameLength        = 50
	MaxBootcampDescriptionLength = 500
	MaxBootcampPhoneLength       = 20
	MaxReviewTitleLength         = 100

	MinRating = 1
	MaxRating = 10
)

// Role is the authorization level of a user.
type Role string

const (
	UserRole      Role = "user"
	PublisherRole Role = "publisher"
	AdminRole     Role = "admin"
)

// ValidRoles is the closed set of roles a user may hold.
var ValidRoles = []Role{UserRole, PublisherRole, AdminRole}

// RegisterableRoles are the roles a user may choose when signing up. Admins
// are only created by another admin.
var RegisterableRoles = []Role{UserRole, PublisherRole}

func (r Role) Validate() error {
	switch r {
	case UserRole, PublisherRole, AdminRole:
		return nil
	default:
		return errors.Errorf("invalid role '%s'", r)
	}
}

// ParseRole returns the role with the given name. An empty name is the
// default user role.
func ParseRole(name string) (Role, error) {
	if name == "" {
		return UserRole, nil
	}
	r := Role(name)
	if err := r.Validate(); err != nil {
		return "", err
	}
	return r, nil
}

// In reports whether the role is one of the given roles.
func (r Role) In(roles ...Role) bool {
	for _, candidate := range roles {
		if r == candidate {
			return true
		}
	}
	return false
}

// Career is an area of study a bootcamp offers.
type Career string

const (
	CareerWebDevelopment    Career = "Web Development"
	CareerMobileDevelopment Career = "Mobile Development"
	CareerUIUX              Career = "UI/UX"
	CareerDataScience       Career = "Data Science"
	CareerBusiness          Career = "Business"
	CareerOther             Career = "Other"
)

var ValidCareers = []Career{
	CareerWebDevelopment,
	CareerMobileDevelopment,
	CareerUIUX,
	CareerDataScience,
	CareerBusiness,
	CareerOther,
}

func (c Career) Validate() error {
	for _, valid := range ValidCareers {
		if c == valid {
			return nil
		}
	}
	return errors.Errorf("invalid career '%s'", c)
}

// Skill is the minimum skill level a course expects.
type Skill string

const (
	SkillBeginner     Skill = "beginner"
	SkillIntermediate Skill = "intermediate"
	SkillAdvanced     Skill = "advanced"
)

func (s Skill) Validate() error {
	switch s {
	case SkillBeginner, SkillIntermediate, SkillAdvanced:
		return nil
	default:
		return errors.Errorf("invalid minimum skill '%s'", s)
	}
}
