package model

import (
	"time"

	devcamper "github.com/Md-IrfanS/DevCamper-API"
	"github.com/Md-IrfanS/DevCamper-API/model/course"
	"github.com/evergreen-ci/utility"
)

type APICourse struct {
	Id                   *string    `json:"_id,omitempty"`
	Title                *string    `json:"title"`
	Description          *string    `json:"description"`
	Weeks                *string    `json:"weeks"`
	Tuition              *float64   `json:"tuition"`
	MinimumSkill         *string    `json:"minimumSkill"`
	ScholarshipAvailable *bool      `json:"scholarshipAvailable,omitempty"`
	Bootcamp             *string    `json:"bootcamp,omitempty"`
	User                 *string    `json:"user,omitempty"`
	CreatedAt            *time.Time `json:"createdAt,omitempty"`
	UpdatedAt            *time.Time `json:"updatedAt,omitempty"`
}

func (c *APICourse) BuildFromService(in course.Course) {
	c.Id = utility.ToStringPtr(in.Id.Hex())
	c.Title = utility.ToStringPtr(in.Title)
	c.Description = utility.ToStringPtr(in.Description)
	c.Weeks = utility.ToStringPtr(in.Weeks)
	c.Tuition = utility.ToFloat64Ptr(in.Tuition)
	c.MinimumSkill = utility.ToStringPtr(string(in.MinimumSkill))
	c.ScholarshipAvailable = utility.ToBoolPtr(in.ScholarshipAvailable)
	c.Bootcamp = utility.ToStringPtr(in.Bootcamp.Hex())
	c.User = utility.ToStringPtr(in.User.Hex())
	c.CreatedAt = utility.ToTimePtr(in.CreatedAt)
	c.UpdatedAt = utility.ToTimePtr(in.UpdatedAt)
}

func (c *APICourse) ToService() *course.Course {
	out := &course.Course{}
	c.ApplyTo(out)
	return out
}

// ApplyTo copies the client supplied fields onto an existing course. The
// bootcamp and owner cannot be changed.
func (c *APICourse) ApplyTo(out *course.Course) {
	if c.Title != nil {
		out.Title = *c.Title
	}
	if c.Description != nil {
		out.Description = *c.Description
	}
	if c.Weeks != nil {
		out.Weeks = *c.Weeks
	}
	if c.Tuition != nil {
		out.Tuition = *c.Tuition
	}
	if c.MinimumSkill != nil {
		out.MinimumSkill = devcamper.Skill(*c.MinimumSkill)
	}
	if c.ScholarshipAvailable != nil {
		out.ScholarshipAvailable = *c.ScholarshipAvailable
	}
}
