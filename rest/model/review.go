package model

import (
	"time"

	"github.com/Md-IrfanS/DevCamper-API/model/review"
	"github.com/evergreen-ci/utility"
)

type APIReview struct {
	Id        *string    `json:"_id,omitempty"`
	Title     *string    `json:"title"`
	Text      *string    `json:"text"`
	Rating    *int       `json:"rating"`
	Bootcamp  *string    `json:"bootcamp,omitempty"`
	User      *string    `json:"user,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

func (r *APIReview) BuildFromService(in review.Review) {
	r.Id = utility.ToStringPtr(in.Id.Hex())
	r.Title = utility.ToStringPtr(in.Title)
	r.Text = utility.ToStringPtr(in.Text)
	r.Rating = utility.ToIntPtr(in.Rating)
	r.Bootcamp = utility.ToStringPtr(in.Bootcamp.Hex())
	r.User = utility.ToStringPtr(in.User.Hex())
	r.CreatedAt = utility.ToTimePtr(in.CreatedAt)
	r.UpdatedAt = utility.ToTimePtr(in.UpdatedAt)
}

func (r *APIReview) ToService() *review.Review {
	out := &review.Review{}
	r.ApplyTo(out)
	return out
}

// ApplyTo copies the client supplied fields onto an existing review.
func (r *APIReview) ApplyTo(out *review.Review) {
	if r.Title != nil {
		out.Title = *r.Title
	}
	if r.Text != nil {
		out.Text = *r.Text
	}
	if r.Rating != nil {
		out.Rating = *r.Rating
	}
}
