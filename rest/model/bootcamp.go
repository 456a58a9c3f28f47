package model

import (
	"time"

	devcamper "github.com/Md-IrfanS/DevCamper-API"
	"github.com/Md-IrfanS/DevCamper-API/model/bootcamp"
	"github.com/evergreen-ci/utility"
	"github.com/pkg/errors"
)

type APILocation struct {
	Type             *string   `json:"type"`
	Coordinates      []float64 `json:"coordinates"`
	FormattedAddress *string   `json:"formattedAddress,omitempty"`
	Street           *string   `json:"street,omitempty"`
	City             *string   `json:"city,omitempty"`
	State            *string   `json:"state,omitempty"`
	Zipcode          *string   `json:"zipcode,omitempty"`
	Country          *string   `json:"country,omitempty"`
}

func (l *APILocation) BuildFromService(in bootcamp.Location) {
	l.Type = utility.ToStringPtr(in.Type)
	l.Coordinates = in.Coordinates
	l.FormattedAddress = utility.ToStringPtr(in.FormattedAddress)
	l.Street = utility.ToStringPtr(in.Street)
	l.City = utility.ToStringPtr(in.City)
	l.State = utility.ToStringPtr(in.State)
	l.Zipcode = utility.ToStringPtr(in.Zipcode)
	l.Country = utility.ToStringPtr(in.Country)
}

type APIUploadDoc struct {
	Id       *string `json:"_id"`
	FileName *string `json:"fileName"`
	FileSize int64   `json:"fileSize"`
	FileType *string `json:"fileType"`
	URL      *string `json:"url"`
}

func (d *APIUploadDoc) BuildFromService(in bootcamp.UploadDoc) {
	d.Id = utility.ToStringPtr(in.Id.Hex())
	d.FileName = utility.ToStringPtr(in.FileName)
	d.FileSize = in.FileSize
	d.FileType = utility.ToStringPtr(in.FileType)
	d.URL = utility.ToStringPtr(in.URL)
}

// APIBootcamp is the client view of a bootcamp. As input, absent fields are
// left unchanged and derived fields are ignored.
type APIBootcamp struct {
	Id            *string        `json:"_id,omitempty"`
	Name          *string        `json:"name"`
	Slug          *string        `json:"slug,omitempty"`
	Description   *string        `json:"description"`
	Website       *string        `json:"website,omitempty"`
	Phone         *string        `json:"phone,omitempty"`
	Email         *string        `json:"email,omitempty"`
	Address       *string        `json:"address,omitempty"`
	Location      *APILocation   `json:"location,omitempty"`
	Careers       []string       `json:"careers"`
	AverageRating *float64       `json:"averageRating"`
	AverageCost   *float64       `json:"averageCost,omitempty"`
	Photo         *string        `json:"photo,omitempty"`
	UploadDocs    []APIUploadDoc `json:"uploadDoc,omitempty"`
	Housing       *bool          `json:"housing,omitempty"`
	JobAssistance *bool          `json:"jobAssistance,omitempty"`
	JobGuarantee  *bool          `json:"jobGuarantee,omitempty"`
	AcceptGi      *bool          `json:"acceptGi,omitempty"`
	Since         *int           `json:"since,omitempty"`
	User          *string        `json:"user,omitempty"`
	CreatedAt     *time.Time     `json:"createdAt,omitempty"`
	UpdatedAt     *time.Time     `json:"updatedAt,omitempty"`
}

// BuildFromService converts from a stored bootcamp to an APIBootcamp.
func (b *APIBootcamp) BuildFromService(in bootcamp.Bootcamp) {
	b.Id = utility.ToStringPtr(in.Id.Hex())
	b.Name = utility.ToStringPtr(in.Name)
	b.Slug = utility.ToStringPtr(in.Slug)
	b.Description = utility.ToStringPtr(in.Description)
	b.Website = utility.ToStringPtr(in.Website)
	b.Phone = utility.ToStringPtr(in.Phone)
	b.Email = utility.ToStringPtr(in.Email)
	if in.Location != nil {
		b.Location = &APILocation{}
		b.Location.BuildFromService(*in.Location)
	}
	b.Careers = make([]string, 0, len(in.Careers))
	for _, c := range in.Careers {
		b.Careers = append(b.Careers, string(c))
	}
	b.AverageRating = in.AverageRating
	b.AverageCost = utility.ToFloat64Ptr(in.AverageCost)
	b.Photo = utility.ToStringPtr(in.Photo)
	b.UploadDocs = make([]APIUploadDoc, 0, len(in.UploadDocs))
	for _, doc := range in.UploadDocs {
		apiDoc := APIUploadDoc{}
		apiDoc.BuildFromService(doc)
		b.UploadDocs = append(b.UploadDocs, apiDoc)
	}
	b.Housing = utility.ToBoolPtr(in.Housing)
	b.JobAssistance = utility.ToBoolPtr(in.JobAssistance)
	b.JobGuarantee = utility.ToBoolPtr(in.JobGuarantee)
	b.AcceptGi = utility.ToBoolPtr(in.AcceptGi)
	b.Since = utility.ToIntPtr(in.Since)
	b.User = utility.ToStringPtr(in.User.Hex())
	b.CreatedAt = utility.ToTimePtr(in.CreatedAt)
	b.UpdatedAt = utility.ToTimePtr(in.UpdatedAt)
}

// ToService returns a new bootcamp holding the client supplied fields.
func (b *APIBootcamp) ToService() (*bootcamp.Bootcamp, error) {
	out := &bootcamp.Bootcamp{}
	if err := b.ApplyTo(out); err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyTo copies the client supplied fields onto an existing bootcamp. The
// owner and derived fields cannot be set this way.
func (b *APIBootcamp) ApplyTo(out *bootcamp.Bootcamp) error {
	if b.Name != nil {
		out.Name = *b.Name
	}
	if b.Description != nil {
		out.Description = *b.Description
	}
	if b.Website != nil {
		out.Website = *b.Website
	}
	if b.Phone != nil {
		out.Phone = *b.Phone
	}
	if b.Email != nil {
		out.Email = *b.Email
	}
	if b.Address != nil {
		out.Address = *b.Address
	}
	if b.Careers != nil {
		careers := make([]devcamper.Career, 0, len(b.Careers))
		for _, c := range b.Careers {
			career := devcamper.Career(c)
			if err := career.Validate(); err != nil {
				return errors.Wrapf(err, "invalid career '%s'", c)
			}
			careers = append(careers, career)
		}
		out.Careers = careers
	}
	if b.Housing != nil {
		out.Housing = *b.Housing
	}
	if b.JobAssistance != nil {
		out.JobAssistance = *b.JobAssistance
	}
	if b.JobGuarantee != nil {
		out.JobGuarantee = *b.JobGuarantee
	}
	if b.AcceptGi != nil {
		out.AcceptGi = *b.AcceptGi
	}
	if b.Since != nil {
		out.Since = *b.Since
	}
	return nil
}
