package bootcamp

import (
	"regexp"
	"strings"
	"time"

	devcamper "github.com/Md-IrfanS/DevCamper-API"
	"github.com/gosimple/slug"
	"github.com/mongodb/grip"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	websitePattern = regexp.MustCompile(`^https?://(www\.)?[-a-zA-Z0-9@:%._+~#=]{1,256}\.[a-zA-Z0-9()]{1,6}\b([-a-zA-Z0-9()@:%_+.~#?&/=]*)$`)
	emailPattern   = regexp.MustCompile(`^\w+([\.-]?\w+)*@\w+([\.-]?\w+)*(\.\w{2,3})+$`)
)

type Bootcamp struct {
	Id            primitive.ObjectID `bson:"_id" json:"_id"`
	Name          string             `bson:"name" json:"name"`
	Slug          string             `bson:"slug" json:"slug"`
	Description   string             `bson:"description" json:"description"`
	Website       string             `bson:"website,omitempty" json:"website,omitempty"`
	Phone         string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Email         string             `bson:"email,omitempty" json:"email,omitempty"`
	// Address is only held until it has been geocoded into Location.
	Address       string             `bson:"address,omitempty" json:"address,omitempty"`
	Location      *Location          `bson:"location,omitempty" json:"location,omitempty"`
	Careers       []devcamper.Career `bson:"careers" json:"careers"`
	AverageRating *float64           `bson:"averageRating" json:"averageRating"`
	AverageCost   float64            `bson:"averageCost" json:"averageCost"`
	Photo         string             `bson:"photo" json:"photo"`
	PhotoKey      string             `bson:"photoKey,omitempty" json:"-"`
	UploadDocs    []UploadDoc        `bson:"uploadDoc" json:"uploadDoc"`
	Housing       bool               `bson:"housing" json:"housing"`
	JobAssistance bool               `bson:"jobAssistance" json:"jobAssistance"`
	JobGuarantee  bool               `bson:"jobGuarantee" json:"jobGuarantee"`
	AcceptGi      bool               `bson:"acceptGi" json:"acceptGi"`
	Since         int                `bson:"since" json:"since"`
	User          primitive.ObjectID `bson:"user" json:"user"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Location is a GeoJSON point with the address it was resolved from.
type Location struct {
	Type             string    `bson:"type" json:"type"`
	Coordinates      []float64 `bson:"coordinates" json:"coordinates"`
	FormattedAddress string    `bson:"formattedAddress,omitempty" json:"formattedAddress,omitempty"`
	Street           string    `bson:"street,omitempty" json:"street,omitempty"`
	City             string    `bson:"city,omitempty" json:"city,omitempty"`
	State            string    `bson:"state,omitempty" json:"state,omitempty"`
	Zipcode          string    `bson:"zipcode,omitempty" json:"zipcode,omitempty"`
	Country          string    `bson:"country,omitempty" json:"country,omitempty"`
}

// NewPoint returns a location at the given longitude and latitude.
func NewPoint(lng, lat float64) *Location {
	return &Location{Type: "Point", Coordinates: []float64{lng, lat}}
}

// UploadDoc is a document attached to a bootcamp.
type UploadDoc struct {
	Id       primitive.ObjectID `bson:"_id" json:"_id"`
	FileName string             `bson:"fileName" json:"fileName"`
	FileSize int64              `bson:"fileSize" json:"fileSize"`
	FileType string             `bson:"fileType" json:"fileType"`
	URL      string             `bson:"url" json:"url"`
	Key      string             `bson:"key" json:"-"`
}

// Validate checks the fields that must hold for every stored bootcamp.
func (b *Bootcamp) Validate() error {
	catcher := grip.NewBasicCatcher()

	name := strings.TrimSpace(b.Name)
	catcher.NewWhen(name == "", "please add a name")
	catcher.ErrorfWhen(len(name) > devcamper.MaxBootcampNameLength,
		"name can not be more than %d characters", devcamper.MaxBootcampNameLength)

	catcher.NewWhen(strings.TrimSpace(b.Description) == "", "please add a description")
	catcher.ErrorfWhen(len(b.Description) > devcamper.MaxBootcampDescriptionLength,
		"description can not be more than %d characters", devcamper.MaxBootcampDescriptionLength)

	catcher.ErrorfWhen(b.Website != "" && !websitePattern.MatchString(b.Website),
		"please use a valid URL with HTTP or HTTPS, '%s' is not valid", b.Website)
	catcher.ErrorfWhen(len(b.Phone) > devcamper.MaxBootcampPhoneLength,
		"phone number can not be longer than %d characters", devcamper.MaxBootcampPhoneLength)
	catcher.ErrorfWhen(b.Email != "" && !emailPattern.MatchString(b.Email),
		"please add a valid email, '%s' is not valid", b.Email)

	catcher.NewWhen(b.Location == nil && strings.TrimSpace(b.Address) == "", "please add an address")

	catcher.NewWhen(len(b.Careers) == 0, "please add at least one career")
	for _, c := range b.Careers {
		catcher.Add(c.Validate())
	}

	if b.AverageRating != nil {
		catcher.ErrorfWhen(*b.AverageRating < devcamper.MinRating || *b.AverageRating > devcamper.MaxRating,
			"average rating must be between %d and %d", devcamper.MinRating, devcamper.MaxRating)
	}

	return catcher.Resolve()
}

// SetDefaults fills in the fields a new bootcamp starts with.
func (b *Bootcamp) SetDefaults(now time.Time) {
	if b.Id.IsZero() {
		b.Id = primitive.NewObjectID()
	}
	if b.Photo == "" {
		b.Photo = devcamper.DefaultPhoto
	}
	if b.Since == 0 {
		b.Since = now.Year()
	}
	if b.UploadDocs == nil {
		b.UploadDocs = []UploadDoc{}
	}
	b.SetSlug()
}

// SetSlug derives the URL slug from the name.
func (b *Bootcamp) SetSlug() {
	b.Slug = slug.Make(b.Name)
}

// FindUploadDoc returns the attached document with the given id.
func (b *Bootcamp) FindUploadDoc(id primitive.ObjectID) (UploadDoc, bool) {
	for _, doc := range b.UploadDocs {
		if doc.Id == id {
			return doc, true
		}
	}
	return UploadDoc{}, false
}

// StoredKeys are the bucket keys of every file attached to the bootcamp.
func (b *Bootcamp) StoredKeys() []string {
	keys := []string{}
	if b.PhotoKey != "" {
		keys = append(keys, b.PhotoKey)
	}
	for _, doc := range b.UploadDocs {
		if doc.Key != "" {
			keys = append(keys, doc.Key)
		}
	}
	return keys
}
