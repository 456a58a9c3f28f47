package course

import (
	"strings"
	"time"

	devcamper "github.com/Md-IrfanS/DevCamper-API"
	"github.com/mongodb/grip"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Course struct {
	Id                   primitive.ObjectID `bson:"_id" json:"_id"`
	Title                string             `bson:"title" json:"title"`
	Description          string             `bson:"description" json:"description"`
	Weeks                string             `bson:"weeks" json:"weeks"`
	Tuition              float64            `bson:"tuition" json:"tuition"`
	MinimumSkill         devcamper.Skill    `bson:"minimumSkill" json:"minimumSkill"`
	ScholarshipAvailable bool               `bson:"scholarshipAvailable" json:"scholarshipAvailable"`
	Bootcamp             primitive.ObjectID `bson:"bootcamp" json:"bootcamp"`
	User                 primitive.ObjectID `bson:"user" json:"user"`
	CreatedAt            time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (c *Course) Validate() error {
	catcher := grip.NewBasicCatcher()
	catcher.NewWhen(strings.TrimSpace(c.Title) == "", "please add a course title")
	catcher.NewWhen(strings.TrimSpace(c.Description) == "", "please add a description")
	catcher.NewWhen(strings.TrimSpace(c.Weeks) == "", "please add number of weeks")
	catcher.NewWhen(c.Tuition <= 0, "please add a tuition cost")
	catcher.Add(c.MinimumSkill.Validate())
	catcher.NewWhen(c.Bootcamp.IsZero(), "course must belong to a bootcamp")
	catcher.NewWhen(c.User.IsZero(), "course must belong to a user")
	return catcher.Resolve()
}
