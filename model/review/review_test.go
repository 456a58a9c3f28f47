package review

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestValidate(t *testing.T) {
	valid := func() *Review {
		return &Review{
			Title:    "Learned a ton!",
			Text:     "I learned a lot",
			Rating:   8,
			Bootcamp: primitive.NewObjectID(),
			User:     primitive.NewObjectID(),
		}
	}
	assert.NoError(t, valid().Validate())

	for name, mutate := range map[string]func(*Review){
		"NoTitle":      func(r *Review) { r.Title = "" },
		"LongTitle":    func(r *Review) { r.Title = strings.Repeat("t", 101) },
		"NoText":       func(r *Review) { r.Text = "\n" },
		"RatingZero":   func(r *Review) { r.Rating = 0 },
		"RatingEleven": func(r *Review) { r.Rating = 11 },
		"NoBootcamp":   func(r *Review) { r.Bootcamp = primitive.NilObjectID },
		"NoUser":       func(r *Review) { r.User = primitive.NilObjectID },
	} {
		t.Run(name, func(t *testing.T) {
			r := valid()
			mutate(r)
			assert.Error(t, r.Validate())
		})
	}

	for _, rating := range []int{1, 10} {
		r := valid()
		r.Rating = rating
		assert.NoError(t, r.Validate())
	}
}
