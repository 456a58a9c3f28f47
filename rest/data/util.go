package data

import (
	"fmt"
	"net/http"

	"github.com/evergreen-ci/gimlet"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotFound is the error for a missing record of the given kind.
func NotFound(kind, id string) error {
	return gimlet.ErrorResponse{
		StatusCode: http.StatusNotFound,
		Message:    fmt.Sprintf("%s not found with id of %s", kind, id),
	}
}

// ParseID parses a record id. An id that cannot be parsed names no record,
// so it is not found rather than invalid.
func ParseID(kind, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, NotFound(kind, id)
	}
	return oid, nil
}

func geocodeFailed(zipcode string) error {
	return gimlet.ErrorResponse{
		StatusCode: http.StatusBadRequest,
		Message:    fmt.Sprintf("zipcode '%s' could not be located", zipcode),
	}
}
