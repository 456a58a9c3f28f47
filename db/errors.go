package db

import (
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
)

func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}

	if mongo.IsDuplicateKeyError(errors.Cause(err)) {
		return true
	}

	return strings.Contains(errors.Cause(err).Error(), "duplicate key")
}

// ResultsNotFound reports whether the error means the query matched nothing.
func ResultsNotFound(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(errors.Cause(err), mongo.ErrNoDocuments) || errors.Is(err, mongo.ErrNoDocuments)
}
