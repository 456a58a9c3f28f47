package db

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

var (
	NoProjection = bson.M{}
	NoSort       = []string{}
	NoSkip       = 0
	NoLimit      = 0
)

// Q holds all information necessary to execute a query.
type Q struct {
	filter     any
	projection any
	sort       []string
	skip       int
	limit      int
}

// Query creates a db.Q for the given filter.
func Query(filter any) Q {
	return Q{filter: filter}
}

// Filter returns the query's filter document.
func (q Q) Filter() any { return q.filter }

// Project sets the projection document.
func (q Q) Project(projection any) Q {
	q.projection = projection
	return q
}

// WithFields projects only the given fields.
func (q Q) WithFields(fields ...string) Q {
	projection := bson.M{}
	for _, f := range fields {
		projection[f] = 1
	}
	q.projection = projection
	return q
}

// WithoutFields projects every field except the given ones.
func (q Q) WithoutFields(fields ...string) Q {
	projection := bson.M{}
	for _, f := range fields {
		projection[f] = 0
	}
	q.projection = projection
	return q
}

// Sort orders results by the given keys. A leading "-" sorts descending.
func (q Q) Sort(sort []string) Q {
	q.sort = sort
	return q
}

func (q Q) Skip(skip int) Q {
	q.skip = skip
	return q
}

func (q Q) Limit(limit int) Q {
	q.limit = limit
	return q
}

func (q Q) sortDoc() bson.D {
	if len(q.sort) == 0 {
		return nil
	}
	return SortKeys(q.sort...)
}

// SortKeys converts sort keys into an ordered sort document. A key prefixed
// with "-" sorts descending and one prefixed with "+" or nothing sorts
// ascending. Blank keys are ignored.
func SortKeys(keys ...string) bson.D {
	out := bson.D{}
	for _, key := range keys {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		dir := 1
		switch key[0] {
		case '-':
			dir = -1
			key = key[1:]
		case '+':
			key = key[1:]
		}
		if key == "" {
			continue
		}
		out = append(out, bson.E{Key: key, Value: dir})
	}
	return out
}
