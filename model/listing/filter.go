// Package listing turns request query parameters into store queries for the
// list endpoints. It handles filtering, projection, ordering, pagination and
// population of related records.
package listing

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	SelectKey = "select"
	SortKey   = "sort"
	PageKey   = "page"
	LimitKey  = "limit"

	DefaultSort = "-createdAt"
)

// ReservedKeys are consumed by the query builder and never become filters.
var ReservedKeys = []string{SelectKey, SortKey, PageKey, LimitKey}

var comparisonOperators = map[string]string{
	"gt":  "$gt",
	"gte": "$gte",
	"lt":  "$lt",
	"lte": "$lte",
	"in":  "$in",
}

// Kind is the stored type of a filterable field. Query parameters are always
// strings, so the kind decides how a value is converted before it reaches
// the store.
type Kind int

const (
	String Kind = iota
	Number
	Bool
	Date
	ObjectID
)

// Schema maps field names to their kinds. Fields that are not listed are
// compared as strings.
type Schema map[string]Kind

func (s Schema) coerce(field, val string) any {
	switch s[field] {
	case Number:
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	case Bool:
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	case Date:
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, val); err == nil {
				return t
			}
		}
	case ObjectID:
		if id, err := primitive.ObjectIDFromHex(val); err == nil {
			return id
		}
	}
	return val
}

func isReserved(key string) bool {
	for _, reserved := range ReservedKeys {
		if key == reserved {
			return true
		}
	}
	return false
}

// splitKey separates "field[op]" into its field and operator. Keys without a
// well-formed bracket suffix are returned whole.
func splitKey(key string) (string, string, bool) {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return key, "", false
	}
	op := key[open+1 : len(key)-1]
	if op == "" || strings.ContainsAny(op, "[]") {
		return key, "", false
	}
	return key[:open], op, true
}

// BuildFilter converts query parameters into a filter document. Reserved
// keys are dropped. A key of the form "field[op]" with op one of gt, gte,
// lt, lte or in becomes a comparison on field. Any other op is kept as a
// nested key without translation. Values are converted according to the
// schema, and the values of an "in" are split on commas.
func BuildFilter(values url.Values, schema Schema) bson.M {
	filter := bson.M{}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		vals := values[key]
		if len(vals) == 0 {
			continue
		}
		val := vals[0]

		field, op, hasOp := splitKey(key)
		if isReserved(field) {
			continue
		}

		if !hasOp {
			filter[field] = schema.coerce(field, val)
			continue
		}

		cond, ok := filter[field].(bson.M)
		if !ok {
			cond = bson.M{}
			filter[field] = cond
		}

		storeOp, known := comparisonOperators[op]
		switch {
		case !known:
			cond[op] = val
		case op == "in":
			parts := []any{}
			for _, part := range strings.Split(val, ",") {
				if part = strings.TrimSpace(part); part != "" {
					parts = append(parts, schema.coerce(field, part))
				}
			}
			cond[storeOp] = parts
		default:
			cond[storeOp] = schema.coerce(field, val)
		}
	}

	return filter
}

// splitList splits a comma separated parameter, dropping blanks.
func splitList(val string) []string {
	out := []string{}
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
