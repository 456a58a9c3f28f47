package data

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Md-IrfanS/DevCamper-API/model/listing"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The mock connector lists records by converting them to documents and
// evaluating the subset of the query language the list filters produce:
// equality, $gt, $gte, $lt, $lte and $in, on top-level or dotted fields.

func toDoc(in any) (bson.M, error) {
	raw, err := bson.Marshal(in)
	if err != nil {
		return nil, errors.Wrap(err, "marshalling record")
	}
	out := bson.M{}
	return out, errors.Wrap(bson.Unmarshal(raw, &out), "unmarshalling record")
}

func lookupPath(doc bson.M, path string) (any, bool) {
	var cur any = doc
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(bson.M)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func normalize(v any) any {
	switch val := v.(type) {
	case int:
		return float64(val)
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case float32:
		return float64(val)
	case primitive.DateTime:
		return val.Time()
	case primitive.ObjectID:
		return val.Hex()
	default:
		return v
	}
}

// compareValues orders two values of the same kind. The boolean is false
// when the values cannot be compared.
func compareValues(a, b any) (int, bool) {
	a, b = normalize(a), normalize(b)
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		if !ok {
			return 0, false
		}
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		}
		return 0, true
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(av, bv), true
	case time.Time:
		bv, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return av.Compare(bv), true
	case bool:
		bv, ok := b.(bool)
		if !ok || av == bv {
			return 0, ok
		}
		if !av {
			return -1, true
		}
		return 1, true
	case nil:
		if b == nil {
			return 0, true
		}
		return -1, true
	}
	return 0, false
}

func equalValues(a, b any) bool {
	cmp, ok := compareValues(a, b)
	return ok && cmp == 0
}

// candidates expands an array field so that a condition matches when any
// element satisfies it.
func candidates(v any) []any {
	if arr, ok := v.(bson.A); ok {
		return arr
	}
	return []any{v}
}

func matchCondition(field any, cond any) bool {
	ops, isOps := cond.(bson.M)
	if !isOps {
		for _, c := range candidates(field) {
			if equalValues(c, cond) {
				return true
			}
		}
		return false
	}

	for op, arg := range ops {
		matched := false
		for _, c := range candidates(field) {
			if matchOperator(op, c, arg) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

func matchOperator(op string, field, arg any) bool {
	if op == "$in" {
		list, ok := arg.([]any)
		if !ok {
			if a, isA := arg.(bson.A); isA {
				list, ok = a, true
			}
		}
		if !ok {
			return false
		}
		for _, item := range list {
			if equalValues(field, item) {
				return true
			}
		}
		return false
	}

	cmp, ok := compareValues(field, arg)
	if !ok {
		return false
	}
	switch op {
	case "$gt":
		return cmp > 0
	case "$gte":
		return cmp >= 0
	case "$lt":
		return cmp < 0
	case "$lte":
		return cmp <= 0
	}
	return false
}

func matchFilter(doc bson.M, filter bson.M) bool {
	for path, cond := range filter {
		field, _ := lookupPath(doc, path)
		if !matchCondition(field, cond) {
			return false
		}
	}
	return true
}

func sortDocs(docs []bson.M, keys []string) {
	sort.SliceStable(docs, func(i, j int) bool {
		for _, key := range keys {
			desc := strings.HasPrefix(key, "-")
			key = strings.TrimLeft(key, "-+")
			if key == "" {
				continue
			}
			a, _ := lookupPath(docs[i], key)
			b, _ := lookupPath(docs[j], key)
			cmp, ok := compareValues(a, b)
			if !ok || cmp == 0 {
				continue
			}
			if desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

func project(doc bson.M, projection bson.M, keep ...string) bson.M {
	if projection == nil {
		return doc
	}
	inclusive := false
	for _, v := range projection {
		if v == 1 {
			inclusive = true
			break
		}
	}
	if !inclusive {
		for field := range projection {
			delete(doc, field)
		}
		return doc
	}

	out := bson.M{"_id": doc["_id"]}
	for field := range projection {
		if v, ok := doc[field]; ok {
			out[field] = v
		}
	}
	for _, field := range keep {
		if v, ok := doc[field]; ok {
			out[field] = v
		}
	}
	return out
}

// listDocs filters, sorts and pages the documents. Populate is called for
// each document on the page before the projection is applied.
func listDocs(docs []bson.M, q listing.Query, hidden []string, populateAs string, populate func(bson.M)) listing.Result {
	matched := []bson.M{}
	for _, doc := range docs {
		if matchFilter(doc, q.Filter) {
			matched = append(matched, doc)
		}
	}
	sortDocs(matched, q.Sort)

	total := len(matched)
	start := int(math.Min(float64(q.Page.Skip()), float64(total)))
	end := int(math.Min(float64(start+q.Page.Limit), float64(total)))

	page := make([]bson.M, 0, end-start)
	for _, doc := range matched[start:end] {
		if populate != nil {
			populate(doc)
		}
		var keep []string
		if populateAs != "" {
			keep = append(keep, populateAs)
		}
		page = append(page, project(doc, q.Projection(), keep...))
	}

	return listing.NewResult(q, total, page, hidden...)
}

func pickFields(doc bson.M, fields ...string) bson.M {
	out := bson.M{"_id": doc["_id"]}
	for _, f := range fields {
		if v, ok := doc[f]; ok {
			out[f] = v
		}
	}
	return out
}
