package listing

import (
	"net/url"
	"strings"

	"github.com/Md-IrfanS/DevCamper-API/db"
	"go.mongodb.org/mongo-driver/bson"
)

// Query is a parsed list request.
type Query struct {
	Filter bson.M
	// Fields is the projection. A leading "-" excludes a field.
	Fields []string
	// Sort holds sort keys, a leading "-" sorts descending.
	Sort []string
	Page Page
	// Hidden fields are removed from every result. Dotted paths reach into
	// embedded documents and arrays of them.
	Hidden []string
}

// ParseQuery builds a Query from request query parameters.
func ParseQuery(values url.Values, schema Schema) Query {
	q := Query{
		Filter: BuildFilter(values, schema),
		Fields: splitList(values.Get(SelectKey)),
		Sort:   splitList(values.Get(SortKey)),
		Page:   ParsePage(values),
	}
	if len(q.Sort) == 0 {
		q.Sort = []string{DefaultSort}
	}
	return q
}

// Projection converts the selected fields into a projection document. It
// returns nil when nothing was selected.
func (q Query) Projection() bson.M {
	if len(q.Fields) == 0 {
		return nil
	}
	projection := bson.M{}
	for _, field := range q.Fields {
		if name, ok := strings.CutPrefix(field, "-"); ok {
			projection[name] = 0
			continue
		}
		projection[field] = 1
	}
	return projection
}

func (q Query) inclusive() bool {
	for _, v := range q.Projection() {
		if v == 1 {
			return true
		}
	}
	return false
}

// Pipeline builds the aggregation stages that select one page of results.
// Related records are looked up after the page is cut so that only the
// returned documents are joined.
func (q Query) Pipeline(populate ...Populate) []bson.M {
	stages := []bson.M{
		{"$match": q.Filter},
	}
	if sortDoc := db.SortKeys(q.Sort...); len(sortDoc) > 0 {
		stages = append(stages, bson.M{"$sort": sortDoc})
	}
	stages = append(stages,
		bson.M{"$skip": q.Page.Skip()},
		bson.M{"$limit": q.Page.Limit},
	)

	for _, p := range populate {
		stages = append(stages, p.Stages()...)
	}
	if len(q.Hidden) > 0 {
		stages = append(stages, bson.M{"$unset": q.Hidden})
	}

	if projection := q.Projection(); projection != nil {
		if q.inclusive() {
			for _, p := range populate {
				projection[p.As] = 1
			}
		}
		stages = append(stages, bson.M{"$project": projection})
	}

	return stages
}

// Populate joins related records onto each result.
type Populate struct {
	// From is the collection holding the related records.
	From string
	// LocalField on the result is matched against ForeignField on the
	// related record.
	LocalField   string
	ForeignField string
	// As is the result field that receives the related records.
	As string
	// Fields limits the related records to these fields.
	Fields []string
	// Single replaces the joined list with its first element, or drops the
	// field when nothing matched.
	Single bool
}

// Stages returns the aggregation stages for the join.
func (p Populate) Stages() []bson.M {
	sub := []bson.M{
		{"$match": bson.M{"$expr": bson.M{"$eq": bson.A{"$" + p.ForeignField, "$$local"}}}},
	}
	if len(p.Fields) > 0 {
		projection := bson.M{}
		for _, f := range p.Fields {
			projection[f] = 1
		}
		sub = append(sub, bson.M{"$project": projection})
	}

	stages := []bson.M{{
		"$lookup": bson.M{
			"from":     p.From,
			"let":      bson.M{"local": "$" + p.LocalField},
			"pipeline": sub,
			"as":       p.As,
		},
	}}
	if p.Single {
		stages = append(stages, bson.M{
			"$unwind": bson.M{"path": "$" + p.As, "preserveNullAndEmptyArrays": true},
		})
	}
	return stages
}

// Result is one page of a list request.
type Result struct {
	Count      int        `json:"count"`
	Total      int        `json:"total"`
	Pagination Pagination `json:"pagination"`
	Data       []bson.M   `json:"data"`
}

// NewResult assembles a page of documents with its pagination descriptor.
// The query's hidden fields and any others given are removed from every
// document.
func NewResult(q Query, total int, docs []bson.M, hidden ...string) Result {
	if docs == nil {
		docs = []bson.M{}
	}
	hidden = append(hidden, q.Hidden...)
	for _, doc := range docs {
		for _, field := range hidden {
			unsetPath(doc, strings.Split(field, "."))
		}
	}
	return Result{
		Count:      len(docs),
		Total:      total,
		Pagination: q.Page.Paginate(total),
		Data:       docs,
	}
}

func unsetPath(v any, path []string) {
	switch doc := v.(type) {
	case bson.M:
		unsetMapPath(doc, path)
	case map[string]any:
		unsetMapPath(doc, path)
	case bson.A:
		for _, elem := range doc {
			unsetPath(elem, path)
		}
	case []any:
		for _, elem := range doc {
			unsetPath(elem, path)
		}
	case []bson.M:
		for _, elem := range doc {
			unsetMapPath(elem, path)
		}
	}
}

func unsetMapPath(doc map[string]any, path []string) {
	if len(path) == 1 {
		delete(doc, path[0])
		return
	}
	unsetPath(doc[path[0]], path[1:])
}
