// Package query translates request query strings into constrained Mongo
// query specifications: filtering, sorting, field projection and pagination.
package query

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"tourbook/internal/domain"
)

const (
	DefaultPage  = 1
	DefaultLimit = 100
)

// reserved control keys never become filter constraints.
var reserved = map[string]struct{}{
	"page":   {},
	"sort":   {},
	"limit":  {},
	"fields": {},
}

// opKey matches keys of the form field[gte] etc.
var opKey = regexp.MustCompile(`^([a-zA-Z_][a-zA-Z0-9_.]*)\[(gte|gt|lte|lt)\]$`)

// Spec is the normalized filter/sort/projection/pagination derived from a
// request.
type Spec struct {
	Filter     bson.M
	Sort       bson.D
	Projection bson.D
	Page       int64
	Limit      int64
}

func (s Spec) Skip() int64 {
	return (s.Page - 1) * s.Limit
}

// Parse builds a Spec from raw query values. Only keys listed in filterable
// may become filter constraints; anything else (other than the reserved
// control keys) is ignored. Malformed page/limit values are rejected.
func Parse(values url.Values, filterable []string) (Spec, error) {
	spec := Spec{
		Filter: bson.M{},
		Page:   DefaultPage,
		Limit:  DefaultLimit,
	}

	allowed := make(map[string]struct{}, len(filterable))
	for _, f := range filterable {
		allowed[f] = struct{}{}
	}

	equality := bson.M{}
	operators := map[string]bson.M{}

	for key, vals := range values {
		if _, ok := reserved[key]; ok {
			continue
		}
		if len(vals) == 0 {
			continue
		}
		field, op := key, ""
		if m := opKey.FindStringSubmatch(key); m != nil {
			field, op = m[1], "$"+m[2]
		}
		if _, ok := allowed[field]; !ok {
			continue
		}
		value := coerce(vals[0])
		if op == "" {
			equality[field] = value
			continue
		}
		// merge multiple operators on the same field, e.g. price[gte]&price[lt]
		ops, ok := operators[field]
		if !ok {
			ops = bson.M{}
			operators[field] = ops
		}
		ops[op] = value
	}

	for field, value := range equality {
		spec.Filter[field] = value
	}
	// operator constraints win over a bare equality on the same field, so the
	// outcome never depends on map iteration order
	for field, ops := range operators {
		spec.Filter[field] = ops
	}

	spec.Sort = parseSort(values.Get("sort"))
	spec.Projection = parseFields(values.Get("fields"))

	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			return Spec{}, domain.ValidationError{Field: "page", Msg: "must be a positive integer"}
		}
		spec.Page = n
	}
	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			return Spec{}, domain.ValidationError{Field: "limit", Msg: "must be a positive integer"}
		}
		spec.Limit = n
	}

	return spec, nil
}

// parseSort turns "-price,name" into a Mongo sort document. The fallback
// sorts newest first with _id as tiebreak so pagination stays deterministic.
func parseSort(raw string) bson.D {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}
	}
	var sort bson.D
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		dir := 1
		if strings.HasPrefix(part, "-") {
			dir = -1
			part = part[1:]
		}
		if part == "" {
			continue
		}
		sort = append(sort, bson.E{Key: part, Value: dir})
	}
	if len(sort) == 0 {
		return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}
	}
	sort = append(sort, bson.E{Key: "_id", Value: 1})
	return sort
}

func parseFields(raw string) bson.D {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var projection bson.D
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		projection = append(projection, bson.E{Key: part, Value: 1})
	}
	return projection
}

// coerce converts a raw query value into the type Mongo should compare with:
// number, bool, or string.
func coerce(raw string) any {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}
