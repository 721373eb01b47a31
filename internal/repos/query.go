package repos

import (
	"fmt"
	"strconv"
	"strings"

	"storefront/internal/domain"
)

// Allowed maps external parameter names to their backing columns. Anything
// not in the map is rejected rather than passed through to SQL.
type Allowed map[string]string

var UserColumns = Allowed{
	"id":            "id",
	"name":          "name",
	"email":         "email",
	"phone":         "phone",
	"photo":         "photo",
	"role":          "role",
	"active":        "active",
	"emailVerified": "email_verified",
	"createdAt":     "created_at",
	"updatedAt":     "updated_at",
}

var ProductColumns = Allowed{
	"id":                "id",
	"storeId":           "store_id",
	"name":              "name",
	"description":       "description",
	"price":             "price",
	"color":             "color",
	"isTrending":        "is_trending",
	"numberOfPurchases": "number_of_purchases",
	"createdAt":         "created_at",
	"updatedAt":         "updated_at",
}

// comparison operators accepted in the field[op] parameter form
var compareOps = map[string]string{
	"gte": ">=",
	"gt":  ">",
	"lte": "<=",
	"lt":  "<",
}

// ListQuery is the translated form of a raw filter/sort/page/fields request.
type ListQuery struct {
	Where   []string
	Args    []any
	OrderBy []string
	Fields  []string // selected columns; empty means all allowed columns
	Limit   int
	Offset  int
}

// BuildListQuery translates query parameters into SQL fragments.
//
// Reserved parameters (page, sort, limit, fields) are stripped from the
// filter set; the remainder become equality filters, or comparisons when
// given as field[gte|gt|lte|lt]. sort=a,-b sorts ascending by a then
// descending by b; the default is newest first. page/limit coerce to
// positive integers with defaults 1 and 100.
func BuildListQuery(raw map[string]string, cols Allowed) (ListQuery, error) {
	q := ListQuery{Limit: 100}

	for key, val := range raw {
		switch key {
		case "page", "sort", "limit", "fields":
			continue
		}

		field, op := key, "="
		if i := strings.IndexByte(key, '['); i > 0 && strings.HasSuffix(key, "]") {
			name := key[:i]
			if sqlOp, ok := compareOps[key[i+1:len(key)-1]]; ok {
				field, op = name, sqlOp
			}
		}
		col, ok := cols[field]
		if !ok {
			return ListQuery{}, domain.InvalidInput(fmt.Sprintf("unknown filter field %q", key))
		}
		q.Where = append(q.Where, fmt.Sprintf("%s %s ?", col, op))
		q.Args = append(q.Args, val)
	}

	if s := raw["sort"]; s != "" {
		for _, part := range strings.Split(s, ",") {
			part = strings.TrimSpace(part)
			dir := "ASC"
			if strings.HasPrefix(part, "-") {
				part, dir = part[1:], "DESC"
			}
			col, ok := cols[part]
			if !ok {
				return ListQuery{}, domain.InvalidInput(fmt.Sprintf("unknown sort field %q", part))
			}
			q.OrderBy = append(q.OrderBy, col+" "+dir)
		}
	} else {
		q.OrderBy = []string{"created_at DESC"}
	}

	if f := raw["fields"]; f != "" {
		seen := map[string]bool{}
		for _, part := range strings.Split(f, ",") {
			part = strings.TrimSpace(part)
			col, ok := cols[part]
			if !ok {
				return ListQuery{}, domain.InvalidInput(fmt.Sprintf("unknown field %q", part))
			}
			if !seen[col] {
				seen[col] = true
				q.Fields = append(q.Fields, col)
			}
		}
		// id always rides along so responses stay addressable
		if !seen["id"] {
			q.Fields = append([]string{"id"}, q.Fields...)
		}
	}

	page := positiveInt(raw["page"], 1)
	q.Limit = positiveInt(raw["limit"], 100)
	q.Offset = (page - 1) * q.Limit

	return q, nil
}

// SelectClause renders the projection, falling back to all when no fields
// were requested.
func (q ListQuery) SelectClause(all string) string {
	if len(q.Fields) == 0 {
		return all
	}
	return strings.Join(q.Fields, ", ")
}

// WhereClause renders the filter conditions joined to any fixed conditions
// the caller already has, e.g. scoping to a store.
func (q ListQuery) WhereClause(fixed ...string) string {
	conds := append(append([]string{}, fixed...), q.Where...)
	if len(conds) == 0 {
		return "1=1"
	}
	return strings.Join(conds, " AND ")
}

func (q ListQuery) OrderClause() string {
	return strings.Join(q.OrderBy, ", ")
}

func positiveInt(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return def
	}
	return n
}
