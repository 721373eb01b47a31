package repos_test

import (
	"errors"
	"strings"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/repos"
)

func TestBuildListQueryDefaults(t *testing.T) {
	q, err := repos.BuildListQuery(map[string]string{}, repos.ProductColumns)
	if err != nil {
		t.Fatal(err)
	}
	if q.Limit != 100 || q.Offset != 0 {
		t.Fatalf("defaults: limit=%d offset=%d", q.Limit, q.Offset)
	}
	if q.OrderClause() != "created_at DESC" {
		t.Fatalf("default order: %q", q.OrderClause())
	}
	if len(q.Where) != 0 {
		t.Fatalf("unexpected filters: %v", q.Where)
	}
	if q.WhereClause() != "1=1" {
		t.Fatalf("empty where clause: %q", q.WhereClause())
	}
}

func TestBuildListQueryFiltersAndOperators(t *testing.T) {
	q, err := repos.BuildListQuery(map[string]string{
		"color":      "red",
		"price[gte]": "10",
		"price[lt]":  "50",
	}, repos.ProductColumns)
	if err != nil {
		t.Fatal(err)
	}
	if len(q.Where) != 3 || len(q.Args) != 3 {
		t.Fatalf("want 3 conditions, got %v / %v", q.Where, q.Args)
	}
	joined := q.WhereClause("store_id = ?")
	for _, frag := range []string{"store_id = ?", "color = ?", "price >= ?", "price < ?"} {
		if !strings.Contains(joined, frag) {
			t.Fatalf("missing %q in %q", frag, joined)
		}
	}
}

func TestBuildListQueryRejectsUnknownKeys(t *testing.T) {
	bad := []map[string]string{
		{"passwordHash": "x"},          // not an allowed column
		{"name[bogus]": "x"},           // unknown operator makes the whole key unknown
		{"sort": "passwordHash"},       // sort allow-list
		{"fields": "name,secretStuff"}, // projection allow-list
	}
	for i, raw := range bad {
		if _, err := repos.BuildListQuery(raw, repos.ProductColumns); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("case %d: expected invalid input, got %v", i, err)
		}
	}
}

func TestBuildListQuerySort(t *testing.T) {
	q, err := repos.BuildListQuery(map[string]string{"sort": "price,-createdAt"}, repos.ProductColumns)
	if err != nil {
		t.Fatal(err)
	}
	if q.OrderClause() != "price ASC, created_at DESC" {
		t.Fatalf("order: %q", q.OrderClause())
	}
}

func TestBuildListQueryFieldsAlwaysIncludeID(t *testing.T) {
	q, err := repos.BuildListQuery(map[string]string{"fields": "name,price,name"}, repos.ProductColumns)
	if err != nil {
		t.Fatal(err)
	}
	if got := q.SelectClause("ALL"); got != "id, name, price" {
		t.Fatalf("projection: %q", got)
	}

	// no fields requested: caller's full column list stands
	q2, err := repos.BuildListQuery(map[string]string{}, repos.ProductColumns)
	if err != nil {
		t.Fatal(err)
	}
	if q2.SelectClause("ALL") != "ALL" {
		t.Fatalf("fallback projection: %q", q2.SelectClause("ALL"))
	}
}

func TestBuildListQueryPagination(t *testing.T) {
	q, err := repos.BuildListQuery(map[string]string{"page": "3", "limit": "20"}, repos.UserColumns)
	if err != nil {
		t.Fatal(err)
	}
	if q.Limit != 20 || q.Offset != 40 {
		t.Fatalf("page math: limit=%d offset=%d", q.Limit, q.Offset)
	}

	// junk coerces to defaults rather than erroring
	q2, err := repos.BuildListQuery(map[string]string{"page": "-1", "limit": "zero"}, repos.UserColumns)
	if err != nil {
		t.Fatal(err)
	}
	if q2.Limit != 100 || q2.Offset != 0 {
		t.Fatalf("junk paging: limit=%d offset=%d", q2.Limit, q2.Offset)
	}
}
