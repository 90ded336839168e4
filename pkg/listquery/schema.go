// Package listquery implements the in-memory list pipeline shared by the
// doctor, patient and appointment listings: free-text search, categorical
// filters, pagination and the small aggregations used by summary cards.
//
// Every function is pure. Inputs are never mutated and results never alias
// the caller's backing array.
package listquery

import (
	"strings"

	"golang.org/x/text/cases"
)

// AllValues is the filter selection that places no constraint on a field.
const AllValues = "all"

// Field extracts a string value from a record.
type Field[T any] func(T) string

// Schema describes how records of one entity type are searched and filtered.
type Schema[T any] struct {
	// Searchable fields are matched case-insensitively as substrings.
	Searchable []Field[T]
	// Filters maps a selection name to the field it constrains by exact match.
	Filters map[string]Field[T]
}

// Query is the full set of list parameters a client can send.
type Query struct {
	Search     string
	Selections map[string]string
	Page       int
	PageSize   int
	ShowAll    bool
}

type constraint[T any] struct {
	field Field[T]
	want  string
}

// Filter returns the records matching term and every active selection, in
// their original relative order.
func (s Schema[T]) Filter(records []T, term string, selections map[string]string) []T {
	out := make([]T, 0, len(records))

	fold := cases.Fold()
	needle := ""
	if strings.TrimSpace(term) != "" {
		needle = fold.String(term)
	}
	active := s.constraints(selections)

	for _, r := range records {
		if needle != "" && !s.matchesSearch(fold, r, needle) {
			continue
		}
		if !matchesAll(r, active) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Run filters records and paginates the result. Unlike Paginate, the
// requested page is clamped into range first.
func (s Schema[T]) Run(records []T, q Query) Page[T] {
	filtered := s.Filter(records, q.Search, q.Selections)
	size := q.PageSize
	if size < 1 {
		size = DefaultPageSize
	}
	page := ClampPage(q.Page, TotalPages(len(filtered), size))
	return Paginate(filtered, page, size, q.ShowAll)
}

// Fields lists the selection names the schema understands.
func (s Schema[T]) Fields() []string {
	names := make([]string, 0, len(s.Filters))
	for name := range s.Filters {
		names = append(names, name)
	}
	return names
}

func (s Schema[T]) constraints(selections map[string]string) []constraint[T] {
	var active []constraint[T]
	for name, want := range selections {
		if want == "" || want == AllValues {
			continue
		}
		field, ok := s.Filters[name]
		if !ok {
			continue
		}
		active = append(active, constraint[T]{field: field, want: want})
	}
	return active
}

func (s Schema[T]) matchesSearch(fold cases.Caser, r T, needle string) bool {
	for _, field := range s.Searchable {
		if strings.Contains(fold.String(field(r)), needle) {
			return true
		}
	}
	return false
}

func matchesAll[T any](r T, active []constraint[T]) bool {
	for _, c := range active {
		if c.field(r) != c.want {
			return false
		}
	}
	return true
}

// Map derives a schema over U whose fields read the T that project returns.
// It lets a wrapper type reuse an entity schema unchanged.
func Map[T, U any](s Schema[T], project func(U) T) Schema[U] {
	out := Schema[U]{
		Searchable: make([]Field[U], len(s.Searchable)),
		Filters:    make(map[string]Field[U], len(s.Filters)),
	}
	for i, f := range s.Searchable {
		out.Searchable[i] = compose(f, project)
	}
	for name, f := range s.Filters {
		out.Filters[name] = compose(f, project)
	}
	return out
}

func compose[T, U any](f Field[T], project func(U) T) Field[U] {
	return func(u U) string { return f(project(u)) }
}
