// Package handler holds the pieces shared by the HTTP handlers: list query
// parsing and the legacy response envelopes.
package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/caredash-api/internal/model"
	"github.com/jwalitptl/caredash-api/pkg/errors"
	"github.com/jwalitptl/caredash-api/pkg/listquery"
)

var pipelineParams = []string{"search", "page", "page_size", "show_all"}

// ListOptions bounds the page size clients may ask for.
type ListOptions struct {
	DefaultPageSize int
	MaxPageSize     int
}

func DefaultListOptions() ListOptions {
	return ListOptions{DefaultPageSize: listquery.DefaultPageSize, MaxPageSize: 100}
}

// ListRequest is a parsed list query. Paged reports whether the client sent
// any pipeline parameter, which decides if pagination metadata is returned.
type ListRequest struct {
	Query listquery.Query
	Paged bool
}

// ParseListQuery reads search, page, page_size, show_all and one selection per
// filter field. Without any of them the whole collection is returned.
func ParseListQuery(c *gin.Context, fields []string, opts ListOptions) (ListRequest, error) {
	var params model.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return ListRequest{}, errors.BadRequest("invalid list parameters", err)
	}

	values := c.Request.URL.Query()
	paged := false
	for _, p := range pipelineParams {
		if values.Has(p) {
			paged = true
		}
	}

	selections := make(map[string]string, len(fields))
	for _, f := range fields {
		if v := values.Get(f); v != "" {
			selections[f] = v
			paged = true
		}
	}

	size := params.PageSize
	if size < 1 {
		size = opts.DefaultPageSize
	}
	if opts.MaxPageSize > 0 && size > opts.MaxPageSize {
		size = opts.MaxPageSize
	}

	q := listquery.Query{
		Search:     params.Search,
		Selections: selections,
		Page:       params.Page,
		PageSize:   size,
		ShowAll:    params.ShowAll || !paged,
	}
	return ListRequest{Query: q, Paged: paged}, nil
}

// Pagination returns the page metadata when the client asked for a page.
func (r ListRequest) Pagination(meta listquery.Meta) *listquery.Meta {
	if !r.Paged {
		return nil
	}
	return &meta
}
