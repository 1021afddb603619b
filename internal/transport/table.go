package transport

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/docuflow/records-console/internal/backend"
)

const DefaultPageSize = 10

// ParseListParams reads the server-driven table state from the query string.
// Every change of page, size, sort, or search lands here and is forwarded to
// the backend as-is; nothing is paginated or sorted locally.
func ParseListParams(r *http.Request) backend.ListParams {
	q := r.URL.Query()
	return backend.ListParams{
		Page:       atoiDefault(q.Get("page"), 1),
		PageSize:   atoiDefault(q.Get("page_size"), DefaultPageSize),
		Filter:     q.Get("filter"),
		SortColumn: q.Get("sort_column"),
		SortDesc:   q.Get("sort_desc") == "true",
	}
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// TableView is the pagination/sort state handed to table templates, plus the
// URL builders the header links and pager need.
type TableView struct {
	Params      backend.ListParams
	BasePath    string
	CurrentPage int
	LastPage    int
	Total       int
}

func NewTableView(basePath string, params backend.ListParams, page *backend.Page) TableView {
	view := TableView{
		Params:      params,
		BasePath:    basePath,
		CurrentPage: params.Page,
		LastPage:    1,
	}
	if page != nil {
		view.CurrentPage = page.CurrentPage
		view.LastPage = page.LastPage
		view.Total = page.Total
	}
	if view.LastPage < 1 {
		view.LastPage = 1
	}
	return view
}

func (t TableView) query(page int, sortColumn string, sortDesc bool) string {
	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	if t.Params.PageSize != DefaultPageSize && t.Params.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(t.Params.PageSize))
	}
	if t.Params.Filter != "" {
		v.Set("filter", t.Params.Filter)
	}
	if sortColumn != "" {
		v.Set("sort_column", sortColumn)
		v.Set("sort_desc", strconv.FormatBool(sortDesc))
	}
	return t.BasePath + "?" + v.Encode()
}

// PageURL links to another page keeping sort and search intact.
func (t TableView) PageURL(page int) string {
	return t.query(page, t.Params.SortColumn, t.Params.SortDesc)
}

// SortURL links to a column header: first click sorts ascending, clicking
// the active column flips the direction. Sorting resets to page 1.
func (t TableView) SortURL(column string) string {
	desc := false
	if t.Params.SortColumn == column {
		desc = !t.Params.SortDesc
	}
	return t.query(1, column, desc)
}

// SortIndicator marks the active sort column in the header.
func (t TableView) SortIndicator(column string) string {
	if t.Params.SortColumn != column {
		return ""
	}
	if t.Params.SortDesc {
		return "▼"
	}
	return "▲"
}

func (t TableView) HasPrev() bool { return t.CurrentPage > 1 }
func (t TableView) HasNext() bool { return t.CurrentPage < t.LastPage }
func (t TableView) PrevPage() int { return t.CurrentPage - 1 }
func (t TableView) NextPage() int { return t.CurrentPage + 1 }
