package backend

import (
	"encoding/json"
	"net/url"
	"strconv"
)

// Envelope is the {status, message, data} wrapper returned by every mutating
// endpoint of the document-management API.
type Envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

const StatusSuccess = "success"

func (e *Envelope) IsSuccess() bool {
	return e.Status == StatusSuccess
}

// ListParams are the server-driven table parameters. The console never
// sorts, filters, or paginates locally; these are forwarded verbatim.
type ListParams struct {
	Page       int
	PageSize   int
	Filter     string
	SortColumn string
	SortDesc   bool
}

// Values serializes the params the way the API expects: empty filter and
// sort column are omitted, sort_desc is always sent.
func (p ListParams) Values() url.Values {
	v := url.Values{}
	page := p.Page
	if page < 1 {
		page = 1
	}
	v.Set("page", strconv.Itoa(page))
	if p.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(p.PageSize))
	}
	if p.Filter != "" {
		v.Set("filter", p.Filter)
	}
	if p.SortColumn != "" {
		v.Set("sort_column", p.SortColumn)
	}
	v.Set("sort_desc", strconv.FormatBool(p.SortDesc))
	return v
}

// CacheKey keys the query cache so any parameter change misses the cache and
// reissues the request.
func (p ListParams) CacheKey() string {
	return p.Values().Encode()
}

// Page is the paginator nested under "data" in list responses.
type Page struct {
	Data        json.RawMessage `json:"data"`
	CurrentPage int             `json:"current_page"`
	LastPage    int             `json:"last_page"`
	Total       int             `json:"total"`
}

type listEnvelope struct {
	Data Page `json:"data"`
}

// DecodeInto unmarshals the page rows into a concrete slice.
func (p *Page) DecodeInto(out any) error {
	if len(p.Data) == 0 {
		return nil
	}
	return json.Unmarshal(p.Data, out)
}
