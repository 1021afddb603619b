package auditlog

import (
	"context"
	"net/http"

	"github.com/docuflow/records-console/internal/backend"
	"github.com/docuflow/records-console/internal/session"
	"github.com/docuflow/records-console/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, params backend.ListParams) (*ListResult, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(base *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{BaseHandler: base, Service: svc}
}

type listPage struct {
	Logs  []AuditLog
	Table transport.TableView
}

func (h *Handler) ListPage(w http.ResponseWriter, r *http.Request) {
	params := transport.ParseListParams(r)

	result, err := h.Service.List(r.Context(), params)
	if err != nil {
		h.RenderError(w, r, err)
		return
	}

	data := &transport.PageData{
		Title:     "Audit Logs",
		ActiveNav: "audit-logs",
		Content: &listPage{
			Logs:  result.Logs,
			Table: transport.NewTableView("/audit-logs", params, result.Page),
		},
	}
	if sess, ok := session.FromContext(r.Context()); ok {
		data.User = sess
	}

	h.Render(w, r, http.StatusOK, "auditlogs_list", data)
}
