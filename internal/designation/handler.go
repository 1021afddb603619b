package designation

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/docuflow/records-console/internal/backend"
	"github.com/docuflow/records-console/internal/core/validation"
	"github.com/docuflow/records-console/internal/session"
	"github.com/docuflow/records-console/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, params backend.ListParams) (*ListResult, error)
	Get(ctx context.Context, id int64) (*Designation, error)
	Create(ctx context.Context, dto FormDTO) (string, error)
	Update(ctx context.Context, id int64, dto FormDTO) (string, error)
	Delete(ctx context.Context, id int64) (string, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(base *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{BaseHandler: base, Service: svc}
}

type listPage struct {
	Designations []Designation
	Table        transport.TableView
}

type formPage struct {
	Mode   string
	ID     int64
	Form   FormDTO
	Errors map[string]string
}

func (h *Handler) pageData(r *http.Request, title string, content any) *transport.PageData {
	data := &transport.PageData{Title: title, ActiveNav: "designations", Content: content}
	if sess, ok := session.FromContext(r.Context()); ok {
		data.User = sess
	}
	return data
}

func (h *Handler) ListPage(w http.ResponseWriter, r *http.Request) {
	params := transport.ParseListParams(r)

	result, err := h.Service.List(r.Context(), params)
	if err != nil {
		h.RenderError(w, r, err)
		return
	}

	h.Render(w, r, http.StatusOK, "designations_list", h.pageData(r, "Designations", &listPage{
		Designations: result.Designations,
		Table:        transport.NewTableView("/designations", params, result.Page),
	}))
}

func (h *Handler) NewPage(w http.ResponseWriter, r *http.Request) {
	h.Render(w, r, http.StatusOK, "designations_form", h.pageData(r, "Add Designation", &formPage{
		Mode: "create",
	}))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.FlashError(w, r, err, "/designations")
		return
	}
	dto := FromForm(r)

	message, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		if fields := validation.FieldErrors(err); fields != nil {
			h.Render(w, r, http.StatusUnprocessableEntity, "designations_form", h.pageData(r, "Add Designation", &formPage{
				Mode:   "create",
				Form:   dto,
				Errors: fields,
			}))
			return
		}
		h.FlashError(w, r, err, "/designations/new")
		return
	}

	h.SetFlash(w, "success", message)
	http.Redirect(w, r, "/designations", http.StatusSeeOther)
}

func (h *Handler) EditPage(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.FlashError(w, r, err, "/designations")
		return
	}

	designation, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.FlashError(w, r, err, "/designations")
		return
	}

	h.Render(w, r, http.StatusOK, "designations_form", h.pageData(r, "Edit Designation", &formPage{
		Mode: "edit",
		ID:   designation.ID,
		Form: FormDTO{Name: designation.Name},
	}))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.FlashError(w, r, err, "/designations")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.FlashError(w, r, err, "/designations")
		return
	}
	dto := FromForm(r)

	message, err := h.Service.Update(r.Context(), id, dto)
	if err != nil {
		if fields := validation.FieldErrors(err); fields != nil {
			h.Render(w, r, http.StatusUnprocessableEntity, "designations_form", h.pageData(r, "Edit Designation", &formPage{
				Mode:   "edit",
				ID:     id,
				Form:   dto,
				Errors: fields,
			}))
			return
		}
		h.FlashError(w, r, err, "/designations")
		return
	}

	h.SetFlash(w, "success", message)
	http.Redirect(w, r, "/designations", http.StatusSeeOther)
}

func (h *Handler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.FlashError(w, r, err, "/designations")
		return
	}

	designation, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.FlashError(w, r, err, "/designations")
		return
	}

	h.Render(w, r, http.StatusOK, "designations_confirm_delete", h.pageData(r, "Delete Designation", designation))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.FlashError(w, r, err, "/designations")
		return
	}

	message, err := h.Service.Delete(r.Context(), id)
	if err != nil {
		h.FlashError(w, r, err, "/designations")
		return
	}

	h.SetFlash(w, "success", message)
	http.Redirect(w, r, "/designations", http.StatusSeeOther)
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
