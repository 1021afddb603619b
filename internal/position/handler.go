package position

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/docuflow/records-console/internal/core/validation"
	"github.com/docuflow/records-console/internal/department"
	"github.com/docuflow/records-console/internal/designation"
	"github.com/docuflow/records-console/internal/session"
	"github.com/docuflow/records-console/internal/transport"
	"github.com/docuflow/records-console/internal/user"
)

type ServiceAPI interface {
	Create(ctx context.Context, dto FormDTO) (string, error)
	Update(ctx context.Context, id int64, dto FormDTO) (string, error)
	Delete(ctx context.Context, id int64) (string, error)
}

type UserAPI interface {
	Get(ctx context.Context, id string) (*user.User, error)
}

type DepartmentOptions interface {
	All(ctx context.Context) []department.Department
}

type DesignationOptions interface {
	All(ctx context.Context) []designation.Designation
}

type Handler struct {
	*transport.BaseHandler
	Service      ServiceAPI
	Users        UserAPI
	Departments  DepartmentOptions
	Designations DesignationOptions
}

func NewHandler(base *transport.BaseHandler, svc ServiceAPI, users UserAPI, departments DepartmentOptions, designations DesignationOptions) *Handler {
	return &Handler{
		BaseHandler:  base,
		Service:      svc,
		Users:        users,
		Departments:  departments,
		Designations: designations,
	}
}

type formPage struct {
	User         *user.User
	PositionID   int64
	Form         FormDTO
	Errors       map[string]string
	Departments  []department.Department
	Designations []designation.Designation
}

func (h *Handler) pageData(r *http.Request, title string, content any) *transport.PageData {
	data := &transport.PageData{Title: title, ActiveNav: "users", Content: content}
	if sess, ok := session.FromContext(r.Context()); ok {
		data.User = sess
	}
	return data
}

// FormPage renders the position form for a user, prefilled when the user
// already holds one. Failed option lookups only log; the selects render
// empty.
func (h *Handler) FormPage(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	u, err := h.Users.Get(r.Context(), userID)
	if err != nil {
		h.FlashError(w, r, err, "/users")
		return
	}

	page := &formPage{
		User:         u,
		Form:         FormDTO{UserID: u.ID},
		Departments:  h.Departments.All(r.Context()),
		Designations: h.Designations.All(r.Context()),
	}
	if u.Position != nil {
		page.PositionID = u.Position.ID
		page.Form = FormDTO{
			UserID:        u.ID,
			DepartmentID:  u.Position.DepartmentID,
			DesignationID: u.Position.DesignationID,
			SectionHead:   u.Position.SectionHead,
		}
	}

	h.Render(w, r, http.StatusOK, "positions_form", h.pageData(r, "Assign Position", page))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.FlashError(w, r, err, "/users")
		return
	}
	dto := FromForm(r)

	message, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.formFailure(w, r, dto, 0, err)
		return
	}

	h.SetFlash(w, "success", message)
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.FlashError(w, r, err, "/users")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.FlashError(w, r, err, "/users")
		return
	}
	dto := FromForm(r)

	message, err := h.Service.Update(r.Context(), id, dto)
	if err != nil {
		h.formFailure(w, r, dto, id, err)
		return
	}

	h.SetFlash(w, "success", message)
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.FlashError(w, r, err, "/users")
		return
	}

	message, err := h.Service.Delete(r.Context(), id)
	if err != nil {
		h.FlashError(w, r, err, "/users")
		return
	}

	h.SetFlash(w, "success", message)
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

func (h *Handler) formFailure(w http.ResponseWriter, r *http.Request, dto FormDTO, positionID int64, err error) {
	fields := validation.FieldErrors(err)
	if fields == nil {
		h.FlashError(w, r, err, "/users")
		return
	}

	u, getErr := h.Users.Get(r.Context(), dto.UserID)
	if getErr != nil {
		h.FlashError(w, r, getErr, "/users")
		return
	}

	h.Render(w, r, http.StatusUnprocessableEntity, "positions_form", h.pageData(r, "Assign Position", &formPage{
		User:         u,
		PositionID:   positionID,
		Form:         dto,
		Errors:       fields,
		Departments:  h.Departments.All(r.Context()),
		Designations: h.Designations.All(r.Context()),
	}))
}
