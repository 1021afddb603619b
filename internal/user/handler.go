package user

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
	Get(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, dto FormDTO) (string, error)
	Update(ctx context.Context, id string, dto FormDTO) (string, error)
	UpdateProfile(ctx context.Context, id string, dto ProfileDTO) (string, error)
	Delete(ctx context.Context, id string) (string, error)
	UpdateStatus(ctx context.Context, id string, status int) (string, error)
	ResetPassword(ctx context.Context, id string, dto ResetPasswordDTO) (string, error)
}

// ProfileAPI supplies the operator's own record for the profile page.
type ProfileAPI interface {
	CurrentUser(ctx context.Context) (*session.Profile, error)
}

type Handler struct {
	*transport.BaseHandler
	Service  ServiceAPI
	Profiles ProfileAPI
}

func NewHandler(base *transport.BaseHandler, svc ServiceAPI, profiles ProfileAPI) *Handler {
	return &Handler{BaseHandler: base, Service: svc, Profiles: profiles}
}

type listPage struct {
	Users []User
	Table transport.TableView
}

type formPage struct {
	Mode   string
	ID     string
	Form   FormDTO
	Errors map[string]string
}

type resetPasswordPage struct {
	User   *User
	Form   ResetPasswordDTO
	Errors map[string]string
}

type profilePage struct {
	Profile *session.Profile
	Form    ProfileDTO
	Errors  map[string]string
}

func (h *Handler) pageData(r *http.Request, nav, title string, content any) *transport.PageData {
	data := &transport.PageData{Title: title, ActiveNav: nav, Content: content}
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

	h.Render(w, r, http.StatusOK, "users_list", h.pageData(r, "users", "Users", &listPage{
		Users: result.Users,
		Table: transport.NewTableView("/users", params, result.Page),
	}))
}

func (h *Handler) NewPage(w http.ResponseWriter, r *http.Request) {
	h.Render(w, r, http.StatusOK, "users_form", h.pageData(r, "users", "Add User", &formPage{
		Mode: "create",
	}))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	dto, err := FromForm(r)
	if err != nil {
		h.FlashError(w, r, err, "/users/new")
		return
	}

	message, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		if fields := validation.FieldErrors(err); fields != nil {
			h.Render(w, r, http.StatusUnprocessableEntity, "users_form", h.pageData(r, "users", "Add User", &formPage{
				Mode:   "create",
				Form:   dto,
				Errors: fields,
			}))
			return
		}
		h.FlashError(w, r, err, "/users/new")
		return
	}

	h.SetFlash(w, "success", message)
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

func (h *Handler) EditPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	u, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.FlashError(w, r, err, "/users")
		return
	}

	h.Render(w, r, http.StatusOK, "users_form", h.pageData(r, "users", "Edit User", &formPage{
		Mode: "edit",
		ID:   u.ID,
		Form: FormDTO{
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Email:     u.Email,
			Phone:     u.Phone,
			Address:   u.Address,
			Role:      u.Role,
		},
	}))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	dto, err := FromForm(r)
	if err != nil {
		h.FlashError(w, r, err, "/users")
		return
	}

	message, err := h.Service.Update(r.Context(), id, dto)
	if err != nil {
		if fields := validation.FieldErrors(err); fields != nil {
			h.Render(w, r, http.StatusUnprocessableEntity, "users_form", h.pageData(r, "users", "Edit User", &formPage{
				Mode:   "edit",
				ID:     id,
				Form:   dto,
				Errors: fields,
			}))
			return
		}
		h.FlashError(w, r, err, "/users")
		return
	}

	h.SetFlash(w, "success", message)
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

func (h *Handler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	u, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.FlashError(w, r, err, "/users")
		return
	}

	h.Render(w, r, http.StatusOK, "users_confirm_delete", h.pageData(r, "users", "Delete User", u))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	message, err := h.Service.Delete(r.Context(), id)
	if err != nil {
		h.FlashError(w, r, err, "/users")
		return
	}

	h.SetFlash(w, "success", message)
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

// ToggleStatus flips a user between active and inactive.
func (h *Handler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		h.FlashError(w, r, err, "/users")
		return
	}

	status, err := strconv.Atoi(r.PostFormValue("status"))
	if err != nil {
		h.FlashError(w, r, err, "/users")
		return
	}

	message, err := h.Service.UpdateStatus(r.Context(), id, status)
	if err != nil {
		h.FlashError(w, r, err, "/users")
		return
	}

	h.SetFlash(w, "success", message)
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

func (h *Handler) ResetPasswordPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	u, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.FlashError(w, r, err, "/users")
		return
	}

	h.Render(w, r, http.StatusOK, "users_reset_password", h.pageData(r, "users", "Reset Password", &resetPasswordPage{
		User: u,
	}))
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		h.FlashError(w, r, err, "/users")
		return
	}
	dto := ResetPasswordFromForm(r)

	message, err := h.Service.ResetPassword(r.Context(), id, dto)
	if err != nil {
		if fields := validation.FieldErrors(err); fields != nil {
			u, getErr := h.Service.Get(r.Context(), id)
			if getErr != nil {
				h.FlashError(w, r, getErr, "/users")
				return
			}
			h.Render(w, r, http.StatusUnprocessableEntity, "users_reset_password", h.pageData(r, "users", "Reset Password", &resetPasswordPage{
				User:   u,
				Form:   dto,
				Errors: fields,
			}))
			return
		}
		h.FlashError(w, r, err, "/users")
		return
	}

	h.SetFlash(w, "success", message)
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

// ProfilePage shows the operator's own record, sourced from the shared
// session provider rather than a per-page lookup.
func (h *Handler) ProfilePage(w http.ResponseWriter, r *http.Request) {
	profile, err := h.Profiles.CurrentUser(r.Context())
	if err != nil {
		h.RenderError(w, r, err)
		return
	}

	h.Render(w, r, http.StatusOK, "profile", h.pageData(r, "profile", "My Profile", &profilePage{
		Profile: profile,
		Form: ProfileDTO{
			FirstName: profile.FirstName,
			LastName:  profile.LastName,
			Phone:     profile.Phone,
			Address:   profile.Address,
		},
	}))
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.Profiles.CurrentUser(r.Context())
	if err != nil {
		h.RenderError(w, r, err)
		return
	}

	dto, err := ProfileFromForm(r)
	if err != nil {
		h.FlashError(w, r, err, "/profile")
		return
	}

	message, err := h.Service.UpdateProfile(r.Context(), profile.ID, dto)
	if err != nil {
		if fields := validation.FieldErrors(err); fields != nil {
			h.Render(w, r, http.StatusUnprocessableEntity, "profile", h.pageData(r, "profile", "My Profile", &profilePage{
				Profile: profile,
				Form:    dto,
				Errors:  fields,
			}))
			return
		}
		h.FlashError(w, r, err, "/profile")
		return
	}

	h.SetFlash(w, "success", message)
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}
