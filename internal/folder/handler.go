package folder

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/docuflow/records-console/internal"
	"github.com/docuflow/records-console/internal/backend"
	"github.com/docuflow/records-console/internal/core/validation"
	"github.com/docuflow/records-console/internal/department"
	"github.com/docuflow/records-console/internal/session"
	"github.com/docuflow/records-console/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, params backend.ListParams) (*ListResult, error)
	Get(ctx context.Context, id int64) (*Folder, error)
	Create(ctx context.Context, dto FormDTO) (string, error)
	Update(ctx context.Context, id int64, dto FormDTO) (string, error)
	Delete(ctx context.Context, id int64) (string, error)
	Approve(ctx context.Context, id int64) (string, error)
	Reject(ctx context.Context, id int64) (string, error)
	DownloadURL(ctx context.Context, id int64) (string, error)
	GenerateReport(ctx context.Context, dto ReportDTO) ([]byte, string, error)
}

// ProfileAPI supplies the operator profile that gates approval affordances.
type ProfileAPI interface {
	CurrentUser(ctx context.Context) (*session.Profile, error)
}

// DepartmentOptions supplies the department multi-select.
type DepartmentOptions interface {
	All(ctx context.Context) []department.Department
}

// Option is a generic select entry, used for the report reviewer list.
type Option struct {
	ID   int64
	Name string
}

type Handler struct {
	*transport.BaseHandler
	Service     ServiceAPI
	Profiles    ProfileAPI
	Departments DepartmentOptions
	Reviewers   func(ctx context.Context) []Option
}

func NewHandler(base *transport.BaseHandler, svc ServiceAPI, profiles ProfileAPI, departments DepartmentOptions, reviewers func(ctx context.Context) []Option) *Handler {
	return &Handler{
		BaseHandler: base,
		Service:     svc,
		Profiles:    profiles,
		Departments: departments,
		Reviewers:   reviewers,
	}
}

type folderRow struct {
	Folder
	CanModerate bool
}

type listPage struct {
	Rows  []folderRow
	Table transport.TableView
}

type formPage struct {
	Mode        string
	ID          int64
	ParentID    *int64
	Form        FormDTO
	Errors      map[string]string
	Departments []department.Department
	Existing    []UploadedFile
}

type detailPage struct {
	Folder      *Folder
	CanModerate bool
}

type reportPage struct {
	Form      ReportDTO
	Errors    map[string]string
	Folders   []Folder
	Reviewers []Option
}

func (h *Handler) pageData(r *http.Request, title string, content any) *transport.PageData {
	data := &transport.PageData{Title: title, ActiveNav: "folders", Content: content}
	if sess, ok := session.FromContext(r.Context()); ok {
		data.User = sess
	}
	return data
}

// profile returns the operator profile or nil; a failed lookup only logs so
// the page still renders, minus the approval affordances.
func (h *Handler) profile(ctx context.Context) *session.Profile {
	profile, err := h.Profiles.CurrentUser(ctx)
	if err != nil {
		h.Logger.Error("failed to load operator profile", "error", err)
		return nil
	}
	return profile
}

// ListPage renders the folders table with selection checkboxes for the
// report dialog and per-row approve/reject actions gated by CanModerate.
func (h *Handler) ListPage(w http.ResponseWriter, r *http.Request) {
	params := transport.ParseListParams(r)

	result, err := h.Service.List(r.Context(), params)
	if err != nil {
		h.RenderError(w, r, err)
		return
	}

	profile := h.profile(r.Context())
	rows := make([]folderRow, len(result.Folders))
	for i, f := range result.Folders {
		rows[i] = folderRow{Folder: f, CanModerate: CanModerate(profile, &result.Folders[i])}
	}

	h.Render(w, r, http.StatusOK, "folders_list", h.pageData(r, "Folders", &listPage{
		Rows:  rows,
		Table: transport.NewTableView("/folders", params, result.Page),
	}))
}

func (h *Handler) DetailPage(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.FlashError(w, r, err, "/folders")
		return
	}

	f, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.FlashError(w, r, err, "/folders")
		return
	}

	h.Render(w, r, http.StatusOK, "folders_detail", h.pageData(r, f.FolderName, &detailPage{
		Folder:      f,
		CanModerate: CanModerate(h.profile(r.Context()), f),
	}))
}

func (h *Handler) NewPage(w http.ResponseWriter, r *http.Request) {
	h.Render(w, r, http.StatusOK, "folders_form", h.pageData(r, "Add Folder", &formPage{
		Mode:        "create",
		Departments: h.Departments.All(r.Context()),
	}))
}

// NewSubfolderPage renders the create form preset with a parent folder,
// which is the one level of nesting the system supports.
func (h *Handler) NewSubfolderPage(w http.ResponseWriter, r *http.Request) {
	parentID, err := parseID(r)
	if err != nil {
		h.FlashError(w, r, err, "/folders")
		return
	}

	h.Render(w, r, http.StatusOK, "folders_form", h.pageData(r, "Add Subfolder", &formPage{
		Mode:        "create",
		ParentID:    &parentID,
		Departments: h.Departments.All(r.Context()),
	}))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	dto, err := ParseForm(r)
	if err != nil {
		h.FlashError(w, r, err, "/folders/new")
		return
	}

	message, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		if fields := validation.FieldErrors(err); fields != nil {
			h.Render(w, r, http.StatusUnprocessableEntity, "folders_form", h.pageData(r, "Add Folder", &formPage{
				Mode:        "create",
				ParentID:    dto.ParentID,
				Form:        dto,
				Errors:      fields,
				Departments: h.Departments.All(r.Context()),
			}))
			return
		}
		h.FlashError(w, r, err, "/folders/new")
		return
	}

	h.SetFlash(w, "success", message)
	http.Redirect(w, r, "/folders", http.StatusSeeOther)
}

func (h *Handler) EditPage(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.FlashError(w, r, err, "/folders")
		return
	}

	f, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.FlashError(w, r, err, "/folders")
		return
	}

	h.Render(w, r, http.StatusOK, "folders_form", h.pageData(r, "Edit Folder", &formPage{
		Mode:     "edit",
		ID:       f.ID,
		ParentID: f.ParentID,
		Form: FormDTO{
			FolderName:    f.FolderName,
			StartDate:     f.StartDate,
			EndDate:       f.EndDate,
			ParentID:      f.ParentID,
			DepartmentIDs: f.DepartmentIDs,
		},
		Departments: h.Departments.All(r.Context()),
		Existing:    f.UploadedFiles,
	}))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.FlashError(w, r, err, "/folders")
		return
	}

	dto, err := ParseForm(r)
	if err != nil {
		h.FlashError(w, r, err, "/folders")
		return
	}

	message, err := h.Service.Update(r.Context(), id, dto)
	if err != nil {
		if fields := validation.FieldErrors(err); fields != nil {
			h.Render(w, r, http.StatusUnprocessableEntity, "folders_form", h.pageData(r, "Edit Folder", &formPage{
				Mode:        "edit",
				ID:          id,
				ParentID:    dto.ParentID,
				Form:        dto,
				Errors:      fields,
				Departments: h.Departments.All(r.Context()),
			}))
			return
		}
		h.FlashError(w, r, err, "/folders")
		return
	}

	h.SetFlash(w, "success", message)
	http.Redirect(w, r, "/folders", http.StatusSeeOther)
}

func (h *Handler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.FlashError(w, r, err, "/folders")
		return
	}

	f, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.FlashError(w, r, err, "/folders")
		return
	}

	h.Render(w, r, http.StatusOK, "folders_confirm_delete", h.pageData(r, "Delete Folder", f))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.FlashError(w, r, err, "/folders")
		return
	}

	message, err := h.Service.Delete(r.Context(), id)
	if err != nil {
		h.FlashError(w, r, err, "/folders")
		return
	}

	h.SetFlash(w, "success", message)
	http.Redirect(w, r, "/folders", http.StatusSeeOther)
}

// Approve requires a pending folder and a section-head operator; anything
// else is rejected before a request is sent.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, h.Service.Approve)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, h.Service.Reject)
}

func (h *Handler) moderate(w http.ResponseWriter, r *http.Request, action func(context.Context, int64) (string, error)) {
	id, err := parseID(r)
	if err != nil {
		h.FlashError(w, r, err, "/folders")
		return
	}

	f, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.FlashError(w, r, err, "/folders")
		return
	}
	if !CanModerate(h.profile(r.Context()), f) {
		h.FlashError(w, r, internal.ErrApprovalNotAllowed, "/folders")
		return
	}

	message, err := action(r.Context(), id)
	if err != nil {
		h.FlashError(w, r, err, "/folders")
		return
	}

	h.SetFlash(w, "success", message)
	http.Redirect(w, r, "/folders", http.StatusSeeOther)
}

// Download redirects the browser to the archive reference the backend
// resolves for the folder.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.FlashError(w, r, err, "/folders")
		return
	}

	archiveURL, err := h.Service.DownloadURL(r.Context(), id)
	if err != nil {
		h.FlashError(w, r, err, "/folders")
		return
	}

	http.Redirect(w, r, archiveURL, http.StatusSeeOther)
}

// ReportPage shows the generate-report dialog for the folders selected in
// the table; ids arrive via the folders query parameter.
func (h *Handler) ReportPage(w http.ResponseWriter, r *http.Request) {
	var selected []int64
	for _, raw := range r.URL.Query()["folders"] {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			selected = append(selected, id)
		}
	}

	h.Render(w, r, http.StatusOK, "folders_report", h.pageData(r, "Generate Report", &reportPage{
		Form:      ReportDTO{FolderIDs: selected},
		Folders:   h.selectedFolders(r.Context(), selected),
		Reviewers: h.Reviewers(r.Context()),
	}))
}

// GenerateReport posts the selection to the backend and streams the PDF
// back as a download. Failures surface as a destructive toast; no retry.
func (h *Handler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	dto, err := ParseReportForm(r)
	if err != nil {
		h.FlashError(w, r, err, "/folders")
		return
	}

	content, filename, err := h.Service.GenerateReport(r.Context(), dto)
	if err != nil {
		if fields := validation.FieldErrors(err); fields != nil {
			h.Render(w, r, http.StatusUnprocessableEntity, "folders_report", h.pageData(r, "Generate Report", &reportPage{
				Form:      dto,
				Errors:    fields,
				Folders:   h.selectedFolders(r.Context(), dto.FolderIDs),
				Reviewers: h.Reviewers(r.Context()),
			}))
			return
		}
		h.FlashError(w, r, err, "/folders")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	if _, err := w.Write(content); err != nil {
		h.Logger.Error("failed to stream report", "error", err)
	}
}

// selectedFolders resolves the chosen ids for display; lookup failures only
// log and the dialog lists the ids without names.
func (h *Handler) selectedFolders(ctx context.Context, ids []int64) []Folder {
	folders := make([]Folder, 0, len(ids))
	for _, id := range ids {
		f, err := h.Service.Get(ctx, id)
		if err != nil {
			h.Logger.Error("failed to resolve selected folder", "id", id, "error", err)
			folders = append(folders, Folder{ID: id, FolderName: fmt.Sprintf("Folder #%d", id)})
			continue
		}
		folders = append(folders, *f)
	}
	return folders
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
