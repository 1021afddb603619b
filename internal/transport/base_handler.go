package transport

import (
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/docuflow/records-console/internal"
	"github.com/docuflow/records-console/internal/web"
	"github.com/docuflow/records-console/pkg/logger"
)

const flashCookieName = "rc_flash"

// Flash is a one-shot toast persisted across a redirect in a short-lived
// cookie. Variant is "success" or "destructive", mirroring the toast styles
// of the console UI.
type Flash struct {
	Variant string `json:"variant"`
	Message string `json:"message"`
}

// PageData is the envelope every page template receives.
type PageData struct {
	Title     string
	ActiveNav string
	User      any
	Flash     *Flash
	Content   any
}

// BaseHandler provides rendering, flashes, and error translation shared by
// every page handler.
type BaseHandler struct {
	Logger   *slog.Logger
	Renderer *web.Renderer
}

func NewBaseHandler(lg *slog.Logger, renderer *web.Renderer) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg, Renderer: renderer}
}

// Render writes a page wrapped in the layout, popping any pending flash.
func (h *BaseHandler) Render(w http.ResponseWriter, r *http.Request, status int, page string, data *PageData) {
	if data == nil {
		data = &PageData{}
	}
	if data.Flash == nil {
		data.Flash = h.PopFlash(w, r)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.Renderer.Render(w, page, data); err != nil {
		h.Logger.Error("failed to render page", "page", page, "error", err)
	}
}

// RenderError shows the error page for failures that cannot be expressed as
// an inline form error or a toast.
func (h *BaseHandler) RenderError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "Something went wrong. Please try again."
	if appErr, ok := internal.IsAppError(err); ok {
		status = appErr.StatusCode
		message = appErr.GetDetailedMessage()
	}

	h.Logger.Error("page error", "status", status, "error", err)
	h.Render(w, r, status, "error", &PageData{
		Title:   "Error",
		Content: map[string]any{"Status": status, "Message": message},
	})
}

// SetFlash queues a toast for the next rendered page.
func (h *BaseHandler) SetFlash(w http.ResponseWriter, variant, message string) {
	payload, err := json.Marshal(Flash{Variant: variant, Message: message})
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(payload),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
	})
}

// PopFlash reads and clears the pending toast, if any.
func (h *BaseHandler) PopFlash(w http.ResponseWriter, r *http.Request) *Flash {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	payload, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var flash Flash
	if err := json.Unmarshal(payload, &flash); err != nil {
		return nil
	}
	return &flash
}

// FlashError stores the error's operator-facing message as a destructive
// toast and redirects back.
func (h *BaseHandler) FlashError(w http.ResponseWriter, r *http.Request, err error, backTo string) {
	message := "Something went wrong. Please try again."
	if appErr, ok := internal.IsAppError(err); ok {
		message = appErr.GetDetailedMessage()
	}
	h.Logger.Error("request failed", "error", err, "redirect", backTo)
	h.SetFlash(w, "destructive", message)
	http.Redirect(w, r, backTo, http.StatusSeeOther)
}

// WriteJSON writes a JSON response; used by the health endpoint.
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}
