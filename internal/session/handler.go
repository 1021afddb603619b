package session

import (
	"net/http"

	"github.com/docuflow/records-console/internal"
	"github.com/docuflow/records-console/internal/core/validation"
	"github.com/docuflow/records-console/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Service *Service
}

func NewHandler(base *transport.BaseHandler, svc *Service) *Handler {
	return &Handler{BaseHandler: base, Service: svc}
}

type loginPage struct {
	Email  string
	Errors map[string]string
	Error  string
}

// ShowLogin renders the sign-in page; an already signed-in operator is sent
// home instead.
func (h *Handler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.Service.CookieName()); err == nil {
		if _, err := h.Service.Authenticate(cookie.Value); err == nil {
			http.Redirect(w, r, "/folders", http.StatusSeeOther)
			return
		}
	}

	h.Render(w, r, http.StatusOK, "login", &transport.PageData{
		Title:   "Sign in",
		Content: &loginPage{},
	})
}

// Login handles the credential form. Validation failures re-render inline;
// a backend rejection shows the server's error string and stays on the page.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.RenderError(w, r, internal.NewValidationError("invalid form submission", internal.ErrCodeValidationFailed))
		return
	}

	dto := LoginDTO{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}

	sess, cookieValue, err := h.Service.Login(r.Context(), dto)
	if err != nil {
		page := &loginPage{Email: dto.Email}
		if fields := validation.FieldErrors(err); fields != nil {
			page.Errors = fields
		} else if appErr, ok := internal.IsAppError(err); ok {
			page.Error = appErr.GetDetailedMessage()
		} else {
			page.Error = "Something went wrong. Please try again."
		}

		h.Render(w, r, http.StatusUnprocessableEntity, "login", &transport.PageData{
			Title:   "Sign in",
			Content: page,
		})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.Service.CookieName(),
		Value:    cookieValue,
		Path:     "/",
		MaxAge:   int(h.Service.CookieTTL().Seconds()),
		HttpOnly: true,
		Secure:   h.Service.CookieSecure(),
		SameSite: http.SameSiteLaxMode,
	})

	h.Logger.Info("login succeeded", "user_id", sess.UserID)
	http.Redirect(w, r, "/folders", http.StatusSeeOther)
}

// Logout clears the session cookie and returns to the sign-in page.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.Service.CookieName(),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Middleware gates protected routes: a valid cookie puts the session and the
// backend token into the request context, anything else redirects to /login.
func (h *Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(h.Service.CookieName())
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		sess, err := h.Service.Authenticate(cookie.Value)
		if err != nil {
			h.Logger.Warn("session rejected", "error", err)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		ctx := WithSession(r.Context(), sess)
		ctx = internal.ContextWithToken(ctx, sess.Token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
