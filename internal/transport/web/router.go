package web

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/docuflow/records-console/internal/auditlog"
	"github.com/docuflow/records-console/internal/department"
	"github.com/docuflow/records-console/internal/designation"
	"github.com/docuflow/records-console/internal/folder"
	"github.com/docuflow/records-console/internal/position"
	"github.com/docuflow/records-console/internal/session"
	"github.com/docuflow/records-console/internal/transport/middleware"
	"github.com/docuflow/records-console/internal/user"
)

// RegisterAllRoutes wires every page and form action. Everything except the
// sign-in page and the health endpoints sits behind the session middleware.
func RegisterAllRoutes(router *chi.Mux, backend Pinger, sessionHandler *session.Handler, departmentHandler *department.Handler, designationHandler *designation.Handler, userHandler *user.Handler, positionHandler *position.Handler, folderHandler *folder.Handler, auditLogHandler *auditlog.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(backend)

	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Get("/health", healthHandler.healthCheckHandler)
	router.Get("/ping", healthHandler.pingHandler)

	router.Get("/login", sessionHandler.ShowLogin)
	router.Post("/login", sessionHandler.Login)

	router.Group(func(r chi.Router) {
		r.Use(sessionHandler.Middleware)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/folders", http.StatusSeeOther)
		})
		r.Post("/logout", sessionHandler.Logout)

		r.Route("/departments", func(sr chi.Router) {
			sr.Get("/", departmentHandler.ListPage)
			sr.Get("/new", departmentHandler.NewPage)
			sr.Post("/", departmentHandler.Create)
			sr.Get("/{id}/edit", departmentHandler.EditPage)
			sr.Post("/{id}", departmentHandler.Update)
			sr.Get("/{id}/delete", departmentHandler.ConfirmDelete)
			sr.Post("/{id}/delete", departmentHandler.Delete)
		})

		r.Route("/designations", func(sr chi.Router) {
			sr.Get("/", designationHandler.ListPage)
			sr.Get("/new", designationHandler.NewPage)
			sr.Post("/", designationHandler.Create)
			sr.Get("/{id}/edit", designationHandler.EditPage)
			sr.Post("/{id}", designationHandler.Update)
			sr.Get("/{id}/delete", designationHandler.ConfirmDelete)
			sr.Post("/{id}/delete", designationHandler.Delete)
		})

		r.Route("/users", func(sr chi.Router) {
			sr.Get("/", userHandler.ListPage)
			sr.Get("/new", userHandler.NewPage)
			sr.Post("/", userHandler.Create)
			sr.Get("/{id}/edit", userHandler.EditPage)
			sr.Post("/{id}", userHandler.Update)
			sr.Get("/{id}/delete", userHandler.ConfirmDelete)
			sr.Post("/{id}/delete", userHandler.Delete)
			sr.Post("/{id}/status", userHandler.ToggleStatus)
			sr.Get("/{id}/reset-password", userHandler.ResetPasswordPage)
			sr.Post("/{id}/reset-password", userHandler.ResetPassword)
			sr.Get("/{id}/position", positionHandler.FormPage)
		})

		r.Route("/positions", func(sr chi.Router) {
			sr.Post("/", positionHandler.Create)
			sr.Post("/{id}", positionHandler.Update)
			sr.Post("/{id}/delete", positionHandler.Delete)
		})

		r.Route("/folders", func(sr chi.Router) {
			sr.Get("/", folderHandler.ListPage)
			sr.Get("/new", folderHandler.NewPage)
			sr.Post("/", folderHandler.Create)
			sr.Get("/report", folderHandler.ReportPage)
			sr.Post("/report", folderHandler.GenerateReport)
			sr.Get("/{id}", folderHandler.DetailPage)
			sr.Get("/{id}/edit", folderHandler.EditPage)
			sr.Post("/{id}", folderHandler.Update)
			sr.Get("/{id}/delete", folderHandler.ConfirmDelete)
			sr.Post("/{id}/delete", folderHandler.Delete)
			sr.Get("/{id}/subfolders/new", folderHandler.NewSubfolderPage)
			sr.Post("/{id}/approve", folderHandler.Approve)
			sr.Post("/{id}/reject", folderHandler.Reject)
			sr.Get("/{id}/download", folderHandler.Download)
		})

		r.Get("/audit-logs", auditLogHandler.ListPage)

		r.Get("/profile", userHandler.ProfilePage)
		r.Post("/profile", userHandler.UpdateProfile)
	})
}
