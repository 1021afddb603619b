package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/docuflow/records-console/internal"
	"github.com/docuflow/records-console/internal/auditlog"
	"github.com/docuflow/records-console/internal/backend"
	"github.com/docuflow/records-console/internal/department"
	"github.com/docuflow/records-console/internal/designation"
	"github.com/docuflow/records-console/internal/folder"
	"github.com/docuflow/records-console/internal/position"
	"github.com/docuflow/records-console/internal/querycache"
	"github.com/docuflow/records-console/internal/session"
	"github.com/docuflow/records-console/internal/transport"
	webtransport "github.com/docuflow/records-console/internal/transport/web"
	"github.com/docuflow/records-console/internal/user"
	"github.com/docuflow/records-console/internal/web"
	"github.com/docuflow/records-console/pkg/logger"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server that renders the console pages`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config  *internal.Config
	Backend *backend.Client
	Router  *chi.Mux
	Logger  *slog.Logger

	SessionHandler     *session.Handler
	DepartmentHandler  *department.Handler
	DesignationHandler *designation.Handler
	UserHandler        *user.Handler
	PositionHandler    *position.Handler
	FolderHandler      *folder.Handler
	AuditLogHandler    *auditlog.Handler
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) {
	webtransport.RegisterAllRoutes(
		deps.Router,
		deps.Backend,
		deps.SessionHandler,
		deps.DepartmentHandler,
		deps.DesignationHandler,
		deps.UserHandler,
		deps.PositionHandler,
		deps.FolderHandler,
		deps.AuditLogHandler,
		deps.Logger,
	)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	lg := logger.LoggerWrapper()

	client := backend.NewClient(backend.Config{
		BaseURL:        config.Backend.BaseURL,
		RequestTimeout: config.Backend.RequestTimeout,
	}, lg)
	cache := querycache.New()
	ttl := config.Backend.CacheTTL

	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to build template renderer: %w", err)
	}
	base := transport.NewBaseHandler(lg, renderer)

	sessionService := session.NewService(client, cache, config.Session, ttl, lg)
	departmentService := department.NewService(client, cache, ttl, lg)
	designationService := designation.NewService(client, cache, ttl, lg)
	userService := user.NewService(client, cache, ttl, lg)
	positionService := position.NewService(client, cache, lg)
	folderService := folder.NewService(client, cache, ttl, lg)
	auditLogService := auditlog.NewService(client, cache, ttl, lg)

	return &Dependencies{
		Config:  config,
		Backend: client,
		Router:  chi.NewRouter(),
		Logger:  lg,

		SessionHandler:     session.NewHandler(base, sessionService),
		DepartmentHandler:  department.NewHandler(base, departmentService),
		DesignationHandler: designation.NewHandler(base, designationService),
		UserHandler:        user.NewHandler(base, userService, sessionService),
		PositionHandler:    position.NewHandler(base, positionService, userService, departmentService, designationService),
		FolderHandler:      folder.NewHandler(base, folderService, sessionService, departmentService, reviewerOptions(userService)),
		AuditLogHandler:    auditlog.NewHandler(base, auditLogService),
	}, nil
}

// reviewerOptions adapts the user list into report reviewer choices. User ids
// arrive as strings from the API; anything non-numeric is skipped.
func reviewerOptions(users *user.Service) func(ctx context.Context) []folder.Option {
	return func(ctx context.Context) []folder.Option {
		all := users.All(ctx)
		options := make([]folder.Option, 0, len(all))
		for _, u := range all {
			id, err := strconv.ParseInt(u.ID, 10, 64)
			if err != nil {
				continue
			}
			options = append(options, folder.Option{ID: id, Name: u.DisplayName()})
		}
		return options
	}
}
