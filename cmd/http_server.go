package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/frahmantamala/leave-management/api"
	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/auth"
	"github.com/frahmantamala/leave-management/internal/leave"
	leaveMemory "github.com/frahmantamala/leave-management/internal/leave/memory"
	leavePostgres "github.com/frahmantamala/leave-management/internal/leave/postgres"
	"github.com/frahmantamala/leave-management/internal/notification"
	notificationMemory "github.com/frahmantamala/leave-management/internal/notification/memory"
	notificationPostgres "github.com/frahmantamala/leave-management/internal/notification/postgres"
	"github.com/frahmantamala/leave-management/internal/transport"
	"github.com/frahmantamala/leave-management/internal/transport/middleware"
	"github.com/frahmantamala/leave-management/internal/transport/rest"
	"github.com/frahmantamala/leave-management/internal/user"
	userMemory "github.com/frahmantamala/leave-management/internal/user/memory"
	userPostgres "github.com/frahmantamala/leave-management/internal/user/postgres"
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	serverInMemory bool
	serverMigrate  bool
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the reference backend serving the leave, user and notification API`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startHTTPServer()
	},
}

func init() {
	httpServerCmd.Flags().BoolVar(&serverInMemory, "in-memory", false, "serve the demo data from memory instead of the database")
	httpServerCmd.Flags().BoolVar(&serverMigrate, "migrate", false, "apply migrations before serving")
}

type Dependencies struct {
	Config *internal.Config
	Logger *slog.Logger
	GormDB *gorm.DB
	DB     *sqlx.DB
	Router *chi.Mux
}

type backends struct {
	users         user.Backend
	leaves        leave.Backend
	notifications notification.Backend
}

func startHTTPServer() error {
	deps, err := initializeDependencies()
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	if err := setupRoutes(deps); err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "in_memory", serverInMemory)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	if deps.DB != nil {
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	}
	deps.Logger.Info("Server stopped")
	return nil
}

func initializeDependencies() (*Dependencies, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	deps := &Dependencies{
		Config: cfg,
		Logger: newLogger(cfg),
		Router: chi.NewRouter(),
	}
	if serverInMemory {
		return deps, nil
	}

	deps.GormDB, deps.DB, err = openDatabase(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if serverMigrate {
		if err := runMigrations(context.Background(), deps.DB, cfg.Database, false); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}
	return deps, nil
}

func buildBackends(deps *Dependencies, tokens user.TokenIssuer) (backends, error) {
	if deps.DB == nil {
		users, err := userMemory.NewSeededUserStore()
		if err != nil {
			return backends{}, err
		}
		return backends{
			users:         users.WithTokenIssuer(tokens),
			leaves:        leaveMemory.NewSeededLeaveStore(),
			notifications: notificationMemory.NewSeededNotificationStore(),
		}, nil
	}

	return backends{
		users:         userPostgres.NewUserRepository(deps.GormDB, tokens, deps.Config.Security.BCryptCost),
		leaves:        leavePostgres.NewLeaveRepository(deps.GormDB),
		notifications: notificationPostgres.NewNotificationRepository(deps.DB),
	}, nil
}

func setupRoutes(deps *Dependencies) error {
	cfg := deps.Config
	tokens := auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.AccessTokenDuration)

	b, err := buildBackends(deps, tokens)
	if err != nil {
		return err
	}

	var leaveOpts []leave.ServiceOption
	if cfg.Leave.StrictTransitions {
		leaveOpts = append(leaveOpts, leave.WithStrictTransitions())
	}

	base := transport.NewBaseHandler(deps.Logger)

	var healthDB *sql.DB
	component := "memory"
	if deps.DB != nil {
		healthDB = deps.DB.DB
		component = cfg.Database.Driver
	}

	validator, err := middleware.NewOpenAPIValidator(api.OpenAPISpec, rest.APIPrefix, deps.Logger)
	if err != nil {
		return fmt.Errorf("failed to load API document: %w", err)
	}

	rest.RegisterAllRoutes(deps.Router, rest.Handlers{
		Health:       rest.NewHealthHandler(base, healthDB, component),
		Auth:         auth.NewMiddleware(base, tokens),
		User:         user.NewHandler(base, user.NewService(b.users, deps.Logger)),
		Leave:        leave.NewHandler(base, leave.NewService(b.leaves, deps.Logger, leaveOpts...)),
		Notification: notification.NewHandler(base, notification.NewService(b.notifications, deps.Logger)),
	}, rest.Options{
		AllowedOrigins: splitOrigins(cfg.Server.AllowedOrigins),
		LoginLimiter:   middleware.NewRateLimiter(cfg.Server.LoginRateLimit, cfg.Server.LoginBurst),
		Validator:      validator,
		OpenAPISpec:    api.OpenAPISpec,
	}, deps.Logger)
	return nil
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
