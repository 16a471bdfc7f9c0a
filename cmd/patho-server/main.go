package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/patho/patho/internal/config"
	"github.com/patho/patho/internal/domain/booking"
	"github.com/patho/patho/internal/domain/catalog"
	"github.com/patho/patho/internal/domain/identity"
	"github.com/patho/patho/internal/domain/partner"
	"github.com/patho/patho/internal/platform/auth"
	"github.com/patho/patho/internal/platform/db"
	"github.com/patho/patho/internal/platform/middleware"
	"github.com/patho/patho/internal/platform/notification"
	"github.com/patho/patho/internal/platform/realtime"
)

// catalogAdapter exposes catalog data through the booking.CatalogReader
// interface, avoiding a circular import between the two domains.
type catalogAdapter struct {
	svc *catalog.Service
}

func (a *catalogAdapter) TestInfo(ctx context.Context, testID uuid.UUID) (*booking.TestInfo, error) {
	t, err := a.svc.GetTest(ctx, testID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, booking.ErrNotFound
		}
		return nil, err
	}
	info := &booking.TestInfo{
		ID:    t.ID,
		Name:  t.Name,
		Price: t.Price,
		LabID: t.LabID,
	}
	if t.LabID != nil {
		if l, err := a.svc.GetLab(ctx, *t.LabID); err == nil {
			info.LabName = l.Name
		}
	}
	return info, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "patho-server",
		Short: "Diagnostic lab booking API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(adminCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

// adminCmd provisions roles from the command line. The first admin has to be
// granted here since the HTTP grant endpoint itself requires an admin.
func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin users",
	}

	grantCmd := &cobra.Command{
		Use:   "grant",
		Short: "Grant the admin role to a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			userStr, _ := cmd.Flags().GetString("user")
			userID, err := uuid.Parse(userStr)
			if err != nil {
				return fmt.Errorf("--user must be a valid UUID: %w", err)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
			svc := identity.NewService(identity.NewProfileRepoPG(pool), identity.NewRoleRepoPG(pool), logger)
			if err := svc.GrantRole(ctx, userID, identity.RoleAdmin); err != nil {
				return err
			}

			fmt.Printf("Granted admin to %s\n", userID)
			return nil
		},
	}
	grantCmd.Flags().String("user", "", "User UUID to grant the admin role")
	cmd.AddCommand(grantCmd)

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	e.Use(middleware.RequestTimeout(cfg.Timeout()))

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}

	// Auth middleware for the authenticated groups. The public group stays
	// open so labs, tests and partner applications are browsable without an
	// account.
	var authMW echo.MiddlewareFunc
	if cfg.IsDev() {
		authMW = auth.DevAuthMiddleware()
	} else {
		authMW = auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			JWKSURL:    cfg.AuthJWKSURL,
			SigningKey: []byte(cfg.JWTSigningKey),
		})
	}

	public := e.Group("/api/v1")
	public.Use(middleware.RateLimit(rateLimitCfg))

	api := e.Group("/api/v1")
	api.Use(middleware.RateLimit(rateLimitCfg))
	api.Use(authMW)

	admin := e.Group("/api/v1/admin")
	admin.Use(middleware.RateLimit(rateLimitCfg))
	admin.Use(authMW)
	admin.Use(auth.RequireRole("admin"))

	// Realtime change feed
	hub := realtime.NewHub()
	feed := realtime.NewFeedHandler(hub)
	feed.RegisterRoutes(e.Group(""))

	// Notifications
	mailer := notification.NewManager(
		&notification.LogEmailSender{Logger: logger},
		&notification.LogSMSSender{Logger: logger},
		notification.NewTemplateEngine(),
	)
	notifyHandler := notification.NewHandler(mailer)
	notifyHandler.RegisterRoutes(admin)

	// Identity domain (also the role gate for admin actions)
	identitySvc := identity.NewService(identity.NewProfileRepoPG(pool), identity.NewRoleRepoPG(pool), logger)
	identityHandler := identity.NewHandler(identitySvc)
	identityHandler.RegisterRoutes(api, admin)

	// Catalog domain
	catalogSvc := catalog.NewService(catalog.NewLabRepoPG(pool), catalog.NewTestRepoPG(pool), hub, logger)
	catalogHandler := catalog.NewHandler(catalogSvc)
	catalogHandler.RegisterRoutes(public, admin)

	// Booking domain
	bookingSvc := booking.NewService(
		booking.NewRepoPG(pool),
		&catalogAdapter{svc: catalogSvc},
		identitySvc,
		mailer,
		hub,
		logger,
	)
	bookingHandler := booking.NewHandler(bookingSvc)
	bookingHandler.RegisterRoutes(api, admin)

	// Partner domain
	partnerSvc := partner.NewService(partner.NewRepoPG(pool), identitySvc, mailer, hub, logger)
	partnerHandler := partner.NewHandler(partnerSvc)
	partnerHandler.RegisterRoutes(public, admin)

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
