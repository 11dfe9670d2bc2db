package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"labquote/catalog"
	"labquote/config"
	"labquote/docs"
	"labquote/documents"
	"labquote/handlers"
	"labquote/jobs"
	"labquote/logger"
	"labquote/middleware"
	"labquote/models"
	"labquote/services"
	"labquote/storage"
	"labquote/urgent"
	"labquote/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

const shutdownTimeout = 30 * time.Second

func openDB(ctx context.Context, g *Globals) (*gorm.DB, error) {
	db, err := storage.Open(ctx, g.Config.DB, logger.NewGorm(g.Log, g.Config.DB.LogQueries))
	if err != nil {
		return nil, err
	}
	g.Log.Info().Str("driver", g.Config.DB.Driver).Msg("database connected")
	return db, nil
}

func loadCatalog(cfg *config.Config) (*catalog.File, error) {
	if cfg.CatalogFile == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(cfg.CatalogFile)
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowOrigins = origins
	c.AllowCredentials = true
	c.AllowHeaders = []string{
		"Content-Type", "Content-Length", "Accept-Encoding", "Accept", "Origin",
		"X-Requested-With", "Authorization", "Cache-Control", "Accept-Language",
	}
	c.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD"}
	c.ExposeHeaders = []string{"Content-Length", "Content-Type", "Content-Disposition"}
	c.MaxAge = 12 * time.Hour
	return c
}

func configureHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       5 * time.Minute,
		MaxHeaderBytes:    16 * 1024,
	}
}

type ServeCmd struct {
	AutoMigrate bool `help:"migrate tables on startup" default:"true" env:"AUTO_MIGRATE" negatable:""`
	SeedCatalog bool `help:"upsert the catalog file on startup" default:"false" env:"SEED_CATALOG"`
}

func (s *ServeCmd) Run(ctx context.Context, g *Globals) error {
	cfg := g.Config
	log := g.Log
	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	db, err := openDB(ctx, g)
	if err != nil {
		return err
	}
	defer storage.Close(db)

	if s.AutoMigrate {
		if err := storage.Migrate(ctx, db); err != nil {
			return err
		}
	}
	file, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	if s.SeedCatalog {
		res, err := catalog.Seed(ctx, db, file)
		if err != nil {
			return err
		}
		log.Info().Int("toxicity", res.Toxicity).Int("efficacy", res.Efficacy).
			Int("clinical_pathology", res.ClinicalPathology).Msg("catalog seeded")
	}

	var sender services.Sender
	if cfg.SMTP.Enabled() {
		sender = services.NewSMTPSender(cfg.SMTP)
	} else {
		log.Warn().Msg("SMTP is not configured, quotation email is disabled")
	}

	fonts, err := documents.LoadFonts(cfg.Documents.PDFFont, cfg.Documents.PDFBoldFont)
	if err != nil {
		return err
	}
	if cfg.Documents.PDFFont == "" {
		log.Warn().Msg("PDF_FONT_FILE is not set, Hangul in PDF exports renders without glyphs")
	}

	users := services.NewUserService(db)
	catalogs := services.NewCatalogService(db, file.Fees)
	quotations := services.NewQuotationService(db, catalogs, services.QuotationConfig{
		ValidDays:     cfg.Quotation.ValidDays,
		NumberRetries: cfg.Quotation.NumberRetries,
	})
	consultations := services.NewConsultationService(db)
	contracts := services.NewContractService(db)
	leads := services.NewLeadService(db)
	announcements := services.NewAnnouncementService(db)
	auth := services.NewAuthService(db, users, storage.NewSessions(db),
		utils.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL),
		cfg.Auth.AllowMultipleSessions)

	if !cli.Dev {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.Recovery(log), logger.Requests(log), cors.New(corsConfig(cfg.CORSOrigins)))

	handlers.RegisterRoutes(r, handlers.Deps{
		Auth:          auth,
		Users:         users,
		Customers:     services.NewCustomerService(db),
		Leads:         leads,
		Consultations: consultations,
		Catalog:       catalogs,
		Quotations:    quotations,
		Contracts:     contracts,
		Announcements: announcements,
		Dashboard: services.NewDashboardService(db, quotations, consultations, contracts, leads, announcements, urgent.Options{
			Horizon: cfg.Quotation.UrgentHorizon,
			Limit:   cfg.Quotation.UrgentLimit,
		}),
		Activity:   services.NewActivityService(db),
		Email:      services.NewEmailService(db, sender, cfg.SMTP, cfg.Company),
		Renderer:   documents.NewRenderer(cfg.Company).UseFonts(fonts),
		AuthConfig: cfg.Auth,
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if err := docs.Register(r, docs.Info{
		Title:       "LabQuote API",
		Description: "Quotation and contract management for non-clinical testing services.",
		Version:     g.Version,
	}); err != nil {
		return fmt.Errorf("build api docs: %w", err)
	}

	scheduler := jobs.New(log)
	if err := jobs.Register(scheduler, cfg.Jobs, quotations, auth); err != nil {
		return err
	}
	scheduler.Start()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := configureHTTPServer(cfg.Listen, r)
	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("listen", cfg.Listen).Str("version", g.Version).Msg("http server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := scheduler.Stop(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("scheduled jobs did not finish in time")
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info().Msg("server exited")
	return nil
}

type MigrateCmd struct{}

func (m *MigrateCmd) Run(ctx context.Context, g *Globals) error {
	db, err := openDB(ctx, g)
	if err != nil {
		return err
	}
	defer storage.Close(db)

	if err := storage.Migrate(ctx, db); err != nil {
		return err
	}
	g.Log.Info().Msg("migration complete")
	return nil
}

type SeedCmd struct{}

func (s *SeedCmd) Run(ctx context.Context, g *Globals) error {
	file, err := loadCatalog(g.Config)
	if err != nil {
		return err
	}
	db, err := openDB(ctx, g)
	if err != nil {
		return err
	}
	defer storage.Close(db)

	if err := storage.Migrate(ctx, db); err != nil {
		return err
	}
	res, err := catalog.Seed(ctx, db, file)
	if err != nil {
		return err
	}
	g.Log.Info().Int("toxicity", res.Toxicity).Int("efficacy", res.Efficacy).
		Int("clinical_pathology", res.ClinicalPathology).Msg("catalog seeded")
	return nil
}

type CreateAdminCmd struct {
	Email    string `help:"admin email" required:"" env:"ADMIN_EMAIL"`
	Name     string `help:"display name" default:"Administrator" env:"ADMIN_NAME"`
	Code     string `help:"two-letter user code used in quotation numbers" default:"AD" env:"ADMIN_CODE"`
	Password string `help:"initial password" required:"" env:"ADMIN_PASSWORD"`
}

func (a *CreateAdminCmd) Run(ctx context.Context, g *Globals) error {
	db, err := openDB(ctx, g)
	if err != nil {
		return err
	}
	defer storage.Close(db)

	if err := storage.Migrate(ctx, db); err != nil {
		return err
	}
	user, created, err := services.NewUserService(db).EnsureAdmin(ctx, models.UserRequest{
		Email:    a.Email,
		Password: a.Password,
		Name:     a.Name,
		UserCode: a.Code,
	})
	if err != nil {
		return err
	}
	if !created {
		g.Log.Info().Msg("users already exist, nothing to do")
		return nil
	}
	g.Log.Info().Uint("user_id", user.ID).Str("email", user.Email).Msg("admin created")
	return nil
}
