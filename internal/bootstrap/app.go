package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/exports"
	"resume-builder/internal/resumes"
	"resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/browser"
	"resume-builder/internal/shared/cache"
	"resume-builder/internal/shared/cache/memcache"
	"resume-builder/internal/shared/cache/rediscache"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/lifecycle"
	"resume-builder/internal/shared/server"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/storage/db"
	"resume-builder/internal/shared/storage/object"
	localstore "resume-builder/internal/shared/storage/object/local"
	s3store "resume-builder/internal/shared/storage/object/s3"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/templates"
	"resume-builder/internal/usage"
	"resume-builder/resume/privacy"
)

const (
	shutdownTimeout  = 20 * time.Second
	devEncryptionKey = "resume-builder-development-key"
	devJWTSecret     = "resume-builder-development-secret"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config    config.Config
	Router    *gin.Engine
	DB        *sql.DB
	Cache     cache.Cache
	Store     object.ObjectStore
	Engine    *browser.Engine
	Lifecycle *lifecycle.Manager

	TemplatesService *templates.Service
	ResumesService   *resumes.Service
	ExportsService   *exports.Service
	UsageService     *usage.Service

	TemplatesHandler *templates.Handler
	ResumesHandler   *resumes.Handler
	ExportsHandler   *exports.Handler
	UsageHandler     *usage.Handler
}

// Build prepares shared dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	tokens, err := buildVerifier(cfg)
	if err != nil {
		return nil, err
	}
	ctx := context.Background()

	app := &App{
		Config:    cfg,
		Lifecycle: lifecycle.New(shutdownTimeout, telemetry.L()),
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.DB = sqlDB
	if sqlDB != nil {
		app.Lifecycle.Register("database", func(context.Context) error { return sqlDB.Close() })
	}

	c, err := buildCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.Cache = c
	app.Lifecycle.Register("cache", func(context.Context) error { return c.Close() })

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.Store = store

	protector, err := buildProtector(cfg)
	if err != nil {
		return nil, err
	}

	app.Engine = browser.New(browser.Options{
		ExecPath:       cfg.ChromePath,
		ContentTimeout: cfg.PDFContentTimeout,
		PDFTimeout:     cfg.PDFRenderTimeout,
		SettleDelay:    cfg.PDFSettleDelay,
	})
	app.Lifecycle.Register("pdf-engine", app.Engine.Shutdown)

	if err := buildServices(ctx, app, protector); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:    app.Config,
		Resumes:   app.ResumesHandler,
		Exports:   app.ExportsHandler,
		Templates: app.TemplatesHandler,
		Usage:     app.UsageHandler,
		Limiter:   middleware.NewRateLimiter(nil),
		Tokens:    tokens,
		Ready:     app.ready,
	})

	return app, nil
}

// buildVerifier requires JWT_SECRET outside dev-like environments.
func buildVerifier(cfg config.Config) (*auth.Verifier, error) {
	secret := strings.TrimSpace(cfg.JWTSecret)
	if secret == "" {
		if !isDevLike(cfg.Env) {
			return nil, errors.New("JWT_SECRET is required outside dev")
		}
		telemetry.Warn("bootstrap.jwt.dev_secret", nil)
		secret = devJWTSecret
	}
	return auth.NewVerifier(secret, cfg.SessionTTL)
}

// Shutdown stops registered components in reverse registration order.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Lifecycle.Shutdown(ctx)
}

func (a *App) ready(c *gin.Context) error {
	ctx := c.Request.Context()
	if err := db.Health(ctx, a.DB); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := a.Cache.Ping(ctx); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	return nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.db.memory", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	role := db.CurrentRole()
	opts := db.OptionsFromEnv(db.DefaultOptions(role))
	if role == db.RoleLambda {
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
		if err == nil {
			err = db.RunMigrations(ctx, sqlDB)
		}
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.db.memory", map[string]any{"error": err.Error()})
			if sqlDB != nil {
				_ = sqlDB.Close()
			}
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return memcache.New(cfg.CacheTTL, 2*cfg.CacheTTL), nil
	}
	rc, err := rediscache.New(cfg.RedisURL)
	if err == nil {
		err = rc.Ping(ctx)
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.cache.memory", map[string]any{"error": err.Error()})
			if rc != nil {
				_ = rc.Close()
			}
			return memcache.New(cfg.CacheTTL, 2*cfg.CacheTTL), nil
		}
		return nil, fmt.Errorf("redis: %w", err)
	}
	return rc, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.AWSRegion) == "" || strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires AWS_REGION and S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildProtector(cfg config.Config) (*privacy.Protector, error) {
	key := strings.TrimSpace(cfg.EncryptionKey)
	if key == "" {
		if !isDevLike(cfg.Env) {
			return nil, errors.New("ENCRYPTION_KEY is required")
		}
		telemetry.Warn("bootstrap.encryption.dev_key", map[string]any{"env": cfg.Env})
		key = devEncryptionKey
	}
	return privacy.NewProtector(key)
}

func buildServices(ctx context.Context, app *App, protector *privacy.Protector) error {
	var (
		templateRepo templates.Repo
		resumeRepo   resumes.Repo
		usageSvc     *usage.Service
	)
	if app.DB != nil {
		pgTemplates := &templates.PGRepo{DB: app.DB}
		for _, t := range templates.Builtins() {
			if err := pgTemplates.Upsert(ctx, t); err != nil {
				return fmt.Errorf("seed template %s: %w", t.ID, err)
			}
		}
		templateRepo = pgTemplates
		resumeRepo = &resumes.PGRepo{DB: app.DB}
		usageSvc = usage.NewPostgresService(usage.NewPGStore(app.DB))
	} else {
		templateRepo = templates.NewMemoryRepo(templates.Builtins()...)
		resumeRepo = resumes.NewMemoryRepo()
		usageSvc = usage.NewService()
	}

	templateSvc := &templates.Service{Repo: templateRepo}
	resumeSvc := &resumes.Service{
		Repo:      resumeRepo,
		Protector: protector,
		Templates: templateSvc,
		Cache:     app.Cache,
		CacheTTL:  app.Config.CacheTTL,
		Store:     app.Store,
		Downloads: usageSvc,
		ClientURL: app.Config.ClientURL,
	}
	exportSvc := &exports.Service{
		Docs:      resumeSvc,
		Renderer:  app.Engine,
		Downloads: usageSvc,
	}

	app.TemplatesService = templateSvc
	app.ResumesService = resumeSvc
	app.ExportsService = exportSvc
	app.UsageService = usageSvc
	app.TemplatesHandler = templates.NewHandler(templateSvc)
	app.ResumesHandler = resumes.NewHandler(resumeSvc)
	app.ExportsHandler = exports.NewHandler(exportSvc)
	app.UsageHandler = usage.NewHandler(usageSvc)

	if app.ResumesHandler == nil || app.ExportsHandler == nil {
		return errors.New("failed to initialize handlers")
	}
	return nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local", "test":
		return true
	default:
		return false
	}
}
