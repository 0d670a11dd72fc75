package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lms_backend/internal/config"
	"lms_backend/internal/controller"
	"lms_backend/internal/repository"
	"lms_backend/internal/service"
	"lms_backend/pkg/database"
	"lms_backend/pkg/logger"
	"lms_backend/pkg/monitoring"
	"lms_backend/pkg/security"
	"lms_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client

	tracerProvider *sdktrace.TracerProvider
}

type repositories struct {
	profile    *repository.ProfileRepository
	course     *repository.CourseRepository
	chapter    *repository.ChapterRepository
	module     *repository.ModuleRepository
	purchase   *repository.PurchaseRepository
	progress   *repository.ProgressRepository
	message    *repository.MessageRepository
	readCursor *repository.ReadCursorRepository
	category   *repository.CategoryRepository
	attachment *repository.AttachmentRepository
	lead       *repository.LeadRepository
}

type services struct {
	profile  *service.ProfileService
	access   *service.AccessService
	progress *service.ProgressService
	thread   *service.ThreadService
	course   *service.CourseService
	chapter  *service.ChapterService
	checkout *service.CheckoutService
	storage  *service.StorageService
	media    *service.MediaService
	lead     *service.LeadService
}

type controllers struct {
	profile  *controller.ProfileController
	course   *controller.CourseController
	chapter  *controller.ChapterController
	message  *controller.MessageController
	checkout *controller.CheckoutController
	upload   *controller.UploadController
	lead     *controller.LeadController
	health   *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	return &repositories{
		profile:    repository.NewProfileRepository(db),
		course:     repository.NewCourseRepository(db),
		chapter:    repository.NewChapterRepository(db),
		module:     repository.NewModuleRepository(db),
		purchase:   repository.NewPurchaseRepository(db),
		progress:   repository.NewProgressRepository(db),
		message:    repository.NewMessageRepository(db, rdb),
		readCursor: repository.NewReadCursorRepository(db),
		category:   repository.NewCategoryRepository(db),
		attachment: repository.NewAttachmentRepository(db),
		lead:       repository.NewLeadRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.media = service.NewMediaService(s.storage, cfg)
	s.profile = service.NewProfileService(repos.profile)
	s.access = service.NewAccessService(repos.course, repos.chapter, repos.module, repos.purchase)
	s.progress = service.NewProgressService(repos.chapter, repos.progress, s.access)
	s.thread = service.NewThreadService(repos.message, repos.readCursor, repos.profile, repos.course, repos.purchase, s.access)
	s.course = service.NewCourseService(repos.course, repos.category, repos.attachment, repos.profile, repos.purchase, s.progress, s.access)
	s.chapter = service.NewChapterService(repos.chapter, repos.course, repos.module, repos.progress, s.access)
	s.checkout = service.NewCheckoutService(repos.course, repos.purchase, service.NewRazorpayGateway(&cfg.Razorpay), &cfg.Razorpay)
	s.lead = service.NewLeadService(repos.lead)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		profile:  controller.NewProfileController(s.profile),
		course:   controller.NewCourseController(s.course, s.access),
		chapter:  controller.NewChapterController(s.chapter, s.access, s.progress),
		message:  controller.NewMessageController(s.thread),
		checkout: controller.NewCheckoutController(s.checkout),
		upload:   controller.NewUploadController(s.media),
		lead:     controller.NewLeadController(s.lead),
		health:   controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 10000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(cfg)
	if err != nil {
		// 聊天缓存可降级，Redis 不可用时直接回源数据库
		logger.Log.Warn("Redis unavailable, thread cache disabled", zap.Error(err))
		rdb = nil
	}

	if cfg.Server.Mode == "debug" || cfg.ForceMigrate {
		if err := database.AutoMigrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	if cfg.MigrateOnly {
		return app
	}

	repos := app.initRepositories(db, rdb)
	svcs := app.initServices(repos, cfg)
	ctrls := app.initControllers(svcs, db, rdb)

	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("lms-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracerProvider = tp
	}

	app.registerRoutes(router, ctrls, svcs, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	log.Println("Server exiting")
}
