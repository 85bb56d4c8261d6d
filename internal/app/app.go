package app

import (
	"context"
	"exam_prep_backend/internal/config"
	"exam_prep_backend/internal/controller"
	"exam_prep_backend/internal/repository"
	"exam_prep_backend/internal/service"
	"exam_prep_backend/pkg/configwatcher"
	"exam_prep_backend/pkg/database"
	"exam_prep_backend/pkg/logger"
	"exam_prep_backend/pkg/monitoring"
	"exam_prep_backend/pkg/security"
	"exam_prep_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services
	tracer   interface{ Shutdown(context.Context) error }
}

type repositories struct {
	user    *repository.UserRepository
	test    *repository.TestRepository
	attempt *repository.AttemptRepository
}

type services struct {
	auth    *service.AuthService
	user    *service.UserService
	test    *service.TestService
	ai      *service.AIService
	storage *service.StorageService
}

type controllers struct {
	auth   *controller.AuthController
	user   *controller.UserController
	test   *controller.TestController
	ai     *controller.AIController
	health *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	return &repositories{
		user:    repository.NewUserRepository(db),
		test:    repository.NewTestRepository(db, rdb),
		attempt: repository.NewAttemptRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user)
	s.test = service.NewTestService(repos.test, repos.attempt)

	// 凭据池在此处构造并注入，服务内部不读进程环境
	s.ai = service.NewAIService(cfg.AI)
	if len(cfg.AI.CredentialPool()) == 0 {
		logger.Log.Warn("no AI credentials configured, question generation disabled")
	}

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:   controller.NewAuthController(s.auth),
		user:   controller.NewUserController(s.user, s.storage),
		test:   controller.NewTestController(s.test),
		ai:     controller.NewAIController(s.ai),
		health: controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	windowMinutes := cfg.RateLimit.WindowMinutes
	if windowMinutes <= 0 {
		windowMinutes = 1
	}
	router.Use(security.RateLimiter(maxRequests, time.Duration(windowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startConfigWatcher() {
	go configwatcher.WatchConfig("configs/config.yaml", func(newCfg *config.Config) {
		a.services.ai.SetMaxQuestions(newCfg.AI.MaxQuestions)
		logger.Log.Info("config reloaded",
			zap.Int("aiMaxQuestions", newCfg.AI.MaxQuestions))
	})
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg.Server.Mode)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db, rdb)
	services := app.initServices(repos, cfg)
	app.services = services
	controllers := app.initControllers(services, db)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("exam-prep-platform", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.startConfigWatcher()

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

	// 等待中断信号优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	logger.Log.Sync()
	log.Println("Server exiting")
}
