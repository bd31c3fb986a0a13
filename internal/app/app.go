package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studybuddy_backend/internal/config"
	"studybuddy_backend/internal/controller"
	"studybuddy_backend/internal/repository"
	"studybuddy_backend/internal/service"
	"studybuddy_backend/pkg/database"
	"studybuddy_backend/pkg/logger"
	"studybuddy_backend/pkg/monitoring"
	"studybuddy_backend/pkg/security"
	"studybuddy_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	workerCancel    context.CancelFunc
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user     *repository.UserRepository
	activity *repository.ActivityRepository
	streak   *repository.StreakRepository
	badge    *repository.BadgeRepository
}

type services struct {
	identity     *service.IdentityService
	activity     *service.ActivityService
	streak       *service.StreakService
	badge        *service.BadgeService
	notification *service.NotificationService
	worker       *service.RecomputeWorker
}

type controllers struct {
	activity *controller.ActivityController
	streak   *controller.StreakController
	badge    *controller.BadgeController
	health   *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig 配置文件热更新入口，由 configwatcher 回调
func (a *App) ApplyConfig(cfg *config.Config) {
	a.Config = cfg
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
	logger.Log.Info("Config reloaded")
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		activity: repository.NewActivityRepository(db),
		streak:   repository.NewStreakRepository(db),
		badge:    repository.NewBadgeRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.identity = service.NewIdentityService(repos.user, cfg.Engine.DefaultEmailDomain)
	s.streak = service.NewStreakService(repos.streak, repos.activity, rdb, cfg.Engine.StreakEventWindow, cfg.Engine.StreakCacheTTL)
	s.badge = service.NewBadgeService(repos.badge, repos.activity, repos.streak)
	s.notification = service.NewNotificationService(repos.badge)

	s.worker = service.NewRecomputeWorker(s.streak, s.badge, cfg.Engine.RecomputeQueueSize)
	s.activity = service.NewActivityService(repos.activity, s.identity, s.worker)

	// 引擎参数支持热更新
	a.RegisterConfigCallback(func(newCfg *config.Config) {
		s.identity.DefaultDomain = newCfg.Engine.DefaultEmailDomain
		s.streak.EventWindow = newCfg.Engine.StreakEventWindow
		s.streak.CacheTTL = newCfg.Engine.StreakCacheTTL
	})

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		activity: controller.NewActivityController(s.activity, s.identity),
		streak:   controller.NewStreakController(s.streak, s.identity),
		badge:    controller.NewBadgeController(s.badge, s.notification, s.identity),
		health:   controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 100000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(s *services) {
	ctx, cancel := context.WithCancel(context.Background())
	a.workerCancel = cancel
	s.worker.Run(ctx)
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("gamification-engine", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
			}
		}()
	}

	app.registerRoutes(router, controllers, services, repos)

	app.startBackgroundTasks(services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// 停掉后台重算，清空积压后再退出
	if a.workerCancel != nil {
		a.workerCancel()
		a.services.worker.Wait()
	}

	// 关闭服务
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
