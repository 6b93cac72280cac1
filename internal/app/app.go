package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"skilltree_backend/internal/config"
	"skilltree_backend/internal/controller"
	"skilltree_backend/internal/repository"
	"skilltree_backend/internal/service"
	"skilltree_backend/internal/util"
	"skilltree_backend/pkg/configwatcher"
	"skilltree_backend/pkg/database"
	"skilltree_backend/pkg/logger"
	"skilltree_backend/pkg/monitoring"
	"skilltree_backend/pkg/security"
	"skilltree_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const configFile = "configs/config.yaml"

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client

	mu              sync.RWMutex
	services        *services
	rateLimiter     *security.RateLimiter
	tracerProvider  *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
	stop            chan struct{}
}

type repositories struct {
	user        *repository.UserRepository
	skill       *repository.SkillRepository
	hierarchy   *repository.HierarchyRepository
	composition *repository.CompositionRepository
	skilltree   *repository.SkilltreeRepository
	completion  *repository.CompletionRepository
	evaluation  *repository.EvaluationRepository
}

type services struct {
	auth        *service.AuthService
	storage     *service.StorageService
	orders      *service.OrderManager
	deleter     *service.DeletionService
	skill       *service.SkillService
	composition *service.CompositionService
	progress    *service.ProgressService
	evaluation  *service.EvaluationService
}

type controllers struct {
	auth        *controller.AuthController
	composition *controller.CompositionController
	skill       *controller.SkillController
	progress    *controller.ProgressController
	evaluation  *controller.EvaluationController
	admin       *controller.AdminController
	health      *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// currentConfig 返回最近一次加载的配置
func (a *App) currentConfig() *config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.Config
}

func (a *App) jwtSecret() string {
	return a.currentConfig().JWT.Secret
}

func (a *App) reloadConfig(cfg *config.Config) {
	a.mu.Lock()
	a.Config = cfg
	a.mu.Unlock()
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:        repository.NewUserRepository(db),
		skill:       repository.NewSkillRepository(db),
		hierarchy:   repository.NewHierarchyRepository(db),
		composition: repository.NewCompositionRepository(db),
		skilltree:   repository.NewSkilltreeRepository(db),
		completion:  repository.NewCompletionRepository(db),
		evaluation:  repository.NewEvaluationRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	seed, err := service.LoadSeed(cfg.Skilltree.SeedFile)
	if err != nil {
		logger.Log.Warn("Failed to load seed file, using built-in example", zap.String("file", cfg.Skilltree.SeedFile), zap.Error(err))
		seed = service.DefaultSeed()
	}

	// redis 不可用时不使用缓存，订阅接口随之不可用
	var cache service.CompletionCache
	if rdb != nil {
		cache = repository.NewCompletionCache(rdb, cfg.Skilltree.CacheTTL())
	}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg.JWT)
	s.orders = service.NewOrderManager(repos.hierarchy)
	s.deleter = service.NewDeletionService(repos.hierarchy)
	s.skill = service.NewSkillService(repos.skill, repos.skilltree, s.orders, s.deleter, cfg.Skilltree)
	s.composition = service.NewCompositionService(repos.composition, repos.skilltree, s.skill, s.orders, s.deleter, seed)
	s.progress = service.NewProgressService(repos.completion, repos.skill, cache)
	s.evaluation = service.NewEvaluationService(repos.evaluation, repos.composition, repos.skilltree, s.skill)

	a.RegisterConfigCallback(func(c *config.Config) {
		s.skill.UpdateConfig(c.Skilltree)
		s.auth.UpdateConfig(c.JWT)
	})
	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:        controller.NewAuthController(s.auth),
		composition: controller.NewCompositionController(s.composition),
		skill:       controller.NewSkillController(s.skill, s.storage),
		progress:    controller.NewProgressController(s.progress),
		evaluation:  controller.NewEvaluationController(s.evaluation),
		admin:       controller.NewAdminController(s.orders),
		health:      controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	a.rateLimiter = security.NewRateLimiter(cfg.RateLimit)
	a.RegisterConfigCallback(func(c *config.Config) {
		a.rateLimiter.Update(c.RateLimit)
	})
	router.Use(a.rateLimiter.Middleware())

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks() {
	go a.rateLimiter.Cleanup(a.stop)

	go func() {
		if err := configwatcher.WatchConfig(configFile, a.stop, a.reloadConfig); err != nil {
			logger.Log.Error("Config watcher stopped", zap.Error(err))
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if cfg.ForceMigrate || cfg.Server.Mode != "release" {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	app := &App{
		Config: cfg,
		DB:     db,
		stop:   make(chan struct{}),
	}
	if cfg.MigrateOnly {
		return app
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Warn("Redis unavailable, completion cache disabled", zap.Error(err))
		rdb = nil
	}
	app.Redis = rdb

	if err := util.RegisterValidators(); err != nil {
		logger.Log.Fatal("Failed to register validators", zap.Error(err))
	}

	repos := app.initRepositories(db)
	app.services = app.initServices(repos, cfg, rdb)
	ctrls := app.initControllers(app.services, db, rdb)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("skilltree-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracerProvider = tp
	}

	app.registerRoutes(router, ctrls)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks()

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	close(a.stop)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
}
