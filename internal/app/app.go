package app

import (
	"classroom_backend/internal/config"
	"classroom_backend/internal/controller"
	"classroom_backend/internal/repository"
	"classroom_backend/internal/repository/memory"
	"classroom_backend/internal/service"
	"classroom_backend/internal/util"
	"classroom_backend/pkg/configwatcher"
	"classroom_backend/pkg/database"
	"classroom_backend/pkg/logger"
	"classroom_backend/pkg/monitoring"
	"classroom_backend/pkg/security"
	"classroom_backend/pkg/tracing"
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config    *config.Config
	ConfigDir string
	Router    *gin.Engine
	DB        *gorm.DB
	Redis     *redis.Client
	Settings  *service.GradingSettings

	limiter         *security.IPRateLimiter
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

// stores 存储实现：SQL 驱动下为各 gorm repository，memory 驱动下都指向同一个内存存储
type stores struct {
	users       service.AccountStore
	courses     service.CourseStore
	materials   service.MaterialStore
	quizzes     service.QuizStore
	submissions service.SubmissionStore
	grades      service.GradeStore
	comments    service.CommentStore
	cache       service.ReportCache
}

type services struct {
	auth       *service.AuthService
	course     *service.CourseService
	comment    *service.CommentService
	quiz       *service.QuizService
	submission *service.SubmissionService
	report     *service.ReportService
	roster     *service.RosterService
}

type controllers struct {
	auth       *controller.AuthController
	course     *controller.CourseController
	comment    *controller.CommentController
	submission *controller.SubmissionController
	grade      *controller.GradeController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) applyConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) initStores(cfg *config.Config) (*stores, error) {
	if cfg.Database.Driver == util.DriverMemory {
		store := memory.NewStore()
		if cfg.Server.Mode != "release" {
			if err := seedDemoAccounts(context.Background(), store); err != nil {
				return nil, err
			}
		}
		return &stores{
			users:       store,
			courses:     store,
			materials:   store,
			quizzes:     store,
			submissions: store,
			grades:      store,
			comments:    store,
			cache:       a.reportCache(),
		}, nil
	}

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode, cfg.ForceMigrate)
	if err != nil {
		return nil, err
	}
	a.DB = db

	return &stores{
		users:       repository.NewUserRepository(db),
		courses:     repository.NewCourseRepository(db),
		materials:   repository.NewMaterialRepository(db),
		quizzes:     repository.NewQuizRepository(db),
		submissions: repository.NewSubmissionRepository(db),
		grades:      repository.NewGradeRepository(db),
		comments:    repository.NewCommentRepository(db),
		cache:       a.reportCache(),
	}, nil
}

// reportCache 未启用 redis 时返回 nil 接口
func (a *App) reportCache() service.ReportCache {
	if a.Redis == nil {
		return nil
	}
	return repository.NewReportCache(a.Redis)
}

func (a *App) initServices(st *stores, cfg *config.Config) (*services, error) {
	files, err := service.NewFileLinker(&cfg.Storage)
	if err != nil {
		return nil, err
	}

	return &services{
		auth:       service.NewAuthService(st.users, &cfg.JWT),
		course:     service.NewCourseService(st.courses, st.materials, st.users),
		comment:    service.NewCommentService(st.comments, st.materials, st.users),
		quiz:       service.NewQuizService(st.quizzes, st.courses, st.grades, st.cache),
		submission: service.NewSubmissionService(st.submissions, st.materials, st.users, st.cache),
		report:     service.NewReportService(st.grades, st.materials, st.quizzes, st.cache, a.Settings),
		roster: service.NewRosterService(st.courses, st.users, st.quizzes, st.materials,
			st.submissions, st.grades, files, a.Settings),
	}, nil
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth),
		course:     controller.NewCourseController(s.course, s.quiz),
		comment:    controller.NewCommentController(s.comment),
		submission: controller.NewSubmissionController(s.submission),
		grade:      controller.NewGradeController(s.quiz, s.submission, s.report, s.roster),
		health:     controller.NewHealthController(a.DB),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	a.limiter = security.NewIPRateLimiter(cfg.RateLimit.MaxRequests, window)
	router.Use(a.limiter.Middleware())

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) (*App, error) {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	app, err := newApp(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("classroom-grading", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			return nil, err
		}
		app.tracer = tp
	}
	return app, nil
}

func newApp(cfg *config.Config) (*App, error) {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	app := &App{
		Config:    cfg,
		ConfigDir: "configs",
		Settings:  service.NewGradingSettings(cfg.Grading),
	}

	if cfg.Redis.Enabled {
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			return nil, err
		}
		app.Redis = rdb
	}

	st, err := app.initStores(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.MigrateOnly {
		return app, nil
	}

	svcs, err := app.initServices(st, cfg)
	if err != nil {
		return nil, err
	}
	ctrls := app.initControllers(svcs)

	// 评分参数热更新
	app.RegisterConfigCallback(func(newCfg *config.Config) {
		app.Settings.Update(newCfg.Grading)
		logger.Log.Info("grading settings reloaded",
			zap.Float64("lowGradeThreshold", newCfg.Grading.LowGradeThreshold),
			zap.Duration("rosterTimeout", newCfg.Grading.RosterTimeout),
			zap.Int("rosterWorkers", newCfg.Grading.RosterWorkers),
		)
	})

	// 监控初始化
	monitoring.Init()

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, ctrls, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app, nil
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	go a.limiter.Cleanup(ctx, 5*time.Minute)

	if err := configwatcher.Watch(ctx, a.ConfigDir, time.Second, a.applyConfig); err != nil {
		logger.Log.Warn("config hot reload disabled", zap.Error(err))
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
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
}
