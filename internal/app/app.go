package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"virtual_classroom_backend/internal/config"
	"virtual_classroom_backend/internal/controller"
	"virtual_classroom_backend/internal/repository"
	"virtual_classroom_backend/internal/service"
	"virtual_classroom_backend/internal/session"
	"virtual_classroom_backend/pkg/database"
	"virtual_classroom_backend/pkg/logger"
	"virtual_classroom_backend/pkg/monitoring"
	"virtual_classroom_backend/pkg/security"
	"virtual_classroom_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	Redis    *redis.Client
	events   *session.Queue
	services *services
}

type repositories struct {
	roster  *repository.RosterRepository
	chatLog *repository.ChatLogRepository
}

type services struct {
	storage    *service.StorageService
	media      *service.MediaService
	ai         *service.AIService
	chat       *service.ChatService
	classrooms *service.ClassroomService
	onboarding *service.OnboardingService
	pump       *service.EventPump
	hub        *service.SessionHub
}

type controllers struct {
	onboarding *controller.OnboardingController
	classroom  *controller.ClassroomController
	instructor *controller.InstructorController
	chat       *controller.ChatController
	health     *controller.HealthController
}

func (a *App) initRepositories(rdb *redis.Client) *repositories {
	roster := repository.NewRosterRepository()
	repository.SeedDemo(roster)
	return &repositories{
		roster:  roster,
		chatLog: repository.NewChatLogRepository(rdb),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) (*services, error) {
	s := &services{}

	storage, err := service.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}
	s.storage = storage
	s.media = service.NewMediaService(storage, &cfg.Media)
	s.ai = service.NewAIService(cfg.AI)

	s.hub = service.NewSessionHub()
	go s.hub.Run()

	policy := service.PolicyFromConfig(&cfg.Session)
	player := service.NewHubTonePlayer(s.hub, 16000)
	s.classrooms = service.NewClassroomService(repos.roster, a.events, player, policy, logger.Log)
	s.onboarding = service.NewOnboardingService(repos.roster, s.media, s.classrooms, a.events, policy, cfg.JWT, logger.Log)
	s.chat = service.NewChatService(s.ai, repos.chatLog, a.events, cfg.Session.ChatMessagesPerMinute, cfg.Session.ChatBurst)

	s.pump = service.NewEventPump(a.events, repos.roster, s.classrooms, s.chat, repos.chatLog, s.hub, logger.Log)
	go s.pump.Run()

	return s, nil
}

func (a *App) initControllers(s *services, repos *repositories) *controllers {
	return &controllers{
		onboarding: controller.NewOnboardingController(s.onboarding),
		classroom:  controller.NewClassroomController(s.classrooms),
		instructor: controller.NewInstructorController(s.onboarding, s.classrooms),
		chat:       controller.NewChatController(s.chat, repos.roster),
		health:     controller.NewHealthController(a.Redis),
	}
}

// ApplyConfig pushes the runtime-safe parts of a reloaded config into the
// running services. Session timing and transport settings stay fixed for the
// process lifetime.
func (a *App) ApplyConfig(cfg *config.Config) {
	if a.services != nil && a.services.ai != nil {
		a.services.ai.UpdateConfig(cfg.AI)
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	router.Use(func(c *gin.Context) {
		c.Set("config", cfg)
		c.Next()
	})

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		client, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		}
		rdb = client
	}

	queueSize := cfg.Session.EventQueueSize
	if queueSize <= 0 {
		queueSize = 256
	}

	app := &App{
		Config: cfg,
		Redis:  rdb,
		events: session.NewQueue(queueSize, logger.Log),
	}

	repos := app.initRepositories(rdb)
	services, err := app.initServices(repos, cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize services", zap.Error(err))
	}
	app.services = services

	// Probe local course media so video items carry real durations, and flag
	// an unplayable terms video before onboarding gates on it.
	for _, id := range []string{"course-dwi", "course-aepm"} {
		if course, err := repos.roster.GetCourse(id); err == nil {
			services.media.ResolveDurations(course)
			if err := services.media.ValidateTermsVideo(course); err != nil {
				logger.Log.Warn("terms video unplayable",
					zap.String("course", course.ID),
					zap.Error(err))
			}
		}
	}

	controllers := app.initControllers(services, repos)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("virtual-classroom", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

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

	if a.services != nil && a.services.hub != nil {
		a.services.hub.Stop()
	}
	a.events.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
