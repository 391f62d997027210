package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shenikar/resqnet/internal/config"
	"github.com/shenikar/resqnet/internal/events"
	"github.com/shenikar/resqnet/internal/geocode"
	v1 "github.com/shenikar/resqnet/internal/handler/http/v1"
	"github.com/shenikar/resqnet/internal/keepalive"
	"github.com/shenikar/resqnet/internal/observability"
	"github.com/shenikar/resqnet/internal/repository"
	"github.com/shenikar/resqnet/internal/service"
	"github.com/shenikar/resqnet/internal/storage"
	"github.com/shenikar/resqnet/internal/triage"
	"github.com/shenikar/resqnet/internal/vision"
	"github.com/shenikar/resqnet/internal/webhook"
	"github.com/shenikar/resqnet/pkg/logger"
	"github.com/shenikar/resqnet/pkg/postgres"
	redisclient "github.com/shenikar/resqnet/pkg/redis"
	"github.com/sirupsen/logrus"

	_ "github.com/shenikar/resqnet/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const (
	uploadsRoute = "/uploads"

	// Координаты адресов меняются редко
	geocodeCacheTTL = 24 * time.Hour
)

// @title ResQNet API
// @version 1.0
// @description Disaster report intake: image analysis, priority scoring and response suggestions.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func runMigrations(cfg *config.Config, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	migrationURL := cfg.DatabaseURL
	if !strings.HasPrefix(migrationURL, "pgx5://") {
		migrationURL = strings.Replace(migrationURL, "postgres://", "pgx5://", 1)
		migrationURL = strings.Replace(migrationURL, "postgresql://", "pgx5://", 1)
	}

	m, err := migrate.New(
		"file://migrations",
		migrationURL,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations applied successfully")
	return nil
}

// newImageStorage выбирает хранилище изображений. Для локального
// хранилища возвращается каталог, который нужно раздавать статикой.
func newImageStorage(ctx context.Context, cfg *config.Config) (service.ImageStorage, string, error) {
	if cfg.StorageBackend == config.StorageMinio {
		s, err := storage.NewMinioStorage(ctx, storage.MinioOptions{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			return nil, "", err
		}
		return s, "", nil
	}

	s, err := storage.NewLocalStorage(cfg.UploadDir, uploadsRoute)
	if err != nil {
		return nil, "", err
	}
	return s, s.Dir(), nil
}

func newKnowledgeBase(cfg *config.Config, log *logrus.Logger) (*triage.KnowledgeBase, error) {
	if cfg.KnowledgeBasePath == "" {
		return triage.DefaultKnowledgeBase(), nil
	}
	kb, err := triage.LoadKnowledgeBase(cfg.KnowledgeBasePath)
	if err != nil {
		return nil, err
	}
	log.Infof("Knowledge base loaded from %s", cfg.KnowledgeBasePath)
	return kb, nil
}

// newAnalyzer собирает цепочку анализаторов: внешняя модель, затем
// эвристика как запасной вариант. VISION_TIMEOUT ограничивает каждую попытку.
func newAnalyzer(cfg *config.Config, log *logrus.Logger) *vision.ChainAnalyzer {
	var analyzers []vision.Analyzer
	if cfg.VisionProvider == config.VisionOpenAI {
		analyzers = append(analyzers, vision.NewOpenAIAnalyzer(vision.OpenAIOptions{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
		}))
	}
	analyzers = append(analyzers, vision.NewHeuristicAnalyzer())
	return vision.NewChainAnalyzer(log, analyzers...).WithAttemptTimeout(cfg.VisionTimeout)
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	// Контекст для graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Запуск миграций
	if err := runMigrations(cfg, log); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Подключение к PostgreSQL
	dbpool, err := postgres.NewPostgresDB(ctx, postgres.Options{
		DSN:               cfg.DatabaseURL,
		MaxConns:          int32(cfg.DBMaxConns),
		HealthCheckPeriod: time.Minute,
	})
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer dbpool.Close()
	log.Info("Successfully connected to PostgreSQL")

	// Инициализация Redis клиента
	redisClient, err := redisclient.NewRedisClient(ctx, redisclient.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
		PoolSize: cfg.RedisPoolSize,
	})
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Info("Successfully connected to Redis")

	metrics := observability.NewMetrics()

	// Хранилище изображений
	imageStorage, uploadDir, err := newImageStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to init image storage: %v", err)
	}
	log.Infof("Image storage: %s", cfg.StorageBackend)

	// База знаний и движок оценки
	kb, err := newKnowledgeBase(cfg, log)
	if err != nil {
		log.Fatalf("Failed to load knowledge base: %v", err)
	}
	engine := triage.NewEngine(kb)

	analyzer := newAnalyzer(cfg, log)
	log.Infof("Image analyzer: %s", analyzer.Name())

	var geocoder service.Geocoder
	if cfg.MapsAPIKey != "" {
		g, err := geocode.NewGoogleGeocoder(cfg.MapsAPIKey, redisClient, geocodeCacheTTL, log)
		if err != nil {
			log.Fatalf("Failed to init geocoder: %v", err)
		}
		geocoder = g
	}

	// Публикация событий в Kafka
	var eventPublisher interface {
		service.EventPublisher
		Close() error
	} = events.NoopPublisher{}
	if cfg.KafkaEnabled {
		eventPublisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		log.Infof("Publishing report events to Kafka topic %s", cfg.KafkaTopic)
	}
	defer func() {
		if err := eventPublisher.Close(); err != nil {
			log.Errorf("Failed to close event publisher: %v", err)
		}
	}()

	// Инициализация издателя вебхуков
	webhookPublisher := webhook.NewRedisWebhookPublisher(redisClient)

	// Инициализация и запуск воркера вебхуков
	webhookWorker := webhook.NewWebhookWorker(redisClient, log, cfg, metrics)
	webhookWorker.Start(ctx)

	// Инициализация репозиториев
	reportRepo := repository.NewReportRepository(dbpool, redisClient, cfg.ReportsCacheTTL)

	// Инициализация сервисов
	reportService := service.NewReportService(service.Deps{
		Repo:     reportRepo,
		Storage:  imageStorage,
		Analyzer: analyzer,
		Engine:   engine,
		Geocoder: geocoder,
		Events:   eventPublisher,
		Webhooks: webhookPublisher,
		Metrics:  metrics,
		Logger:   log,
	})

	// Инициализация хэндлеров
	handler := v1.NewHandler(reportService, log, cfg)

	// Настройка Gin роутера
	router := gin.Default()
	router.Use(v1.CORSMiddleware(cfg.CORSAllowedOrigins))
	handler.RegisterRoot(router)
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	if uploadDir != "" {
		router.Static(uploadsRoute, uploadDir)
	}

	// Добавление маршрута для Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Запуск HTTP-сервера
	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	// Запуск сервера в горутине
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting HTTP server: %v", err)
		}
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	pinger := startKeepAlive(cfg, log, metrics)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Received shutdown signal, shutting down server...")

	if pinger != nil {
		pinger.Stop()
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server gracefully stopped")
}

// startKeepAlive запускает пингер, если задан KEEPALIVE_URL
func startKeepAlive(cfg *config.Config, log *logrus.Logger, metrics *observability.Metrics) *keepalive.Pinger {
	if cfg.KeepAliveURL == "" {
		return nil
	}
	pinger := keepalive.NewPinger(cfg.KeepAliveURL, cfg.KeepAliveSchedule, log, metrics)
	if err := pinger.Start(); err != nil {
		log.Errorf("Failed to start keep-alive pinger: %v", err)
		return nil
	}
	return pinger
}
