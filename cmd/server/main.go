package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"KbjuCoachService/config"
	"KbjuCoachService/internal/database/seed"
	"KbjuCoachService/internal/delivery/httpapi"
	"KbjuCoachService/internal/dialog"
	"KbjuCoachService/internal/repository/postgres"
	"KbjuCoachService/internal/repository/redis"
	"KbjuCoachService/internal/scheduler"
	"KbjuCoachService/internal/service"
	"KbjuCoachService/pkg/database"
	"KbjuCoachService/pkg/logger"
	"KbjuCoachService/pkg/server"
)

// Версия сервиса
const (
	ServiceVersion = "1.0.0"
)

func main() {
	// Переменные окружения из .env, если файл есть
	_ = godotenv.Load()

	// Инициализация логгера
	log := logger.NewLogger()
	log.Info("Запуск сервиса учета питания", zap.String("version", ServiceVersion))

	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Не удалось загрузить конфигурацию", zap.Error(err))
	}

	// Определение номеров портов
	httpPort := cfg.HTTP.Port
	healthPort := httpPort + 100
	metricsPort := httpPort + 200

	// Создаем механизм graceful shutdown
	gracefulShutdown := server.NewGracefulShutdown(log, 30*time.Second)

	// Подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Postgres)
	if err != nil {
		log.Fatal("Не удалось подключиться к PostgreSQL", zap.Error(err))
	}
	log.Info("Подключение к PostgreSQL установлено")

	// Получаем базовое подключение к PostgreSQL для закрытия
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("Не удалось получить экземпляр SQL DB", zap.Error(err))
	}

	// Добавляем закрытие соединения с PostgreSQL при завершении
	gracefulShutdown.AddShutdownFunc(func(ctx context.Context) error {
		log.Info("Закрытие соединения с PostgreSQL")
		return sqlDB.Close()
	})

	// Тестовые данные в среде разработки
	seeder := seed.NewDevEnvironmentSeeder(db, log)
	if err := seeder.SeedAllDevData(context.Background()); err != nil {
		log.Warn("Не удалось заполнить тестовые данные", zap.Error(err))
	}

	// Подключение к Redis
	redisClient, err := database.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Fatal("Не удалось подключиться к Redis", zap.Error(err))
	}
	log.Info("Подключение к Redis установлено")

	// Добавляем закрытие соединения с Redis при завершении
	gracefulShutdown.AddShutdownFunc(func(ctx context.Context) error {
		log.Info("Закрытие соединения с Redis")
		return redisClient.Close()
	})

	// Создаем проверку здоровья баз данных
	healthChecker := database.NewDatabaseHealthChecker(db, redisClient, log)

	// Запускаем сервер для метрик Prometheus
	metricsServer := server.MetricsServer(strconv.Itoa(metricsPort))

	// Добавляем остановку сервера метрик при завершении
	gracefulShutdown.AddShutdownFunc(func(ctx context.Context) error {
		log.Info("Остановка сервера метрик")
		return metricsServer.Shutdown(ctx)
	})

	// Планировщик воронки приглашения на консультацию
	jobScheduler := scheduler.NewScheduler(log)
	gracefulShutdown.AddShutdownFunc(func(ctx context.Context) error {
		log.Info("Остановка планировщика")
		jobScheduler.Shutdown()
		return nil
	})

	notifier := scheduler.NewLogNotifier(log)
	funnel := scheduler.NewFunnel(jobScheduler, notifier, cfg.Funnel, log)

	// Инициализация репозиториев
	userRepo := postgres.NewUserRepository(db)
	recordRepo := postgres.NewResilientRecordRepository(db, redisClient, log)
	foodRepo := postgres.NewFoodRepository(db)
	cacheRepo := redis.NewResilientCacheRepository(redisClient, db, log)

	// Инициализация сервисов и движка диалога
	profileService := service.NewProfileService(userRepo, recordRepo, foodRepo, cacheRepo, funnel, log)
	progressService := service.NewProgressService(userRepo, recordRepo, log)
	engine := dialog.NewEngine(cacheRepo, profileService, log)

	// Маршруты внешнего контракта
	handler := httpapi.NewHandler(engine, profileService, progressService, log)
	router := httpapi.NewRouter(handler, log)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", httpPort),
		Handler: router,
	}

	// Создаем и запускаем HTTP сервер для проверки здоровья
	healthCheck := server.NewHealthCheck(healthChecker, log, ServiceVersion)
	healthCheck.StartServer(healthPort)

	// Добавляем остановку HTTP сервера для проверки здоровья при завершении
	gracefulShutdown.AddShutdownFunc(func(ctx context.Context) error {
		log.Info("Остановка сервера проверки здоровья")
		return healthCheck.Stop(ctx)
	})

	// Добавляем остановку основного HTTP сервера при завершении
	gracefulShutdown.AddShutdownFunc(func(ctx context.Context) error {
		log.Info("Остановка HTTP сервера")
		return httpServer.Shutdown(ctx)
	})

	// Запуск HTTP сервера в отдельной горутине
	go func() {
		log.Info("Запуск HTTP сервера", zap.Int("port", httpPort))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Не удалось запустить сервер", zap.Error(err))
		}
	}()

	// Логируем информацию о версии и PID
	hostname, _ := os.Hostname()
	log.Info("Сервис успешно запущен",
		zap.Int("http_port", httpPort),
		zap.Int("health_port", healthPort),
		zap.Int("metrics_port", metricsPort),
		zap.String("version", ServiceVersion),
		zap.Int("pid", os.Getpid()),
		zap.String("hostname", hostname))

	// Ожидаем сигнала остановки
	gracefulShutdown.Wait()
	log.Info("Завершение работы сервиса выполнено")
}
