package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/internal/config"
	"github.com/BuzzLyutic/task-tracker/internal/handler"
	"github.com/BuzzLyutic/task-tracker/internal/repo"
	"github.com/BuzzLyutic/task-tracker/internal/service"
	"github.com/BuzzLyutic/task-tracker/internal/view"
)

func main() {
	// Загрузка конфигурации
	cfg := config.Load()

	// Подключаем логгер
	logger, err := newLogger(cfg.Debug)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	// Подключаем БД
	ctx := context.Background()
	store, err := repo.Open(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("Failed to open the Database", zap.Error(err)) // Fatal потому что дальнейшая работа теряет смысл
	}
	defer store.Close() // Запланированное закрытие соединения

	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatal("Failed to prepare the Database schema", zap.Error(err))
	}
	logger.Info("Database is ready")

	views, err := view.New()
	if err != nil {
		logger.Fatal("Failed to parse templates", zap.Error(err))
	}

	taskService := service.NewTaskService(store)
	taskHandler := handler.NewTaskHandler(taskService, views, logger)

	srv := http.Server{ // Создаем сервер
		Addr:         ":" + cfg.Port,
		Handler:      handler.NewRouter(taskHandler, logger),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() { // Запуск сервера и обработка ошибок
		logger.Info("Server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
	}
	logger.Info("Server stopped successfully")
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
