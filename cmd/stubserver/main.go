package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clinicdesk/schedule-sync/internal/config"
	"github.com/clinicdesk/schedule-sync/internal/domain/booking"
	"github.com/clinicdesk/schedule-sync/internal/logger"
	"github.com/clinicdesk/schedule-sync/internal/stubapi"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadStub()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewNamed(cfg.AppEnv, "stubserver")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	store := stubapi.NewStore()
	seedDemoData(store)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	handler := stubapi.NewHandler(store, log)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("stub backend starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down stub backend...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("stub backend stopped")
}

// seedDemoData fills the store with a day of bookings for two providers.
func seedDemoData(store *stubapi.Store) {
	now := time.Now().UTC().Truncate(time.Hour)
	slot := func(resource, subject string, offset, length time.Duration) booking.Booking {
		return booking.Booking{
			SubjectID:  subject,
			ResourceID: resource,
			StartTime:  now.Add(offset),
			EndTime:    now.Add(offset + length),
			Status:     booking.StatusBooked,
		}
	}

	store.Seed(
		slot("provider-1", "user-100", 1*time.Hour, 30*time.Minute),
		slot("provider-1", "user-101", 3*time.Hour, 30*time.Minute),
		slot("provider-1", "user-102", 26*time.Hour, time.Hour),
		slot("provider-1", "user-103", 72*time.Hour, time.Hour),
		slot("provider-2", "user-200", 2*time.Hour, 45*time.Minute),
	)
}
