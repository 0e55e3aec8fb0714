package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/clinicdesk/schedule-sync/internal/buckets"
	"github.com/clinicdesk/schedule-sync/internal/cache"
	"github.com/clinicdesk/schedule-sync/internal/config"
	"github.com/clinicdesk/schedule-sync/internal/connectivity"
	"github.com/clinicdesk/schedule-sync/internal/domain/booking"
	"github.com/clinicdesk/schedule-sync/internal/logger"
	"github.com/clinicdesk/schedule-sync/internal/remote"
	"github.com/clinicdesk/schedule-sync/internal/schedule"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewNamed(cfg.AppEnv, "syncdemo")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	var monitor connectivity.Monitor
	if cfg.ProbeURL != "" {
		probe := connectivity.NewProbeMonitor(cfg.ProbeURL, cfg.ProbeInterval, log)
		probe.Start()
		defer probe.Stop()
		monitor = probe
	} else {
		monitor = connectivity.NewManualMonitor(true)
	}

	backend := remote.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout, log)
	store := cache.NewStore(log)

	svc := schedule.NewService(backend, store, monitor, schedule.Options{
		ReplayBackoff:     cfg.ReplayBackoff,
		ReplayMaxAttempts: cfg.ReplayMaxAttempts,
	}, log)
	defer svc.Close()

	unsubState := svc.SubscribeState(func(state schedule.SyncState) {
		log.Info("sync state", zap.String("state", string(state)))
	})
	defer unsubState()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now()
	if err := svc.Refresh(ctx, "provider-1", now.AddDate(0, 0, -1), now.AddDate(0, 0, 7)); err != nil {
		log.Fatal("refresh failed", zap.Error(err))
	}

	printSections(buckets.Partition(store.All(), now))
}

func printSections(s buckets.Sections) {
	fmt.Println("== Next Up ==")
	if s.NextUp != nil {
		printBooking(*s.NextUp)
	}
	fmt.Println("== Later Today ==")
	for _, b := range s.LaterToday {
		printBooking(b)
	}
	fmt.Println("== Tomorrow ==")
	for _, b := range s.Tomorrow {
		printBooking(b)
	}
	fmt.Println("== Upcoming ==")
	for _, b := range s.Upcoming {
		printBooking(b)
	}
}

func printBooking(b booking.Booking) {
	fmt.Printf("  %s  %s - %s  %-12s %s\n",
		b.ConfirmationRef,
		b.StartTime.Local().Format("Mon 15:04"),
		b.EndTime.Local().Format("15:04"),
		b.Status,
		b.SubjectID,
	)
}
