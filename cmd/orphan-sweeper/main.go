package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/sorrisolabs/clinic-assistant/internal/appointment"
	"github.com/sorrisolabs/clinic-assistant/internal/calendar"
	"github.com/sorrisolabs/clinic-assistant/internal/config"
	"github.com/sorrisolabs/clinic-assistant/internal/db"
)

// The sweeper retries calendar-event deletions whose in-turn compensation
// failed, so orphaned events eventually disappear from the agenda.
func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("orphan-sweeper starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running orphan sweeper in env=%s interval=%s", cfg.Env, cfg.SweepInterval)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatalf("postgres connection error: %v", err)
	}
	defer pgPool.Close()
	log.Println("connected to Postgres")

	gateway, err := calendar.NewGoogleGateway(rootCtx, cfg.CredentialsFile, cfg.CalendarID, cfg.ClinicTimezone)
	if err != nil {
		log.Fatalf("google calendar error: %v", err)
	}

	repo := appointment.NewPgRepository(pgPool)

	// Run once at startup
	runOnce(rootCtx, repo, gateway)

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			log.Println("shutdown signal received, stopping orphan sweeper")
			return
		case <-ticker.C:
			runOnce(rootCtx, repo, gateway)
		}
	}
}

func runOnce(ctx context.Context, repo appointment.Repository, gateway calendar.Gateway) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()

	orphans, err := repo.FindUnresolvedOrphans(runCtx, 50)
	if err != nil {
		log.Printf("find orphaned events: %v", err)
		return
	}

	resolved := 0
	for _, orphan := range orphans {
		if err := gateway.DeleteEvent(runCtx, orphan.CalendarEventID); err != nil {
			log.Printf("retry delete of event %s failed: %v", orphan.CalendarEventID, err)
			continue
		}
		if err := repo.MarkOrphanResolved(runCtx, orphan.ID); err != nil {
			log.Printf("mark orphan %d resolved: %v", orphan.ID, err)
			continue
		}
		resolved++
	}

	log.Printf("sweep complete in %s: %d/%d orphaned events resolved", time.Since(start), resolved, len(orphans))
}
