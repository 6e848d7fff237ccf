package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sorrisolabs/clinic-assistant/internal/api"
	"github.com/sorrisolabs/clinic-assistant/internal/appointment"
	"github.com/sorrisolabs/clinic-assistant/internal/calendar"
	"github.com/sorrisolabs/clinic-assistant/internal/config"
	"github.com/sorrisolabs/clinic-assistant/internal/conversation"
	"github.com/sorrisolabs/clinic-assistant/internal/db"
	redisclient "github.com/sorrisolabs/clinic-assistant/internal/redis"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("api-server starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running in env=%s http_port=%s calendar=%s", cfg.Env, cfg.HTTPPort, cfg.CalendarID)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := time.LoadLocation(cfg.ClinicTimezone)
	if err != nil {
		log.Fatalf("invalid CLINIC_TIMEZONE %q: %v", cfg.ClinicTimezone, err)
	}

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatalf("postgres connection error: %v", err)
	}
	defer pgPool.Close()
	log.Println("connected to Postgres")

	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("redis connection error: %v", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Printf("error closing redis: %v", err)
		}
	}()
	log.Println("connected to Redis")

	gateway, err := calendar.NewGoogleGateway(rootCtx, cfg.CredentialsFile, cfg.CalendarID, cfg.ClinicTimezone)
	if err != nil {
		log.Fatalf("google calendar error: %v", err)
	}
	log.Println("google calendar ready")

	store := conversation.NewPgStore(pgPool)
	locker := redisclient.NewRedisSenderLocker(rdb, cfg.LockTTL)
	engine := conversation.NewEngine(store, locker, gateway, loc)

	router := api.NewRouter(api.RouterConfig{
		Engine:       engine,
		Appointments: appointment.NewPgRepository(pgPool),
		PgPool:       pgPool,
		Redis:        rdb,
		Env:          cfg.Env,
		Version:      "dev",
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-rootCtx.Done()
	log.Println("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
