package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/sorrisolabs/clinic-assistant/internal/appointment"
)

type RouterConfig struct {
	Engine       TriageEngine
	Appointments appointment.Repository
	PgPool       *pgxpool.Pool
	Redis        *redis.Client
	Env          string
	Version      string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Post("/triage", triageHandler(cfg.Engine))
	r.Get("/patients/{id}/appointments", listPatientAppointmentsHandler(cfg.Appointments))

	return r
}
