package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/paddockshare/paddockshare-backend/api/responses"
	"github.com/paddockshare/paddockshare-backend/pkg/config"
	"github.com/paddockshare/paddockshare-backend/pkg/db"
	"github.com/paddockshare/paddockshare-backend/pkg/logger"
	"github.com/paddockshare/paddockshare-backend/pkg/redis"
)

const readyCheckTimeout = 2 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-PaddockShare-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-PaddockShare-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		defer cancel()

		checks := map[string]string{}
		healthy := true

		if dbP != nil {
			if err := dbP.Ping(ctx); err != nil {
				checks["database"] = "down"
				healthy = false
				if logg != nil {
					logg.Error(ctx, "readiness database ping failed", err)
				}
			} else {
				checks["database"] = "ok"
			}
		}
		if redisP != nil {
			if err := redisP.Ping(ctx); err != nil {
				checks["redis"] = "down"
				healthy = false
				if logg != nil {
					logg.Error(ctx, "readiness redis ping failed", err)
				}
			} else {
				checks["redis"] = "ok"
			}
		}

		if !healthy {
			responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, map[string]any{
				"status": "degraded",
				"checks": checks,
			})
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"status": "ready",
			"checks": checks,
		})
	}
}
