/*
Package handler provides the HTTP handlers and routing setup for the server.

This file defines the main Router, applying logging, CORS, and per-IP rate
limiting middleware before delegating to the API and WebSocket handlers.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"driftchat/internal/app/chat"
	"driftchat/internal/configs"
	"driftchat/internal/pkg/limiter"
	"driftchat/internal/pkg/logx"
	"driftchat/internal/pkg/resp"
)

// Router builds the HTTP routing table: CORS, request logging, the room REST
// endpoints, and the WebSocket entry point.
func Router(hub *chat.Hub, cfg *configs.AppConfig) http.Handler {
	createLimiter := limiter.NewIPRateLimiter(rate.Limit(cfg.CreateRatePerSec), cfg.CreateBurst)
	connectLimiter := limiter.NewIPRateLimiter(rate.Limit(cfg.ConnectRatePerSec), cfg.ConnectBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range cfg.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	wsUpgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if cfg.Environment == "development" {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if cfg.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	} else if len(cfg.AllowedOrigins) > 0 {
		corsAllowedOrigins = cfg.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, map[string]string{
			"status":  "ok",
			"service": "Driftchat Server",
		})
	})

	r.Route("/api/chat", func(api chi.Router) {
		api.With(createLimiter.Middleware).Post("/create", HandleCreateRoom(hub))
		api.Get("/check/{roomId}", HandleCheckRoom(hub))
	})

	r.Get("/chat", HandleWebSocket(hub, wsUpgrader, connectLimiter))

	return r
}
