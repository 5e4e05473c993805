package routes

import (
	"database/sql"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/askar/teamboard/internal/cache"
	"github.com/askar/teamboard/internal/config"
	"github.com/askar/teamboard/internal/handlers"
	"github.com/askar/teamboard/internal/logger"
	"github.com/askar/teamboard/internal/middleware"
	"github.com/askar/teamboard/internal/realtime"
	authservice "github.com/askar/teamboard/internal/service/auth"
	boardservice "github.com/askar/teamboard/internal/service/board"
	teamservice "github.com/askar/teamboard/internal/service/team"
	mysqlstore "github.com/askar/teamboard/internal/store/mysql"
)

// RegisterAll wires stores, services and handlers onto a router. The hub is
// constructed once here and injected everywhere it is needed.
func RegisterAll(db *sql.DB, cfg *config.Config, log *logger.Logger) *mux.Router {
	st := mysqlstore.New(db)
	validate := validator.New()

	var teamCache *cache.RedisCache
	if cfg.RedisURL != "" {
		c, err := cache.NewRedisCache(cfg.RedisURL)
		if err != nil {
			log.Warn("redis unavailable, team cache disabled", "error", err)
		} else {
			teamCache = c
		}
	}

	hub := realtime.NewHub(logger.NewLogger("realtime-hub"))

	authSvc := authservice.New(st, cfg.JWT.Secret)
	teamSvc := teamservice.New(st, st, logger.NewLogger("team-service"))
	boardSvc := boardservice.New(st, st, hub, logger.NewLogger("board-service"))

	authHandler := handlers.NewAuthHandler(authSvc, validate)
	teamHandler := handlers.NewTeamHandler(teamSvc, teamCache, validate)
	boardHandler := handlers.NewBoardHandler(boardSvc, validate)
	wsHandler := handlers.NewWebSocketHandler(hub)

	router := mux.NewRouter()
	router.Use(middleware.RequestIDMiddleware)

	registerAuthRoutes(router, authHandler)
	registerTeamRoutes(router, teamHandler)
	registerBoardRoutes(router, boardHandler, wsHandler)

	return router
}
