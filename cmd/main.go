package main

import (
	"net/http"

	"github.com/askar/teamboard/internal/config"
	"github.com/askar/teamboard/internal/database"
	"github.com/askar/teamboard/internal/logger"
	"github.com/askar/teamboard/internal/routes"
)

func main() {
	log := logger.NewLogger("teamboard")
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", "error", err)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}
	defer db.Close()

	router := routes.RegisterAll(db, cfg, log)

	addr := ":" + cfg.Server.Port
	log.Info("server listening", "addr", addr, "env", cfg.Env)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatal("server stopped", "error", err)
	}
}
