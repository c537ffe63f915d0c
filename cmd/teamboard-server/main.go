package main

import (
	"time"

	"github.com/teamboard-dev/teamboard-server/internal/api"
	"github.com/teamboard-dev/teamboard-server/internal/auth"
	"github.com/teamboard-dev/teamboard-server/internal/config"
	"github.com/teamboard-dev/teamboard-server/internal/database"
	"github.com/teamboard-dev/teamboard-server/internal/event"
	"github.com/teamboard-dev/teamboard-server/internal/logger"
	"github.com/teamboard-dev/teamboard-server/internal/relay"
	"github.com/teamboard-dev/teamboard-server/internal/server"
	"github.com/teamboard-dev/teamboard-server/internal/utils"
)

func main() {
	cfg, err := config.ReadConfig()
	if err != nil {
		logger.FatalF("Error occured while reading config %v", err)
		return
	}
	loggerCallback := logger.Init()
	logger.Debug("Application initializing...")
	cleaner := event.NewCleaner()
	cleaner.Init(loggerCallback)

	err = database.ConnectDatabase()
	if err != nil {
		logger.FatalF("Error occured while initializing database, details: %v", err)
		return
	}
	store := database.NewDatabaseStore()
	go purgeSessions(store)

	authManager := auth.NewManager(
		store,
		cfg.Auth.ClientSecret,
		utils.ParseStringTime(cfg.Auth.SessionTTL),
	)

	registry := relay.NewRegistry()
	dispatcher := relay.NewDispatcher(registry)

	mux := api.NewHandler(store, store, authManager, registry).Routes()
	mux.Handle("/ws", server.NewWSHandler(dispatcher, server.WSConfig{
		PingInterval:   utils.ParseStringTime(cfg.Relay.PingInterval),
		ReadTimeout:    utils.ParseStringTime(cfg.Relay.ReadTimeout),
		WriteTimeout:   utils.ParseStringTime(cfg.Relay.WriteTimeout),
		SendBuffer:     cfg.Relay.SendBuffer,
		MaxConnections: cfg.Relay.MaxConnections,
	}))

	server.StartServer(cfg.AppPort, mux)
}

func purgeSessions(store *database.DBStore) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for range ticker.C {
		deleted, err := store.PurgeExpiredSessions()
		if err != nil {
			logger.ErrorF("Fail to purge expired sessions, details: %v", err)
			continue
		}
		if deleted > 0 {
			logger.InfoF("Purged %d expired sessions", deleted)
		}
	}
}
