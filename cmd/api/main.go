package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/ongweikiat/moolah/internal/config"
	"github.com/ongweikiat/moolah/internal/database"
	moolahHttp "github.com/ongweikiat/moolah/internal/http"
	ledgerHandler "github.com/ongweikiat/moolah/internal/http/ledger"
	"github.com/ongweikiat/moolah/internal/ledger"
	"github.com/ongweikiat/moolah/internal/ledger/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.DB.Driver, cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := store.Migrate(db, cfg.DB.Driver); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	svc := ledger.NewService(store.New(db))
	if err := svc.Hydrate(context.Background()); err != nil {
		slog.Error("failed to load ledger state", "error", err)
		os.Exit(1)
	}

	router := moolahHttp.New(ledgerHandler.NewHandler(svc), cfg.API.Secret)

	port := fmt.Sprintf(":%d", cfg.API.Port)
	slog.Info("starting server", "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
