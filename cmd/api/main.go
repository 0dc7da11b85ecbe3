package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrJamesThe3rd/caixa/internal/config"
	"github.com/MrJamesThe3rd/caixa/internal/database"
	caixaHttp "github.com/MrJamesThe3rd/caixa/internal/http"
	catalogHandler "github.com/MrJamesThe3rd/caixa/internal/http/catalog"
	importHandler "github.com/MrJamesThe3rd/caixa/internal/http/importcsv"
	tillHandler "github.com/MrJamesThe3rd/caixa/internal/http/till"
	"github.com/MrJamesThe3rd/caixa/internal/importer"
	"github.com/MrJamesThe3rd/caixa/internal/ledger"
	"github.com/MrJamesThe3rd/caixa/internal/ledger/store"
)

func main() {
	mintToken := flag.String("mint-token", "", "print a bearer token for the given subject and exit")
	tokenTTL := flag.Duration("token-ttl", 30*24*time.Hour, "lifetime of a minted token")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.Server.AuthSecret == "" {
		slog.Error("AUTH_SECRET is required")
		os.Exit(1)
	}

	if *mintToken != "" {
		token, err := caixaHttp.IssueToken(cfg.Server.AuthSecret, *mintToken, *tokenTTL, time.Now())
		if err != nil {
			slog.Error("failed to mint token", "error", err)
			os.Exit(1)
		}

		fmt.Println(token)

		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openRepository(ctx, cfg)
	if err != nil {
		slog.Error("failed to open ledger store", "store", cfg.Server.Store, "error", err)
		os.Exit(1)
	}
	defer closeRepo()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var (
		ledgerService = ledger.NewService(repo, ledger.WithMetrics(ledger.NewMetrics(registry)))
		importService = importer.NewService()
	)

	if cfg.Server.CatalogSeed != "" {
		if err := seedCatalog(ctx, importService, ledgerService, cfg.Server.CatalogSeed); err != nil {
			slog.Error("failed to import catalog seed", "path", cfg.Server.CatalogSeed, "error", err)
			os.Exit(1)
		}
	}

	var (
		tillH    = tillHandler.NewHandler(ledgerService)
		catalogH = catalogHandler.NewHandler(ledgerService)
		importH  = importHandler.NewHandler(importService, ledgerService)
	)

	router := caixaHttp.New(caixaHttp.Options{
		AuthSecret: cfg.Server.AuthSecret,
		RateLimit:  cfg.Server.RateLimit,
		Timeout:    cfg.Server.Timeout,
		Metrics:    promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}, tillH, catalogH, importH)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "port", server.Addr, "store", cfg.Server.Store)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func openRepository(ctx context.Context, cfg *config.Config) (ledger.Repository, func(), error) {
	seed, err := store.DefaultSeed(cfg.Server.Operators)
	if err != nil {
		return nil, nil, err
	}

	switch cfg.Server.Store {
	case "memory":
		mem := store.NewMemory()
		mem.Apply(seed)

		return mem, func() {}, nil
	case "postgres":
		db, err := database.New(ctx, cfg.ConnectionString(), database.DefaultPool)
		if err != nil {
			return nil, nil, err
		}

		pg := store.NewPostgres(db)

		if err := pg.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}

		if err := pg.Seed(ctx, seed); err != nil {
			db.Close()
			return nil, nil, err
		}

		return pg, func() { db.Close() }, nil
	}

	return nil, nil, fmt.Errorf("unknown store %q", cfg.Server.Store)
}

func seedCatalog(ctx context.Context, svc *importer.Service, dst importer.Catalog, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()

	_, err = svc.Load(ctx, dst, importer.FormatLegacy, f)

	return err
}
