package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"superpos/backend/internal/backup"
	"superpos/backend/internal/config"
	"superpos/backend/internal/engine"
	"superpos/backend/internal/httpapi"
	"superpos/backend/internal/store"
	"superpos/backend/internal/store/memory"
	"superpos/backend/internal/store/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Auth.Secret == "" {
		log.Println("WARN: AUTH_SECRET not set, using the development default")
	}

	st, cleanup, err := openStore(cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer cleanup()

	mirror := openMirror(cfg)
	detach := backup.Attach(st, mirror)
	defer detach()

	svc := engine.New(st)
	auth := httpapi.NewAuthManager(cfg.Auth.Secret, cfg.Auth.TokenTTL, svc)
	api := httpapi.New(svc, auth, mirror, cfg.AllowedOrigin)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("listening on %s (store=%s)", cfg.Address(), cfg.StoreID)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

func openStore(cfg *config.Config) (store.Store, func(), error) {
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		pg, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		log.Println("using postgres snapshot store")
		return pg, func() { _ = pg.Close() }, nil
	}

	if cfg.SnapshotFile != "" {
		mem, err := memory.NewWithFile(cfg.SnapshotFile)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("using file-backed snapshot store at %s", cfg.SnapshotFile)
		return mem, func() {}, nil
	}

	if cfg.SeedDemo {
		log.Println("using in-memory snapshot store with demo data")
		return memory.NewSeeded(), func() {}, nil
	}
	log.Println("using in-memory snapshot store")
	return memory.New(), func() {}, nil
}

func openMirror(cfg *config.Config) backup.Mirror {
	if cfg.Redis.Addr == "" {
		return backup.NoopMirror{}
	}

	mirror := backup.NewRedisMirror(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.StoreID)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mirror.Ping(ctx); err != nil {
		log.Printf("WARN: redis mirror unreachable, continuing without backup: %v", err)
		_ = mirror.Close()
		return backup.NoopMirror{}
	}
	log.Printf("redis mirror attached at %s", cfg.Redis.Addr)
	return mirror
}
