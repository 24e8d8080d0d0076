// Package main provides the entry point for esriagol-server.
//
// esriagol-server is the authenticating gateway between untrusted
// clients and the ArcGIS Online REST APIs: it fronts feature-layer
// attribute queries and vector tile delivery behind gateway-issued
// client keys, holding the upstream credentials and session token
// entirely server-side.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/msjade/esriagol/internal/core/service"
	"github.com/msjade/esriagol/internal/infra/buildinfo"
	"github.com/msjade/esriagol/internal/infra/confloader"
	"github.com/msjade/esriagol/internal/infra/shutdown"
	"github.com/msjade/esriagol/internal/registry"
	"github.com/msjade/esriagol/internal/server/config"
	"github.com/msjade/esriagol/internal/server/httpserver"
	"github.com/msjade/esriagol/internal/server/httpserver/handler"
	"github.com/msjade/esriagol/internal/telemetry/logger"
	"github.com/msjade/esriagol/internal/telemetry/metric"
	"github.com/msjade/esriagol/internal/upstream"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("esriagol-server %s\n", buildinfo.String())
		return nil
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	slog.SetDefault(log)

	log.Info("starting esriagol-server",
		"version", buildinfo.Get().Version,
		"config", *configFile,
		"registry_backend", cfg.Registry.Backend)

	metrics := metric.New()
	shutdownHandler := shutdown.NewHandler(30*time.Second, log)

	serviceStore, clientStore, err := openStores(cfg, log, shutdownHandler)
	if err != nil {
		return fmt.Errorf("open registry stores: %w", err)
	}

	serviceRepo := registry.NewServiceRepository(serviceStore)
	clientRepo := registry.NewClientRepository(clientStore)

	upClient := upstream.NewClient(upstream.Config{
		Portal:            cfg.Upstream.Portal,
		Referer:           cfg.Upstream.Referer,
		UsernameEnv:       cfg.Upstream.UsernameEnv,
		PasswordEnv:       cfg.Upstream.PasswordEnv,
		ExpirationMinutes: cfg.Upstream.ExpirationMinutes,
		AuthTimeout:       cfg.Upstream.AuthTimeout,
		DataTimeout:       cfg.Upstream.DataTimeout,
	}, log, metrics)
	tokenManager := service.NewTokenManager(upClient, log, metrics)

	gatewayHandler := handler.New(handler.Config{
		PublicBase: cfg.Gateway.PublicBase,
		AdminKey:   cfg.Gateway.AdminKey,
	}, serviceRepo, clientRepo, tokenManager, upClient, metrics, log)

	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Handler: gatewayHandler,
		Logger:  log,
		Metrics: metrics,
	})
	httpServer := httpserver.New(cfg.Server.HTTP.Addr, router)

	shutdownHandler.OnShutdown("http-server", func(ctx context.Context) error {
		return httpServer.Shutdown(ctx)
	})

	go func() {
		log.Info("HTTP server listening", "addr", cfg.Server.HTTP.Addr)

		var err error
		if cfg.Server.HTTP.TLSCertFile != "" && cfg.Server.HTTP.TLSKeyFile != "" {
			err = httpServer.ListenAndServeTLS(cfg.Server.HTTP.TLSCertFile, cfg.Server.HTTP.TLSKeyFile)
		} else {
			err = httpServer.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	if err := shutdownHandler.Wait(); err != nil {
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig merges defaults, the optional config file, and environment
// variables, then validates the result.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}
	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openStores opens the registry document stores for the configured
// backend and registers their shutdown hooks.
func openStores(cfg *config.ServerConfig, log *slog.Logger, sh *shutdown.Handler) (registry.DocumentStore, registry.DocumentStore, error) {
	switch cfg.Registry.Backend {
	case "badger":
		db, err := registry.OpenBadger(cfg.Registry.DataDir, log)
		if err != nil {
			return nil, nil, err
		}
		sh.OnShutdown("badger-db", func(context.Context) error {
			return db.Close()
		})
		return registry.NewBadgerStore(db, "services"), registry.NewBadgerStore(db, "clients"), nil

	default: // "file", enforced by config.Verify
		serviceStore, err := registry.NewFileStore(cfg.Registry.ServicesPath, log)
		if err != nil {
			return nil, nil, err
		}
		clientStore, err := registry.NewFileStore(cfg.Registry.ClientsPath, log)
		if err != nil {
			serviceStore.Close()
			return nil, nil, err
		}
		sh.OnShutdown("registry-stores", func(context.Context) error {
			err := serviceStore.Close()
			if cerr := clientStore.Close(); err == nil {
				err = cerr
			}
			return err
		})
		return serviceStore, clientStore, nil
	}
}
