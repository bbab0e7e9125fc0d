package main

import (
	"context"
	"flag"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jrshann/strhost/internal/apps"
	"github.com/jrshann/strhost/internal/config"
	"github.com/jrshann/strhost/internal/core"
	"github.com/jrshann/strhost/internal/hamqtt"
	"github.com/jrshann/strhost/internal/hass"
	"github.com/jrshann/strhost/internal/logging"
	"github.com/jrshann/strhost/internal/rate"
	"github.com/jrshann/strhost/internal/server"
	"github.com/jrshann/strhost/internal/statedb"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to strhost.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Configure(logging.Config{Service: "strhost"})
		base := logging.Base()
		base.Fatal().Err(err).Msg("load config")
	}

	logging.Configure(logging.Config{Level: cfg.Core.LogLevel, Service: "strhost"})
	log := logging.Base()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hassClient, err := hass.NewClient(hass.Config{
		BaseURL:   cfg.Hass.BaseURL,
		TokenFile: cfg.Hass.TokenFile,
		Timeout:   time.Duration(cfg.Hass.TimeoutSeconds) * time.Second,
		PerMinute: cfg.Hass.RatePerMinute,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("hass client")
	}

	var blob statedb.BlobStore
	if cfg.State.Blob != nil {
		s3, err := statedb.NewS3Store(cfg.State.Blob)
		if err != nil {
			log.Fatal().Err(err).Msg("blob store")
		}
		blob = s3
	}

	var mqtt *hamqtt.Publisher
	if cfg.MQTT != nil {
		mqtt, err = hamqtt.NewPublisher(cfg.MQTT, logging.WithComponent("mqtt"))
		if err != nil {
			log.Fatal().Err(err).Msg("mqtt publisher")
		}
		defer mqtt.Close()
	}

	entries, err := config.LoadApps(cfg.Core.AppsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("load apps config")
	}

	built, err := apps.Build(ctx, entries, apps.Deps{
		Hass:     hassClient,
		StateDir: cfg.State.Dir,
		Blob:     blob,
		MQTT:     mqtt,
		Log:      log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("build apps")
	}
	if err := core.ValidateApps(built); err != nil {
		log.Fatal().Err(err).Msg("validate apps")
	}
	log.Info().Int("apps", len(built)).Msg("apps initialized")

	if err := core.WriteDashboards(cfg.Core.DashboardDir, built); err != nil {
		log.Fatal().Err(err).Msg("write dashboards")
	}

	registry := core.MetricsRegistry(built)
	registry.MustRegister(rate.Collectors()...)
	registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "strhost_build_info",
		Help: "Build information",
	}, func() float64 { return 1 }))

	httpServer := server.NewHTTPServer(cfg.Core.HTTPAddr, server.NewMux(built, registry))
	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Core.HTTPAddr).Msg("http listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	var wg sync.WaitGroup
	for _, app := range built {
		runner, ok := app.(core.Runner)
		if !ok {
			continue
		}
		wg.Add(1)
		go func(app core.App, runner core.Runner) {
			defer wg.Done()
			if err := runner.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Str("app", app.ID()).Msg("app stopped")
			}
		}(app, runner)
	}

	// A serve failure takes the normal shutdown path so deferred cleanup
	// (MQTT offline announcement) still runs.
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		log.Error().Err(err).Msg("http serve")
		stop()
	}
	log.Info().Msg("shutting down")

	wg.Wait()
	for _, app := range built {
		if terminator, ok := app.(core.Terminator); ok {
			terminator.Terminate()
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}
}
