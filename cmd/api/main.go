package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"network-insights-go/internal/api"
	"network-insights-go/internal/config"
	"network-insights-go/internal/logger"
	"network-insights-go/internal/processor"
)

func main() {
	config.LoadDotEnv() // loads .env

	cfg, err := config.Load()
	if err != nil {
		logger.New().WithError(err).Fatal("failed to load config")
	}
	logger.Configure(logger.Options{Level: cfg.Log.Level, Environment: cfg.Log.Environment})

	log := logger.New()
	log.WithField("service", "network-insights-go").Info("starting service")

	svc := processor.New(processor.OptionsFromConfig(cfg), log.Entry)

	// warm the source cache so a bad path fails at startup
	log.WithField("dataset_path", cfg.Dataset.Path).WithField("nps_path", cfg.Dataset.NPSPath).Info("loading dataset")
	src, err := svc.Source(context.Background())
	if err != nil {
		log.WithError(err).Fatal("failed to load dataset")
	}
	log.WithField("records", src.Records.Len()).WithField("nps_rows", len(src.Counts)).Info("dataset loaded")

	h := &api.Handlers{Svc: svc, Log: log}
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      api.Handler(h, os.Stdout),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("addr", addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server terminated")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("shutdown error")
	}
	log.Info("service stopped")
}
