package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/milk9111/listeningjourney/app"
	"github.com/milk9111/listeningjourney/config"
	"github.com/milk9111/listeningjourney/engine"
	"github.com/milk9111/listeningjourney/engine/system"
	"github.com/milk9111/listeningjourney/playback"
	"github.com/milk9111/listeningjourney/playback/ebitenaudio"
	"github.com/milk9111/listeningjourney/playback/fake"
	"github.com/milk9111/listeningjourney/server"
	"github.com/milk9111/listeningjourney/storage"
)

func main() {
	configPath := flag.String("config", "journey.yaml", "path to the config file")
	addr := flag.String("addr", "", "HTTP listen address (overrides server.listen)")
	audioPath := flag.String("audio", "", "audio file to play (wav, mp3 or ogg)")
	dsn := flag.String("store", "", "journey store: a sqlite path or yaml://dir")
	silent := flag.Bool("silent", false, "simulate playback without an audio device")
	writeConfig := flag.Bool("write-config", false, "write the effective config back to -config and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("config")
	}
	if *addr != "" {
		cfg.Server.Listen = *addr
	}
	if *audioPath != "" {
		cfg.Audio.Path = *audioPath
	}
	if *dsn != "" {
		cfg.Store.DSN = *dsn
	}
	cfg.Log.SetupLogging()

	if *writeConfig {
		if err := config.Save(*configPath, cfg); err != nil {
			log.Fatal().Err(err).Msg("write config")
		}
		log.Info().Str("path", *configPath).Msg("config written")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, err := app.OpenCatalog(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("presets")
	}
	store, err := storage.Open(cfg.Store.DSN)
	if err != nil {
		log.Fatal().Err(err).Str("dsn", cfg.Store.DSN).Msg("store")
	}
	defer store.Close()

	session, err := app.LoadSession(ctx, cfg, store, catalog)
	if err != nil {
		log.Fatal().Err(err).Msg("journey")
	}

	var transport playback.Transport
	if *silent || session.AudioSrc == "" {
		tr := fake.New(session.TotalDuration())
		tr.Realtime = true
		transport = tr
		log.Info().Float64("duration", session.TotalDuration()).Msg("simulated playback")
	} else {
		transport = ebitenaudio.New()
	}

	world := engine.NewWorld(session, transport, playback.NewTickerLoop(cfg.Server.FPS))
	system.Install(world)
	defer world.Clock().Close()

	src := session.AudioSrc
	if src == "" {
		src = "silent"
	}
	if err := world.Post(ctx, engine.LoadAudio(src, cfg.Audio.Volume)); err != nil {
		log.Fatal().Err(err).Msg("load audio")
	}

	gin.SetMode(gin.ReleaseMode)
	srv := server.New(world, server.WithStore(store), server.WithCatalog(catalog))
	httpSrv := &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      srv.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.Server.Listen).Str("journey", session.ID).Msg("HTTP server starting")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server")
			stop()
		}
	}()

	if err := world.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("engine")
	}
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Hub().Close()
	_ = httpSrv.Shutdown(shutdownCtx)

	saveCtx, cancelSave := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancelSave()
	if err := store.Save(saveCtx, session.Document()); err != nil {
		log.Warn().Err(err).Msg("save on exit")
	}
}
