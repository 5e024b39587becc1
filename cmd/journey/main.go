package main

import (
	"context"
	"flag"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog/log"

	"github.com/milk9111/listeningjourney/app"
	"github.com/milk9111/listeningjourney/config"
	"github.com/milk9111/listeningjourney/engine"
	"github.com/milk9111/listeningjourney/engine/system"
	"github.com/milk9111/listeningjourney/playback"
	"github.com/milk9111/listeningjourney/playback/ebitenaudio"
	"github.com/milk9111/listeningjourney/playback/fake"
	"github.com/milk9111/listeningjourney/render"
	"github.com/milk9111/listeningjourney/storage"
)

func main() {
	configPath := flag.String("config", "journey.yaml", "path to the config file")
	audioPath := flag.String("audio", "", "audio file to play (wav, mp3 or ogg)")
	preset := flag.String("preset", "", "journey preset for a new journey")
	journeyID := flag.String("journey", "", "journey id to open or create")
	demo := flag.Bool("demo", false, "play a silent track instead of audio")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("config")
	}
	if *audioPath != "" {
		cfg.Audio.Path = *audioPath
	}
	if *preset != "" {
		cfg.Journey.Preset = *preset
	}
	if *journeyID != "" {
		cfg.Journey.ID = *journeyID
	}
	cfg.Log.SetupLogging()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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
	if *demo || session.AudioSrc == "" {
		tr := fake.New(session.TotalDuration())
		tr.Realtime = true
		transport = tr
		if session.AudioSrc == "" {
			session.AudioSrc = "demo"
		}
	} else {
		transport = ebitenaudio.New()
	}

	world := engine.NewWorld(session, transport, &playback.ManualLoop{})
	system.Install(world)
	defer world.Clock().Close()
	if err := world.Post(ctx, engine.LoadAudio(session.AudioSrc, cfg.Audio.Volume)); err != nil {
		log.Fatal().Err(err).Msg("load audio")
	}

	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle("Listening Journey: " + session.Name)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	game := NewGame(world, catalog, store, render.New(catalog))
	if err := ebiten.RunGame(game); err != nil {
		log.Error().Err(err).Msg("game")
		os.Exit(1)
	}
}
