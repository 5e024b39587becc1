// Package app wires configuration, presets and storage into a session ready
// for the engine. Both binaries start through it.
package app

import (
	"context"
	"errors"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/milk9111/listeningjourney/config"
	"github.com/milk9111/listeningjourney/ids"
	"github.com/milk9111/listeningjourney/journey"
	"github.com/milk9111/listeningjourney/presets"
	"github.com/milk9111/listeningjourney/storage"
)

// LoadSession returns the configured journey: the stored copy when st has
// one, otherwise a fresh session laid out from the configured preset.
func LoadSession(ctx context.Context, cfg *config.Config, st storage.Store, cat *presets.Catalog) (*journey.Session, error) {
	if st != nil {
		doc, err := st.Load(ctx, cfg.Journey.ID)
		switch {
		case err == nil:
			log.Info().Str("component", "app").Str("journey", doc.ID).Msg("loaded stored journey")
			s, err := journey.FromDocument(doc, ids.NewCounter("id"))
			if err != nil {
				return nil, err
			}
			if s.AudioSrc == "" {
				s.AudioSrc = cfg.Audio.Path
			}
			return s, nil
		case !errors.Is(err, storage.ErrNotFound):
			return nil, err
		}
	}

	s := journey.NewSession(cfg.Journey.ID, cfg.Journey.Name, cfg.Journey.TotalDuration, ids.NewCounter("id"))
	s.AudioSrc = cfg.Audio.Path
	if cfg.Journey.Preset == "" || cat == nil {
		return s, nil
	}
	sections, err := cat.Sections(cfg.Journey.Preset, s.TotalDuration())
	if err != nil {
		return nil, err
	}
	if err := s.ApplyPreset(sections); err != nil {
		return nil, err
	}
	return s, nil
}

// OpenCatalog loads the presets and, when configured and the directory
// exists, starts reloading them on change until ctx is done.
func OpenCatalog(ctx context.Context, cfg *config.Config) (*presets.Catalog, error) {
	cat, err := presets.LoadCatalog(cfg.Presets.Dir)
	if err != nil {
		return nil, err
	}
	if !cfg.Presets.Watch || cfg.Presets.Dir == "" {
		return cat, nil
	}
	if info, err := os.Stat(cfg.Presets.Dir); err != nil || !info.IsDir() {
		log.Debug().Str("component", "app").Str("dir", cfg.Presets.Dir).Msg("presets dir missing; using embedded presets")
		return cat, nil
	}
	w, err := presets.WatchCatalog(cat)
	if err != nil {
		log.Warn().Str("component", "app").Err(err).Msg("preset watcher")
		return cat, nil
	}
	go Follow(ctx, cat, w)
	return cat, nil
}

// Follow reloads cat for every watcher event and closes w when ctx is done.
func Follow(ctx context.Context, cat *presets.Catalog, w *presets.Watcher) {
	defer w.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-w.Changes():
			if !ok {
				return
			}
			if err := cat.Reload(); err != nil {
				log.Warn().Str("component", "presets").Str("file", c.Path).Stringer("kind", c.Kind).Err(err).Msg("reload failed; keeping previous presets")
				continue
			}
			log.Info().Str("component", "presets").Str("file", c.Path).Stringer("kind", c.Kind).Bool("removed", c.Removed).Msg("presets reloaded")
		case err, ok := <-w.Errors():
			if !ok {
				return
			}
			log.Warn().Str("component", "presets").Err(err).Msg("watcher")
		}
	}
}
