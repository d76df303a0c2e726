package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"bassline/internal/config"
	"bassline/internal/discord"
	"bassline/internal/logging"
	"bassline/internal/music/cache"
	"bassline/internal/music/resolver"
	"bassline/internal/storage"
	"bassline/internal/version"
	"bassline/pkg/jobmgr"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("configuration error")
	}

	logging.Setup(cfg.LogLevel, cfg.LogFile)
	log.Info().Str("version", version.Version).Msgf("starting %s", version.AppName)

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		log.Fatal().Err(err).Msg("storage error")
	}
	defer store.Close()

	mediaCache, err := cache.New(cfg.CacheDir, cfg.CacheMaxSizeMB, cfg.CacheMaxAge)
	if err != nil {
		log.Fatal().Err(err).Msg("cache error")
	}
	if err := mediaCache.Clear(); err != nil {
		log.Warn().Err(err).Msg("could not clear media cache")
	}

	sweepInterval := cfg.CacheMaxAge / 4
	if sweepInterval <= 0 {
		sweepInterval = time.Hour
	}

	jobs := jobmgr.NewManager()
	defer jobs.StopAll()
	if err := jobs.StartAsync("cache-sweeper", func(ctx context.Context) error {
		return mediaCache.RunSweeper(ctx, sweepInterval)
	}); err != nil {
		log.Warn().Err(err).Msg("could not start cache sweeper")
	}

	res := resolver.New(resolver.Options{
		Cache:          mediaCache,
		PrebufferLimit: cfg.PrebufferLimit,
		ResolveTimeout: cfg.ResolveTimeout,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- discord.StartBot(ctx, cfg, store, res)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Info().Str("signal", s.String()).Msg("shutting down")
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("bot error")
		}
		cancel()
	}

	if err := mediaCache.Clear(); err != nil {
		log.Warn().Err(err).Msg("could not clear media cache on exit")
	}
	log.Info().Msg("exited cleanly")
}
