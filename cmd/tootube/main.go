package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/user/tootube/internal/blob"
	"github.com/user/tootube/internal/config"
	"github.com/user/tootube/internal/server"
	"github.com/user/tootube/internal/service"
	"github.com/user/tootube/internal/store"
)

const (
	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout = 30 * time.Second
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Caller().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	log.Info().
		Str("data_backend", cfg.Data.Backend).
		Str("blob_backend", cfg.Blob.Backend).
		Msg("Configuration loaded")

	docBackend, err := newDocumentBackend(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize document backend")
	}
	st := store.New(docBackend)

	blobBackend, uploadsDir, err := newBlobBackend(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize blob backend")
	}

	svc := service.New(st, blobBackend)
	httpServer := server.NewServer(svc, st, &cfg.Server, uploadsDir)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := httpServer.Start(cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	log.Info().Msg("TooTube started")

	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping HTTP server")
	} else {
		log.Info().Msg("HTTP server stopped")
	}

	if err := st.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing document backend")
	} else {
		log.Info().Msg("Document backend closed")
	}

	log.Info().Msg("Graceful shutdown completed")
}

// newDocumentBackend selects the snapshot persistence backend from
// configuration.
func newDocumentBackend(cfg *config.Config) (store.DocumentBackend, error) {
	switch cfg.Data.Backend {
	case config.DataBackendMySQL:
		return store.NewMySQLBackend(&cfg.DB, cfg.Data.Document)
	default:
		return store.NewFileBackend(cfg.Data.File)
	}
}

// newBlobBackend selects the media storage backend. The returned directory
// is non-empty only for local storage, where the HTTP server byte-serves the
// files itself.
func newBlobBackend(cfg *config.Config) (blob.Backend, string, error) {
	switch cfg.Blob.Backend {
	case config.BlobBackendMinio:
		b, err := blob.NewMinioBackend(&cfg.Blob)
		return b, "", err
	default:
		b, err := blob.NewFSBackend(cfg.Blob.Dir)
		if err != nil {
			return nil, "", err
		}
		return b, b.Dir(), nil
	}
}
