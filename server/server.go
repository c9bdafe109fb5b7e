package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/champa/scrapbook/pkg/pwdhash"
	"github.com/champa/scrapbook/server/auth"
	"github.com/champa/scrapbook/server/guard"
	"github.com/champa/scrapbook/server/media"
	"github.com/champa/scrapbook/server/pages"
	"github.com/champa/scrapbook/server/session"
	"github.com/champa/scrapbook/server/storage"
	"github.com/cyclopcam/logs"
	"github.com/julienschmidt/httprouter"
)

type Server struct {
	Log              logs.Log
	ShutdownComplete chan error // Receives one value when Shutdown has finished

	signalIn   chan os.Signal
	httpServer *http.Server
	httpRouter *httprouter.Router
	handler    http.Handler // httpRouter, behind the guard
	guard      *guard.Guard
	auth       *auth.AuthServer
	media      *media.MediaServer
	pages      *pages.PageServer
	library    *media.Library
	storage    storage.Storage
}

// NewServer wires up every component from cfg. cfg must already have been through Finish().
func NewServer(logger logs.Log, cfg *Config) (*Server, error) {
	store, err := openStorage(context.Background(), logger, cfg.MediaStorage)
	if err != nil {
		return nil, err
	}

	// The guard gets its own verifier, which shares nothing with the codec but the secret
	codec := session.NewCodec(cfg.SessionSecret)
	verifier := guard.NewVerifier(guard.NewHMACSigner(cfg.SessionSecret))

	passwords := pwdhash.NewVerifier(cfg.PasswordHash)
	if !passwords.UsingDefault() && !pwdhash.IsValidSpec(cfg.PasswordHash) {
		logger.Warnf("%v is malformed. Every unlock attempt will fail", EnvPasswordHash)
	}

	library := media.NewLibrary(logger, store, cfg.ManifestPath(), cfg.CaptionsPath(), time.Duration(cfg.CacheTTLSeconds)*time.Second)
	pageServer, err := pages.NewPageServer(logger, library)
	if err != nil {
		return nil, fmt.Errorf("Failed to load page templates: %w", err)
	}

	s := &Server{
		Log:              logger,
		ShutdownComplete: make(chan error, 1),
		guard:            guard.NewGuard(logger, verifier, session.CookieName),
		auth:             auth.NewAuthServer(logger, passwords, codec, cfg.Production),
		media:            media.NewMediaServer(logger, store),
		pages:            pageServer,
		library:          library,
		storage:          store,
	}
	if err := s.setupHttpRoutes(); err != nil {
		return nil, err
	}
	return s, nil
}

func openStorage(ctx context.Context, logger logs.Log, cfg StorageConfig) (storage.Storage, error) {
	if cfg.GCS != nil {
		logger.Infof("Media storage: gs://%v/%v", cfg.GCS.Bucket, cfg.GCS.Prefix)
		return storage.NewStorageGCS(ctx, logger, cfg.GCS.Bucket, cfg.GCS.Prefix)
	} else if cfg.S3 != nil {
		logger.Infof("Media storage: s3://%v/%v", cfg.S3.Bucket, cfg.S3.Prefix)
		return storage.NewStorageS3(ctx, logger, *cfg.S3)
	} else if cfg.Filesystem != nil {
		logger.Infof("Media storage: %v", cfg.Filesystem.Root)
		return storage.NewStorageFS(logger, cfg.Filesystem.Root)
	}
	return nil, fmt.Errorf("One of the storage options must be configured (filesystem, gcs, s3)")
}

// Handler is the complete HTTP handler of the site, guard included
func (s *Server) Handler() http.Handler {
	return s.handler
}

// addr example: ":8080"
func (s *Server) ListenHTTP(addr string) error {
	s.Log.Infof("Listening on %v", addr)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) ListenForKillSignals() {
	s.signalIn = make(chan os.Signal, 1)
	signal.Notify(s.signalIn, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig, ok := <-s.signalIn
		if ok {
			s.Log.Infof("Received OS signal '%v'. Shutting down", sig.String())
			s.Shutdown()
		}
	}()
}

func (s *Server) Shutdown() {
	s.Log.Infof("Shutdown")
	if s.signalIn != nil {
		signal.Stop(s.signalIn)
		close(s.signalIn)
	}
	var err error
	if s.httpServer != nil {
		s.Log.Infof("Closing HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		err = s.httpServer.Shutdown(ctx)
	}
	if err != nil {
		s.Log.Warnf("Shutdown complete, with error: %v", err)
	} else {
		s.Log.Infof("Shutdown complete")
	}
	s.ShutdownComplete <- err
}
