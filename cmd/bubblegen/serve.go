package main

import (
	"context"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/k1LoW/errors"
	"github.com/looptalks/bubble"
	"github.com/looptalks/bubble/config"
	"github.com/looptalks/bubble/internal/httpclient"
	"github.com/looptalks/bubble/internal/moderation"
	"github.com/looptalks/bubble/internal/publish"
	"github.com/looptalks/bubble/internal/ratelimit"
	"github.com/looptalks/bubble/internal/server"
	"github.com/looptalks/bubble/internal/store"
	"github.com/spf13/cobra"
)

var (
	configPath string
	listenAddr string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serve the image and submission API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			err = errors.WithStack(err)
		}()
		if err := config.LoadDotenv(); err != nil {
			return err
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if listenAddr != "" {
			cfg.Listen = listenAddr
		}

		srv, err := newServer(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		hs := &http.Server{
			Addr:              cfg.Listen,
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		errc := make(chan error, 1)
		go func() {
			logger.Info("listening", "addr", cfg.Listen)
			errc <- hs.ListenAndServe()
		}()

		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
		}
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return hs.Shutdown(shutdownCtx)
	},
}

// newServer wires the service components described by cfg.
func newServer(cfg *config.Config) (*server.Server, error) {
	r, err := bubble.NewRenderer(bubble.WithHandle(cfg.Handle))
	if err != nil {
		return nil, err
	}
	client := httpclient.New(logger)

	sources := moderation.MultiSource{moderation.StaticWords(cfg.Moderation.BlockedWords)}
	if cfg.Moderation.BlockedWordsFile != "" {
		sources = append(sources, moderation.FileWords{Path: cfg.Moderation.BlockedWordsFile})
	}
	modCfg := moderation.Config{
		MinLength: cfg.Moderation.MinLength,
		MaxLength: cfg.Moderation.MaxLength,
		Words:     moderation.NewWordCache(sources, cfg.CacheTTL(), logger),
		Logger:    logger,
	}
	if cfg.Moderation.PerspectiveAPIKey != "" {
		modCfg.Scorer = moderation.NewPerspective(client, cfg.Moderation.PerspectiveURL, cfg.Moderation.PerspectiveAPIKey)
	} else {
		logger.Info("perspective api key not set, skipping toxicity scoring")
	}

	var pub publish.Publisher
	if cfg.InstagramEnabled() {
		pub = publish.NewInstagram(publish.InstagramConfig{
			AccountID:   cfg.Instagram.AccountID,
			AccessToken: cfg.Instagram.AccessToken,
			ImgbbAPIKey: cfg.Instagram.ImgbbAPIKey,
			GraphURL:    cfg.Instagram.GraphURL,
			ImgbbURL:    cfg.Instagram.ImgbbURL,
		}, client, logger)
	} else {
		logger.Warn("instagram credentials incomplete, posts will not be published",
			"missing", strings.Join(cfg.MissingInstagram(), ","))
		pub = publish.NewNoop(logger)
	}

	return server.New(server.Config{
		Renderer:  r,
		Moderator: moderation.New(modCfg),
		Limiter:   ratelimit.New(ratelimit.NewMemoryStore(), cfg.Window(), logger),
		Store:     store.NewMemory(logger),
		Publisher: pub,
		Location:  cfg.Location(),
		Logger:    logger,
	}), nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultPath, "config file")
	serveCmd.Flags().StringVarP(&listenAddr, "listen", "l", "", "listen address (overrides config)")
}
