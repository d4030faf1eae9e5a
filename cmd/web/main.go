package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gogpu/gg"
	"golang.org/x/sync/errgroup"

	"thirdcoast.systems/twpics/cmd/web/auth"
	"thirdcoast.systems/twpics/cmd/web/internal/web"
	"thirdcoast.systems/twpics/internal/config"
	"thirdcoast.systems/twpics/pkg/editor"
	"thirdcoast.systems/twpics/pkg/render"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Starting web service")
	gg.SetLogger(slog.Default())

	conf, err := config.LoadConfig(ctx)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	hub := editor.NewHub(editor.HubOptions{
		Renderer:    render.New(conf.Encoding),
		Limits:      conf.ImageLimits(),
		IdleTimeout: conf.SessionIdleTimeout,
	})

	sessionMgr := auth.NewSessionManager(conf.SessionSecret, conf.SessionIdleTimeout)
	if conf.SessionSecret == "" {
		slog.Info("SESSION_SECRET not set; editor sessions will not survive a restart")
	}

	e, err := web.NewWebserver(conf, sessionMgr, hub)
	if err != nil {
		slog.Error("failed to create webserver", "error", err)
		os.Exit(1)
	}

	addr := ":" + strconv.Itoa(conf.WebServerPort)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return hub.Run(gctx)
	})
	g.Go(func() error {
		slog.Info("Listening", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Stopped web service")
}
