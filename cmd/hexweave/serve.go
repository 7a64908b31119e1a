package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Neumenon/hexweave/compiler"
	"github.com/Neumenon/hexweave/internal/api"
)

func (a *app) cmdServe() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.New(os.Stdout, "[API] ", log.LstdFlags)
	opts := api.Options{
		Synth:          a.synth,
		GiveLimit:      a.cfg.Give.Limit,
		GiveTemplate:   a.cfg.GiveTemplate(),
		RequestTimeout: a.cfg.Server.RequestTimeout,
		Logger:         logger,
	}

	// Without a spell table the server still parses and synthesizes.
	store, err := a.loadStore(ctx)
	if err != nil {
		logger.Printf("spell table unavailable, /api/v1/translate disabled: %v", err)
	} else {
		defer store.Close()
		opts.Translator = compiler.NewTranslator(store, a.synth, a.logger("[COMPILER] "))
		opts.Spells = store
	}

	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           api.NewServer(opts).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			fatal("serve: %v", err)
		}
	case <-ctx.Done():
		logger.Printf("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			fatal("shutdown: %v", err)
		}
	}
}
