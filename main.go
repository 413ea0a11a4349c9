package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/parisxmas/windowspec/internal/catalog"
	"github.com/parisxmas/windowspec/internal/config"
	"github.com/parisxmas/windowspec/internal/gelf"
	"github.com/parisxmas/windowspec/internal/handler"
	"github.com/parisxmas/windowspec/internal/locale"
	"github.com/parisxmas/windowspec/internal/navstate"
	"github.com/parisxmas/windowspec/internal/preview"
	"github.com/parisxmas/windowspec/internal/router"
	"github.com/parisxmas/windowspec/internal/service"
	"github.com/parisxmas/windowspec/internal/view"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config: %v", err)
	}

	// GELF UDP logging
	if cfg.GelfAddr != "" {
		gelfWriter, err := gelf.New(cfg.GelfAddr, "windowspec")
		if err != nil {
			log.Printf("Warning: GELF init failed: %v", err)
		} else {
			defer gelfWriter.Close()
			log.SetOutput(io.MultiWriter(os.Stderr, gelfWriter))
			log.Printf("GELF logging: enabled (%s)", cfg.GelfAddr)
		}
	}
	if cfg.UsingDevSecret() {
		log.Printf("Warning: WQ_SECRET not set, using the development secret")
	}

	cat, err := catalog.Load()
	if err != nil {
		log.Fatalf("Failed to load form catalog: %v", err)
	}
	bundle, err := locale.New(cfg.DefaultLang)
	if err != nil {
		log.Fatalf("Failed to load messages: %v", err)
	}
	log.Printf("Languages: %v", bundle.Languages())
	render, err := view.New()
	if err != nil {
		log.Fatalf("Failed to parse templates: %v", err)
	}
	nav, err := navstate.NewCarrier(cfg.Secret, navstate.DefaultTTL)
	if err != nil {
		log.Fatalf("Navigation state: %v", err)
	}

	// Services
	previews := preview.NewStore(cfg.MaxPhotoBytes)
	questionnaireSvc := service.NewQuestionnaireService(previews, cfg.SessionTTL)

	// Handlers
	landingH := handler.NewLandingHandler(render, nav)
	questionnaireH := handler.NewQuestionnaireHandler(questionnaireSvc, nav, cat, render, cfg.MaxPhotoBytes)
	resultsH := handler.NewResultsHandler(nav, previews, render)
	previewH := handler.NewPreviewHandler(previews)
	healthH := handler.NewHealthHandler(questionnaireSvc, previews)

	// Router
	r := router.New(bundle, landingH, questionnaireH, resultsH, previewH, healthH)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeperDone := make(chan struct{})
	go func() {
		defer close(sweeperDone)
		questionnaireSvc.Run(ctx, cfg.SweepInterval)
	}()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Warning: shutdown: %v", err)
		}
	}()

	log.Printf("Window questionnaire server starting on %s (session ttl %s)", cfg.HTTPAddr, cfg.SessionTTL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
	<-sweeperDone
	log.Printf("Server stopped, %d previews still live", previews.Live())
}
