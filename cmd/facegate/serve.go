package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mereles/facegate/internal/config"
	"github.com/mereles/facegate/internal/db"
	"github.com/mereles/facegate/internal/facegate/service"
	"github.com/mereles/facegate/internal/facegate/store/sqlite"
	"github.com/mereles/facegate/internal/facegate/training"
	"github.com/mereles/facegate/internal/facegate/types"
	"github.com/mereles/facegate/internal/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the admin API and the recognition core",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "facegate ", log.LstdFlags|log.LUTC)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
	if err != nil {
		return err
	}
	defer conn.Close()

	writer := db.NewWorker(conn)
	defer writer.Close()

	identityStore := sqlite.NewIdentityStore(conn, writer)
	permissionStore := sqlite.NewPermissionStore(conn, writer)
	eventStore := sqlite.NewAccessEventStore(conn, writer)

	evaluator := service.NewEvaluator(identityStore, permissionStore, nil)

	recognizer := service.NewRecognizer(service.RecognizerDeps{
		Identities: identityStore,
		Evaluator:  evaluator,
		Events:     eventStore,
		Logger:     logger,
		Sink: service.SinkFunc(func(ev types.DecisionEvent) {
			logger.Printf("decision kind=%s identity=%q reason=%q", ev.Kind, ev.IdentityName, ev.Reason)
		}),
	}, service.RecognizerConfig{
		DistanceThreshold: cfg.DistanceThreshold,
		CooldownWindow:    cfg.Cooldown,
		Sector:            cfg.Sector,
	})

	// Load whatever the last training run produced. A missing label map
	// just means "no enrolled users" until someone trains; a missing
	// classifier degrades to detection-only. Neither prevents startup.
	labels, err := training.LoadLabelMap(filepath.Join(cfg.ArtifactsDir, training.LabelMapFile))
	if err != nil {
		logger.Printf("label map unreadable, starting without recognition: %v", err)
		labels = training.LabelMap{}
	}
	recognizer.Reload(labels, nil)
	if len(labels) == 0 {
		logger.Printf("no trained identities; recognition idle until first training")
	}

	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:      logger,
		Addr:        cfg.HTTPAddr,
		Identities:  identityStore,
		Permissions: permissionStore,
		Events:      eventStore,
		Evaluator:   evaluator,
	})

	go func() {
		logger.Printf("listening on %s", cfg.HTTPAddr)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
