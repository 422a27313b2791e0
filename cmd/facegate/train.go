package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/mereles/facegate/internal/config"
	"github.com/mereles/facegate/internal/db"
	"github.com/mereles/facegate/internal/facegate/store/sqlite"
	"github.com/mereles/facegate/internal/facegate/training"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Scan the dataset, label faces and write the label map",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTrain(cmd.Context())
	},
}

func runTrain(ctx context.Context) error {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "facegate ", log.LstdFlags|log.LUTC)

	conn, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
	if err != nil {
		return err
	}
	defer conn.Close()

	writer := db.NewWorker(conn)
	defer writer.Close()

	identityStore := sqlite.NewIdentityStore(conn, writer)

	trainer := training.NewTrainer(cfg.DatasetDir, cfg.ArtifactsDir, identityStore, nil, logger)
	summary, _, err := trainer.Train(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("trained %d identities from %d images\n", summary.Identities, summary.Images)
	for _, key := range summary.Unmatched {
		fmt.Printf("warning: dataset directory %q has no enrolled identity\n", key)
	}
	return nil
}
