package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mereles/facegate/internal/config"
	"github.com/mereles/facegate/internal/db"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert development fixtures (dev environment only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeed(cmd.Context())
	},
}

func runSeed(ctx context.Context) error {
	cfg := config.FromEnv()
	if cfg.Env != "dev" {
		return fmt.Errorf("seed only runs with FACEGATE_ENV=dev (current: %s)", cfg.Env)
	}

	conn, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := db.SeedDev(ctx, conn); err != nil {
		return err
	}

	fmt.Println("seeded development fixtures")
	return nil
}
