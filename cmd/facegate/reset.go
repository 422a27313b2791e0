package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mereles/facegate/internal/config"
	"github.com/mereles/facegate/internal/db"
	"github.com/mereles/facegate/internal/facegate/training"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase all identities, rules, audit events and training artifacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReset(cmd.Context())
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "skip the confirmation prompt")
}

func runReset(ctx context.Context) error {
	cfg := config.FromEnv()

	if !resetYes {
		fmt.Printf("This erases ALL data in %s and the artifacts in %s.\n", cfg.DBPath, cfg.ArtifactsDir)
		fmt.Print("Type YES to continue: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return fmt.Errorf("read confirmation: %w", err)
		}
		if strings.TrimSpace(line) != "YES" {
			fmt.Println("aborted")
			return nil
		}
	}

	conn, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := db.Reset(ctx, conn); err != nil {
		return err
	}
	if err := training.RemoveArtifacts(cfg.ArtifactsDir); err != nil {
		return err
	}

	fmt.Println("reset complete")
	return nil
}
