package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr string

	// DB
	Env    string // "dev" | "prod"
	DBPath string // e.g. "./data/facegate.db"

	// Training artifacts and dataset layout
	DatasetDir   string
	ArtifactsDir string

	// Recognition
	Sector            string // sector this entry point guards; empty = unscoped
	Cooldown          time.Duration
	DistanceThreshold float64
}

func FromEnv() Config {
	addr := getenvDefault("FACEGATE_HTTP_ADDR", ":8080")

	env := strings.ToLower(getenvDefault("FACEGATE_ENV", "dev"))
	if env != "dev" && env != "prod" {
		// fail-soft: treat unknown as dev
		env = "dev"
	}

	dbPath := getenvDefault("FACEGATE_DB_PATH", "./data/facegate.db")
	datasetDir := getenvDefault("FACEGATE_DATASET_DIR", "./dataset")
	artifactsDir := getenvDefault("FACEGATE_ARTIFACTS_DIR", "./artifacts")

	sector := strings.TrimSpace(os.Getenv("FACEGATE_SECTOR"))

	cooldownSecs := getenvFloat("FACEGATE_COOLDOWN_SECONDS", 5.0)
	threshold := getenvFloat("FACEGATE_DISTANCE_THRESHOLD", 1e6)

	return Config{
		HTTPAddr: addr,
		Env:      env,
		DBPath:   dbPath,

		DatasetDir:   datasetDir,
		ArtifactsDir: artifactsDir,

		Sector:            sector,
		Cooldown:          time.Duration(cooldownSecs * float64(time.Second)),
		DistanceThreshold: threshold,
	}
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func getenvFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return def
	}
	return f
}
