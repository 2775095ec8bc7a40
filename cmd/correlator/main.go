// Correlator server - correlates incidents with the technical changes most
// likely to have caused them, over an HTTP API.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/codeready-toolchain/correlator/pkg/api"
	"github.com/codeready-toolchain/correlator/pkg/config"
	"github.com/codeready-toolchain/correlator/pkg/extract"
	"github.com/codeready-toolchain/correlator/pkg/jira"
	"github.com/codeready-toolchain/correlator/pkg/job"
	"github.com/codeready-toolchain/correlator/pkg/storage"
	"github.com/codeready-toolchain/correlator/pkg/version"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir",
		getEnv("CONFIG_DIR", "./deploy/config"),
		"Path to configuration directory")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded, continuing with existing environment")
	}

	httpPort := getEnv("HTTP_PORT", "8080")
	gin.SetMode(getEnv("GIN_MODE", "release"))

	log.Printf("Starting %s", version.Full())
	log.Printf("HTTP Port: %s", httpPort)
	log.Printf("Config Directory: %s", *configDir)

	ctx := context.Background()

	cfg, err := config.Initialize(*configDir)
	if err != nil {
		log.Fatalf("Failed to initialize configuration: %v", err)
	}
	if url := os.Getenv("JIRA_URL"); url != "" {
		cfg.TrackerURL = url
	}

	dbConfig, err := storage.LoadConfigFromEnv()
	if err != nil {
		log.Fatalf("Failed to load database config: %v", err)
	}
	dbClient, err := storage.NewClient(ctx, dbConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			log.Printf("Error closing database client: %v", err)
		}
	}()
	log.Println("✓ Connected to PostgreSQL database")
	log.Println("✓ Database schema initialized")

	store := storage.NewStore(dbClient)
	settings := storage.NewSettings(store, cfg)

	normalizer := extract.New(cfg)
	coordinator := job.NewCoordinator(normalizer, cfg.FetchConcurrency)
	registry := job.NewRegistry()
	runner := job.NewRunner(coordinator, store, registry, func(creds job.Credentials) job.Tracker {
		return jira.NewClient(cfg.TrackerURL, creds.Username, creds.Password)
	})
	log.Println("✓ Services initialized")

	verify := func(ctx context.Context, username, password string) (string, error) {
		me, err := jira.NewClient(cfg.TrackerURL, username, password).Myself(ctx)
		if err != nil {
			return "", err
		}
		return me.DisplayName, nil
	}

	server := api.NewServer(cfg, dbClient, store, settings, runner, verify)

	log.Printf("HTTP server listening on :%s", httpPort)
	if err := server.Start(":" + httpPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
