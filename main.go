package main

import (
	"fmt"
	"os"

	"github.com/jonesrussell/north-cloud/imgur-proxy/internal/api"
	"github.com/jonesrussell/north-cloud/imgur-proxy/internal/config"
	"github.com/jonesrussell/north-cloud/imgur-proxy/internal/configloader"
	"github.com/jonesrussell/north-cloud/imgur-proxy/internal/domain"
	"github.com/jonesrussell/north-cloud/imgur-proxy/internal/imgur"
	"github.com/jonesrussell/north-cloud/imgur-proxy/internal/logger"
	"github.com/jonesrussell/north-cloud/imgur-proxy/internal/resolve"
	"github.com/jonesrussell/north-cloud/imgur-proxy/internal/telemetry"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	// Initialize logger
	log, err := createLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting imgur-proxy service",
		logger.String("name", cfg.Service.Name),
		logger.String("version", cfg.Service.Version),
		logger.Int("port", cfg.Service.Port),
		logger.Bool("debug", cfg.Service.Debug),
	)

	return runServer(cfg, log)
}

// loadConfig loads configuration from config file.
func loadConfig() (*config.Config, error) {
	configPath := configloader.GetConfigPath("config.yml")
	return config.Load(configPath)
}

// createLogger creates a logger instance from configuration.
func createLogger(cfg *config.Config) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Service.Debug,
	})
	if err != nil {
		return nil, err
	}
	return log.With(logger.String("service", "imgur-proxy")), nil
}

// runServer wires the classifier, origin client, and HTTP server, then runs
// with graceful shutdown.
func runServer(cfg *config.Config, log logger.Logger) int {
	domains := domain.NewAllowedDomains(cfg.Imgur.AllowedDomains)
	classifier := resolve.NewClassifier(domains, cfg.Imgur.CDNHost)
	log.Info("URL classifier initialized",
		logger.Strings("allowed_domains", cfg.Imgur.AllowedDomains),
		logger.String("cdn_host", cfg.Imgur.CDNHost),
	)

	metrics := telemetry.NewMetrics()
	client := imgur.NewClient(cfg, metrics, log)

	handler := api.NewHandler(cfg, classifier, client, metrics, log)
	server := api.NewServer(cfg, handler, log)

	log.Info("Imgur proxy starting",
		logger.Int("port", cfg.Service.Port),
		logger.String("api_base_url", cfg.Imgur.APIBaseURL),
	)

	if runErr := server.Run(); runErr != nil {
		log.Error("Server error", logger.Error(runErr))
		return 1
	}

	log.Info("Imgur proxy exited cleanly")
	return 0
}
