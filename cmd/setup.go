package cmd

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/stockx-tools/stockroom/pkg/api"
	"github.com/stockx-tools/stockroom/pkg/client"
	"github.com/stockx-tools/stockroom/pkg/config"
	"github.com/stockx-tools/stockroom/pkg/inventory"
	"github.com/stockx-tools/stockroom/pkg/journal"
	"github.com/stockx-tools/stockroom/pkg/opsserver"
)

// runtime bundles the wired-up components every subcommand needs.
type runtime struct {
	cfg       *config.Config
	logger    *zap.Logger
	client    *client.Client
	api       *api.API
	inventory *inventory.Inventory
	journal   journal.Journal
}

// setup loads configuration, initializes the API client and builds the
// inventory. The returned teardown must be called before exit.
func setup(ctx context.Context) (*runtime, func(), error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found")
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger()
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}

	c := client.New(&client.Config{
		BaseURL:              cfg.BaseURL(),
		APIKey:               cfg.APIKey,
		TokenURL:             cfg.OAuthTokenURL,
		Audience:             cfg.OAuthAudience,
		ClientID:             cfg.ClientID,
		ClientSecret:         cfg.ClientSecret,
		RefreshToken:         cfg.RefreshToken,
		TokenRefreshInterval: cfg.TokenRefreshInterval,
		RequestInterval:      cfg.RequestInterval,
		RetryMaxAttempts:     cfg.RetryMaxAttempts,
		RetryInitialDelay:    cfg.RetryInitialDelay,
		RetryTimeout:         cfg.RetryTimeout,
		Logger:               logger,
	})
	if err := c.Initialize(ctx); err != nil {
		return nil, nil, fmt.Errorf("initialize client: %w", err)
	}

	a, err := api.New(c, logger)
	if err != nil {
		c.Close()
		return nil, nil, fmt.Errorf("create api: %w", err)
	}

	inv := inventory.New(&inventory.Config{
		API:          a,
		Logger:       logger,
		Currency:     cfg.Currency,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
	})

	j, err := newJournal(cfg, logger)
	if err != nil {
		c.Close()
		return nil, nil, fmt.Errorf("create journal: %w", err)
	}

	var ops *opsserver.Server
	if cfg.OpsPort != "" {
		health := opsserver.NewHealthChecker()
		health.SetReady(true)
		ops = opsserver.New(&opsserver.Config{
			Port:          cfg.OpsPort,
			Logger:        logger,
			HealthChecker: health,
		})
		go func() {
			if err := ops.Start(); err != nil {
				logger.Warn("ops-server-failed", zap.Error(err))
			}
		}()
	}

	teardown := func() {
		if ops != nil {
			_ = ops.Shutdown(context.Background())
		}
		if err := j.Close(); err != nil {
			logger.Warn("journal-close-failed", zap.Error(err))
		}
		c.Close()
		_ = logger.Sync()
	}

	return &runtime{
		cfg:       cfg,
		logger:    logger,
		client:    c,
		api:       a,
		inventory: inv,
		journal:   j,
	}, teardown, nil
}

func newJournal(cfg *config.Config, logger *zap.Logger) (journal.Journal, error) {
	if cfg.JournalMode == "postgres" {
		return journal.NewPostgresJournal(&journal.PostgresConfig{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPass,
			Database: cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSL,
			Logger:   logger,
		})
	}
	return journal.NewConsoleJournal(logger), nil
}
