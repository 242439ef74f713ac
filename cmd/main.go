// Command roulette plays on-chain roulette from the terminal and serves the
// bet history relay.
//
// Usage:
//
//	roulette setup                   write config.gen.yaml interactively
//	roulette serve --config c.yaml   run the bet history relay
//	roulette play  --config c.yaml   play against the deployed contracts
//
// Environment variables (also read from .env) override the config file:
//
//	NODE_URL, CHAIN_ID, LEDGER_ADDRESS, GAME_ADDRESS, CONTRACTS_FILE,
//	DEV_PRIVATE_KEY, DEV_MNEMONIC, EXTERNAL_SIGNER_URL,
//	PORT, DATABASE_URL, MONGODB_URI, RELAY_URL
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/vadiminshakov/roulette/config"
	"github.com/vadiminshakov/roulette/internal/clients"
	"github.com/vadiminshakov/roulette/internal/services/connection"
	"github.com/vadiminshakov/roulette/internal/services/relay"
	"github.com/vadiminshakov/roulette/internal/services/roulette"
	"github.com/vadiminshakov/roulette/internal/storage/bets"
	"github.com/vadiminshakov/roulette/internal/tui"
	"github.com/vadiminshakov/roulette/internal/web"
	"go.uber.org/zap"
)

var (
	configPath string
	logPath    string
)

var rootCmd = &cobra.Command{
	Use:           "roulette",
	Short:         "On-chain roulette client and bet history relay",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bet history relay",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		logger, err := zap.NewProduction()
		if err != nil {
			return err
		}
		defer logger.Sync()

		return serve(cmd.Context(), cfg, logger)
	},
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play roulette in the terminal",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// the terminal belongs to the game, logs go to a file
		zcfg := zap.NewProductionConfig()
		zcfg.OutputPaths = []string{logPath}
		logger, err := zcfg.Build()
		if err != nil {
			return err
		}
		defer logger.Sync()

		return play(cmd.Context(), cfg, logger)
	},
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create a configuration file interactively",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return tui.RunSetup(cmd.Context(), os.Stdout, tui.GeneratedConfig)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config (defaults to config.gen.yaml when present)")
	playCmd.Flags().StringVar(&logPath, "log", "roulette.log", "log file")

	rootCmd.AddCommand(serveCmd, playCmd, setupCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		if _, err := os.Stat(tui.GeneratedConfig); err == nil {
			path = tui.GeneratedConfig
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, errors.Wrap(err, "failed to get configuration")
	}
	return cfg, nil
}

func serve(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	store, err := bets.Open(ctx, cfg.Relay.StoreDSN)
	if err != nil {
		return errors.Wrap(err, "open bet store")
	}
	defer store.Close()

	var opts []web.ServerOption
	if len(cfg.Relay.AllowedOrigins) > 0 {
		opts = append(opts, web.WithAllowedOrigins(cfg.Relay.AllowedOrigins...))
	}
	server := web.NewServer(cfg.Relay.Addr, store, logger, opts...)

	logger.Info("relay started", zap.String("addr", cfg.Relay.Addr), zap.String("store", storeScheme(cfg.Relay.StoreDSN)))

	if len(cfg.Relay.TLSDomains) > 0 {
		return server.StartWithAutoTLS(ctx, cfg.Relay.TLSDomains, cfg.Relay.CertCacheDir)
	}
	return server.Start(ctx)
}

func play(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	var opts []connection.Option
	if cfg.Signer.ExternalURL != "" {
		opts = append(opts, connection.WithInjectedIdentity(func() (*clients.Identity, error) {
			return clients.NewExternalIdentity(cfg.Signer.ExternalURL, cfg.ChainID)
		}))
	}

	manager := connection.NewManager(connection.Config{
		NodeURL:   cfg.NodeURL,
		ChainID:   cfg.ChainID,
		Addresses: cfg.Addresses,
	}, func() (*clients.Identity, error) {
		return cfg.Signer.DevIdentity(cfg.ChainID)
	}, logger, opts...)
	defer manager.Close()

	history := relay.NewClient(cfg.Client.RelayURL, logger)
	notifier := tui.NewNotifier(os.Stdout)
	controller := roulette.NewController(history, tui.NewAnimator(os.Stdout, tui.DefaultSpinDuration), notifier, logger)

	game := tui.NewGame(tui.GameConfig{
		Controller:     controller,
		Connector:      manager,
		History:        history,
		Prompter:       tui.FormPrompter{},
		Notifier:       notifier,
		GasLimit:       cfg.GasLimit,
		PreferInjected: cfg.Client.PreferInjected(),
		Out:            os.Stdout,
	}, logger)

	return game.Run(ctx)
}

// storeScheme keeps credentials in the DSN out of the logs.
func storeScheme(dsn string) string {
	scheme, _, _ := strings.Cut(dsn, "://")
	return scheme
}
