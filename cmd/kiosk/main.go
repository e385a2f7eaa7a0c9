package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"last-snow/internal/config"
	"last-snow/internal/forward"
	"last-snow/internal/ingest"
	"last-snow/internal/logging"
	"last-snow/internal/settings"
	"last-snow/internal/storage"
)

// app holds the components shared by the subcommands.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	settings  *settings.Factory
	records   *storage.Log
	submitter *ingest.Submitter
	closeLog  func()
}

var (
	logLevel string
	kiosk    *app
)

var rootCmd = &cobra.Command{
	Use:   "kiosk",
	Short: "Sentence kiosk: record log, settings and OSC control channel",
	Long: `kiosk records sentences typed at an installation into rotating CSV files
and accepts OSC control messages that change settings or clean up output.

Settings live in <base>/.settings, records in <base>/tmp.csv and
<base>/sentences/<n>.csv. Configuration comes from KIOSK_* environment
variables, optionally loaded from a .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		kiosk = a
		return nil
	},
}

func newApp(cfg *config.Config) (*app, error) {
	logger, closeLog, err := logging.New(cfg.LogLevel, cfg.LogPath())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	factory := settings.NewFactory(cfg.BaseDir, cfg.SettingsFile)
	records := storage.NewLog(cfg.BaseDir, logger,
		storage.WithStagingFile(cfg.StagingFile),
		storage.WithArchiveDir(cfg.ArchiveDir),
	)
	fwd := forward.NewUDP(cfg.ForwardBindAddr, cfg.ForwardTimeout, logger)
	return &app{
		cfg:       cfg,
		logger:    logger,
		settings:  factory,
		records:   records,
		submitter: ingest.New(factory, records, fwd, logger),
		closeLog:  closeLog,
	}, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override KIOSK_LOG_LEVEL")
	rootCmd.AddCommand(serveCmd, submitCmd, sendCmd, statusCmd, languagesCmd)
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}
	if err := execute(context.Background(), os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

// execute runs one command and then flushes and closes the log, whether or
// not the command failed.
func execute(ctx context.Context, args []string) error {
	defer func() {
		if kiosk != nil {
			kiosk.closeLog()
			kiosk = nil
		}
	}()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}
