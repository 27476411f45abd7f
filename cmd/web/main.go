package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dd-tools/databook/pkg/server"
	"github.com/dd-tools/databook/pkg/services/config"
	"github.com/dd-tools/databook/pkg/services/engine"
	"github.com/dd-tools/databook/pkg/services/qoe"
	"github.com/dd-tools/databook/pkg/services/session"
)

var (
	cfgPath string
	qoePath string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the databook web server",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to the configuration file (defaults to environment only)")
	rootCmd.Flags().StringVar(&qoePath, "qoe", "",
		"Path to a quality-of-earnings adjustments file (YAML)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	settings, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	var adjustments qoe.Adjustments
	if qoePath != "" {
		adjustments, err = qoe.Load(qoePath)
		if err != nil {
			return fmt.Errorf("failed to load adjustments: %w", err)
		}
	}

	analyzer := engine.NewAnalyzer(engine.AnalyzerOptions{
		QoEAdjustments:        adjustments,
		VATRate:               settings.VATRateDecimal(),
		TrialBalanceTolerance: settings.TrialBalanceToleranceDecimal(),
	})

	registry := session.NewRegistry(settings.SessionTTL)
	registry.StartCleanup(ctx, settings.CleanupInterval)

	sessions := session.NewService(registry, analyzer, settings.UploadDir, settings.AgentModel)

	api := server.NewWebAPI(logger, server.Config{
		Addr:            settings.Addr,
		ShutdownTimeout: settings.ShutdownTimeout,
		Dependencies: server.Dependencies{
			Sessions: sessions,
		},
	})

	return api.Start()
}
