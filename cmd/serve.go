package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-rank/internal/ai"
	"github.com/spigell/resume-rank/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the parse and rank endpoints over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("address", "a", "", "listen address (default :8080)")

	viper.BindPFlag("server.address", serveCmd.Flags().Lookup("address"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, config := setup()
	defer logger.Sync() //nolint:errcheck

	completer, err := newCompleter(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("creating completion provider", zap.Error(err))
	}

	logger.Info("starting the resume-rank server",
		zap.String("version", version),
		zap.String("provider", config.AI.Provider),
		zap.String("model", ai.ModelOf(completer)),
	)

	extractor, err := newExtractor(ctx, config, completer, logger)
	if err != nil {
		logger.Fatal("creating extractor", zap.Error(err))
	}

	srv := server.New(config.Server, extractor, newRanker(config, completer, logger), logger)

	if err := srv.Run(ctx); err != nil {
		logger.Fatal("serving http", zap.Error(err))
	}

	logger.Info("server stopped")
}
