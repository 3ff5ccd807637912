package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-rank/internal/ai"
	"github.com/spigell/resume-rank/internal/ai/bedrock"
	"github.com/spigell/resume-rank/internal/ai/gemini"
	"github.com/spigell/resume-rank/internal/awsutil"
	"github.com/spigell/resume-rank/internal/document"
	"github.com/spigell/resume-rank/internal/logger"
	"github.com/spigell/resume-rank/internal/screening"
	"github.com/spigell/resume-rank/internal/secrets"
	"github.com/spigell/resume-rank/internal/storage/s3"
)

// setup builds the logger and the configuration shared by every command.
func setup() (*zap.Logger, *Config) {
	lg, err := logger.New(app, viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		lg.Fatal("getting a config", zap.Error(err))
	}

	return lg, config
}

func newStore(ctx context.Context, cfg StorageConfig, log *zap.Logger) (*s3.FileStore, error) {
	conf := s3.Config{
		Bucket:       cfg.Bucket,
		Region:       cfg.Region,
		EndpointURL:  cfg.Endpoint,
		AccessKey:    cfg.AccessKey,
		UsePathStyle: cfg.UsePathStyle,
		MaxAttempts:  cfg.MaxAttempts,
	}

	// Without an access key the SDK default credential chain is used.
	if strings.TrimSpace(cfg.AccessKey) != "" {
		secret, err := secrets.Load(secrets.Source{
			Name:  "storage secret key",
			Value: cfg.SecretKey,
			File:  cfg.SecretKeyFile,
			Env:   "AWS_SECRET_ACCESS_KEY",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set storage.secret-key-file or storage.secret-key)", err)
		}
		conf.SecretKey = secret
	}

	return s3.NewFileStore(ctx, conf, log.With(zap.String("component", "storage")))
}

func newCompleter(ctx context.Context, cfg AIConfig, log *zap.Logger) (ai.Completer, error) {
	switch provider := strings.TrimSpace(strings.ToLower(cfg.Provider)); provider {
	case "", "bedrock":
		awsCfg, err := awsutil.LoadConfig(ctx, awsutil.Options{
			Region:         cfg.Bedrock.Region,
			MaxAttempts:    cfg.Bedrock.MaxAttempts,
			Timeout:        cfg.Bedrock.ReadTimeout,
			ConnectTimeout: cfg.Bedrock.ConnectTimeout,
		})
		if err != nil {
			return nil, err
		}
		return bedrock.New(awsCfg, cfg.Bedrock.ModelID, cfg.MaxLogLength, log), nil
	case "gemini":
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: cfg.Gemini.APIKey,
			File:  cfg.Gemini.APIKeyFile,
			Env:   "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
		}
		return gemini.NewGenerator(ctx, gemini.Config{
			APIKey:       apiKey,
			Model:        cfg.Gemini.Model,
			MaxRetries:   cfg.Gemini.MaxRetries,
			MaxLogLength: cfg.MaxLogLength,
		}, log)
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}

func requestOptions(cfg RequestConfig, maxLogLength int) screening.Options {
	return screening.Options{
		MaxTokens:    cfg.MaxTokens,
		Temperature:  cfg.Temperature,
		MaxLogLength: maxLogLength,
	}
}

func newExtractor(ctx context.Context, config *Config, completer ai.Completer, log *zap.Logger) (*screening.Extractor, error) {
	store, err := newStore(ctx, config.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}

	text, err := document.NewTextExtractor(ctx, log.With(zap.String("component", "document")))
	if err != nil {
		return nil, err
	}

	return screening.NewExtractor(store, text, completer,
		requestOptions(config.Extract, config.AI.MaxLogLength),
		log.With(zap.String("component", "extractor")),
	), nil
}

func newRanker(config *Config, completer ai.Completer, log *zap.Logger) *screening.Ranker {
	return screening.NewRanker(completer,
		requestOptions(config.Rank, config.AI.MaxLogLength),
		log.With(zap.String("component", "ranker")),
	)
}
