package cmd

import (
	"errors"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/resume-rank/internal/ai/bedrock"
	"github.com/spigell/resume-rank/internal/server"
)

const (
	app       = "resume-rank"
	envPrefix = "RESUME_RANK"
)

type Config struct {
	Server  server.Config `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	AI      AIConfig      `mapstructure:"ai"`
	Extract RequestConfig `mapstructure:"extract"`
	Rank    RequestConfig `mapstructure:"rank"`
}

type StorageConfig struct {
	Bucket        string `mapstructure:"bucket"`
	Region        string `mapstructure:"region"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access-key"`
	SecretKey     string `mapstructure:"secret-key"`
	SecretKeyFile string `mapstructure:"secret-key-file"`
	UsePathStyle  bool   `mapstructure:"use-path-style"`
	MaxAttempts   int    `mapstructure:"max-attempts"`
}

type AIConfig struct {
	Provider     string         `mapstructure:"provider"`
	MaxLogLength int            `mapstructure:"max-log-length"`
	Bedrock      *BedrockConfig `mapstructure:"bedrock"`
	Gemini       *GeminiConfig  `mapstructure:"gemini"`
}

type BedrockConfig struct {
	ModelID        string        `mapstructure:"model-id"`
	Region         string        `mapstructure:"region"`
	MaxAttempts    int           `mapstructure:"max-attempts"`
	ReadTimeout    time.Duration `mapstructure:"read-timeout"`
	ConnectTimeout time.Duration `mapstructure:"connect-timeout"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	MaxRetries int    `mapstructure:"max-retries"`
}

// RequestConfig tunes the model calls of one operation.
type RequestConfig struct {
	MaxTokens   int     `mapstructure:"max-tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-rank extracts candidate profiles from resumes and ranks them against a job",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	setDefaults(viper.GetViper())

	if err := bindEnv(viper.GetViper()); err != nil {
		log.Fatalf("binding environment variables: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-rank.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("provider", "", "completion provider: bedrock or gemini")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("ai.provider", rootCmd.PersistentFlags().Lookup("provider"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.request-timeout", 150*time.Second)
	v.SetDefault("server.read-timeout", 15*time.Second)
	v.SetDefault("server.write-timeout", 160*time.Second)

	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.access-key", "")
	v.SetDefault("storage.secret-key", "")
	v.SetDefault("storage.secret-key-file", "")
	v.SetDefault("storage.use-path-style", false)
	v.SetDefault("storage.max-attempts", 3)

	v.SetDefault("ai.provider", "bedrock")
	v.SetDefault("ai.max-log-length", 200)
	v.SetDefault("ai.bedrock.model-id", bedrock.DefaultModelID)
	v.SetDefault("ai.bedrock.region", "us-east-1")
	v.SetDefault("ai.bedrock.max-attempts", 3)
	v.SetDefault("ai.bedrock.read-timeout", 120*time.Second)
	v.SetDefault("ai.bedrock.connect-timeout", 10*time.Second)
	v.SetDefault("ai.gemini.api-key", "")
	v.SetDefault("ai.gemini.api-key-file", "")
	v.SetDefault("ai.gemini.model", "gemini-2.5-pro")
	v.SetDefault("ai.gemini.max-retries", 3)

	v.SetDefault("extract.max-tokens", 1024)
	v.SetDefault("extract.temperature", 0.0)
	v.SetDefault("rank.max-tokens", 4096)
	v.SetDefault("rank.temperature", 0.0)
}

// bindEnv maps RESUME_RANK_* variables onto config keys and keeps the plain
// variable names used by existing deployments working.
func bindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	aliases := map[string][]string{
		"storage.bucket":         {"RESUME_RANK_STORAGE_BUCKET", "S3_BUCKET_NAME"},
		"storage.region":         {"RESUME_RANK_STORAGE_REGION", "AWS_REGION"},
		"ai.bedrock.region":      {"RESUME_RANK_AI_BEDROCK_REGION", "AWS_REGION"},
		"ai.bedrock.model-id":    {"RESUME_RANK_AI_BEDROCK_MODEL_ID", "BEDROCK_MODEL_ID"},
		"ai.gemini.api-key-file": {"RESUME_RANK_AI_GEMINI_API_KEY_FILE", "GEMINI_API_KEY_FILE"},
	}

	for key, envs := range aliases {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return err
		}
	}

	return nil
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The config file is optional unless given explicitly.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.AI.Bedrock == nil {
		config.AI.Bedrock = &BedrockConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}

	return config, nil
}
