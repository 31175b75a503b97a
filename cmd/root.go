package cmd

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"scholarscout/internal/ai"
	"scholarscout/internal/secrets"
	"scholarscout/internal/workflow"
)

const (
	app = "scholarscout"
)

type Config struct {
	Server    *ServerConfig    `mapstructure:"server"`
	AI        *AIConfig        `mapstructure:"ai"`
	Institute *InstituteConfig `mapstructure:"institute"`
}

type ServerConfig struct {
	Address     string        `mapstructure:"address"`
	SessionTTL  time.Duration `mapstructure:"session-ttl"`
	MaxUploadMB int64         `mapstructure:"max-upload-mb"`
}

type AIConfig struct {
	UseLLM     bool          `mapstructure:"use-llm"`
	Provider   string        `mapstructure:"provider"`
	Model      string        `mapstructure:"model"`
	APIKey     string        `mapstructure:"api-key" json:"-"`
	APIKeyFile string        `mapstructure:"api-key-file"`
	MaxRetries int           `mapstructure:"max-retries"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type InstituteConfig struct {
	Name  string `mapstructure:"name"`
	Pitch string `mapstructure:"pitch"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "scholarscout screens researcher resumes, scores them against a recruiting direction and drafts outreach emails",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.api-key-file", "SCHOLARSCOUT_API_KEY_FILE"); err != nil {
		log.Fatalf("binding SCHOLARSCOUT_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is scholarscout.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		// Every command runs with built-in defaults, so a missing default
		// config file is fine. An explicitly named one has to exist.
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && cfgFile == "" {
			return
		}

		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config == nil {
		config = &Config{}
	}

	return config, nil
}

// modelConfig resolves the ai section into a per-call model config. A missing
// credential is logged, not fatal: tasks downgrade to the heuristic path when
// the model client cannot be built.
func modelConfig(config *Config, logger *zap.Logger) ai.ModelConfig {
	cfg := ai.ModelConfig{Provider: ai.ProviderOpenAI}

	section := config.AI
	if section == nil {
		section = &AIConfig{}
	}

	if provider := strings.TrimSpace(section.Provider); provider != "" {
		cfg.Provider = ai.Provider(strings.ToLower(provider))
	}

	cfg.Model = section.Model
	cfg.MaxRetries = section.MaxRetries
	cfg.Timeout = section.Timeout

	keyFile := strings.TrimSpace(section.APIKeyFile)
	if keyFile == "" {
		keyFile = strings.TrimSpace(viper.GetString("ai.api-key-file"))
	}

	key, err := secrets.Load(secrets.Source{
		Name:  string(cfg.Provider) + " api key",
		Value: section.APIKey,
		File:  keyFile,
		Env:   ai.KeyEnvVar(cfg.Provider),
	})
	if err != nil {
		logger.Warn("model credential not resolved, tasks will use the heuristic path", zap.Error(err))
		return cfg
	}

	cfg.APIKey = key

	return cfg
}

func instituteFromConfig(config *Config) workflow.Institute {
	if config.Institute == nil {
		return workflow.Institute{}
	}

	return workflow.Institute{
		Name:  config.Institute.Name,
		Pitch: config.Institute.Pitch,
	}
}
