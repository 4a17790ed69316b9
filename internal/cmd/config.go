package cmd

import (
	"strings"
	"time"

	"github.com/danilofalcao/torchserve-gateway/internal/constants/gateway"
	ollamaconstants "github.com/danilofalcao/torchserve-gateway/internal/constants/ollama"
	torchserveconstants "github.com/danilofalcao/torchserve-gateway/internal/constants/torchserve"
	"github.com/danilofalcao/torchserve-gateway/internal/server/logger"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type TorchserveConfig struct {
	InferenceEndpoint  string `mapstructure:"inference_endpoint"`
	ManagementEndpoint string `mapstructure:"management_endpoint"`
}

type OllamaConfig struct {
	Endpoint string            `mapstructure:"endpoint"`
	Models   map[string]string `mapstructure:"models"`
}

type config struct {
	Backend        string           `mapstructure:"backend"`
	Torchserve     TorchserveConfig `mapstructure:"torchserve"`
	Ollama         OllamaConfig     `mapstructure:"ollama"`
	Port           string           `mapstructure:"port"`
	Loglevel       string           `mapstructure:"log_level"`
	LogFile        string           `mapstructure:"log_file"`
	Timeout        string           `mapstructure:"timeout"`
	BackendTimeout time.Duration    `mapstructure:"backend_timeout"`
	ApiKey         string           `mapstructure:"api_key"`
	AllowedOrigins []string         `mapstructure:"allowed_origins"`
}

// newViper builds the config reader. A custom key delimiter allows model names
// with periods in them.
func newViper(flags *pflag.FlagSet, configPath string) *viper.Viper {
	v := viper.NewWithOptions(
		viper.KeyDelimiter("#"),
		viper.EnvKeyReplacer(strings.NewReplacer("#", "_")),
	)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetDefault("backend", gateway.BackendTorchserve)
	v.SetDefault("port", gateway.DefaultPort)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("timeout", gateway.DefaultRequestTimeout)
	v.SetDefault("backend_timeout", torchserveconstants.DefaultTimeout)
	v.SetDefault("api_key", "")
	v.SetDefault("allowed_origins", []string{})
	v.SetDefault("torchserve#inference_endpoint", torchserveconstants.DefaultInferenceEndpoint)
	v.SetDefault("torchserve#management_endpoint", torchserveconstants.DefaultManagementEndpoint)
	v.SetDefault("ollama#endpoint", ollamaconstants.DefaultEndpoint)

	if flags != nil {
		v.BindPFlag("port", flags.Lookup("port"))
		v.BindPFlag("log_level", flags.Lookup("log-level"))
	}

	// Short aliases for the backend endpoints
	v.BindEnv("torchserve#inference_endpoint", "TORCHSERVE_INFERENCE_ENDPOINT", "INFERENCE_URL")
	v.BindEnv("torchserve#management_endpoint", "TORCHSERVE_MANAGEMENT_ENDPOINT", "MANAGEMENT_URL")
	v.BindEnv("ollama#endpoint", "OLLAMA_ENDPOINT", "OLLAMA_API_ENDPOINT")
	v.AutomaticEnv()

	return v
}

// loadConfig reads the optional config file and validates the result.
func loadConfig(v *viper.Viper) (*config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "error reading config file")
		}
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "error unmarshaling config")
	}

	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	switch cfg.Backend {
	case gateway.BackendTorchserve, gateway.BackendOllama:
	default:
		return nil, errors.Errorf("unknown backend %q", cfg.Backend)
	}
	if _, err := logger.ParseLevel(cfg.Loglevel); err != nil {
		return nil, err
	}
	if _, err := time.ParseDuration(cfg.Timeout); err != nil {
		return nil, errors.Wrapf(err, "invalid timeout %q", cfg.Timeout)
	}
	if cfg.BackendTimeout <= 0 {
		return nil, errors.Errorf("backend_timeout must be positive, got %s", cfg.BackendTimeout)
	}
	return &cfg, nil
}
