package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danilofalcao/torchserve-gateway/internal/constants/gateway"
	torchserveconstants "github.com/danilofalcao/torchserve-gateway/internal/constants/torchserve"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("BACKEND", "")
	cfg, err := loadConfig(newViper(nil, ""))
	require.NoError(t, err)

	require.Equal(t, gateway.BackendTorchserve, cfg.Backend)
	require.Equal(t, gateway.DefaultPort, cfg.Port)
	require.Equal(t, torchserveconstants.DefaultInferenceEndpoint, cfg.Torchserve.InferenceEndpoint)
	require.Equal(t, torchserveconstants.DefaultManagementEndpoint, cfg.Torchserve.ManagementEndpoint)
	require.Equal(t, torchserveconstants.DefaultTimeout, cfg.BackendTimeout)
	require.Equal(t, gateway.DefaultRequestTimeout, cfg.Timeout)
}

func TestLoadConfigEnvironment(t *testing.T) {
	t.Setenv("INFERENCE_URL", "http://inference:9000")
	t.Setenv("TORCHSERVE_MANAGEMENT_ENDPOINT", "http://management:9001")
	t.Setenv("BACKEND_TIMEOUT", "5s")
	t.Setenv("PORT", "9999")

	cfg, err := loadConfig(newViper(nil, ""))
	require.NoError(t, err)
	require.Equal(t, "http://inference:9000", cfg.Torchserve.InferenceEndpoint)
	require.Equal(t, "http://management:9001", cfg.Torchserve.ManagementEndpoint)
	require.Equal(t, 5*time.Second, cfg.BackendTimeout)
	require.Equal(t, "9999", cfg.Port)
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
backend: ollama
port: "8100"
log_level: debug
ollama:
  endpoint: http://ollama:11434
  models:
    llama2.7b: llama2:7b-chat
`)
	cfg, err := loadConfig(newViper(nil, path))
	require.NoError(t, err)
	require.Equal(t, gateway.BackendOllama, cfg.Backend)
	require.Equal(t, "8100", cfg.Port)
	require.Equal(t, "debug", cfg.Loglevel)
	require.Equal(t, "http://ollama:11434", cfg.Ollama.Endpoint)
	require.Equal(t, map[string]string{"llama2.7b": "llama2:7b-chat"}, cfg.Ollama.Models)
}

func TestLoadConfigFlagsOverride(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("port", gateway.DefaultPort, "")
	flags.String("log-level", "info", "")
	require.NoError(t, flags.Parse([]string{"--port", "7000", "--log-level", "warn"}))

	cfg, err := loadConfig(newViper(flags, ""))
	require.NoError(t, err)
	require.Equal(t, "7000", cfg.Port)
	require.Equal(t, "warn", cfg.Loglevel)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"backend":   "backend: openai\n",
		"log level": "log_level: chatty\n",
		"timeout":   "timeout: soon\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := loadConfig(newViper(nil, writeConfig(t, body)))
			require.Error(t, err)
		})
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := loadConfig(newViper(nil, filepath.Join(t.TempDir(), "absent.yaml")))
	require.Error(t, err)
}

func TestGetBackend(t *testing.T) {
	require.Equal(t, "torchserve", getBackend(&config{Backend: gateway.BackendTorchserve}).Name())
	require.Equal(t, "ollama", getBackend(&config{Backend: gateway.BackendOllama}).Name())
}
