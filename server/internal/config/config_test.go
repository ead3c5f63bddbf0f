package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	return writeFile(t, "config.yaml", content)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(DefaultAPIKeyEnv, "")

	before := time.Now()
	cfg, err := Load(Options{})
	require.NoError(t, err)

	assert.Equal(t, DefaultHTTPPort, cfg.Server.HTTPPort)
	assert.Equal(t, DefaultGRPCPort, cfg.Server.GRPCPort)
	assert.Equal(t, DefaultServiceName, cfg.Server.ServiceName)
	assert.Equal(t, DefaultAppVersion, cfg.Server.AppVersion)
	assert.Equal(t, DefaultGreeting, cfg.Server.Greeting)
	assert.Equal(t, DefaultDiskPath, cfg.Server.DiskPath)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultModel, cfg.Summarizer.Model)
	assert.Equal(t, DefaultSummaryTimeout, cfg.Summarizer.Timeout)
	assert.Equal(t, DefaultStreamInterval, cfg.Stream.Interval)
	assert.Equal(t, DefaultProbeInterval, cfg.Probe.Interval)
	assert.False(t, cfg.Summarizer.HasAPIKey())
	assert.False(t, cfg.StartedAt.Before(before))
}

func TestLoad_YAML(t *testing.T) {
	p := writeConfig(t, `server:
  http_port: 9091
  grpc_port: 0
  service_name: edge-node
  disk_path: /data
log:
  level: debug
summarizer:
  model: gpt-4o
  timeout: 5s
stream:
  interval: 2s
`)
	cfg, err := Load(Options{ConfigPath: p})
	require.NoError(t, err)

	assert.Equal(t, 9091, cfg.Server.HTTPPort)
	assert.Equal(t, 0, cfg.Server.GRPCPort)
	assert.Equal(t, "edge-node", cfg.Server.ServiceName)
	assert.Equal(t, "/data", cfg.Server.DiskPath)
	assert.Equal(t, DefaultAppVersion, cfg.Server.AppVersion, "unset keys keep defaults")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "gpt-4o", cfg.Summarizer.Model)
	assert.Equal(t, 5*time.Second, cfg.Summarizer.Timeout)
	assert.Equal(t, 2*time.Second, cfg.Stream.Interval)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	p := writeConfig(t, `server:
  app_version: v1
summarizer:
  model: gpt-4o
`)
	t.Setenv("APP_VERSION", "v2.3.0")
	t.Setenv("OPENAI_MODEL", "gpt-4.1-mini")
	t.Setenv("HTTP_PORT", "7000")
	t.Setenv("SUMMARIZER_TIMEOUT", "3s")

	cfg, err := Load(Options{ConfigPath: p})
	require.NoError(t, err)

	assert.Equal(t, "v2.3.0", cfg.Server.AppVersion)
	assert.Equal(t, "gpt-4.1-mini", cfg.Summarizer.Model)
	assert.Equal(t, 7000, cfg.Server.HTTPPort)
	assert.Equal(t, 3*time.Second, cfg.Summarizer.Timeout)
}

func TestLoad_APIKeyFromNamedEnv(t *testing.T) {
	p := writeConfig(t, `summarizer:
  api_key_env: HOSTPULSE_TEST_KEY
`)
	t.Setenv("HOSTPULSE_TEST_KEY", "sk-test")

	cfg, err := Load(Options{ConfigPath: p})
	require.NoError(t, err)
	assert.True(t, cfg.Summarizer.HasAPIKey())
	assert.Equal(t, "sk-test", cfg.Summarizer.APIKey)
}

func TestLoad_APIKeyNotInYAML(t *testing.T) {
	p := writeConfig(t, `summarizer:
  api_key_env: HOSTPULSE_UNSET_KEY
  api_key: from-yaml
`)
	cfg, err := Load(Options{ConfigPath: p})
	require.NoError(t, err)
	assert.Empty(t, cfg.Summarizer.APIKey)
}

func TestConfig_APIKeyNeverSerialized(t *testing.T) {
	cfg := defaults()
	cfg.Summarizer.APIKey = "sk-secret"

	out, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "sk-secret")
}

func TestLoad_EnvFile(t *testing.T) {
	envFile := writeFile(t, ".env", "HOSTPULSE_DOTENV_KEY=sk-dotenv\nGREETING=hi from dotenv\n")
	p := writeConfig(t, `summarizer:
  api_key_env: HOSTPULSE_DOTENV_KEY
`)
	t.Cleanup(func() {
		os.Unsetenv("HOSTPULSE_DOTENV_KEY")
		os.Unsetenv("GREETING")
	})

	cfg, err := Load(Options{ConfigPath: p, EnvFile: envFile})
	require.NoError(t, err)
	assert.Equal(t, "sk-dotenv", cfg.Summarizer.APIKey)
	assert.Equal(t, "hi from dotenv", cfg.Server.Greeting)
}

func TestLoad_MissingEnvFileIgnored(t *testing.T) {
	_, err := Load(Options{EnvFile: filepath.Join(t.TempDir(), "absent.env")})
	assert.NoError(t, err)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := Load(Options{ConfigPath: filepath.Join(t.TempDir(), "absent.yaml")})
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	p := writeConfig(t, "server: [not a map")
	_, err := Load(Options{ConfigPath: p})
	assert.Error(t, err)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"bad http port", "server:\n  http_port: 70000\n", "server.http_port"},
		{"negative grpc port", "server:\n  grpc_port: -1\n", "server.grpc_port"},
		{"unknown log level", "log:\n  level: loud\n", "log.level"},
		{"empty model", "summarizer:\n  model: \"\"\n", "summarizer.model"},
		{"zero timeout", "summarizer:\n  timeout: 0s\n", "summarizer.timeout"},
		{"bad base url", "summarizer:\n  base_url: not a url\n", "summarizer.base_url"},
		{"zero stream interval", "stream:\n  interval: 0s\n", "stream.interval"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(Options{ConfigPath: writeConfig(t, tc.yaml)})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoad_InvalidEnvValue(t *testing.T) {
	t.Setenv("HTTP_PORT", "eighty")
	_, err := Load(Options{})
	assert.Error(t, err)
}
