package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantgate/binance-gateway/pkg/schema"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeTempConfig(t, `
gateway:
  key: BINANCE_KEY_REF
  secret: BINANCE_SECRET_REF
  server: test
  proxy_host: 127.0.0.1
  proxy_port: 7890
  request_timeout: 3s
logging:
  level: debug
  format: json
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "BINANCE_KEY_REF", cfg.Gateway.Key)
	assert.Equal(t, schema.ServerTest, cfg.Gateway.ServerKind())
	assert.Equal(t, "http://127.0.0.1:7890", cfg.Gateway.ProxyURL())
	assert.Equal(t, 3*time.Second, cfg.Gateway.RequestTimeout)
	assert.Equal(t, 10*time.Second, cfg.Gateway.TimerInterval, "default survives partial config")
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "stdout", cfg.Logging.Output)
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeTempConfig(t, `
gateway:
  key: k
  secret: s
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, schema.ServerLive, cfg.Gateway.ServerKind())
	assert.Empty(t, cfg.Gateway.ProxyURL())
	assert.Equal(t, 5*time.Second, cfg.Gateway.RequestTimeout)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	path := writeTempConfig(t, `
gateway:
  key: file-key
  secret: file-secret
  server: live
`)

	t.Setenv("BINANCE_API_KEY", "env-key")
	t.Setenv("BINANCE_SERVER", "test")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Gateway.Key)
	assert.Equal(t, "file-secret", cfg.Gateway.Secret)
	assert.Equal(t, schema.ServerTest, cfg.Gateway.ServerKind())
}

func TestLoadConfigValidation(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"missing key", "gateway:\n  secret: s\n"},
		{"missing secret", "gateway:\n  key: k\n"},
		{"bad server", "gateway:\n  key: k\n  secret: s\n  server: staging\n"},
		{"bad proxy port", "gateway:\n  key: k\n  secret: s\n  proxy_port: 70000\n"},
		{"zero timeout", "gateway:\n  key: k\n  secret: s\n  request_timeout: 0s\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeTempConfig(t, tc.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestResolveCredentialFromEnv(t *testing.T) {
	t.Setenv("GATEWAY_TEST_KEY", "  secret-value \n")
	assert.Equal(t, "secret-value", ResolveCredential("GATEWAY_TEST_KEY"))
}

func TestResolveCredentialFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.key")
	require.NoError(t, os.WriteFile(path, []byte("file-value\n"), 0o600))
	assert.Equal(t, "file-value", ResolveCredential(path))
}

func TestResolveCredentialLiteralFallback(t *testing.T) {
	assert.Equal(t, "no-such-ref", ResolveCredential("no-such-ref"))
}

func TestResolveCredentialEnvWinsOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cred")
	require.NoError(t, os.WriteFile(path, []byte("from-file"), 0o600))
	t.Setenv(path, "from-env")
	assert.Equal(t, "from-env", ResolveCredential(path))
}

func TestResolveCredentialEmpty(t *testing.T) {
	assert.Equal(t, "", ResolveCredential("   "))
}
