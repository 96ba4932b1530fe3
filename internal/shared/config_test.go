package shared

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.API.BaseURL != "http://127.0.0.1:8000" {
			t.Errorf("expected api base url http://127.0.0.1:8000, got %s", config.API.BaseURL)
		}
		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}
		if config.OAuth.Provider != "kakao" {
			t.Errorf("expected provider kakao, got %s", config.OAuth.Provider)
		}
		if strings.HasPrefix(config.Database.Path, "~") {
			t.Errorf("expected database path to be expanded, got %s", config.Database.Path)
		}
		if config.OAuth.CallbackPath() != "/oauth/callback/kakao" {
			t.Errorf("unexpected callback path %s", config.OAuth.CallbackPath())
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}
		if config.API.BaseURL != DefaultConfig().API.BaseURL {
			t.Errorf("created config base url doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig keeps defaults for missing keys", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		testConfig := `[api]
base_url = "http://board.test"

[oauth]
client_id = "abc"

[server]
port = 8081
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0o644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.API.BaseURL != "http://board.test" {
			t.Errorf("expected base url override, got %s", config.API.BaseURL)
		}
		if config.OAuth.ClientID != "abc" {
			t.Errorf("expected client id abc, got %s", config.OAuth.ClientID)
		}
		if config.OAuth.Provider != "kakao" {
			t.Errorf("expected default provider to survive, got %s", config.OAuth.Provider)
		}
		if config.Server.Addr() != "localhost:8081" {
			t.Errorf("unexpected addr %s", config.Server.Addr())
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		config := DefaultConfig()
		env := map[string]string{"BBX_API_URL": "http://env.test", "BBX_CLIENT_ID": "env-id"}
		config.ApplyEnv(func(k string) string { return env[k] })

		if config.API.BaseURL != "http://env.test" || config.OAuth.ClientID != "env-id" {
			t.Errorf("env overrides not applied: %+v", config)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		config := DefaultConfig()
		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}

		config.OAuth.ClientID = ""
		if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}

		config.OAuth.UseBackendURL = true
		if err := config.Validate(); err != nil {
			t.Errorf("backend url mode should not need client id: %v", err)
		}

		config.API.BaseURL = "not a url"
		if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig for bad url, got %v", err)
		}
	})

	t.Run("Timeout", func(t *testing.T) {
		if (APIConfig{}).Timeout() != 15*time.Second {
			t.Error("expected 15s default timeout")
		}
		if (APIConfig{TimeoutSeconds: 3}).Timeout() != 3*time.Second {
			t.Error("expected configured timeout")
		}
	})
}
