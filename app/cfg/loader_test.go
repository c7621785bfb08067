package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	// Test default version
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}

	version := GetVersion()
	if version != "dev" && version != "unknown" {
		// This is fine, version could be set at build time
		t.Logf("Version: %s", version)
	}
}

func TestConfigFields(t *testing.T) {
	cfg := &Cfg{
		DataDir:           "./data",
		Port:              "8080",
		SubscriptionsFile: "./subscriptions.yml",
		PushInterval:      600,
		APIAccessKey:      "test-key",
		WebhookURL:        "https://hooks.example.com/push",
		ChromePath:        "/usr/bin/chromium",
		UserAgent:         "Test Agent",
		Timezone:          "UTC",
		Debug:             true,
		Version:           "test-version",
	}

	if cfg.DataDir != "./data" {
		t.Errorf("Expected data dir './data', got '%s'", cfg.DataDir)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.SubscriptionsFile != "./subscriptions.yml" {
		t.Errorf("Expected subscriptions file './subscriptions.yml', got '%s'", cfg.SubscriptionsFile)
	}
	if cfg.PushInterval != 600 {
		t.Errorf("Expected push interval 600, got %d", cfg.PushInterval)
	}
	if cfg.APIAccessKey != "test-key" {
		t.Errorf("Expected API key 'test-key', got '%s'", cfg.APIAccessKey)
	}
	if cfg.WebhookURL != "https://hooks.example.com/push" {
		t.Errorf("Expected webhook URL 'https://hooks.example.com/push', got '%s'", cfg.WebhookURL)
	}
	if cfg.ChromePath != "/usr/bin/chromium" {
		t.Errorf("Expected chrome path '/usr/bin/chromium', got '%s'", cfg.ChromePath)
	}
	if cfg.UserAgent != "Test Agent" {
		t.Errorf("Expected user agent 'Test Agent', got '%s'", cfg.UserAgent)
	}
	if cfg.Timezone != "UTC" {
		t.Errorf("Expected timezone 'UTC', got '%s'", cfg.Timezone)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
	if cfg.Version != "test-version" {
		t.Errorf("Expected version 'test-version', got '%s'", cfg.Version)
	}
}

func TestGetPanicsWhenNotLoaded(t *testing.T) {
	orig := globalCfg
	globalCfg = nil
	defer func() {
		globalCfg = orig
		if r := recover(); r == nil {
			t.Error("Expected Get to panic before Load")
		}
	}()
	Get()
}
