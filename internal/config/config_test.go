package config

import (
	"encoding/json"
	"os"
	"testing"
)

func TestReadConfigCreatesTemplate(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(wd) }()

	_, err = ReadConfig()
	if err == nil {
		t.Fatal("expected error for missing configuration file")
	}

	bytes, err := os.ReadFile("config.json")
	if err != nil {
		t.Fatalf("template configuration file was not created: %v", err)
	}
	var template Config
	if err := json.Unmarshal(bytes, &template); err != nil {
		t.Fatalf("template is not valid JSON: %v", err)
	}
}

func TestReadConfigParsesFile(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(wd) }()

	raw := `{
		"database": {"host": "localhost", "port": 27017, "database": "teamboard", "operation_timeout": "5s"},
		"auth": {"client_secret": "secret", "session_ttl": "12h"},
		"relay": {"ping_interval": "54s", "read_timeout": "60s", "write_timeout": "10s", "typing_ttl": "6s", "send_buffer": 256, "max_connections": 10000},
		"app_name": "teamboard",
		"app_port": 8080
	}`
	if err := os.WriteFile("config.json", []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := ReadConfig()
	if err != nil {
		t.Fatalf("Error reading configuration file: %v", err)
	}
	if cfg.Database.Host != "localhost" || cfg.Database.Port != 27017 {
		t.Errorf("unexpected database config: %+v", cfg.Database)
	}
	if cfg.Relay.SendBuffer != 256 {
		t.Errorf("unexpected relay config: %+v", cfg.Relay)
	}
	if cfg.AppPort != 8080 {
		t.Errorf("unexpected app port: %d", cfg.AppPort)
	}
}
