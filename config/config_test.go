package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `server:
  addr: ":8081"
  admin_token: "tok"
mqtt:
  broker: "tcp://localhost:1883"
  client_id: "dispatch"
  username: "user"
  password: "pass"
  use_tls: false
dispatch:
  offer_timeout_seconds: 15
  search_radius_km: 3.5
  max_candidates: 4
  tuner_enabled: true
metrics:
  prometheus_enabled: true
  prometheus_addr: ":9091"
logging:
  backend: "jsonl"
  path: "/tmp/dispatch.log"
  max_size_mb: 10
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"server.addr", cfg.Server.Addr, ":8081"},
		{"server.admin_token", cfg.Server.AdminToken, "tok"},
		{"broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"client_id", cfg.MQTT.ClientID, "dispatch"},
		{"offer_timeout", cfg.Dispatch.OfferTimeoutSeconds, 15},
		{"radius", cfg.Dispatch.SearchRadiusKm, 3.5},
		{"max_candidates", cfg.Dispatch.MaxCandidates, 4},
		{"tuner", cfg.Dispatch.TunerEnabled, true},
		{"prom_addr", cfg.Metrics.PrometheusAddr, ":9091"},
		{"log_backend", cfg.Logging.Backend, "jsonl"},
		{"log_path", cfg.Logging.Path, "/tmp/dispatch.log"},
		{"log_size", cfg.Logging.MaxSizeMB, 10},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: got %v want %v", c.name, c.got, c.want)
		}
	}
	// defaults filled for omitted fields
	if cfg.Dispatch.MinTimeoutSeconds != 5 || cfg.Dispatch.MaxTimeoutSeconds != 120 {
		t.Errorf("tuner bounds defaults not applied: %+v", cfg.Dispatch)
	}
	if cfg.Server.FleetReportSeconds != 15 {
		t.Errorf("fleet report default not applied")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	data := `{"server":{"addr":":8080"},"dispatch":{"offer_timeout_seconds":30}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("K_SERVER__ADDR", ":9999")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Fatalf("env override not applied: %s", cfg.Server.Addr)
	}
}

func TestLoadRejectsUnknownFormat(t *testing.T) {
	if _, err := Load("config.toml"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestLoggingConfigValidate(t *testing.T) {
	c := LoggingConfig{Backend: "csv"}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
	c = LoggingConfig{}
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}
