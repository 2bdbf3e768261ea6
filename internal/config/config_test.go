package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"SNMPINFO_CONFIG", "SNMPINFO_WALKER", "SNMPINFO_SNMPWALK", "SNMPINFO_TIMEOUT", "SNMPINFO_WORKERS", "SNMPINFO_STORE"} {
		t.Setenv(k, "")
	}

	cfg := Load(nil)
	if cfg.ConfigPath != DefaultConfigPath {
		t.Errorf("ConfigPath = %q", cfg.ConfigPath)
	}
	if cfg.Walker != "exec" || cfg.Snmpwalk != "snmpwalk" {
		t.Errorf("Walker = %q Snmpwalk = %q", cfg.Walker, cfg.Snmpwalk)
	}
	if cfg.Timeout != 30 || cfg.QueryTimeout() != 30*time.Second {
		t.Errorf("Timeout = %d", cfg.Timeout)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d", cfg.Workers)
	}
	if cfg.StorePath != "" {
		t.Errorf("StorePath = %q", cfg.StorePath)
	}
}

func TestLoad_Priority(t *testing.T) {
	t.Setenv("SNMPINFO_CONFIG", "/etc/env.yaml")
	t.Setenv("SNMPINFO_WALKER", "gosnmp")
	t.Setenv("SNMPINFO_TIMEOUT", "10")
	t.Setenv("SNMPINFO_WORKERS", "not-a-number")

	cfg := Load(&Config{ConfigPath: "/etc/flag.yaml", Workers: 8})

	if cfg.ConfigPath != "/etc/flag.yaml" {
		t.Errorf("ConfigPath = %q, flag should win", cfg.ConfigPath)
	}
	if cfg.Walker != "gosnmp" {
		t.Errorf("Walker = %q, env should apply", cfg.Walker)
	}
	if cfg.Timeout != 10 {
		t.Errorf("Timeout = %d, want 10", cfg.Timeout)
	}
	if cfg.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Workers)
	}
}

func TestLoad_Validation(t *testing.T) {
	t.Setenv("SNMPINFO_WALKER", "telnet")
	t.Setenv("SNMPINFO_TIMEOUT", "-5")
	t.Setenv("SNMPINFO_WORKERS", "0")

	cfg := Load(nil)
	if cfg.Walker != "telnet" {
		t.Errorf("Walker = %q, want telnet left for the walker to reject", cfg.Walker)
	}
	if cfg.Timeout != 0 {
		t.Errorf("Timeout = %d, want 0", cfg.Timeout)
	}
	if cfg.Workers != 1 {
		t.Errorf("Workers = %d, want 1", cfg.Workers)
	}
}

func TestLoad_TimeoutDisabled(t *testing.T) {
	t.Setenv("SNMPINFO_TIMEOUT", "0")

	cfg := Load(nil)
	if cfg.Timeout != 0 || cfg.QueryTimeout() != 0 {
		t.Errorf("Timeout = %d, want 0", cfg.Timeout)
	}

	cfg = Load(&Config{Timeout: 15})
	if cfg.Timeout != 15 {
		t.Errorf("Timeout = %d, want 15 from opts", cfg.Timeout)
	}
}
