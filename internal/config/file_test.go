package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const sampleConfig = `
credentials_file: /etc/snmpinfo/credentials

core_switches:
  targets:
    sw-core-02: 10.0.0.2
    sw-core-01: 10.0.0.1
  oids:
    device:
      name: 1.3.6.1.2.1.1.5.0
      description: 1.3.6.1.2.1.1.1.0
      temperature: 1.3.6.1.4.1.9.9.91.1.1.1.1.4
    ports:
      name: 1.3.6.1.2.1.31.1.1.1.1
      state: 1.3.6.1.2.1.2.2.1.8

edge_router:
  credentials_file: router.creds
  targets:
  oids:
    device:
      name: "1.3"
`

func TestParse(t *testing.T) {
	f, err := Parse([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if f.CredentialsFile != "/etc/snmpinfo/credentials" {
		t.Errorf("CredentialsFile = %q", f.CredentialsFile)
	}
	if len(f.Groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(f.Groups))
	}

	sw := f.Groups[0]
	if sw.Name != "core_switches" {
		t.Errorf("first group = %q, want core_switches", sw.Name)
	}
	// File order is kept, not sorted.
	if len(sw.Targets) != 2 || sw.Targets[0].Name != "sw-core-02" || sw.Targets[1].Address != "10.0.0.1" {
		t.Errorf("Targets = %+v", sw.Targets)
	}
	wantDevice := []string{"name", "description", "temperature"}
	if len(sw.DeviceQueries) != len(wantDevice) {
		t.Fatalf("DeviceQueries = %+v", sw.DeviceQueries)
	}
	for i, name := range wantDevice {
		if sw.DeviceQueries[i].Name != name {
			t.Errorf("DeviceQueries[%d] = %q, want %q", i, sw.DeviceQueries[i].Name, name)
		}
	}
	if sw.PortQueries[1].Name != "state" || sw.PortQueries[1].OID != "1.3.6.1.2.1.2.2.1.8" {
		t.Errorf("PortQueries = %+v", sw.PortQueries)
	}

	rt := f.Groups[1]
	if rt.CredentialsFile != "router.creds" {
		t.Errorf("group CredentialsFile = %q", rt.CredentialsFile)
	}
	if len(rt.Targets) != 0 {
		t.Errorf("null targets should be empty, got %+v", rt.Targets)
	}
	// Scalars are kept verbatim, "1.3" is not turned into a float.
	if rt.DeviceQueries[0].OID != "1.3" {
		t.Errorf("OID = %q, want 1.3", rt.DeviceQueries[0].OID)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{"empty", "", ErrConfigLoad},
		{"invalid yaml", "a: [b", ErrConfigLoad},
		{"top level list", "- a\n- b\n", ErrConfigLoad},
		{"group is a list", "switches:\n  - a\n", ErrConfigLoad},
		{"targets not a mapping", "switches:\n  targets: [a, b]\n", ErrConfigLoad},
		{"nested target address", "switches:\n  targets:\n    sw1:\n      ip: 10.0.0.1\n", ErrConfigLoad},
		{"reserved target attribute", "switches:\n  oids:\n    device:\n      target: 1.3.6.1.2.1.1.5.0\n", ErrReservedName},
		{"reserved ports attribute", "switches:\n  oids:\n    device:\n      ports: 1.3.6.1.2.1.2.2.1.2\n", ErrReservedName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrConfigLoad) {
				t.Errorf("Parse() error = %v, want it to be a ErrConfigLoad", err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snmp-info.yaml")
	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	f, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if len(f.Groups) != 2 {
		t.Errorf("got %d groups, want 2", len(f.Groups))
	}

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, ErrConfigLoad) {
		t.Errorf("LoadFile() on missing file error = %v, want ErrConfigLoad", err)
	}
}
