package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DefaultConfigPath is the device configuration read when none is given.
const DefaultConfigPath = "snmp-info.yaml"

// Config holds the run settings of the collector
type Config struct {
	ConfigPath string // YAML device configuration
	Walker     string // "exec" (snmpwalk) or "gosnmp"
	Snmpwalk   string // snmpwalk binary for the exec walker
	Timeout    int    // per-query timeout in seconds, 0 disables it
	Workers    int    // groups polled concurrently
	StorePath  string // SQLite history database, empty disables it
}

// Load loads settings with the following priority (highest to lowest):
// 1. Command-line parameters (passed as opts)
// 2. Environment variables (a .env file is loaded into the environment by main)
// 3. Default values
//
// Zero values in opts are treated as unset, so a CLI timeout of 0 has to be
// applied by the caller after Load. The walker backend is not validated here.
func Load(opts *Config) *Config {
	cfg := &Config{
		ConfigPath: coalesce(os.Getenv("SNMPINFO_CONFIG"), DefaultConfigPath),
		Walker:     coalesce(os.Getenv("SNMPINFO_WALKER"), "exec"),
		Snmpwalk:   coalesce(os.Getenv("SNMPINFO_SNMPWALK"), "snmpwalk"),
		Timeout:    atoiDefault(os.Getenv("SNMPINFO_TIMEOUT"), 30),
		Workers:    atoiDefault(os.Getenv("SNMPINFO_WORKERS"), 4),
		StorePath:  os.Getenv("SNMPINFO_STORE"),
	}

	// Finally, apply CLI opts if provided (highest priority)
	if opts != nil {
		if opts.ConfigPath != "" {
			cfg.ConfigPath = opts.ConfigPath
		}
		if opts.Walker != "" {
			cfg.Walker = opts.Walker
		}
		if opts.Snmpwalk != "" {
			cfg.Snmpwalk = opts.Snmpwalk
		}
		if opts.Timeout > 0 {
			cfg.Timeout = opts.Timeout
		}
		if opts.Workers > 0 {
			cfg.Workers = opts.Workers
		}
		if opts.StorePath != "" {
			cfg.StorePath = opts.StorePath
		}
	}

	if cfg.Timeout < 0 {
		cfg.Timeout = 0
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	return cfg
}

// QueryTimeout returns the per-query timeout as a duration.
func (c *Config) QueryTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// String returns a short description of the effective settings
func (c *Config) String() string {
	return fmt.Sprintf("config=%s walker=%s timeout=%ds workers=%d", c.ConfigPath, c.Walker, c.Timeout, c.Workers)
}

// coalesce returns the first non-empty string value
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func atoiDefault(v string, def int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
