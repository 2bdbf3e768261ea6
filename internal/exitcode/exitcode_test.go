package exitcode

import (
	"errors"
	"fmt"
	"testing"

	"github.com/martinsuchenak/snmpinfo/internal/collector"
	"github.com/martinsuchenak/snmpinfo/internal/config"
	"github.com/martinsuchenak/snmpinfo/internal/dispatch"
	"github.com/martinsuchenak/snmpinfo/internal/parser"
	"github.com/martinsuchenak/snmpinfo/internal/walker"
)

func TestFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, OK},
		{"config", fmt.Errorf("load: %w", config.ErrConfigLoad), ConfigError},
		{"credentials", fmt.Errorf("%w: %w", config.ErrConfigLoad, config.ErrCredentials), ConfigError},
		{"unknown walker", fmt.Errorf("%w: %q", walker.ErrUnknownBackend, "telnet"), ConfigError},
		{"run", fmt.Errorf("%w: 1 of 3 devices", dispatch.ErrDeviceFailures), DeviceError},
		{"attributes", &collector.DeviceError{Kind: collector.ErrAttributeParse, Target: "sw", Err: errors.New("x")}, DeviceError},
		{"ports", &collector.DeviceError{Kind: collector.ErrPortParse, Target: "sw", Err: collector.ErrMissingNameColumn}, DeviceError},
		{"walk", &walker.WalkError{OID: "1.3", Target: "sw", Err: errors.New("timeout")}, DeviceError},
		{"malformed", fmt.Errorf("line 1: %w", parser.ErrMalformedLine), DeviceError},
		{"other", errors.New("flag provided but not defined"), ConfigError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := For(tt.err); got != tt.want {
				t.Errorf("For(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
