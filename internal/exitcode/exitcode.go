// Package exitcode maps command errors to process exit codes.
package exitcode

import (
	"errors"

	"github.com/martinsuchenak/snmpinfo/internal/collector"
	"github.com/martinsuchenak/snmpinfo/internal/config"
	"github.com/martinsuchenak/snmpinfo/internal/dispatch"
	"github.com/martinsuchenak/snmpinfo/internal/parser"
	"github.com/martinsuchenak/snmpinfo/internal/walker"
)

const (
	OK          = 0
	ConfigError = 1
	DeviceError = 2
)

// For returns the exit code for err. Configuration errors win over device
// errors; any other error is reported as 1.
func For(err error) int {
	switch {
	case err == nil:
		return OK
	case errors.Is(err, config.ErrConfigLoad),
		errors.Is(err, walker.ErrUnknownBackend):
		return ConfigError
	case errors.Is(err, dispatch.ErrDeviceFailures),
		errors.Is(err, collector.ErrAttributeParse),
		errors.Is(err, collector.ErrPortParse),
		errors.Is(err, walker.ErrWalkFailed),
		errors.Is(err, parser.ErrMalformedLine):
		return DeviceError
	default:
		return ConfigError
	}
}
