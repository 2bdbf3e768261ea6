package walker

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/martinsuchenak/snmpinfo/internal/log"
	"github.com/martinsuchenak/snmpinfo/internal/model"
)

// DefaultBinary is the net-snmp walk tool looked up on PATH.
const DefaultBinary = "snmpwalk"

// waitDelay bounds how long a killed walk may keep its output pipes open.
const waitDelay = 2 * time.Second

// ExecWalker runs the net-snmp snmpwalk tool with SNMPv3 authPriv (SHA/AES).
type ExecWalker struct {
	binary  string
	timeout time.Duration
}

// NewExecWalker creates a walker for the given binary. A zero timeout leaves the
// deadline to the caller's context and the tool's own defaults.
func NewExecWalker(binary string, timeout time.Duration) *ExecWalker {
	if binary == "" {
		binary = DefaultBinary
	}
	return &ExecWalker{
		binary:  binary,
		timeout: timeout,
	}
}

// Args returns the snmpwalk arguments for a walk of oid on target.
func (w *ExecWalker) Args(creds model.Credentials, oid, target string) []string {
	return []string{
		"-v3",
		"-a", "SHA",
		"-A", creds.Password,
		"-x", "AES",
		"-X", creds.PrivKey,
		"-u", creds.User,
		"-l", "authPriv",
		target,
		oid,
	}
}

// Walk runs snmpwalk and splits its standard output into lines. Standard error
// only ends up in the error message of a failed run.
func (w *ExecWalker) Walk(ctx context.Context, creds model.Credentials, oid, target string) ([]string, error) {
	if err := checkCredentials(creds, oid, target); err != nil {
		return nil, err
	}

	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, w.binary, w.Args(creds, oid, target)...)
	cmd.WaitDelay = waitDelay

	log.Debug("Executing walk", "binary", w.binary, "oid", oid, "target", target)

	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		} else if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			err = fmt.Errorf("%w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, &WalkError{OID: oid, Target: target, Err: err}
	}

	return splitLines(string(out)), nil
}

func splitLines(out string) []string {
	lines := strings.Split(out, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, "\r")
	}
	return lines
}
