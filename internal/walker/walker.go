// Package walker runs SNMP walks against devices and returns the raw output
// lines, one per leaf, in the "<oid> = <TYPE>: <value>" form.
package walker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/martinsuchenak/snmpinfo/internal/model"
)

var (
	ErrWalkFailed            = errors.New("walk failed")
	ErrIncompleteCredentials = errors.New("incomplete SNMPv3 credentials")
	ErrUnknownBackend        = errors.New("unknown walker backend")
)

// Walker returns the raw response lines of a walk of oid on target.
type Walker interface {
	Walk(ctx context.Context, creds model.Credentials, oid, target string) ([]string, error)
}

// Func adapts a function to the Walker interface.
type Func func(ctx context.Context, creds model.Credentials, oid, target string) ([]string, error)

func (f Func) Walk(ctx context.Context, creds model.Credentials, oid, target string) ([]string, error) {
	return f(ctx, creds, oid, target)
}

// WalkError reports a failed walk of one OID on one target. It matches
// ErrWalkFailed with errors.Is and unwraps to the underlying cause.
type WalkError struct {
	OID    string
	Target string
	Err    error
}

func (e *WalkError) Error() string {
	return fmt.Sprintf("walk %s on %s: %v", e.OID, e.Target, e.Err)
}

func (e *WalkError) Unwrap() error {
	return e.Err
}

func (e *WalkError) Is(target error) bool {
	return target == ErrWalkFailed
}

// Options selects and tunes a walker backend
type Options struct {
	Backend string // "exec" or "gosnmp"
	Binary  string // snmpwalk path for the exec backend
	Timeout time.Duration
}

// New builds the walker named by opts.Backend.
func New(opts Options) (Walker, error) {
	switch opts.Backend {
	case "", "exec":
		return NewExecWalker(opts.Binary, opts.Timeout), nil
	case "gosnmp":
		return NewSNMPWalker(opts.Timeout), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}

func checkCredentials(creds model.Credentials, oid, target string) error {
	if !creds.Complete() {
		return &WalkError{OID: oid, Target: target, Err: ErrIncompleteCredentials}
	}
	return nil
}
