package collector

import (
	"errors"
	"fmt"
)

var (
	ErrAttributeParse    = errors.New("device attribute parse error")
	ErrPortParse         = errors.New("port parse error")
	ErrMissingNameColumn = errors.New("port row has no name column")
)

// DeviceError aborts the record of one device. Kind is ErrAttributeParse or
// ErrPortParse; both it and the cause match with errors.Is.
type DeviceError struct {
	Kind   error
	Target string
	Err    error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("%v: %s: %v", e.Kind, e.Target, e.Err)
}

func (e *DeviceError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
