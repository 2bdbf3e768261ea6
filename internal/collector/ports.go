package collector

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/martinsuchenak/snmpinfo/internal/model"
)

// NameColumn is the port column used to tell physical interfaces apart.
const NameColumn = "name"

// enumSuffix matches the "(n)" suffix snmpwalk appends to enumerated values.
var enumSuffix = regexp.MustCompile(`\(\d+\)$`)

// Ports applies the port queries to target and returns the rows of physical
// Ethernet interfaces keyed by interface index, in first-seen order.
func (c *Collector) Ports(ctx context.Context, creds model.Credentials, queries []model.Query, target string) ([]model.Port, error) {
	responses, err := c.walkAll(ctx, creds, queries, target)
	if err != nil {
		return nil, &DeviceError{Kind: ErrPortParse, Target: target, Err: err}
	}

	ports, err := BuildPorts(queries, responses)
	if err != nil {
		return nil, &DeviceError{Kind: ErrPortParse, Target: target, Err: err}
	}
	return ports, nil
}

// BuildPorts assembles port rows from one response per column query and drops
// every row whose name does not contain "ethernet". State columns lose their
// enumeration suffix.
func BuildPorts(queries []model.Query, responses [][]model.Entry) ([]model.Port, error) {
	var ports []model.Port
	index := map[string]int{}

	for i, q := range queries {
		state := IsStateColumn(q.Name)
		for _, e := range responses[i] {
			value := e.Value
			if state {
				value = StripEnumSuffix(value)
			}

			n, ok := index[e.Key]
			if !ok {
				n = len(ports)
				index[e.Key] = n
				ports = append(ports, model.Port{Index: e.Key})
			}
			ports[n].Row.Set(q.Name, value)
		}
	}

	physical := ports[:0]
	for _, p := range ports {
		name, ok := p.Row.Get(NameColumn)
		if !ok {
			return nil, fmt.Errorf("%w: port %s", ErrMissingNameColumn, p.Index)
		}
		if IsPhysical(name) {
			physical = append(physical, p)
		}
	}

	return physical, nil
}

// IsStateColumn reports whether a column holds an enumerated state.
func IsStateColumn(column string) bool {
	return strings.Contains(strings.ToLower(column), "state")
}

// IsPhysical reports whether an interface name denotes an Ethernet port.
func IsPhysical(name string) bool {
	return strings.Contains(strings.ToLower(name), "ethernet")
}

// StripEnumSuffix turns "up(1)" into "up". Values without a trailing "(n)" are
// returned unchanged.
func StripEnumSuffix(value string) string {
	return enumSuffix.ReplaceAllString(value, "")
}
