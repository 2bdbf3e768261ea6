// Package collector builds device records from walk responses: device
// attributes from the "device" queries and the physical port table from the
// "ports" queries of a group.
package collector

import (
	"context"
	"fmt"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"github.com/martinsuchenak/snmpinfo/internal/log"
	"github.com/martinsuchenak/snmpinfo/internal/model"
	"github.com/martinsuchenak/snmpinfo/internal/parser"
	"github.com/martinsuchenak/snmpinfo/internal/walker"
)

// SensorValueOID is entSensorValue of CISCO-ENTITY-SENSOR-MIB. Nexus switches
// return many sensors under it; only the last five are kept (Center, Fan-side,
// Port-side, Die-1, Control-1).
const SensorValueOID = "1.3.6.1.4.1.9.9.91.1.1.1.1.4"

// DefaultFixedCounts maps an OID to the number of trailing entries kept from its
// response.
var DefaultFixedCounts = map[string]int{
	SensorValueOID: 5,
}

const defaultConcurrency = 4

// Collector queries one device at a time; the walks of a device run
// concurrently up to the configured limit.
type Collector struct {
	walker      walker.Walker
	concurrency int
	fixedCounts map[string]int
}

// Option configures a Collector
type Option func(*Collector)

// WithConcurrency bounds the number of walks in flight per device.
func WithConcurrency(n int) Option {
	return func(c *Collector) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithFixedCount keeps only the last n entries of oid's response.
func WithFixedCount(oid string, n int) Option {
	return func(c *Collector) {
		c.fixedCounts[normalizeOID(oid)] = n
	}
}

// New creates a collector on top of w.
func New(w walker.Walker, opts ...Option) *Collector {
	c := &Collector{
		walker:      w,
		concurrency: defaultConcurrency,
		fixedCounts: make(map[string]int, len(DefaultFixedCounts)),
	}
	for oid, n := range DefaultFixedCounts {
		c.fixedCounts[normalizeOID(oid)] = n
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Walk queries oid on target and returns the parsed entries in walker order.
func (c *Collector) Walk(ctx context.Context, creds model.Credentials, oid, target string) ([]model.Entry, error) {
	lines, err := c.walker.Walk(ctx, creds, oid, target)
	if err != nil {
		return nil, err
	}
	log.Trace("Walk response", "oid", oid, "target", target, "lines", len(lines))

	entries, err := parser.Parse(lines)
	if err != nil {
		return nil, fmt.Errorf("oid %s: %w", oid, err)
	}
	return entries, nil
}

// walkAll runs one walk per query and returns the responses in query order. The
// first failure cancels the walks still pending for this device.
func (c *Collector) walkAll(ctx context.Context, creds model.Credentials, queries []model.Query, target string) ([][]model.Entry, error) {
	results := make([][]model.Entry, len(queries))

	p := pool.New().
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError().
		WithMaxGoroutines(c.concurrency)

	for i, q := range queries {
		p.Go(func(ctx context.Context) error {
			entries, err := c.Walk(ctx, creds, q.OID, target)
			if err != nil {
				return fmt.Errorf("%s: %w", q.Name, err)
			}
			results[i] = entries
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Attributes applies the device queries to target. A response with exactly one
// entry collapses to its value; any other response stays nested by index.
func (c *Collector) Attributes(ctx context.Context, creds model.Credentials, queries []model.Query, target string) ([]model.Attribute, error) {
	responses, err := c.walkAll(ctx, creds, queries, target)
	if err != nil {
		return nil, &DeviceError{Kind: ErrAttributeParse, Target: target, Err: err}
	}

	attrs := make([]model.Attribute, 0, len(queries))
	for i, q := range queries {
		entries := c.keepFixed(q.OID, responses[i])
		attrs = append(attrs, model.Attribute{Name: q.Name, Value: collapse(entries)})
	}

	return attrs, nil
}

// keepFixed trims responses of fixed-count OIDs to their last entries.
func (c *Collector) keepFixed(oid string, entries []model.Entry) []model.Entry {
	n, ok := c.fixedCounts[normalizeOID(oid)]
	if !ok || len(entries) <= n {
		return entries
	}
	return entries[len(entries)-n:]
}

func collapse(entries []model.Entry) model.AttributeValue {
	if len(entries) == 1 {
		return model.ScalarValue(entries[0].Value)
	}
	return model.NestedValue(entries)
}

func normalizeOID(oid string) string {
	return strings.TrimPrefix(strings.TrimSpace(oid), ".")
}

// Collect builds the complete record of one target of a group. Nothing is
// returned unless both attributes and ports succeed.
func (c *Collector) Collect(ctx context.Context, group model.Group, target model.Target) (*model.DeviceRecord, error) {
	attrs, err := c.Attributes(ctx, group.Credentials, group.DeviceQueries, target.Address)
	if err != nil {
		return nil, err
	}

	ports, err := c.Ports(ctx, group.Credentials, group.PortQueries, target.Address)
	if err != nil {
		return nil, err
	}

	return &model.DeviceRecord{
		Target:     target.Name,
		Attributes: attrs,
		Ports:      ports,
	}, nil
}
