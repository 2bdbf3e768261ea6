package model

import (
	"bytes"
	"encoding/json"
)

// Entry is one key/value pair of a walk result, kept in walker order.
type Entry struct {
	Key   string
	Value string
}

// AttributeValue is the result of one device query: a scalar when the walk
// returned exactly one entry, otherwise the ordered entries keyed by index.
type AttributeValue struct {
	Scalar  string
	Entries []Entry
	Nested  bool
}

// ScalarValue builds a collapsed attribute value.
func ScalarValue(v string) AttributeValue {
	return AttributeValue{Scalar: v}
}

// NestedValue builds a nested attribute value. A nil slice still encodes as {}.
func NestedValue(entries []Entry) AttributeValue {
	return AttributeValue{Entries: entries, Nested: true}
}

// Get returns the nested value stored under key.
func (v AttributeValue) Get(key string) (string, bool) {
	for _, e := range v.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// MarshalJSON encodes scalars as strings and nested values as objects in walker order.
func (v AttributeValue) MarshalJSON() ([]byte, error) {
	if !v.Nested {
		return json.Marshal(v.Scalar)
	}
	var buf bytes.Buffer
	if err := writeEntries(&buf, v.Entries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Attribute is a named device attribute
type Attribute struct {
	Name  string
	Value AttributeValue
}

// PortRow holds the column values of one port, in query order.
type PortRow struct {
	Columns []Entry
}

// Get returns the value of a column.
func (r PortRow) Get(column string) (string, bool) {
	for _, c := range r.Columns {
		if c.Key == column {
			return c.Value, true
		}
	}
	return "", false
}

// Set stores a column value, replacing an earlier value for the same column.
func (r *PortRow) Set(column, value string) {
	for i := range r.Columns {
		if r.Columns[i].Key == column {
			r.Columns[i].Value = value
			return
		}
	}
	r.Columns = append(r.Columns, Entry{Key: column, Value: value})
}

// MarshalJSON encodes the row as an object in query order.
func (r PortRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeEntries(&buf, r.Columns); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Port is a port row together with its interface index
type Port struct {
	Index string
	Row   PortRow
}

// DeviceRecord is the normalized result of polling one target
type DeviceRecord struct {
	Target     string
	Attributes []Attribute
	Ports      []Port
}

// Attribute looks up an attribute by name.
func (d *DeviceRecord) Attribute(name string) (AttributeValue, bool) {
	for _, a := range d.Attributes {
		if a.Name == name {
			return a.Value, true
		}
	}
	return AttributeValue{}, false
}

// Port looks up a port row by index.
func (d *DeviceRecord) Port(index string) (PortRow, bool) {
	for _, p := range d.Ports {
		if p.Index == index {
			return p.Row, true
		}
	}
	return PortRow{}, false
}

// MarshalJSON produces {"target": ..., <attributes>..., "ports": {...}} with
// attributes in query order and ports in first-seen order.
func (d *DeviceRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	if err := writeKey(&buf, "target"); err != nil {
		return nil, err
	}
	if err := writeJSON(&buf, d.Target); err != nil {
		return nil, err
	}

	for _, a := range d.Attributes {
		buf.WriteByte(',')
		if err := writeKey(&buf, a.Name); err != nil {
			return nil, err
		}
		if err := writeJSON(&buf, a.Value); err != nil {
			return nil, err
		}
	}

	buf.WriteByte(',')
	if err := writeKey(&buf, "ports"); err != nil {
		return nil, err
	}
	buf.WriteByte('{')
	for i, p := range d.Ports {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, p.Index); err != nil {
			return nil, err
		}
		if err := writeJSON(&buf, p.Row); err != nil {
			return nil, err
		}
	}
	buf.WriteString("}}")

	return buf.Bytes(), nil
}

func writeEntries(buf *bytes.Buffer, entries []Entry) error {
	buf.WriteByte('{')
	for i, e := range entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(buf, e.Key); err != nil {
			return err
		}
		if err := writeJSON(buf, e.Value); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func writeKey(buf *bytes.Buffer, key string) error {
	if err := writeJSON(buf, key); err != nil {
		return err
	}
	buf.WriteByte(':')
	return nil
}

func writeJSON(buf *bytes.Buffer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}
