package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/martinsuchenak/snmpinfo/internal/model"
)

var (
	// ErrConfigLoad marks every failure to read or validate the configuration.
	ErrConfigLoad   = errors.New("configuration load failed")
	ErrCredentials  = errors.New("invalid credentials file")
	ErrReservedName = errors.New("reserved attribute name")
)

// reservedAttributes are the record fields that device queries may not shadow.
var reservedAttributes = map[string]bool{"target": true, "ports": true}

// File is the parsed device configuration: groups in file order plus the
// global credentials file.
type File struct {
	CredentialsFile string
	Groups          []GroupSpec
}

// GroupSpec is one group as written in the configuration, before credentials
// are resolved.
type GroupSpec struct {
	Name            string
	CredentialsFile string
	Targets         []model.Target
	DeviceQueries   []model.Query
	PortQueries     []model.Query
}

// LoadFile reads and parses the YAML device configuration at path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrConfigLoad, path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes the configuration keeping the order of groups, targets and
// queries. Every mapping-valued root key is a group; the scalar root key
// credentials_file names the global credentials file.
func Parse(data []byte) (*File, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigLoad, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: empty configuration", ErrConfigLoad)
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: line %d: top level must be a mapping", ErrConfigLoad, root.Line)
	}

	f := &File{}
	err := eachPair(root, func(key string, value *yaml.Node) error {
		switch value.Kind {
		case yaml.MappingNode:
			g, err := parseGroup(key, value)
			if err != nil {
				return err
			}
			f.Groups = append(f.Groups, g)
		case yaml.ScalarNode:
			if key == "credentials_file" {
				f.CredentialsFile = value.Value
			}
		default:
			return fmt.Errorf("line %d: group %q must be a mapping", value.Line, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigLoad, err)
	}

	return f, nil
}

func parseGroup(name string, node *yaml.Node) (GroupSpec, error) {
	g := GroupSpec{Name: name}

	err := eachPair(node, func(key string, value *yaml.Node) error {
		var err error
		switch key {
		case "credentials_file":
			g.CredentialsFile, err = scalar(value)
		case "targets":
			err = eachScalar(value, func(k, v string) {
				g.Targets = append(g.Targets, model.Target{Name: k, Address: v})
			})
		case "oids":
			err = eachPair(value, func(kind string, queries *yaml.Node) error {
				switch kind {
				case "device":
					return eachScalar(queries, func(k, v string) {
						g.DeviceQueries = append(g.DeviceQueries, model.Query{Name: k, OID: v})
					})
				case "ports":
					return eachScalar(queries, func(k, v string) {
						g.PortQueries = append(g.PortQueries, model.Query{Name: k, OID: v})
					})
				}
				return nil
			})
		}
		if err != nil {
			return fmt.Errorf("group %q: %s: %w", name, key, err)
		}
		return nil
	})
	if err != nil {
		return g, err
	}

	for _, q := range g.DeviceQueries {
		if reservedAttributes[q.Name] {
			return g, fmt.Errorf("group %q: %w: %q", name, ErrReservedName, q.Name)
		}
	}

	return g, nil
}

// eachPair calls fn for every key/value pair of a mapping node. A null node is
// treated as an empty mapping.
func eachPair(node *yaml.Node, fn func(key string, value *yaml.Node) error) error {
	if isNull(node) {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if err := fn(node.Content[i].Value, node.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func eachScalar(node *yaml.Node, fn func(key, value string)) error {
	return eachPair(node, func(key string, value *yaml.Node) error {
		v, err := scalar(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		fn(key, v)
		return nil
	})
}

func scalar(node *yaml.Node) (string, error) {
	if node.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("line %d: expected a scalar", node.Line)
	}
	return node.Value, nil
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.Tag == "!!null"
}
