package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/martinsuchenak/snmpinfo/internal/model"
)

// CredentialsReader loads the credentials stored in a file.
type CredentialsReader func(path string) (model.Credentials, error)

// ReadCredentialsFile parses a key=value credentials file. Keys are matched
// case-insensitively by substring: "privkey" sets the privacy passphrase,
// "password" the authentication passphrase and "user" the user name. Blank
// lines and lines starting with # are skipped. Fields the file does not set
// stay empty.
func ReadCredentialsFile(path string) (model.Credentials, error) {
	var creds model.Credentials

	abs, err := filepath.Abs(path)
	if err != nil {
		return creds, fmt.Errorf("%w: %s: %w", ErrCredentials, path, err)
	}

	file, err := os.Open(abs)
	if err != nil {
		return creds, fmt.Errorf("%w: %w", ErrCredentials, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0
	found := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return creds, fmt.Errorf("%w: %s:%d: expected key=value", ErrCredentials, path, lineNum)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.Trim(strings.TrimSpace(value), "\"")

		switch {
		case strings.Contains(key, "privkey"):
			creds.PrivKey = value
		case strings.Contains(key, "password"):
			creds.Password = value
		case strings.Contains(key, "user"):
			creds.User = value
		default:
			continue
		}
		found++
	}
	if err := scanner.Err(); err != nil {
		return creds, fmt.Errorf("%w: %s: %w", ErrCredentials, path, err)
	}

	if found == 0 {
		return creds, fmt.Errorf("%w: %s: no user, password or privkey entry", ErrCredentials, path)
	}

	return creds, nil
}

// Resolve attaches credentials to every group and returns the groups in file
// order. The global credentials file applies to all groups; a group's own file
// overrides the fields it sets. A group without any credentials file keeps empty
// credentials. A file that is configured but unreadable or malformed fails the
// whole resolution. The File is not modified.
func Resolve(f *File, read CredentialsReader) ([]model.Group, error) {
	if read == nil {
		read = ReadCredentialsFile
	}

	cache := map[string]model.Credentials{}
	load := func(path string) (model.Credentials, error) {
		if c, ok := cache[path]; ok {
			return c, nil
		}
		c, err := read(path)
		if err != nil {
			return c, fmt.Errorf("%w: %w", ErrConfigLoad, err)
		}
		cache[path] = c
		return c, nil
	}

	var global model.Credentials
	if f.CredentialsFile != "" {
		var err error
		if global, err = load(f.CredentialsFile); err != nil {
			return nil, err
		}
	}

	groups := make([]model.Group, 0, len(f.Groups))
	for _, spec := range f.Groups {
		g := model.Group{
			Name:            spec.Name,
			Targets:         append([]model.Target(nil), spec.Targets...),
			DeviceQueries:   append([]model.Query(nil), spec.DeviceQueries...),
			PortQueries:     append([]model.Query(nil), spec.PortQueries...),
			CredentialsFile: f.CredentialsFile,
			Credentials:     global,
		}

		if spec.CredentialsFile != "" {
			local, err := load(spec.CredentialsFile)
			if err != nil {
				return nil, fmt.Errorf("group %q: %w", spec.Name, err)
			}
			g.CredentialsFile = spec.CredentialsFile
			g.Credentials = merge(global, local)
		}

		groups = append(groups, g)
	}

	return groups, nil
}

func merge(base, override model.Credentials) model.Credentials {
	if override.User != "" {
		base.User = override.User
	}
	if override.Password != "" {
		base.Password = override.Password
	}
	if override.PrivKey != "" {
		base.PrivKey = override.PrivKey
	}
	return base
}

// LoadGroups reads the device configuration at path and resolves the
// credentials of every group.
func LoadGroups(path string) ([]model.Group, error) {
	f, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return Resolve(f, ReadCredentialsFile)
}
