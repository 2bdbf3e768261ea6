package poll

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/martinsuchenak/snmpinfo/internal/collector"
	"github.com/martinsuchenak/snmpinfo/internal/config"
	"github.com/martinsuchenak/snmpinfo/internal/model"
	"github.com/martinsuchenak/snmpinfo/internal/walker"
	"github.com/paularlott/cli"
)

// WalkCommand walks a single OID and prints the parsed values
func WalkCommand() *cli.Command {
	flags := append(settingsFlags(),
		&cli.StringFlag{
			Name:     "target",
			Usage:    "Device address (host or host:port)",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "oid",
			Usage:    "OID to walk",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "group",
			Usage: "Use the credentials of this configured group",
		},
		&cli.StringFlag{
			Name:  "credentials-file",
			Usage: "Credentials file (user=, password=, privkey=)",
		},
		&cli.BoolFlag{
			Name:  "prompt",
			Usage: "Prompt for credentials missing from the other sources",
		},
	)

	return &cli.Command{
		Name:        "walk",
		Usage:       "Walk one OID on one device",
		Description: "Walk an OID and print the index to value mapping as JSON, for checking a configuration",
		Flags:       flags,
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cfg := loadSettings(cmd)

			creds, err := walkCredentials(cfg, cmd.GetString("group"), cmd.GetString("credentials-file"))
			if err != nil {
				return err
			}
			if cmd.GetBool("prompt") {
				if creds, err = promptCredentials(os.Stdin, os.Stderr, creds); err != nil {
					return err
				}
			}

			w, err := walker.New(walker.Options{
				Backend: cfg.Walker,
				Binary:  cfg.Snmpwalk,
				Timeout: cfg.QueryTimeout(),
			})
			if err != nil {
				return err
			}

			entries, err := collector.New(w).Walk(ctx, creds, cmd.GetString("oid"), cmd.GetString("target"))
			if err != nil {
				return err
			}
			return printEntries(os.Stdout, entries)
		},
	}
}

// walkCredentials picks credentials from a group of the configuration and
// then from an explicit credentials file, the latter winning per field.
func walkCredentials(cfg *config.Config, group, file string) (model.Credentials, error) {
	var creds model.Credentials

	if group != "" {
		groups, err := config.LoadGroups(cfg.ConfigPath)
		if err != nil {
			return creds, err
		}
		found := false
		for _, g := range groups {
			if g.Name == group {
				creds, found = g.Credentials, true
				break
			}
		}
		if !found {
			return creds, fmt.Errorf("%w: group %q not found in %s", config.ErrConfigLoad, group, cfg.ConfigPath)
		}
	}

	if file != "" {
		fromFile, err := config.ReadCredentialsFile(file)
		if err != nil {
			return creds, fmt.Errorf("%w: %w", config.ErrConfigLoad, err)
		}
		if fromFile.User != "" {
			creds.User = fromFile.User
		}
		if fromFile.Password != "" {
			creds.Password = fromFile.Password
		}
		if fromFile.PrivKey != "" {
			creds.PrivKey = fromFile.PrivKey
		}
	}

	return creds, nil
}

// promptCredentials asks for every empty field. Passphrases are read without
// echo when in is a terminal.
func promptCredentials(in *os.File, out io.Writer, creds model.Credentials) (model.Credentials, error) {
	reader := bufio.NewReader(in)
	fd := int(in.Fd())

	readSecret := func(label string) (string, error) {
		fmt.Fprintf(out, "%s: ", label)
		if term.IsTerminal(fd) {
			b, err := term.ReadPassword(fd)
			fmt.Fprintln(out)
			return string(b), err
		}
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", err
		}
		return strings.TrimSpace(line), nil
	}

	var err error
	if creds.User == "" {
		fmt.Fprint(out, "User: ")
		line, rerr := reader.ReadString('\n')
		if rerr != nil && rerr != io.EOF {
			return creds, rerr
		}
		creds.User = strings.TrimSpace(line)
	}
	if creds.Password == "" {
		if creds.Password, err = readSecret("Auth passphrase"); err != nil {
			return creds, err
		}
	}
	if creds.PrivKey == "" {
		if creds.PrivKey, err = readSecret("Privacy passphrase"); err != nil {
			return creds, err
		}
	}
	return creds, nil
}

// printEntries writes the entries as one JSON object keeping walk order
func printEntries(out io.Writer, entries []model.Entry) error {
	data, err := json.Marshal(model.NestedValue(entries))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%s\n", data)
	return err
}
