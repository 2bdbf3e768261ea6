package poll

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/martinsuchenak/snmpinfo/internal/config"
	"github.com/martinsuchenak/snmpinfo/internal/dispatch"
	"github.com/martinsuchenak/snmpinfo/internal/model"
	"github.com/paularlott/cli"
)

// GroupsCommand lists the configured groups
func GroupsCommand() *cli.Command {
	return &cli.Command{
		Name:        "groups",
		Usage:       "List configured device groups",
		Description: "Show every group with its detected device kinds, targets and query counts",
		Flags:       settingsFlags(),
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "path", Required: false},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cfg := loadSettings(cmd)

			groups, err := config.LoadGroups(cfg.ConfigPath)
			if err != nil {
				return err
			}
			printGroups(os.Stdout, groups)
			return nil
		},
	}
}

func printGroups(out io.Writer, groups []model.Group) {
	if len(groups) == 0 {
		fmt.Fprintln(out, "No groups configured")
		return
	}

	for _, g := range groups {
		kinds := "-"
		if k := dispatch.Classify(g.Name); len(k) > 0 {
			names := make([]string, len(k))
			for i, kind := range k {
				names[i] = string(kind)
			}
			kinds = strings.Join(names, ",")
		}

		fmt.Fprintf(out, "%s\t%s\t%d device oids\t%d port oids\n", g.Name, kinds, len(g.DeviceQueries), len(g.PortQueries))
		if g.CredentialsFile != "" {
			fmt.Fprintf(out, "  credentials: %s (user %q)\n", g.CredentialsFile, g.Credentials.User)
		}
		for i, t := range g.Targets {
			polled := ""
			if i == 0 {
				polled = " *"
			}
			fmt.Fprintf(out, "  - %s %s%s\n", t.Name, t.Address, polled)
		}
	}
}
