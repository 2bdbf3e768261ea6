package poll

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/martinsuchenak/snmpinfo/internal/collector"
	"github.com/martinsuchenak/snmpinfo/internal/config"
	"github.com/martinsuchenak/snmpinfo/internal/dispatch"
	"github.com/martinsuchenak/snmpinfo/internal/emit"
	"github.com/martinsuchenak/snmpinfo/internal/log"
	"github.com/martinsuchenak/snmpinfo/internal/model"
	"github.com/martinsuchenak/snmpinfo/internal/storage"
	"github.com/martinsuchenak/snmpinfo/internal/walker"
	"github.com/paularlott/cli"
)

// Commands returns the collector commands
func Commands() []*cli.Command {
	return []*cli.Command{
		Command(),
		ScheduleCommand(),
		WalkCommand(),
		GroupsCommand(),
		HistoryCommand(),
	}
}

// settingsFlags are shared by every command that reads the configuration
func settingsFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "Device configuration file (default " + config.DefaultConfigPath + ")",
			Aliases: []string{"c"},
		},
		&cli.StringFlag{
			Name:  "walker",
			Usage: "Walker backend: exec (snmpwalk) or gosnmp",
		},
		&cli.StringFlag{
			Name:  "snmpwalk",
			Usage: "Path of the snmpwalk binary used by the exec walker",
		},
		&cli.IntFlag{
			Name:  "timeout",
			Usage: "Per-query timeout in seconds, 0 disables it (default 30)",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Number of devices polled concurrently",
		},
		&cli.StringFlag{
			Name:  "store",
			Usage: "SQLite database that keeps every emitted record",
		},
	}
}

// loadSettings merges command flags over the environment
func loadSettings(cmd *cli.Command) *config.Config {
	path := cmd.GetString("config")
	if arg := cmd.GetStringArg("path"); arg != "" {
		path = arg
	}

	cfg := config.Load(&config.Config{
		ConfigPath: path,
		Walker:     cmd.GetString("walker"),
		Snmpwalk:   cmd.GetString("snmpwalk"),
		Timeout:    cmd.GetInt("timeout"),
		Workers:    cmd.GetInt("workers"),
		StorePath:  cmd.GetString("store"),
	})

	// --timeout 0 disables the timeout
	if cmd.HasFlag("timeout") {
		cfg.Timeout = max(cmd.GetInt("timeout"), 0)
	}
	return cfg
}

// loadGroups reads the device groups and checks them against the walker backend
func loadGroups(cfg *config.Config) ([]model.Group, error) {
	groups, err := config.LoadGroups(cfg.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := checkBackend(cfg.Walker, groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// checkBackend rejects the gosnmp walker for state columns whose enumeration
// labels it cannot print, since those columns would come out as bare numbers.
func checkBackend(backend string, groups []model.Group) error {
	if backend != "gosnmp" {
		return nil
	}
	for _, g := range groups {
		for _, q := range g.PortQueries {
			if collector.IsStateColumn(q.Name) && !walker.ResolvesEnums(q.OID) {
				return fmt.Errorf("%w: group %s: walker gosnmp has no labels for state column %s (%s), use the exec walker",
					config.ErrConfigLoad, g.Name, q.Name, q.OID)
			}
		}
	}
	return nil
}

// pipeline is the walker, collector and emitters selected by the settings
type pipeline struct {
	runner *dispatch.Runner
	store  *storage.SQLiteStore // nil without --store
}

func newPipeline(cfg *config.Config, out io.Writer) (*pipeline, error) {
	w, err := walker.New(walker.Options{
		Backend: cfg.Walker,
		Binary:  cfg.Snmpwalk,
		Timeout: cfg.QueryTimeout(),
	})
	if err != nil {
		return nil, err
	}

	p := &pipeline{}
	var emitter emit.Emitter = emit.NewJSONLines(out)

	if cfg.StorePath != "" {
		p.store, err = storage.NewSQLiteStore(cfg.StorePath)
		if err != nil {
			return nil, err
		}
		log.Debug("Record store opened", "path", p.store.Path())
		emitter = emit.Multi{emitter, emit.NewStore(p.store)}
	}

	p.runner = dispatch.NewRunner(collector.New(w), emitter, cfg.Workers)
	return p, nil
}

func (p *pipeline) Close() {
	if p.store == nil {
		return
	}
	if err := p.store.Close(); err != nil {
		log.Warn("Failed to close record store", "error", err)
	}
}

// Poll loads the device configuration and runs one pass, writing one JSON
// line per device to out.
func Poll(ctx context.Context, cfg *config.Config, out io.Writer) (dispatch.Summary, error) {
	groups, err := loadGroups(cfg)
	if err != nil {
		return dispatch.Summary{}, err
	}
	log.Debug("Configuration loaded", "path", cfg.ConfigPath, "groups", len(groups))

	p, err := newPipeline(cfg, out)
	if err != nil {
		return dispatch.Summary{}, err
	}
	defer p.Close()

	return p.runner.Run(ctx, groups)
}

// Command polls every configured device once
func Command() *cli.Command {
	return &cli.Command{
		Name:        "poll",
		Usage:       "Poll all configured devices once",
		Description: "Walk the configured OIDs of every device group and print one JSON document per device",
		Flags:       settingsFlags(),
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "path", Required: false},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cfg := loadSettings(cmd)
			log.Info("Starting poll", "settings", cfg.String())

			_, err := Poll(ctx, cfg, os.Stdout)
			return err
		},
	}
}
