package poll

import (
	"context"
	"os"
	"time"

	"github.com/martinsuchenak/snmpinfo/internal/config"
	"github.com/martinsuchenak/snmpinfo/internal/log"
	"github.com/martinsuchenak/snmpinfo/internal/model"
	"github.com/martinsuchenak/snmpinfo/internal/worker"
	"github.com/paularlott/cli"
)

const scheduleTaskID = "poll"

// ScheduleCommand polls on a cron schedule until interrupted
func ScheduleCommand() *cli.Command {
	flags := append(settingsFlags(),
		&cli.StringFlag{
			Name:         "cron",
			Usage:        "Cron schedule of the runs (e.g. \"*/5 * * * *\" or \"@every 1m\")",
			DefaultValue: "@every 5m",
			EnvVars:      []string{"SNMPINFO_CRON"},
		},
		&cli.IntFlag{
			Name:         "retention-days",
			Usage:        "Delete stored records older than this many days after each run (0 keeps all)",
			DefaultValue: 0,
			EnvVars:      []string{"SNMPINFO_RETENTION_DAYS"},
		},
	)

	return &cli.Command{
		Name:        "schedule",
		Usage:       "Poll devices on a schedule",
		Description: "Run a poll on every tick of a cron schedule until SIGINT or SIGTERM",
		Flags:       flags,
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cfg := loadSettings(cmd)
			retention := cmd.GetInt("retention-days")

			// Fail fast on a broken configuration
			groups, err := loadGroups(cfg)
			if err != nil {
				return err
			}

			p, err := newPipeline(cfg, os.Stdout)
			if err != nil {
				return err
			}
			defer p.Close()

			scheduler := worker.NewScheduler(ctx)
			err = scheduler.RegisterTask(scheduleTaskID, cmd.GetString("cron"), func(ctx context.Context, taskID string) error {
				groups = reloadGroups(cfg, groups)
				_, err := p.runner.Run(ctx, groups)
				p.prune(ctx, retention)
				return err
			})
			if err != nil {
				return err
			}

			scheduler.Start()
			if next, ok := scheduler.NextRun(scheduleTaskID); ok {
				log.Info("Scheduler running", "settings", cfg.String(), "next_run", next)
			}

			<-ctx.Done()
			scheduler.Stop()
			log.Info("Scheduler stopped")
			return nil
		},
	}
}

// reloadGroups rereads the configuration, keeping the previous groups when
// the file has become invalid.
func reloadGroups(cfg *config.Config, previous []model.Group) []model.Group {
	groups, err := loadGroups(cfg)
	if err != nil {
		log.Error("Failed to reload configuration, using previous groups", "path", cfg.ConfigPath, "error", err)
		return previous
	}
	return groups
}

// prune drops stored records older than days
func (p *pipeline) prune(ctx context.Context, days int) {
	if p.store == nil || days <= 0 {
		return
	}
	removed, err := p.store.PruneRecords(ctx, time.Now().AddDate(0, 0, -days))
	if err != nil {
		log.Warn("Failed to prune record store", "error", err)
		return
	}
	if removed > 0 {
		log.Info("Pruned old records", "removed", removed, "retention_days", days)
	}
}
