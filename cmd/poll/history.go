package poll

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/martinsuchenak/snmpinfo/internal/config"
	"github.com/martinsuchenak/snmpinfo/internal/storage"
	"github.com/paularlott/cli"
)

// HistoryCommand prints records kept in the SQLite store
func HistoryCommand() *cli.Command {
	return &cli.Command{
		Name:        "history",
		Usage:       "Show stored device records",
		Description: "Print the records saved by poll or schedule with --store, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "store",
				Usage: "SQLite database written by --store",
			},
			&cli.StringFlag{
				Name:  "target",
				Usage: "Only show records of this target",
			},
			&cli.IntFlag{
				Name:         "limit",
				Usage:        "Maximum number of records",
				DefaultValue: 20,
			},
			&cli.BoolFlag{
				Name:  "documents",
				Usage: "Print the JSON documents only",
			},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cfg := config.Load(&config.Config{StorePath: cmd.GetString("store")})
			if cfg.StorePath == "" {
				return errors.New("no record store: set --store or SNMPINFO_STORE")
			}

			store, err := storage.NewSQLiteStore(cfg.StorePath)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.ListRecords(ctx, cmd.GetString("target"), cmd.GetInt("limit"))
			if err != nil {
				return err
			}
			printRecords(os.Stdout, records, cmd.GetBool("documents"))
			return nil
		},
	}
}

func printRecords(out io.Writer, records []storage.Record, documentsOnly bool) {
	if len(records) == 0 && !documentsOnly {
		fmt.Fprintln(out, "No records found")
		return
	}

	for _, r := range records {
		if documentsOnly {
			fmt.Fprintf(out, "%s\n", r.Document)
			continue
		}
		fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\n", r.CollectedAt.Format(time.RFC3339), r.Target, r.Group, r.Kind, r.RunID)
	}
}
