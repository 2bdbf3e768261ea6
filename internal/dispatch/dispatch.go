// Package dispatch runs one polling pass over the configured groups.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/martinsuchenak/snmpinfo/internal/emit"
	"github.com/martinsuchenak/snmpinfo/internal/log"
	"github.com/martinsuchenak/snmpinfo/internal/model"
	"github.com/martinsuchenak/snmpinfo/internal/worker"
)

// ErrDeviceFailures is returned by Run when at least one device produced no
// record.
var ErrDeviceFailures = errors.New("device collection failed")

// Collector builds the record of one target.
type Collector interface {
	Collect(ctx context.Context, group model.Group, target model.Target) (*model.DeviceRecord, error)
}

// Summary counts the outcome of a run.
type Summary struct {
	RunID   string
	Emitted int
	Failed  int
	Skipped int // groups matching no kind, or without targets
}

// Runner polls groups on a bounded worker pool and hands every record to the
// emitter as soon as it is complete.
type Runner struct {
	collector Collector
	emitter   emit.Emitter
	workers   int
	now       func() time.Time
}

// NewRunner creates a runner using at most workers concurrent devices
func NewRunner(c Collector, e emit.Emitter, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{collector: c, emitter: e, workers: workers, now: time.Now}
}

// Classify returns the kinds whose tag occurs in the group name, in the order
// of model.Kinds. A name may match several kinds.
func Classify(name string) []model.Kind {
	var kinds []model.Kind
	for _, k := range model.Kinds {
		if strings.Contains(name, string(k)) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Run polls every group once. Only the first target of a group is collected,
// once per matching kind. A failing device is logged and counted; the others
// still run. The returned error wraps ErrDeviceFailures and every device error
// when any device failed, or is the context error when the run was canceled.
func (r *Runner) Run(ctx context.Context, groups []model.Group) (Summary, error) {
	summary := Summary{RunID: uuid.NewString()}
	start := r.now()

	var (
		mu   sync.Mutex
		errs []error
	)

	pool := worker.NewWorkerPool(ctx, r.workers)
	pool.Start()

	for _, group := range groups {
		kinds := Classify(group.Name)
		if len(kinds) == 0 {
			log.Debug("Skipping group with unknown kind", "run_id", summary.RunID, "group", group.Name)
			summary.Skipped++
			continue
		}
		if len(group.Targets) == 0 {
			log.Debug("Skipping group without targets", "run_id", summary.RunID, "group", group.Name)
			summary.Skipped++
			continue
		}

		target := group.Targets[0]
		for _, kind := range kinds {
			meta := emit.Meta{RunID: summary.RunID, Group: group.Name, Kind: kind}
			job := worker.Job{
				ID: fmt.Sprintf("%s/%s/%s", group.Name, kind, target.Name),
				Handler: func(ctx context.Context) error {
					err := r.poll(ctx, meta, group, target)

					mu.Lock()
					defer mu.Unlock()
					if err != nil {
						summary.Failed++
						errs = append(errs, err)
					} else {
						summary.Emitted++
					}
					return err
				},
			}
			if err := pool.Submit(job); err != nil {
				pool.Stop()
				return summary, err
			}
		}
	}

	pool.Stop()

	log.Info("Run complete",
		"run_id", summary.RunID,
		"emitted", summary.Emitted,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"duration", time.Since(start))

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	if len(errs) > 0 {
		head := fmt.Errorf("%w: %d of %d devices", ErrDeviceFailures, summary.Failed, summary.Failed+summary.Emitted)
		return summary, errors.Join(append([]error{head}, errs...)...)
	}
	return summary, nil
}

func (r *Runner) poll(ctx context.Context, meta emit.Meta, group model.Group, target model.Target) error {
	log.Debug("Polling device", "run_id", meta.RunID, "group", group.Name, "kind", meta.Kind, "target", target.Name, "address", target.Address)

	record, err := r.collector.Collect(ctx, group, target)
	if err != nil {
		log.Error("Device failed", "run_id", meta.RunID, "group", group.Name, "kind", meta.Kind, "target", target.Name, "error", err)
		return err
	}

	meta.CollectedAt = r.now()
	if err := r.emitter.Emit(ctx, meta, record); err != nil {
		log.Error("Failed to emit record", "run_id", meta.RunID, "target", target.Name, "error", err)
		return fmt.Errorf("emit %s: %w", target.Name, err)
	}
	return nil
}
