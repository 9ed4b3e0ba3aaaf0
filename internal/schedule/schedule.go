// Package schedule runs a job on a cron schedule until its context ends.
package schedule

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/matsen/slackbot/internal/logging"
)

// Job is one scheduled run.
type Job func(ctx context.Context) error

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Parse validates a five-field cron spec or a descriptor such as "@weekly".
func Parse(spec string) (cron.Schedule, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("empty schedule")
	}
	sched, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return sched, nil
}

// Run invokes job on spec until ctx is cancelled, then waits for a running
// job to finish. A trigger that fires while the previous run is still going
// is skipped. Job errors are logged and do not stop the schedule.
func Run(ctx context.Context, spec string, loc *time.Location, job Job, log *logging.Logger) error {
	sched, err := Parse(spec)
	if err != nil {
		return err
	}
	if loc == nil {
		loc = time.Local
	}

	cl := cronLogger{log: log}
	c := cron.New(
		cron.WithParser(parser),
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	c.Schedule(sched, cron.FuncJob(func() {
		started := time.Now()
		if err := job(ctx); err != nil {
			log.Error("scheduled run failed", logging.Err(err))
			return
		}
		log.Info("scheduled run finished", logging.String("took", time.Since(started).Round(time.Millisecond).String()))
	}))

	c.Start()
	log.Info("scheduler started",
		logging.String("schedule", spec),
		logging.Time("next_run", sched.Next(time.Now().In(loc))),
	)

	<-ctx.Done()
	<-c.Stop().Done()
	log.Info("scheduler stopped")
	return nil
}

// cronLogger adapts the run logger to cron.Logger.
type cronLogger struct {
	log *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, kvFields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, append(kvFields(keysAndValues), logging.Err(err))...)
}

func kvFields(kv []interface{}) []logging.Field {
	fields := make([]logging.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields = append(fields, logging.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return fields
}
