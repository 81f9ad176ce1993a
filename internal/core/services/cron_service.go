package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CronService runs periodic maintenance jobs
type CronService struct {
	cron    *cron.Cron
	log     *logrus.Logger
	timeout time.Duration
}

// NewCronService creates a new cron service; jobs are skipped while a
// previous run of the same job is still going.
func NewCronService(log *logrus.Logger) *CronService {
	cl := cronLogger{log: log}
	return &CronService{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(
				cron.Recover(cl),
				cron.SkipIfStillRunning(cl),
			),
		),
		log:     log,
		timeout: 2 * time.Minute,
	}
}

// AddJob schedules fn on spec (standard five-field or @every syntax)
func (s *CronService) AddJob(name, spec string, fn func(ctx context.Context) error) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		start := time.Now()
		if err := fn(ctx); err != nil {
			s.log.WithError(err).WithField("job", name).Warn("cron job failed")
			return
		}
		s.log.WithFields(logrus.Fields{"job": name, "took": time.Since(start).String()}).Debug("cron job finished")
	})
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	s.log.WithFields(logrus.Fields{"job": name, "spec": spec}).Info("cron job scheduled")
	return nil
}

// Len returns the number of scheduled jobs
func (s *CronService) Len() int {
	return len(s.cron.Entries())
}

// Start begins running jobs in the background
func (s *CronService) Start() {
	s.cron.Start()
}

// Stop waits for running jobs to finish
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
}

// cronLogger routes the scheduler's own messages (recovered panics, skipped
// runs) through logrus.
type cronLogger struct {
	log *logrus.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.WithFields(kvFields(keysAndValues)).Debug("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.WithError(err).WithFields(kvFields(keysAndValues)).Error("cron: " + msg)
}

func kvFields(kv []interface{}) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return fields
}
