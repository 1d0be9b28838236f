package scheduler

import (
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is a unit of background work run on a cron schedule.
type Job interface {
	Run() error
	Name() string
}

type Scheduler struct {
	cron *cron.Cron
	log  *zap.Logger
}

func New(log *zap.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		log:  log.With(zap.String("component", "scheduler")),
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("Scheduler started")
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("Scheduler stopped")
}

// AddJob registers job under a standard five-field schedule or a descriptor
// such as "@daily" or "@every 1h".
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.log.Debug("Running job", zap.String("job", job.Name()))

		if err := job.Run(); err != nil {
			s.log.Error("Job failed", zap.String("job", job.Name()), zap.Error(err))
		} else {
			s.log.Debug("Job completed", zap.String("job", job.Name()))
		}
	})
	if err != nil {
		return err
	}

	s.log.Info("Job registered",
		zap.String("schedule", schedule),
		zap.String("job", job.Name()))
	return nil
}

// RunNow executes a job immediately, outside its schedule.
func (s *Scheduler) RunNow(job Job) error {
	s.log.Info("Running job immediately", zap.String("job", job.Name()))
	return job.Run()
}
