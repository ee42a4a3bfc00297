package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// JobStatus represents the status of a job
type JobStatus string

const (
	JobStatusScheduled JobStatus = "scheduled"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// JobInfo is a snapshot of a registered job
type JobInfo struct {
	ID          string
	Name        string
	Description string
	Every       time.Duration
	Singleton   bool
	Status      JobStatus
	LastRun     time.Time
	NextRun     time.Time
	RunCount    int
	ErrorCount  int
	LastError   string
}

// JobFunc is the work a job performs on each run
type JobFunc func(ctx context.Context) error

type job struct {
	info   JobInfo
	gocron gocron.Job
}

// Scheduler runs interval jobs on top of gocron
type Scheduler struct {
	gocron gocron.Scheduler
	mu     sync.RWMutex
	jobs   map[string]*job
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger
}

// New creates a scheduler; jobs start running after Start
func New(logger *slog.Logger) (*Scheduler, error) {
	gocronScheduler, err := gocron.NewScheduler(
		gocron.WithLogger(logger.With("component", "gocron")),
		gocron.WithLocation(time.UTC),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		gocron: gocronScheduler,
		jobs:   make(map[string]*job),
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}, nil
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.logger.Info("⏰ [Scheduler] Starting job scheduler")
	s.gocron.Start()

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, j := range s.jobs {
		if nextRun, err := j.gocron.NextRun(); err == nil {
			j.info.NextRun = nextRun
			s.logger.Debug("⏰ [Scheduler] Next run", "job", id, "next_run", nextRun)
		}
	}
}

// Stop cancels running jobs and waits for them to return
func (s *Scheduler) Stop() error {
	s.logger.Info("🛑 [Scheduler] Stopping job scheduler")
	s.cancel()
	return s.gocron.Shutdown()
}

// AddSingletonJob registers fn to run every interval. A run that is still
// going when the next one is due causes that next run to be skipped.
func (s *Scheduler) AddSingletonJob(id, name, description string, every time.Duration, fn JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[id]; exists {
		return fmt.Errorf("%w: %s", ErrJobExists, id)
	}

	j := &job{
		info: JobInfo{
			ID:          id,
			Name:        name,
			Description: description,
			Every:       every,
			Singleton:   true,
			Status:      JobStatusScheduled,
		},
	}

	gj, err := s.gocron.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(s.wrapJobFunc(id, fn)),
		gocron.WithName(id),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create job %s: %w", id, err)
	}
	j.gocron = gj

	s.jobs[id] = j
	s.logger.Info("➕ [Scheduler] Job registered", "job", id, "every", every)
	return nil
}

// RunJobNow triggers the job outside its schedule
func (s *Scheduler) RunJobNow(id string) error {
	s.mu.RLock()
	j, exists := s.jobs[id]
	s.mu.RUnlock()
	if !exists {
		return fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}

	s.logger.Info("▶️ [Scheduler] Manually triggering job", "job", id)
	if err := j.gocron.RunNow(); err != nil {
		return fmt.Errorf("failed to trigger job %s: %w", id, err)
	}
	return nil
}

// GetJob returns a snapshot of the job
func (s *Scheduler) GetJob(id string) (JobInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, exists := s.jobs[id]
	if !exists {
		return JobInfo{}, false
	}
	return j.info, true
}

// Jobs returns a snapshot of every job
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]JobInfo, 0, len(s.jobs))
	for _, j := range s.jobs {
		infos = append(infos, j.info)
	}
	return infos
}

// wrapJobFunc wraps a job function to update job statistics
func (s *Scheduler) wrapJobFunc(id string, fn JobFunc) func() {
	return func() {
		s.mu.Lock()
		j := s.jobs[id]
		if j == nil {
			s.mu.Unlock()
			return
		}
		j.info.Status = JobStatusRunning
		j.info.LastRun = time.Now()
		j.info.RunCount++
		s.mu.Unlock()

		s.logger.Debug("🏃 [Scheduler] Job started", "job", id)
		err := fn(s.ctx)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.ctx.Err() == nil {
			if nextRun, nextErr := j.gocron.NextRun(); nextErr == nil {
				j.info.NextRun = nextRun
			}
		}
		if err != nil {
			s.logger.Error("❌ [Scheduler] Job failed", "job", id, "error", err)
			j.info.Status = JobStatusFailed
			j.info.ErrorCount++
			j.info.LastError = err.Error()
			return
		}
		s.logger.Debug("✅ [Scheduler] Job completed", "job", id)
		j.info.Status = JobStatusCompleted
		j.info.LastError = ""
	}
}

// Scheduler errors
var (
	ErrJobNotFound = errors.New("job not found")
	ErrJobExists   = errors.New("job already registered")
)
