package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler owns named periodic tasks. A task that is still running when its
// next tick fires is skipped, so slow polls never pile up.
type Scheduler struct {
	cron     *cron.Cron
	tasks    map[string]cron.EntryID // task_id -> entry_id
	tasksMux sync.RWMutex
}

// NewScheduler creates a new scheduler
func NewScheduler() *Scheduler {
	logger := cronLogger{}
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		tasks: make(map[string]cron.EntryID),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	log.Info().Msg("⏰ Starting poll scheduler")
	s.cron.Start()
}

// Stop stops the scheduler and waits for running tasks
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info().Msg("⏰ Poll scheduler stopped")
}

// AddTask runs job every interval (whole seconds, at least one) until removed.
// An existing task with the same id is replaced.
func (s *Scheduler) AddTask(taskID string, interval time.Duration, job func()) {
	if interval < time.Second {
		interval = time.Second
	}

	s.tasksMux.Lock()
	defer s.tasksMux.Unlock()

	s.removeLocked(taskID)
	s.tasks[taskID] = s.cron.Schedule(cron.Every(interval), cron.FuncJob(job))
	log.Debug().Str("task", taskID).Dur("interval", interval).Msg("task scheduled")
}

// AddSpec schedules job with a cron expression (seconds field supported)
func (s *Scheduler) AddSpec(taskID, spec string, job func()) error {
	s.tasksMux.Lock()
	defer s.tasksMux.Unlock()

	s.removeLocked(taskID)
	entryID, err := s.cron.AddFunc(spec, job)
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}
	s.tasks[taskID] = entryID
	log.Debug().Str("task", taskID).Str("spec", spec).Msg("task scheduled")
	return nil
}

// RemoveTask removes a task. Unknown ids are ignored.
func (s *Scheduler) RemoveTask(taskID string) {
	s.tasksMux.Lock()
	defer s.tasksMux.Unlock()

	if s.removeLocked(taskID) {
		log.Debug().Str("task", taskID).Msg("task removed")
	}
}

func (s *Scheduler) removeLocked(taskID string) bool {
	entryID, exists := s.tasks[taskID]
	if !exists {
		return false
	}
	s.cron.Remove(entryID)
	delete(s.tasks, taskID)
	return true
}

// HasTask reports whether taskID is scheduled
func (s *Scheduler) HasTask(taskID string) bool {
	s.tasksMux.RLock()
	defer s.tasksMux.RUnlock()
	_, ok := s.tasks[taskID]
	return ok
}

// Tasks returns all currently scheduled task ids
func (s *Scheduler) Tasks() []string {
	s.tasksMux.RLock()
	defer s.tasksMux.RUnlock()

	taskIDs := make([]string, 0, len(s.tasks))
	for taskID := range s.tasks {
		taskIDs = append(taskIDs, taskID)
	}
	return taskIDs
}

// cronLogger routes cron's own logging into zerolog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
