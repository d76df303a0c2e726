// Package jobmgr runs named background jobs with cancellation and in-memory
// tracking. Jobs run in their own goroutines and are removed automatically
// when they finish.
package jobmgr

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// Job is a running unit of work.
type Job struct {
	Name   string
	Cancel context.CancelFunc
}

// Manager starts, stops and tracks jobs. Safe for concurrent use.
type Manager struct {
	mu   sync.Mutex
	jobs map[string]*Job
}

func NewManager() *Manager {
	return &Manager{jobs: make(map[string]*Job)}
}

// StartAsync launches the runner in its own goroutine. A job name can only
// run once at a time. The runner should return when its context ends.
func (m *Manager) StartAsync(name string, runner func(ctx context.Context) error) error {
	m.mu.Lock()
	if _, exists := m.jobs[name]; exists {
		m.mu.Unlock()
		return fmt.Errorf("job %q is already running", name)
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.jobs[name] = &Job{Name: name, Cancel: cancel}
	m.mu.Unlock()

	go func() {
		log.Debug().Str("job", name).Msg("job started")

		if err := runner(ctx); err != nil && ctx.Err() == nil {
			log.Warn().Str("job", name).Err(err).Msg("job failed")
		} else {
			log.Debug().Str("job", name).Msg("job finished")
		}

		m.mu.Lock()
		delete(m.jobs, name)
		m.mu.Unlock()
	}()

	return nil
}

// Stop cancels a running job by name.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[name]
	if !ok {
		return fmt.Errorf("job %q not running", name)
	}
	job.Cancel()
	delete(m.jobs, name)
	return nil
}

// StopAll cancels every running job.
func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, job := range m.jobs {
		job.Cancel()
		delete(m.jobs, name)
	}
}

// List returns the active job names, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.jobs))
	for name := range m.jobs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Status returns a human-readable summary of active jobs.
func (m *Manager) Status() string {
	active := m.List()
	if len(active) == 0 {
		return "No jobs are running."
	}
	return "Running jobs: " + strings.Join(active, ", ")
}
