// Package monitor periodically reports what the map is showing.
package monitor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Status is a snapshot of the map state, taken on the event loop.
type Status struct {
	Time            time.Time `json:"time"`
	Images          int       `json:"images"`
	Positioned      int       `json:"positioned"`
	ActiveImage     int       `json:"activeImage"`
	Tracks          int       `json:"tracks"`
	Nearby          int       `json:"nearby"`
	Overlays        int       `json:"overlays"`
	PendingRequests int       `json:"pendingRequests"`
}

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Logger   *slog.Logger
	Interval time.Duration
	// Request asks the event loop for a snapshot. The loop answers by
	// calling Report.
	Request func()
	// StatusPath, when set, is rewritten with the latest snapshot as JSON.
	StatusPath string
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	last      Status
	reports   int
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Service{
		deps:     deps,
		stopChan: make(chan struct{}),
	}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Start starts the status monitor goroutine. A zero interval or a missing
// Request func leaves the monitor stopped.
func (s *Service) Start() error {
	if s.deps.Interval <= 0 || s.deps.Request == nil {
		return fmt.Errorf("monitor needs an interval and a request func")
	}

	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	stop := s.stopChan
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}()

		s.deps.Logger.Debug("Starting status monitor", "interval", s.deps.Interval)
		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				s.deps.Request()
			}
		}
	}()

	return nil
}

// Stop stops the status monitor
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		close(s.stopChan)
		s.isRunning = false
	}
}

// Report logs a snapshot and writes the status file.
func (s *Service) Report(st Status) {
	if st.Time.IsZero() {
		st.Time = time.Now()
	}

	s.mu.Lock()
	s.last = st
	s.reports++
	s.mu.Unlock()

	s.deps.Logger.Info("Map status",
		"images", st.Images,
		"positioned", st.Positioned,
		"activeImage", st.ActiveImage,
		"tracks", st.Tracks,
		"nearby", st.Nearby,
		"overlays", st.Overlays,
		"pendingRequests", st.PendingRequests,
	)

	if s.deps.StatusPath == "" {
		return
	}
	if err := writeStatusFile(s.deps.StatusPath, st); err != nil {
		s.deps.Logger.Error("Error writing status file", "path", s.deps.StatusPath, "error", err)
	}
}

// Last returns the most recent snapshot and how many were reported.
func (s *Service) Last() (Status, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.reports
}

func writeStatusFile(path string, st Status) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
