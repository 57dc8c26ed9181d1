// Package storage provides thread-safe in-memory storage of arbitrage run
// reports with file-based persistence and automatic rotation to prevent
// unbounded growth.
//
// Storage is designed for reliability with atomic file writes and graceful
// handling of persistence failures. Reports are persisted to a JSON file and
// restored on application restart.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tf2tools/tf2arb/internal/models"
)

// Storage provides thread-safe in-memory report storage with file persistence
type Storage struct {
	reports []models.Report
	mu      sync.RWMutex

	maxReports int
	filePath   string
}

// PersistenceFile represents the file structure for JSON persistence
type PersistenceFile struct {
	Version string          `json:"version"`
	SavedAt time.Time       `json:"saved_at"`
	Reports []models.Report `json:"reports"`
}

// New creates a new Storage instance.
// If filePath is empty, uses OS-appropriate tmp directory
func New(maxReports int, filePath string) *Storage {
	if filePath == "" {
		filePath = filepath.Join(os.TempDir(), "tf2arb", "data.json")
	}

	return &Storage{
		reports:    make([]models.Report, 0),
		maxReports: maxReports,
		filePath:   filePath,
	}
}

// AddReport appends a run report. Reports are stored oldest first.
func (s *Storage) AddReport(report *models.Report) error {
	if err := report.Validate(); err != nil {
		return fmt.Errorf("invalid report: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.reports = append(s.reports, *report)
	return nil
}

// GetReport retrieves a report by ID
func (s *Storage) GetReport(id string) (*models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.reports {
		if s.reports[i].ID == id {
			report := s.reports[i]
			return &report, nil
		}
	}
	return nil, fmt.Errorf("report not found: %s", id)
}

// GetAllReports returns all stored reports, oldest first
func (s *Storage) GetAllReports() ([]models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reports := make([]models.Report, len(s.reports))
	copy(reports, s.reports)
	return reports, nil
}

// LatestReport returns the most recently added report
func (s *Storage) LatestReport() (*models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.reports) == 0 {
		return nil, fmt.Errorf("no reports stored")
	}
	report := s.reports[len(s.reports)-1]
	return &report, nil
}

// RotateReports drops the oldest reports exceeding the max limit
func (s *Storage) RotateReports() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.reports) > s.maxReports {
		start := len(s.reports) - s.maxReports
		s.reports = s.reports[start:]
	}
	return nil
}

// Save persists storage state to file
func (s *Storage) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Create data directory if needed
	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data := PersistenceFile{
		Version: "1.0",
		SavedAt: time.Now(),
		Reports: s.reports,
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	// Write to temporary file first (atomic write)
	tempPath := s.filePath + ".tmp"
	if err := os.WriteFile(tempPath, jsonData, 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	if err := os.Rename(tempPath, s.filePath); err != nil {
		_ = os.Remove(tempPath) // Clean up temp file on rename failure
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}

// Load restores storage state from file
func (s *Storage) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Clean up any stale temp files from previous crashes
	tempPath := s.filePath + ".tmp"
	if _, err := os.Stat(tempPath); err == nil {
		_ = os.Remove(tempPath)
	}

	if _, err := os.Stat(s.filePath); os.IsNotExist(err) {
		// No file to load, start fresh
		return nil
	}

	jsonData, err := os.ReadFile(s.filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var data PersistenceFile
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}

	s.reports = data.Reports
	if s.reports == nil {
		s.reports = make([]models.Report, 0)
	}

	return nil
}
