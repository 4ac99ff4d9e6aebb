package importer

import (
	"sync"
	"time"
)

// Job states as reported by the status endpoint.
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// RowError is one failed row, kept for the job report.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Progress is the live state of one import job.
type Progress struct {
	Status     string     `json:"status"`
	Total      int        `json:"total"`
	Processed  int        `json:"processed"`
	Successful int        `json:"successful"`
	Failed     int        `json:"failed"`
	Percent    int        `json:"percent"`
	Errors     []RowError `json:"errors,omitempty"`
	Warnings   []string   `json:"warnings,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// ProgressStore keeps job progress in memory with a TTL. Entries for
// finished jobs linger long enough for the UI to poll the final state and
// then expire; an unknown id is indistinguishable from an expired one.
type ProgressStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]progressEntry
}

type progressEntry struct {
	progress  Progress
	expiresAt time.Time
}

func NewProgressStore(ttl time.Duration) *ProgressStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ProgressStore{ttl: ttl, entries: map[string]progressEntry{}}
}

// Set stores the snapshot and refreshes its TTL.
func (s *ProgressStore) Set(jobID string, p Progress) {
	p.UpdatedAt = time.Now().UTC()
	if p.Total > 0 {
		p.Percent = p.Processed * 100 / p.Total
	} else if p.Status == StatusCompleted {
		p.Percent = 100
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeLocked()
	s.entries[jobID] = progressEntry{progress: p, expiresAt: time.Now().Add(s.ttl)}
}

// Get returns nil for unknown or expired jobs.
func (s *ProgressStore) Get(jobID string) *Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[jobID]
	if !ok || time.Now().After(e.expiresAt) {
		delete(s.entries, jobID)
		return nil
	}
	p := e.progress
	return &p
}

// purgeLocked drops expired entries; called opportunistically on writes.
func (s *ProgressStore) purgeLocked() {
	now := time.Now()
	for id, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, id)
		}
	}
}
