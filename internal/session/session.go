// Package session keeps per-browser working state: parsed resumes, match
// reports and outreach drafts keyed by candidate name. Nothing is persisted;
// an idle session expires after the manager's TTL.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"scholarscout/internal/workflow"
)

// timeNow is swapped out in tests to drive expiry.
var timeNow = time.Now

// Session holds the working set for one user. Candidates are keyed by
// profile name; re-uploading a resume for the same name replaces the record
// and clears nothing else.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.RWMutex
	lastSeen time.Time
	records  map[string]*workflow.ResumeRecord
	reports  map[string]*workflow.MatchReport
	drafts   map[string]*workflow.OutreachEmail
	order    []string
}

func newSession() *Session {
	now := timeNow()

	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		lastSeen:  now,
		records:   make(map[string]*workflow.ResumeRecord),
		reports:   make(map[string]*workflow.MatchReport),
		drafts:    make(map[string]*workflow.OutreachEmail),
	}
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = timeNow()
	s.mu.Unlock()
}

func (s *Session) expired(ttl time.Duration, now time.Time) bool {
	if ttl <= 0 {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return now.Sub(s.lastSeen) > ttl
}

// PutRecord stores a parsed resume and returns the candidate key it was
// filed under.
func (s *Session) PutRecord(record *workflow.ResumeRecord) string {
	name := record.Profile.Name

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[name]; !exists {
		s.order = append(s.order, name)
	}

	s.records[name] = record

	return name
}

// ReplaceRecord swaps a stored resume for a re-parsed one. When the new
// parse extracted a different candidate name the old entry keeps its table
// position and its stale report and draft are dropped. Returns the key the
// record is now filed under.
func (s *Session) ReplaceRecord(oldName string, record *workflow.ResumeRecord) string {
	name := record.Profile.Name

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[oldName]; !exists {
		if _, exists := s.records[name]; !exists {
			s.order = append(s.order, name)
		}
		s.records[name] = record

		return name
	}

	if name == oldName {
		s.records[name] = record

		return name
	}

	for i, key := range s.order {
		if key != oldName {
			continue
		}

		// When the new name already has a table slot, drop the old slot
		// instead of renaming it so the order never lists a name twice.
		if _, exists := s.records[name]; exists {
			s.order = append(s.order[:i], s.order[i+1:]...)
		} else {
			s.order[i] = name
		}

		break
	}

	delete(s.records, oldName)
	delete(s.reports, oldName)
	delete(s.drafts, oldName)
	s.records[name] = record

	return name
}

// Record returns the parsed resume for a candidate.
func (s *Session) Record(name string) (*workflow.ResumeRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[name]

	return record, ok
}

// Records lists parsed resumes in upload order.
func (s *Session) Records() []*workflow.ResumeRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*workflow.ResumeRecord, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.records[name])
	}

	return out
}

// PutReport stores the latest match report for a candidate.
func (s *Session) PutReport(report *workflow.MatchReport) {
	s.mu.Lock()
	s.reports[report.Candidate] = report
	s.mu.Unlock()
}

// Report returns the latest match report for a candidate.
func (s *Session) Report(name string) (*workflow.MatchReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.reports[name]

	return report, ok
}

// PutDraft stores the latest outreach draft for a candidate.
func (s *Session) PutDraft(draft *workflow.OutreachEmail) {
	s.mu.Lock()
	s.drafts[draft.Candidate] = draft
	s.mu.Unlock()
}

// Draft returns the latest outreach draft for a candidate.
func (s *Session) Draft(name string) (*workflow.OutreachEmail, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	draft, ok := s.drafts[name]

	return draft, ok
}

// Manager owns all live sessions. Expired sessions are pruned lazily on
// Create and Get, so no background goroutine is needed.
type Manager struct {
	ttl    time.Duration
	logger *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager builds a Manager. A non-positive TTL disables expiry.
func NewManager(ttl time.Duration, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}

	return &Manager{
		ttl:      ttl,
		logger:   log,
		sessions: make(map[string]*Session),
	}
}

// Create opens a new session.
func (m *Manager) Create() *Session {
	session := newSession()

	m.mu.Lock()
	m.pruneLocked()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	m.logger.Debug("session created", zap.String("session_id", session.ID))

	return session
}

// Get looks up a live session and refreshes its idle timer.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	m.pruneLocked()
	session, ok := m.sessions[id]
	m.mu.Unlock()

	if !ok {
		return nil, false
	}

	session.touch()

	return session, true
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.sessions)
}

func (m *Manager) pruneLocked() {
	if m.ttl <= 0 {
		return
	}

	now := timeNow()

	for id, session := range m.sessions {
		if session.expired(m.ttl, now) {
			delete(m.sessions, id)
			m.logger.Debug("session expired", zap.String("session_id", id))
		}
	}
}
