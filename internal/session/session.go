// Package session persists client-side quiz state between runs: when each
// result was first produced, the payload in flight, the last accepted
// submission and the number of successful submissions.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/okian/pcbvalues/internal/domain/model"
)

// Document is the on-disk session layout.
type Document struct {
	Timestamps     map[string]string `json:"timestamps"`
	LastSubmission *model.Submission `json:"last_submission"`
	Pending        *model.Submission `json:"pending"`
	Takes          int               `json:"takes"`
}

// Store is a JSON file backed session. Every mutation is written through
// with a temp file and rename so a crash never leaves a torn document.
type Store struct {
	mu   sync.Mutex
	path string
	doc  Document
}

// Open loads the session at path. A missing file yields an empty session.
func Open(path string) (*Store, error) {
	s := &Store{path: path, doc: Document{Timestamps: map[string]string{}}}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if len(b) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(b, &s.doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptSession, path, err)
	}
	if s.doc.Timestamps == nil {
		s.doc.Timestamps = map[string]string{}
	}
	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Stamp records at as the production time of digest unless one is already
// recorded. It returns the stored RFC 3339 timestamp.
func (s *Store) Stamp(digest string, at time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ts, ok := s.doc.Timestamps[digest]; ok {
		return ts, nil
	}
	ts := at.UTC().Format(time.RFC3339)
	s.doc.Timestamps[digest] = ts
	if err := s.saveLocked(); err != nil {
		delete(s.doc.Timestamps, digest)
		return "", err
	}
	return ts, nil
}

// AnswerTime returns the recorded timestamp for digest, or nil.
func (s *Store) AnswerTime(digest string) *string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts, ok := s.doc.Timestamps[digest]
	if !ok || digest == "" {
		return nil
	}
	return &ts
}

// Takes returns the number of successful submissions across all sessions.
func (s *Store) Takes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Takes
}

// SetPending stores the payload about to be sent.
func (s *Store) SetPending(p model.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.doc.Pending
	s.doc.Pending = &p
	if err := s.saveLocked(); err != nil {
		s.doc.Pending = prev
		return err
	}
	return nil
}

// ClearPending drops the pending payload, e.g. after the user backed out.
func (s *Store) ClearPending() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc.Pending == nil {
		return nil
	}
	prev := s.doc.Pending
	s.doc.Pending = nil
	if err := s.saveLocked(); err != nil {
		s.doc.Pending = prev
		return err
	}
	return nil
}

// Pending returns a copy of the payload left over from an unfinished or
// failed submission, or nil.
func (s *Store) Pending() *model.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.doc.Pending)
}

// LastSubmission returns a copy of the last accepted payload, or nil.
func (s *Store) LastSubmission() *model.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.doc.LastSubmission)
}

// RecordSuccess marks p as accepted: the takes counter grows, p becomes the
// last submission and the pending payload is cleared.
func (s *Store) RecordSuccess(p model.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.doc
	s.doc.Takes++
	s.doc.LastSubmission = &p
	s.doc.Pending = nil
	if err := s.saveLocked(); err != nil {
		s.doc = prev
		return err
	}
	return nil
}

func (s *Store) saveLocked() error {
	b, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return fmt.Errorf("create temp session: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write session: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace session: %w", err)
	}
	return nil
}

func clone(p *model.Submission) *model.Submission {
	if p == nil {
		return nil
	}
	c := *p
	c.Vals = append([]float64(nil), p.Vals...)
	if p.Time != nil {
		t := *p.Time
		c.Time = &t
	}
	return &c
}
