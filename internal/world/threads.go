package world

import (
	"fmt"
	"sort"
)

// emailParticipants collects every address involved in an email: sender,
// to, cc and bcc.
func emailParticipants(e Email) []string {
	out := make([]string, 0, 1+len(e.To)+len(e.Cc)+len(e.Bcc))
	out = append(out, normalizeEmail(e.From))
	for _, addr := range e.To {
		out = append(out, normalizeEmail(addr))
	}
	for _, addr := range e.Cc {
		out = append(out, normalizeEmail(addr))
	}
	for _, addr := range e.Bcc {
		out = append(out, normalizeEmail(addr))
	}

	return out
}

// CreateThread starts a new thread seeded with a single email. The
// participant set is derived from the email's addresses and every
// participant's viewer status starts out Active. The email is stamped with a
// fresh ID and the current simulation time.
func (s *Store) CreateThread(email Email, highEngagement bool) Thread {
	s.mu.Lock()
	defer s.mu.Unlock()

	email.ID = s.ids.Next("email")
	email.Timestamp = s.clock.Now()

	participants := dedupe(emailParticipants(email))
	statuses := make(map[string]ThreadStatus, len(participants))
	for _, p := range participants {
		statuses[p] = ThreadActive
	}

	thread := Thread{
		ID:             s.ids.Next("thread"),
		Emails:         []Email{email},
		Participants:   participants,
		Statuses:       statuses,
		HighEngagement: highEngagement,
	}
	s.threads[thread.ID] = thread

	return thread
}

// AppendEmail adds an email to an existing thread. The thread's participant
// set is re-unioned with the email's addresses, and every address on the new
// email has its viewer status reset to Active so the thread reappears for
// viewers who previously deleted it. Existing emails are never touched.
func (s *Store) AppendEmail(threadID string, email Email) (Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	thread, ok := s.threads[threadID]
	if !ok {
		return Thread{}, fmt.Errorf("%w: %s", ErrThreadNotFound,
			threadID)
	}

	email.ID = s.ids.Next("email")
	email.Timestamp = s.clock.Now()

	newParticipants := emailParticipants(email)
	thread.Emails = append(thread.Emails, email)
	thread.Participants = dedupe(
		append(thread.Participants, newParticipants...),
	)

	if thread.Statuses == nil {
		thread.Statuses = make(map[string]ThreadStatus)
	}
	for _, p := range newParticipants {
		thread.Statuses[p] = ThreadActive
	}

	s.threads[threadID] = thread

	return thread, nil
}

// SetThreadStatus updates one viewer's status on a thread. The viewer must
// be a participant; other viewers' statuses are never affected.
func (s *Store) SetThreadStatus(threadID, viewer string,
	status ThreadStatus,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	thread, ok := s.threads[threadID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrThreadNotFound, threadID)
	}

	viewer = normalizeEmail(viewer)
	if !contains(thread.Participants, viewer) {
		return fmt.Errorf("%w: %s on thread %s", ErrNotParticipant,
			viewer, threadID)
	}

	if thread.Statuses == nil {
		thread.Statuses = make(map[string]ThreadStatus)
	}
	thread.Statuses[viewer] = status
	s.threads[threadID] = thread

	return nil
}

// Thread returns the thread with the given ID.
func (s *Store) Thread(id string) (Thread, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.threads[id]
	if !ok {
		return Thread{}, false
	}

	return copyThread(t), true
}

// Threads returns every thread, sorted by ID.
func (s *Store) Threads() []Thread {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Thread, 0, len(s.threads))
	for _, t := range s.threads {
		out = append(out, copyThread(t))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})

	return out
}

// ThreadsFor returns the threads visible to one viewer: threads they are a
// participant of whose per-viewer status is not Deleted.
func (s *Store) ThreadsFor(viewer string) []Thread {
	viewer = normalizeEmail(viewer)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Thread
	for _, t := range s.threads {
		if !contains(t.Participants, viewer) {
			continue
		}
		if t.Statuses[viewer] == ThreadDeleted {
			continue
		}
		out = append(out, copyThread(t))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})

	return out
}

// ThreadCount returns the number of threads in the store.
func (s *Store) ThreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.threads)
}

// copyThread deep-copies the mutable parts of a thread so callers cannot
// alias store internals.
func copyThread(t Thread) Thread {
	out := t
	out.Emails = append([]Email(nil), t.Emails...)
	out.Participants = append([]string(nil), t.Participants...)
	out.Statuses = make(map[string]ThreadStatus, len(t.Statuses))
	for k, v := range t.Statuses {
		out.Statuses[k] = v
	}

	return out
}

// dedupe returns the input slice with duplicates removed, preserving first
// occurrence order.
func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	return out
}

// contains reports whether the slice holds the value.
func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}

	return false
}
