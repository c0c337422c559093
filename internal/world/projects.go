package world

import (
	"fmt"
	"sort"
	"time"
)

// AddProject inserts a new project. Status defaults to Active when unset.
func (s *Store) AddProject(p Project) (Project, error) {
	if p.Name == "" {
		return Project{}, fmt.Errorf("%w: project name",
			ErrMissingField)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = s.ids.Next("project")
	}
	if p.Status == "" {
		p.Status = ProjectActive
	}

	norm := make([]string, len(p.MemberEmails))
	for i, m := range p.MemberEmails {
		norm[i] = normalizeEmail(m)
	}
	p.MemberEmails = dedupe(norm)

	s.projects[p.ID] = p

	return p, nil
}

// UpdateProject replaces an existing project record.
func (s *Store) UpdateProject(p Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[p.ID]; !ok {
		return fmt.Errorf("%w: %s", ErrProjectNotFound, p.ID)
	}
	s.projects[p.ID] = p

	return nil
}

// DeleteProject removes a project. Its linked thread, if any, survives.
func (s *Store) DeleteProject(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[id]; !ok {
		return fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	delete(s.projects, id)

	return nil
}

// SetProjectStatus transitions a project's lifecycle status.
func (s *Store) SetProjectStatus(id string, status ProjectStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}

	p.Status = status
	s.projects[id] = p

	return nil
}

// LinkProjectThread attaches a kickoff thread to a project.
func (s *Store) LinkProjectThread(projectID, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[projectID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrProjectNotFound, projectID)
	}

	p.ThreadID = threadID
	s.projects[projectID] = p

	return nil
}

// Project returns the project with the given ID.
func (s *Store) Project(id string) (Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]
	if !ok {
		return Project{}, false
	}

	return copyProject(p), true
}

// Projects returns every project, sorted by ID.
func (s *Store) Projects() []Project {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, copyProject(p))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})

	return out
}

// ActiveProjects returns projects in the Active state, sorted by ID.
func (s *Store) ActiveProjects() []Project {
	all := s.Projects()

	out := make([]Project, 0, len(all))
	for _, p := range all {
		if p.Status == ProjectActive {
			out = append(out, p)
		}
	}

	return out
}

func copyProject(p Project) Project {
	out := p
	out.MemberEmails = append([]string(nil), p.MemberEmails...)
	if p.Deadline != nil {
		d := *p.Deadline
		out.Deadline = &d
	}

	return out
}

// AddEvent inserts a calendar event.
func (s *Store) AddEvent(e Event) (Event, error) {
	if e.Title == "" && !e.IsSystem {
		return Event{}, fmt.Errorf("%w: event title", ErrMissingField)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = s.ids.Next("event")
	}
	s.events[e.ID] = e

	return e, nil
}

// UpdateEvent replaces an existing event record.
func (s *Store) UpdateEvent(e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[e.ID]; !ok {
		return fmt.Errorf("%w: %s", ErrEventNotFound, e.ID)
	}
	s.events[e.ID] = e

	return nil
}

// DeleteEvent removes an event. The delete is idempotent: removing an
// already-absent event reports false without error.
func (s *Store) DeleteEvent(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[id]; !ok {
		return false
	}
	delete(s.events, id)

	return true
}

// Event returns the event with the given ID.
func (s *Store) Event(id string) (Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.events[id]
	return e, ok
}

// Events returns every event, sorted by start time then ID.
func (s *Store) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Event, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].ID < out[j].ID
	})

	return out
}

// DueSystemEvents returns the hidden system events whose end time has been
// reached at the given simulation time.
func (s *Store) DueSystemEvents(now time.Time) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Event
	for _, e := range s.events {
		if e.IsSystem && !e.End.After(now) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})

	return out
}

// ClaimEvent atomically removes an event and returns it. Exactly one caller
// can claim a given event; later claims report false. Deadline resolution
// claims its trigger up front so a deadline can never fire twice, even when
// two sweeps race.
func (s *Store) ClaimEvent(id string) (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[id]
	if !ok {
		return Event{}, false
	}
	delete(s.events, id)

	return e, true
}

// PendingReminders returns visible events starting within the reminder
// window that have not yet had a reminder sent.
func (s *Store) PendingReminders(now time.Time,
	window time.Duration,
) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Event
	for _, e := range s.events {
		if e.IsSystem || e.ReminderSent {
			continue
		}
		if e.Start.After(now) && e.Start.Sub(now) <= window {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})

	return out
}

// MarkReminderSent flags an event so its reminder broadcast happens once.
func (s *Store) MarkReminderSent(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrEventNotFound, id)
	}

	e.ReminderSent = true
	s.events[id] = e

	return nil
}
