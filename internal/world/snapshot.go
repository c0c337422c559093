package world

import (
	"fmt"
	"sort"
)

// Export captures the full world state as a single snapshot document. The
// result is deterministic: collections are sorted by their identity keys.
func (s *Store) Export() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Users:     make([]User, 0, len(s.users)),
		Threads:   make([]Thread, 0, len(s.threads)),
		Coworkers: make([]Coworker, 0, len(s.coworkers)),
		Projects:  make([]Project, 0, len(s.projects)),
		Events:    make([]Event, 0, len(s.events)),
		Conversations: make(
			[]IMConversation, 0, len(s.convos),
		),
		Posts:       make([]SocialPost, 0, len(s.posts)),
		Roles:       make([]Role, 0, len(s.roles)),
		Profile:     s.profile,
		Muted:       s.muted,
		CurrentTime: s.clock.Now(),
	}

	for _, u := range s.users {
		snap.Users = append(snap.Users, u)
	}
	sort.Slice(snap.Users, func(i, j int) bool {
		return snap.Users[i].Email < snap.Users[j].Email
	})

	for _, c := range s.coworkers {
		snap.Coworkers = append(snap.Coworkers, c)
	}
	sort.Slice(snap.Coworkers, func(i, j int) bool {
		return snap.Coworkers[i].Email < snap.Coworkers[j].Email
	})

	for _, t := range s.threads {
		snap.Threads = append(snap.Threads, copyThread(t))
	}
	sort.Slice(snap.Threads, func(i, j int) bool {
		return snap.Threads[i].ID < snap.Threads[j].ID
	})

	for _, p := range s.projects {
		snap.Projects = append(snap.Projects, copyProject(p))
	}
	sort.Slice(snap.Projects, func(i, j int) bool {
		return snap.Projects[i].ID < snap.Projects[j].ID
	})

	for _, e := range s.events {
		snap.Events = append(snap.Events, e)
	}
	sort.Slice(snap.Events, func(i, j int) bool {
		return snap.Events[i].ID < snap.Events[j].ID
	})

	for _, c := range s.convos {
		snap.Conversations = append(
			snap.Conversations, copyConversation(c),
		)
	}
	sort.Slice(snap.Conversations, func(i, j int) bool {
		return snap.Conversations[i].ID < snap.Conversations[j].ID
	})

	convoIDs := make([]string, 0, len(s.imMessages))
	for id := range s.imMessages {
		convoIDs = append(convoIDs, id)
	}
	sort.Strings(convoIDs)
	for _, id := range convoIDs {
		snap.IMMessages = append(
			snap.IMMessages, s.imMessages[id]...,
		)
	}

	for _, p := range s.posts {
		snap.Posts = append(snap.Posts, copyPost(p))
	}
	sort.Slice(snap.Posts, func(i, j int) bool {
		return snap.Posts[i].ID < snap.Posts[j].ID
	})

	for _, r := range s.roles {
		snap.Roles = append(snap.Roles, r)
	}
	sort.Slice(snap.Roles, func(i, j int) bool {
		return snap.Roles[i].ID < snap.Roles[j].ID
	})

	return snap
}

// Import validates a snapshot and replaces the entire world state with it.
// At minimum the users, threads and coworkers collections must be present;
// a snapshot missing any of them is rejected before any state is touched.
func (s *Store) Import(snap Snapshot) error {
	if snap.Users == nil {
		return fmt.Errorf("%w: users", ErrInvalidSnapshot)
	}
	if snap.Threads == nil {
		return fmt.Errorf("%w: threads", ErrInvalidSnapshot)
	}
	if snap.Coworkers == nil {
		return fmt.Errorf("%w: globalCoworkers", ErrInvalidSnapshot)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = make(map[string]User, len(snap.Users))
	for _, u := range snap.Users {
		s.users[normalizeEmail(u.Email)] = u
	}

	s.coworkers = make(map[string]Coworker, len(snap.Coworkers))
	for _, c := range snap.Coworkers {
		s.coworkers[normalizeEmail(c.Email)] = c
	}

	s.threads = make(map[string]Thread, len(snap.Threads))
	for _, t := range snap.Threads {
		s.threads[t.ID] = copyThread(t)
	}

	s.projects = make(map[string]Project, len(snap.Projects))
	for _, p := range snap.Projects {
		s.projects[p.ID] = copyProject(p)
	}

	s.events = make(map[string]Event, len(snap.Events))
	for _, e := range snap.Events {
		s.events[e.ID] = e
	}

	s.convos = make(map[string]IMConversation, len(snap.Conversations))
	for _, c := range snap.Conversations {
		s.convos[c.ID] = copyConversation(c)
	}

	s.imMessages = make(map[string][]IMMessage)
	for _, m := range snap.IMMessages {
		s.imMessages[m.ConversationID] = append(
			s.imMessages[m.ConversationID], m,
		)
	}

	s.posts = make(map[string]SocialPost, len(snap.Posts))
	for _, p := range snap.Posts {
		s.posts[p.ID] = copyPost(p)
	}

	s.roles = make(map[string]Role, len(snap.Roles))
	for _, r := range snap.Roles {
		s.roles[r.ID] = r
	}

	s.profile = snap.Profile
	s.muted = snap.Muted
	s.clock.Set(snap.CurrentTime)

	return nil
}
