package world

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Store holds the entire simulated world in memory. All collections are
// guarded by a single read-write mutex; methods return copies so callers can
// never alias internal state. Simulation-driven writes are additionally
// funneled through a single reconciler so concurrent triggers cannot lose
// appends, but the store itself is safe for use from any goroutine.
type Store struct {
	mu sync.RWMutex

	ids   *IDGenerator
	clock *Clock

	// Actor collections, keyed by email (the identity key).
	users     map[string]User
	coworkers map[string]Coworker

	// Entity collections, keyed by ID.
	threads  map[string]Thread
	projects map[string]Project
	events   map[string]Event
	convos   map[string]IMConversation
	posts    map[string]SocialPost
	roles    map[string]Role

	// imMessages holds ordered message lists per conversation ID.
	imMessages map[string][]IMMessage

	profile CompanyProfile
	muted   bool
}

// NewStore creates an empty store using the given clock for all timestamps.
func NewStore(clock *Clock) *Store {
	return &Store{
		ids:        NewIDGenerator(),
		clock:      clock,
		users:      make(map[string]User),
		coworkers:  make(map[string]Coworker),
		threads:    make(map[string]Thread),
		projects:   make(map[string]Project),
		events:     make(map[string]Event),
		convos:     make(map[string]IMConversation),
		posts:      make(map[string]SocialPost),
		roles:      make(map[string]Role),
		imMessages: make(map[string][]IMMessage),
	}
}

// Clock returns the simulated clock backing this store.
func (s *Store) Clock() *Clock {
	return s.clock
}

// NextID mints a collision-resistant identifier with the given prefix.
func (s *Store) NextID(prefix string) string {
	return s.ids.Next(prefix)
}

// normalizeEmail canonicalizes an address for use as an identity key.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AddUser inserts a new user. The email must be unique across users and
// coworkers, and the username unique across users.
func (s *Store) AddUser(u User) (User, error) {
	if u.Name == "" || u.Email == "" || u.Username == "" {
		return User{}, fmt.Errorf("%w: user name, email and "+
			"username are required", ErrMissingField)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	email := normalizeEmail(u.Email)
	if s.emailTakenLocked(email) {
		return User{}, fmt.Errorf("%w: %s", ErrDuplicateEmail, email)
	}
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return User{}, fmt.Errorf("%w: %s",
				ErrDuplicateUsername, u.Username)
		}
	}

	u.Email = email
	if u.ID == "" {
		u.ID = s.ids.Next("user")
	}
	s.users[email] = u

	return u, nil
}

// UpdateUser replaces an existing user record, matched by email.
func (s *Store) UpdateUser(u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := normalizeEmail(u.Email)
	existing, ok := s.users[email]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUserNotFound, email)
	}

	u.Email = email
	u.ID = existing.ID
	s.users[email] = u

	return nil
}

// DeleteUser removes a user and scrubs them from every thread's participant
// set and status map. Threads left without participants are dropped.
func (s *Store) DeleteUser(email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = normalizeEmail(email)
	if _, ok := s.users[email]; !ok {
		return fmt.Errorf("%w: %s", ErrUserNotFound, email)
	}
	delete(s.users, email)

	for id, thread := range s.threads {
		remaining := make([]string, 0, len(thread.Participants))
		for _, p := range thread.Participants {
			if p != email {
				remaining = append(remaining, p)
			}
		}
		if len(remaining) == len(thread.Participants) {
			continue
		}

		if len(remaining) == 0 {
			delete(s.threads, id)
			continue
		}

		thread.Participants = remaining
		delete(thread.Statuses, email)
		s.threads[id] = thread
	}

	return nil
}

// User returns the user with the given email.
func (s *Store) User(email string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[normalizeEmail(email)]
	return u, ok
}

// UserByUsername returns the user with the given username.
func (s *Store) UserByUsername(username string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			return u, true
		}
	}

	return User{}, false
}

// Users returns all users sorted by email.
func (s *Store) Users() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Email < out[j].Email
	})

	return out
}

// AdminUsers returns all users with admin capability, sorted by email.
func (s *Store) AdminUsers() []User {
	all := s.Users()

	admins := make([]User, 0, len(all))
	for _, u := range all {
		if u.IsAdmin {
			admins = append(admins, u)
		}
	}

	return admins
}

// AddCoworker inserts a new simulated persona. The email must be unique
// across users and coworkers.
func (s *Store) AddCoworker(c Coworker) (Coworker, error) {
	if c.Name == "" || c.Email == "" {
		return Coworker{}, fmt.Errorf("%w: coworker name and email "+
			"are required", ErrMissingField)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	email := normalizeEmail(c.Email)
	if s.emailTakenLocked(email) {
		return Coworker{}, fmt.Errorf("%w: %s", ErrDuplicateEmail,
			email)
	}

	c.Email = email
	if c.ID == "" {
		c.ID = s.ids.Next("coworker")
	}
	s.coworkers[email] = c

	return c, nil
}

// UpdateCoworker replaces an existing persona record, matched by email.
func (s *Store) UpdateCoworker(c Coworker) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := normalizeEmail(c.Email)
	existing, ok := s.coworkers[email]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCoworkerNotFound, email)
	}

	c.Email = email
	c.ID = existing.ID
	s.coworkers[email] = c

	return nil
}

// DeleteCoworker removes a persona from the directory. Threads the persona
// took part in are left untouched.
func (s *Store) DeleteCoworker(email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = normalizeEmail(email)
	if _, ok := s.coworkers[email]; !ok {
		return fmt.Errorf("%w: %s", ErrCoworkerNotFound, email)
	}
	delete(s.coworkers, email)

	return nil
}

// Coworker returns the persona with the given email.
func (s *Store) Coworker(email string) (Coworker, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.coworkers[normalizeEmail(email)]
	return c, ok
}

// Coworkers returns all personas sorted by email.
func (s *Store) Coworkers() []Coworker {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Coworker, 0, len(s.coworkers))
	for _, c := range s.coworkers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Email < out[j].Email
	})

	return out
}

// IsPersona reports whether the email belongs to a simulated coworker.
func (s *Store) IsPersona(email string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.coworkers[normalizeEmail(email)]
	return ok
}

// ActorName resolves an email to a display name, falling back to the email
// itself for unknown addresses.
func (s *Store) ActorName(email string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := normalizeEmail(email)
	if u, ok := s.users[key]; ok {
		return u.Name
	}
	if c, ok := s.coworkers[key]; ok {
		return c.Name
	}

	return email
}

// AllEmails returns every known actor email, users and coworkers combined,
// sorted.
func (s *Store) AllEmails() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.users)+len(s.coworkers))
	for email := range s.users {
		out = append(out, email)
	}
	for email := range s.coworkers {
		out = append(out, email)
	}
	sort.Strings(out)

	return out
}

// emailTakenLocked reports whether any actor already owns the email. The
// caller must hold the write lock.
func (s *Store) emailTakenLocked(email string) bool {
	if _, ok := s.users[email]; ok {
		return true
	}
	if _, ok := s.coworkers[email]; ok {
		return true
	}

	return false
}

// Profile returns the company profile.
func (s *Store) Profile() CompanyProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.profile
}

// SetProfile replaces the company profile.
func (s *Store) SetProfile(p CompanyProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profile = p
}

// Roles returns all directory roles sorted by name.
func (s *Store) Roles() []Role {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Role, 0, len(s.roles))
	for _, r := range s.roles {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})

	return out
}

// AddRole creates a new directory role.
func (s *Store) AddRole(name string) (Role, error) {
	if name == "" {
		return Role{}, fmt.Errorf("%w: role name", ErrMissingField)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	role := Role{
		ID:   s.ids.Next("role"),
		Name: name,
	}
	s.roles[role.ID] = role

	return role, nil
}

// DeleteRole removes a directory role.
func (s *Store) DeleteRole(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.roles, id)
}

// Muted returns the notification mute flag.
func (s *Store) Muted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.muted
}

// SetMuted sets the notification mute flag.
func (s *Store) SetMuted(muted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.muted = muted
}
