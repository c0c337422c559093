package world

import (
	"fmt"
	"sort"
)

// participantKey canonicalizes a participant set so conversations can be
// looked up by set equality regardless of ordering.
func participantKey(emails []string) string {
	norm := make([]string, len(emails))
	for i, e := range emails {
		norm[i] = normalizeEmail(e)
	}
	norm = dedupe(norm)
	sort.Strings(norm)

	key := ""
	for i, e := range norm {
		if i > 0 {
			key += "|"
		}
		key += e
	}

	return key
}

// ConversationFor finds the conversation whose participant set exactly
// matches the given emails, order-independent.
func (s *Store) ConversationFor(emails []string) (IMConversation, bool) {
	want := participantKey(emails)

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.convos {
		if participantKey(c.ParticipantEmails) == want {
			return copyConversation(c), true
		}
	}

	return IMConversation{}, false
}

// EnsureConversation returns the conversation for the exact participant set,
// creating it if none exists. The same set always resolves to the same
// conversation, never a duplicate.
func (s *Store) EnsureConversation(emails []string,
	groupName string,
) IMConversation {
	want := participantKey(emails)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.convos {
		if participantKey(c.ParticipantEmails) == want {
			return copyConversation(c)
		}
	}

	norm := make([]string, len(emails))
	for i, e := range emails {
		norm[i] = normalizeEmail(e)
	}

	convo := IMConversation{
		ID:                s.ids.Next("im-convo"),
		ParticipantEmails: dedupe(norm),
		GroupName:         groupName,
	}
	s.convos[convo.ID] = convo

	return copyConversation(convo)
}

// Conversation returns the conversation with the given ID.
func (s *Store) Conversation(id string) (IMConversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.convos[id]
	if !ok {
		return IMConversation{}, false
	}

	return copyConversation(c), true
}

// Conversations returns every conversation, sorted by ID.
func (s *Store) Conversations() []IMConversation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]IMConversation, 0, len(s.convos))
	for _, c := range s.convos {
		out = append(out, copyConversation(c))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})

	return out
}

// AppendIMMessage adds a message to a conversation, stamped with a fresh ID
// and the current simulation time. Typing placeholders go through the same
// path with isTyping set.
func (s *Store) AppendIMMessage(convoID, sender, content string,
	isTyping bool,
) (IMMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.convos[convoID]; !ok {
		return IMMessage{}, fmt.Errorf("%w: %s",
			ErrConversationNotFound, convoID)
	}

	msg := IMMessage{
		ID:             s.ids.Next("im-msg"),
		ConversationID: convoID,
		SenderEmail:    normalizeEmail(sender),
		Content:        content,
		Timestamp:      s.clock.Now(),
		IsTyping:       isTyping,
	}
	s.imMessages[convoID] = append(s.imMessages[convoID], msg)

	return msg, nil
}

// RemoveIMMessage deletes a message from a conversation, used to clear
// transient typing placeholders. Removing an absent message is a no-op.
func (s *Store) RemoveIMMessage(convoID, msgID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.imMessages[convoID]
	for i, m := range msgs {
		if m.ID == msgID {
			s.imMessages[convoID] = append(
				msgs[:i], msgs[i+1:]...,
			)
			return
		}
	}
}

// IMMessages returns the ordered message list of a conversation.
func (s *Store) IMMessages(convoID string) []IMMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]IMMessage(nil), s.imMessages[convoID]...)
}

func copyConversation(c IMConversation) IMConversation {
	out := c
	out.ParticipantEmails = append(
		[]string(nil), c.ParticipantEmails...,
	)

	return out
}
