package chat

import "sort"

// MessageStore holds the ordered, duplicate-free message list for the
// current room. It is owned by the session loop and never accessed
// concurrently.
type MessageStore struct {
	roomID  string
	loading bool
	msgs    []Message
	seen    map[string]struct{}
	pending []Message
}

// NewMessageStore constructs an empty store with no current room.
func NewMessageStore() *MessageStore {
	return &MessageStore{seen: make(map[string]struct{})}
}

// Reset discards all held messages and marks the store as loading a snapshot
// for the given room.
func (s *MessageStore) Reset(roomID string) {
	s.roomID = roomID
	s.loading = true
	s.msgs = nil
	s.pending = nil
	s.seen = make(map[string]struct{})
}

// ApplySnapshot replaces the list wholesale with the fetched history, sorted
// by creation time ascending with arrival order breaking ties. Notices that
// arrived while the snapshot was in flight are re-applied afterwards;
// duplicates already covered by the snapshot are dropped. Returns false when
// the snapshot targets a room that is no longer current.
func (s *MessageStore) ApplySnapshot(roomID string, msgs []Message) bool {
	if roomID != s.roomID {
		return false
	}

	s.msgs = make([]Message, 0, len(msgs))
	s.seen = make(map[string]struct{}, len(msgs))
	for _, m := range msgs {
		s.append(m)
	}
	sort.SliceStable(s.msgs, func(i, j int) bool {
		return s.msgs[i].CreatedAt.Before(s.msgs[j].CreatedAt)
	})
	s.loading = false

	pending := s.pending
	s.pending = nil
	for _, m := range pending {
		s.append(m)
	}
	return true
}

// ApplyIncoming appends a fully-resolved message if its id has not been seen.
// While a snapshot is loading the message is buffered instead, to be merged
// once the snapshot lands. Returns true when the visible list changed.
func (s *MessageStore) ApplyIncoming(m Message) bool {
	if m.RoomID != s.roomID {
		return false
	}
	if s.loading {
		s.pending = append(s.pending, m)
		return false
	}
	return s.append(m)
}

// append adds m to the tail unless its id is already present. Live notices
// carry timestamps at or after everything already held, so no re-sort is
// needed here.
func (s *MessageStore) append(m Message) bool {
	if _, dup := s.seen[m.ID]; dup {
		return false
	}
	s.seen[m.ID] = struct{}{}
	s.msgs = append(s.msgs, m)
	return true
}

// Loading reports whether a snapshot load is in flight.
func (s *MessageStore) Loading() bool {
	return s.loading
}

// RoomID returns the room the store currently holds messages for.
func (s *MessageStore) RoomID() string {
	return s.roomID
}

// Len returns the number of held messages.
func (s *MessageStore) Len() int {
	return len(s.msgs)
}

// Messages returns a copy of the ordered list.
func (s *MessageStore) Messages() []Message {
	out := make([]Message, len(s.msgs))
	copy(out, s.msgs)
	return out
}
