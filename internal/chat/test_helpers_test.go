package chat

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeBackend is a scriptable in-memory implementation of Backend.
type fakeBackend struct {
	mu sync.Mutex

	user   *User
	rooms  []Room
	byRoom map[string][]Message
	byID   map[string]Message

	listRoomsErr error
	fetchErr     error
	lookupErr    error
	insertErr    error

	// snapshotGate blocks FetchMessages for a room until the gate closes.
	snapshotGate map[string]chan struct{}

	inserted []Message
	subs     []*fakeSub
	ops      []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		byRoom:       make(map[string][]Message),
		byID:         make(map[string]Message),
		snapshotGate: make(map[string]chan struct{}),
	}
}

func (b *fakeBackend) addRoom(id, name string, createdAt time.Time) Room {
	b.mu.Lock()
	defer b.mu.Unlock()
	room := Room{ID: id, Name: name, CreatedAt: createdAt}
	b.rooms = append(b.rooms, room)
	return room
}

func (b *fakeBackend) addMessage(m Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.byRoom[m.RoomID] = append(b.byRoom[m.RoomID], m)
	b.byID[m.ID] = m
}

// registerMessage makes the message resolvable by id without including it in
// the room snapshot.
func (b *fakeBackend) registerMessage(m Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.byID[m.ID] = m
}

// notify delivers an insert notice through every open subscription for the
// room.
func (b *fakeBackend) notify(roomID, messageID string) {
	b.mu.Lock()
	var handlers []func(InsertNotice)
	for _, sub := range b.subs {
		if sub.roomID == roomID && !sub.closed {
			handlers = append(handlers, sub.onInsert)
		}
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(InsertNotice{MessageID: messageID, RoomID: roomID})
	}
}

func (b *fakeBackend) ListRooms(ctx context.Context) ([]Room, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listRoomsErr != nil {
		return nil, b.listRoomsErr
	}
	return append([]Room(nil), b.rooms...), nil
}

func (b *fakeBackend) FetchMessages(ctx context.Context, roomID string) ([]Message, error) {
	b.mu.Lock()
	gate := b.snapshotGate[roomID]
	b.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fetchErr != nil {
		return nil, b.fetchErr
	}
	return append([]Message(nil), b.byRoom[roomID]...), nil
}

func (b *fakeBackend) FetchMessageByID(ctx context.Context, id string) (*Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.lookupErr != nil {
		return nil, b.lookupErr
	}
	m, ok := b.byID[id]
	if !ok {
		return nil, ErrMessageNotFound
	}
	return &m, nil
}

func (b *fakeBackend) InsertMessage(ctx context.Context, roomID, authorID, content string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.insertErr != nil {
		return b.insertErr
	}
	b.inserted = append(b.inserted, Message{RoomID: roomID, AuthorID: authorID, Content: content})
	return nil
}

func (b *fakeBackend) SubscribeInserts(ctx context.Context, roomID string, onInsert func(InsertNotice)) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	sub := &fakeSub{backend: b, roomID: roomID, onInsert: onInsert}
	b.subs = append(b.subs, sub)
	b.ops = append(b.ops, "subscribe "+roomID)
	return sub, nil
}

func (b *fakeBackend) CurrentUser(ctx context.Context) (*User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.user == nil {
		return nil, ErrNoUser
	}
	return b.user, nil
}

func (b *fakeBackend) opLog() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.ops...)
}

type fakeSub struct {
	backend  *fakeBackend
	roomID   string
	onInsert func(InsertNotice)
	closed   bool
}

func (s *fakeSub) Unsubscribe(ctx context.Context) error {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	s.closed = true
	s.backend.ops = append(s.backend.ops, "unsubscribe "+s.roomID)
	return nil
}

func mustEvent(t *testing.T, ch <-chan Event, kind EventKind) Event {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-ch:
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("expected event kind %v not received", kind)
			return Event{}
		}
	}
}

func testMessage(id, roomID, authorID, content string, createdAt time.Time) Message {
	return Message{
		ID:        id,
		RoomID:    roomID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: createdAt,
		Author:    &AuthorProfile{Username: authorID},
	}
}
