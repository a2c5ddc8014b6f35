package chat

import (
	"context"
	"errors"
)

// Sentinel errors returned by backend implementations.
var (
	// ErrMessageNotFound is returned by FetchMessageByID when the message no
	// longer exists.
	ErrMessageNotFound = errors.New("message not found")
	// ErrNoUser is returned by CurrentUser when nobody is authenticated.
	ErrNoUser = errors.New("no authenticated user")
)

// InsertNotice is the minimal record delivered for a newly written message.
// The engine resolves the full message with a point lookup before applying it.
type InsertNotice struct {
	MessageID string
	RoomID    string
}

// Subscription is a handle on an open insert stream.
type Subscription interface {
	// Unsubscribe closes the stream. No notices are delivered after it
	// returns.
	Unsubscribe(ctx context.Context) error
}

// Backend is the set of capabilities the engine consumes. Implementations
// must return rooms and messages ordered by creation time ascending, messages
// joined with their author profile.
type Backend interface {
	ListRooms(ctx context.Context) ([]Room, error)
	FetchMessages(ctx context.Context, roomID string) ([]Message, error)
	FetchMessageByID(ctx context.Context, id string) (*Message, error)
	InsertMessage(ctx context.Context, roomID, authorID, content string) error
	// SubscribeInserts opens a stream of insert notices for one room. The
	// stream buffers from subscribe time, so subscribing before a snapshot
	// fetch leaves no gap between the two.
	SubscribeInserts(ctx context.Context, roomID string, onInsert func(InsertNotice)) (Subscription, error)
	CurrentUser(ctx context.Context) (*User, error)
}
