package chat

// EventKind is a notification the engine emits to its consumer.
type EventKind int

const (
	// EventRoomChanged announces the room that became current.
	EventRoomChanged EventKind = iota
	// EventLoading marks the start of a snapshot load for the current room.
	// The message list must not be rendered as authoritative until the next
	// EventMessagesUpdated.
	EventLoading
	// EventMessagesUpdated carries the full ordered list and its derived
	// groups after any change to the current room's messages.
	EventMessagesUpdated
	// EventNotice surfaces a recoverable error to the user.
	EventNotice
)

// Event describes a state change observable by the rendering layer. Messages
// and Groups are copies; consumers may hold on to them.
type Event struct {
	Kind     EventKind
	Room     *Room
	Messages []Message
	Groups   []MessageGroup
	Notice   *ChatError
}
