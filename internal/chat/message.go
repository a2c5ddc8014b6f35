package chat

import "time"

// MaxMessageLength bounds message content at the input boundary.
const MaxMessageLength = 1000

// AuthorProfile is a snapshot of author display data taken when the message
// was fetched or resolved. It is never re-joined later, so it can go stale if
// the author edits their profile afterwards.
type AuthorProfile struct {
	Username  string
	AvatarURL string
}

// Message is the domain model for a chat message. IDs and timestamps are
// assigned by the backing store.
type Message struct {
	ID        string
	RoomID    string
	AuthorID  string
	Content   string
	CreatedAt time.Time
	Author    *AuthorProfile
}

// DisplayName returns the author's username, or a fallback when the message
// carries no profile.
func (m Message) DisplayName() string {
	if m.Author != nil && m.Author.Username != "" {
		return m.Author.Username
	}
	return "Unknown User"
}

// Room is a chat room as seen by the client.
type Room struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

// User is the authenticated identity the client acts as.
type User struct {
	ID    string
	Email string
}
