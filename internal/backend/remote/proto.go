package remote

import (
	"time"

	"github.com/vovakirdan/wirechat-client/internal/chat"
)

// Wire shapes for the wirechat HTTP API and WebSocket insert stream.

const (
	frameTypeEvent      = "event"
	eventMessageCreated = "message_created"
)

type roomDTO struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type authorDTO struct {
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type messageDTO struct {
	ID        string     `json:"id"`
	RoomID    string     `json:"room_id"`
	UserID    string     `json:"user_id"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	Author    *authorDTO `json:"author,omitempty"`
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

// streamFrame is the envelope pushed on the insert stream. Only
// message_created events carry data the client acts on.
type streamFrame struct {
	Type  string      `json:"type"`
	Event string      `json:"event,omitempty"`
	Data  insertEvent `json:"data,omitempty"`
}

type insertEvent struct {
	ID     string `json:"id"`
	RoomID string `json:"room_id,omitempty"`
}

func toRoom(dto roomDTO) chat.Room {
	return chat.Room{
		ID:          dto.ID,
		Name:        dto.Name,
		Description: dto.Description,
		CreatedAt:   dto.CreatedAt,
	}
}

func toMessage(dto messageDTO) chat.Message {
	msg := chat.Message{
		ID:        dto.ID,
		RoomID:    dto.RoomID,
		AuthorID:  dto.UserID,
		Content:   dto.Content,
		CreatedAt: dto.CreatedAt,
	}
	if dto.Author != nil {
		msg.Author = &chat.AuthorProfile{
			Username:  dto.Author.Username,
			AvatarURL: dto.Author.AvatarURL,
		}
	}
	return msg
}
