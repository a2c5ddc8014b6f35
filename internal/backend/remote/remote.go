package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-client/internal/auth"
	"github.com/vovakirdan/wirechat-client/internal/chat"
)

// Client implements the chat backend capabilities against a wirechat server:
// REST for the room directory, snapshots, point lookups and inserts, and a
// WebSocket stream for insert notices.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *zerolog.Logger
}

// New constructs a client for the server at baseURL. token may be empty, in
// which case the client is unauthenticated and sends will be rejected by the
// engine before reaching the wire.
func New(baseURL, token string, logger *zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     logger,
	}
}

// CurrentUser derives the identity from the configured token.
func (c *Client) CurrentUser(ctx context.Context) (*chat.User, error) {
	return auth.ParseIdentity(c.token)
}

// ListRooms fetches the room directory, ordered by creation time ascending.
func (c *Client) ListRooms(ctx context.Context) ([]chat.Room, error) {
	var dtos []roomDTO
	if err := c.get(ctx, "/api/rooms", &dtos); err != nil {
		return nil, err
	}
	rooms := make([]chat.Room, 0, len(dtos))
	for _, dto := range dtos {
		rooms = append(rooms, toRoom(dto))
	}
	return rooms, nil
}

// FetchMessages fetches the room's full history with author profiles joined
// in, ordered by creation time ascending.
func (c *Client) FetchMessages(ctx context.Context, roomID string) ([]chat.Message, error) {
	var dtos []messageDTO
	if err := c.get(ctx, "/api/rooms/"+url.PathEscape(roomID)+"/messages", &dtos); err != nil {
		return nil, err
	}
	msgs := make([]chat.Message, 0, len(dtos))
	for _, dto := range dtos {
		msgs = append(msgs, toMessage(dto))
	}
	return msgs, nil
}

// FetchMessageByID resolves one message with its author profile.
func (c *Client) FetchMessageByID(ctx context.Context, id string) (*chat.Message, error) {
	var dto messageDTO
	if err := c.get(ctx, "/api/messages/"+url.PathEscape(id), &dto); err != nil {
		var status *statusError
		if errors.As(err, &status) && status.status == http.StatusNotFound {
			return nil, chat.ErrMessageNotFound
		}
		return nil, err
	}
	msg := toMessage(dto)
	return &msg, nil
}

// InsertMessage posts a message to the room. The server derives the author
// from the token; authorID is accepted for interface symmetry only.
func (c *Client) InsertMessage(ctx context.Context, roomID, authorID, content string) error {
	body, err := json.Marshal(sendMessageRequest{Content: content})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	path := "/api/rooms/" + url.PathEscape(roomID) + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return &statusError{path: path, status: resp.StatusCode}
	}
	return nil
}

// SubscribeInserts opens the WebSocket stream for roomID and invokes
// onInsert for every message_created event until Unsubscribe.
func (c *Client) SubscribeInserts(ctx context.Context, roomID string, onInsert func(chat.InsertNotice)) (chat.Subscription, error) {
	wsURL, err := c.streamURL(roomID)
	if err != nil {
		return nil, err
	}

	opts := &websocket.DialOptions{HTTPHeader: http.Header{}}
	if c.token != "" {
		opts.HTTPHeader.Set("Authorization", "Bearer "+c.token)
	}

	conn, _, err := websocket.Dial(ctx, wsURL, opts)
	if err != nil {
		return nil, fmt.Errorf("dial insert stream: %w", err)
	}

	streamCtx, cancel := context.WithCancel(ctx)
	sub := &subscription{conn: conn, cancel: cancel, done: make(chan struct{})}
	go sub.readLoop(streamCtx, roomID, onInsert, c.log)
	return sub, nil
}

func (c *Client) streamURL(roomID string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	u.RawQuery = url.Values{"room": {roomID}}.Encode()
	return u.String(), nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &statusError{path: path, status: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

type statusError struct {
	path   string
	status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.path, e.status)
}

type subscription struct {
	conn   *websocket.Conn
	cancel context.CancelFunc
	done   chan struct{}
}

func (s *subscription) readLoop(ctx context.Context, roomID string, onInsert func(chat.InsertNotice), logger *zerolog.Logger) {
	defer close(s.done)

	for {
		var frame streamFrame
		if err := wsjson.Read(ctx, s.conn, &frame); err != nil {
			if ctx.Err() != nil {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			logger.Warn().Err(err).Str("room_id", roomID).Msg("insert stream closed")
			return
		}

		if frame.Type != frameTypeEvent || frame.Event != eventMessageCreated {
			continue
		}
		if frame.Data.ID == "" {
			continue
		}
		if frame.Data.RoomID != "" && frame.Data.RoomID != roomID {
			continue
		}
		onInsert(chat.InsertNotice{MessageID: frame.Data.ID, RoomID: roomID})
	}
}

// Unsubscribe closes the stream and waits for the read loop to finish, so no
// notice is delivered after it returns.
func (s *subscription) Unsubscribe(ctx context.Context) error {
	s.cancel()
	_ = s.conn.Close(websocket.StatusNormalClosure, "unsubscribe")

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
