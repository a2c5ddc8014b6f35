package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/vovakirdan/wirechat-client/internal/auth"
	"github.com/vovakirdan/wirechat-client/internal/chat"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	email         TEXT NOT NULL DEFAULT '',
	avatar_url    TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL DEFAULT '',
	created_at    DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS rooms (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id         TEXT PRIMARY KEY,
	room_id    TEXT NOT NULL REFERENCES rooms(id),
	user_id    TEXT NOT NULL REFERENCES users(id),
	content    TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_room_created
	ON messages(room_id, created_at);
`

// Store implements the chat backend capabilities on a local SQLite database.
// Insert notifications are fanned out in-process: every message written
// through this store is delivered to open subscriptions for its room.
type Store struct {
	db *sql.DB

	mu   sync.Mutex
	user *chat.User
	subs map[string]map[*subscription]struct{}
}

// New opens (or creates) the database at dbPath and applies the schema.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &Store{
		db:   db,
		subs: make(map[string]map[*subscription]struct{}),
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Login resolves the store's identity: an existing user must present the
// matching password, an unknown username creates a fresh account. The
// resolved user becomes the answer to CurrentUser.
func (s *Store) Login(ctx context.Context, username, password string) (*chat.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}

	var id, email, hash string
	query := `SELECT id, email, password_hash FROM users WHERE username = ?`
	err := s.db.QueryRowContext(ctx, query, username).Scan(&id, &email, &hash)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return s.register(ctx, username, password)
	case err != nil:
		return nil, fmt.Errorf("query user: %w", err)
	}

	if err := auth.CheckPassword(hash, password); err != nil {
		return nil, fmt.Errorf("invalid credentials for %s", username)
	}

	user := &chat.User{ID: id, Email: email}
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return user, nil
}

func (s *Store) register(ctx context.Context, username, password string) (*chat.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	email := username
	if !strings.Contains(email, "@") {
		email = username + "@local"
	}

	id := uuid.NewString()
	query := `
		INSERT INTO users (id, username, email, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, id, username, email, hash, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	user := &chat.User{ID: id, Email: email}
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return user, nil
}

// CurrentUser returns the identity resolved by Login.
func (s *Store) CurrentUser(ctx context.Context) (*chat.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil, chat.ErrNoUser
	}
	user := *s.user
	return &user, nil
}

// SeedDefaultRoom creates a starter room when the directory is empty, so a
// fresh database is immediately usable.
func (s *Store) SeedDefaultRoom(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rooms`).Scan(&count); err != nil {
		return fmt.Errorf("count rooms: %w", err)
	}
	if count > 0 {
		return nil
	}

	query := `INSERT INTO rooms (id, name, description, created_at) VALUES (?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		uuid.NewString(), "general", "Welcome to the chat!", time.Now().UTC())
	if err != nil {
		return fmt.Errorf("seed room: %w", err)
	}
	return nil
}

// CreateRoom adds a room and returns it.
func (s *Store) CreateRoom(ctx context.Context, name, description string) (*chat.Room, error) {
	room := chat.Room{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	query := `INSERT INTO rooms (id, name, description, created_at) VALUES (?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, room.ID, room.Name, room.Description, room.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert room: %w", err)
	}
	return &room, nil
}

// ListRooms returns all rooms ordered by creation time ascending.
func (s *Store) ListRooms(ctx context.Context) ([]chat.Room, error) {
	query := `
		SELECT id, name, description, created_at
		FROM rooms
		ORDER BY created_at ASC, rowid ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query rooms: %w", err)
	}
	defer rows.Close()

	var rooms []chat.Room
	for rows.Next() {
		var room chat.Room
		if err := rows.Scan(&room.ID, &room.Name, &room.Description, &room.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

const messageColumns = `
	m.id, m.room_id, m.user_id, m.content, m.created_at, u.username, u.avatar_url
`

// FetchMessages returns the room's full history with the author profile
// joined in, ordered by creation time ascending with insertion order
// breaking ties.
func (s *Store) FetchMessages(ctx context.Context, roomID string) ([]chat.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages m
		JOIN users u ON u.id = m.user_id
		WHERE m.room_id = ?
		ORDER BY m.created_at ASC, m.rowid ASC
	`
	rows, err := s.db.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var msgs []chat.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

// FetchMessageByID resolves one message with its author profile.
func (s *Store) FetchMessageByID(ctx context.Context, id string) (*chat.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages m
		JOIN users u ON u.id = m.user_id
		WHERE m.id = ?
	`
	row := s.db.QueryRowContext(ctx, query, id)
	msg, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, chat.ErrMessageNotFound
		}
		return nil, err
	}
	return &msg, nil
}

// InsertMessage writes a message and fans the insert notice out to every
// open subscription for the room.
func (s *Store) InsertMessage(ctx context.Context, roomID, authorID, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return fmt.Errorf("content is empty")
	}
	if len([]rune(content)) > chat.MaxMessageLength {
		return fmt.Errorf("content exceeds %d characters", chat.MaxMessageLength)
	}

	id := uuid.NewString()
	query := `
		INSERT INTO messages (id, room_id, user_id, content, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, id, roomID, authorID, content, time.Now().UTC()); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	s.notifySubscribers(roomID, chat.InsertNotice{MessageID: id, RoomID: roomID})
	return nil
}

// SubscribeInserts registers onInsert for every message written to roomID
// from now on. Delivery happens synchronously with the write, in write
// order.
func (s *Store) SubscribeInserts(ctx context.Context, roomID string, onInsert func(chat.InsertNotice)) (chat.Subscription, error) {
	sub := &subscription{store: s, roomID: roomID, onInsert: onInsert}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subs[roomID] == nil {
		s.subs[roomID] = make(map[*subscription]struct{})
	}
	s.subs[roomID][sub] = struct{}{}
	return sub, nil
}

// notifySubscribers holds the registry lock across delivery so that no
// notice can arrive after Unsubscribe has returned.
func (s *Store) notifySubscribers(roomID string, notice chat.InsertNotice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sub := range s.subs[roomID] {
		sub.onInsert(notice)
	}
}

type subscription struct {
	store    *Store
	roomID   string
	onInsert func(chat.InsertNotice)
}

func (sub *subscription) Unsubscribe(ctx context.Context) error {
	sub.store.mu.Lock()
	defer sub.store.mu.Unlock()
	delete(sub.store.subs[sub.roomID], sub)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (chat.Message, error) {
	var (
		msg     chat.Message
		profile chat.AuthorProfile
	)
	err := row.Scan(
		&msg.ID,
		&msg.RoomID,
		&msg.AuthorID,
		&msg.Content,
		&msg.CreatedAt,
		&profile.Username,
		&profile.AvatarURL,
	)
	if err != nil {
		return chat.Message{}, err
	}
	msg.Author = &profile
	return msg, nil
}
