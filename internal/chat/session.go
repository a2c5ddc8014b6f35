package chat

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// commandKind describes what the session loop is asked to do.
type commandKind int

const (
	// cmdSetRoom switches the current room.
	cmdSetRoom commandKind = iota
	// cmdSend posts a message to the current room.
	cmdSend
	// cmdSnapshot carries a completed snapshot fetch back into the loop.
	cmdSnapshot
	// cmdIncoming carries a resolved live notice back into the loop.
	cmdIncoming
)

type command struct {
	kind    commandKind
	roomID  string
	content string
	gen     uint64
	msgs    []Message
	msg     *Message
	err     error
	reply   chan error
}

// Session is the chat synchronization engine. One goroutine (Run) owns all
// state: public methods enqueue commands, and I/O completions are posted
// back into the same loop. Each room transition bumps a generation counter
// that fences out results of work started for a previous room.
type Session struct {
	backend  Backend
	log      *zerolog.Logger
	commands chan command
	events   chan Event

	requestedRoom string

	// State below is owned by the Run goroutine.
	user      *User
	directory *RoomDirectory
	store     *MessageStore
	sub       *subscriptionManager
	current   *Room
	gen       uint64
}

// NewSession constructs the engine. requestedRoom is the room id to prefer
// at startup; when empty or unknown the earliest-created room is selected.
func NewSession(backend Backend, requestedRoom string, logger *zerolog.Logger) *Session {
	return &Session{
		backend:       backend,
		log:           logger,
		commands:      make(chan command, 32),
		events:        make(chan Event, 32),
		requestedRoom: requestedRoom,
		directory:     &RoomDirectory{},
		store:         NewMessageStore(),
		sub:           newSubscriptionManager(backend, logger),
	}
}

// Events is the stream consumed by the rendering layer.
func (s *Session) Events() <-chan Event {
	return s.events
}

// SetCurrentRoom asks the loop to make roomID current. Unknown ids fall back
// to the earliest-created room.
func (s *Session) SetCurrentRoom(roomID string) {
	s.commands <- command{kind: cmdSetRoom, roomID: roomID}
}

// SendMessage posts content to the current room and blocks until the insert
// completes. Returns a ChatError when nobody is authenticated, no room is
// current, or the insert fails; the same error is also emitted as a notice.
func (s *Session) SendMessage(ctx context.Context, content string) error {
	reply := make(chan error, 1)
	select {
	case s.commands <- command{kind: cmdSend, content: content, reply: reply}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run resolves the current user, loads the room directory, selects the
// starting room, and then drives the engine until ctx is done.
func (s *Session) Run(ctx context.Context) {
	s.bootstrap(ctx)

	for {
		select {
		case <-ctx.Done():
			s.sub.Detach(context.Background())
			return
		case cmd := <-s.commands:
			s.dispatch(ctx, cmd)
		}
	}
}

func (s *Session) bootstrap(ctx context.Context) {
	user, err := s.backend.CurrentUser(ctx)
	if err != nil && !errors.Is(err, ErrNoUser) {
		s.log.Warn().Err(err).Msg("resolve current user")
	}
	s.user = user

	rooms, err := s.backend.ListRooms(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("list rooms")
		s.notify(chatError(ErrCodeFetchFailed, "Failed to load chat rooms"))
		return
	}
	s.directory.Update(rooms)

	if room := s.directory.Select(s.requestedRoom); room != nil {
		s.switchRoom(ctx, *room)
	} else {
		s.log.Info().Msg("no rooms available")
	}
}

func (s *Session) dispatch(ctx context.Context, cmd command) {
	switch cmd.kind {
	case cmdSetRoom:
		s.handleSetRoom(ctx, cmd.roomID)
	case cmdSend:
		s.handleSend(ctx, cmd)
	case cmdSnapshot:
		s.handleSnapshot(cmd)
	case cmdIncoming:
		s.handleIncoming(cmd)
	}
}

func (s *Session) handleSetRoom(ctx context.Context, roomID string) {
	room := s.directory.Select(roomID)
	if room == nil {
		s.log.Debug().Str("room_id", roomID).Msg("no room to select")
		return
	}
	if s.current != nil && s.current.ID == room.ID {
		return
	}
	s.switchRoom(ctx, *room)
}

// switchRoom is the only place the current room changes. It bumps the
// generation, tears down the old subscription, opens the new one, and kicks
// off the snapshot fetch. Subscribing before the fetch leaves no gap between
// stream and snapshot; the store's dedupe reconciles the overlap.
func (s *Session) switchRoom(ctx context.Context, room Room) {
	s.gen++
	gen := s.gen
	s.current = &room
	s.store.Reset(room.ID)

	if err := s.sub.Attach(ctx, room.ID, s.insertHandler(ctx, gen, room.ID)); err != nil {
		s.log.Error().Err(err).Str("room_id", room.ID).Msg("subscribe inserts")
		s.notify(chatError(ErrCodeFetchFailed, "Failed to follow live updates"))
	}

	s.emit(Event{Kind: EventRoomChanged, Room: &room})
	s.emit(Event{Kind: EventLoading, Room: &room})

	go func() {
		msgs, err := s.backend.FetchMessages(ctx, room.ID)
		select {
		case s.commands <- command{kind: cmdSnapshot, gen: gen, roomID: room.ID, msgs: msgs, err: err}:
		case <-ctx.Done():
		}
	}()
}

// insertHandler resolves each notice to a full message and posts it into the
// loop. A failed lookup drops the notice silently: the message will still
// appear on the next snapshot load of that room.
func (s *Session) insertHandler(ctx context.Context, gen uint64, roomID string) func(InsertNotice) {
	return func(n InsertNotice) {
		go func() {
			msg, err := s.backend.FetchMessageByID(ctx, n.MessageID)
			if err != nil {
				s.log.Debug().Err(err).Str("message_id", n.MessageID).Msg("dropping live notice")
				return
			}
			select {
			case s.commands <- command{kind: cmdIncoming, gen: gen, roomID: roomID, msg: msg}:
			case <-ctx.Done():
			}
		}()
	}
}

func (s *Session) handleSnapshot(cmd command) {
	if cmd.gen != s.gen {
		s.log.Debug().Str("room_id", cmd.roomID).Msg("discarding stale snapshot")
		return
	}
	if cmd.err != nil {
		s.log.Error().Err(cmd.err).Str("room_id", cmd.roomID).Msg("fetch messages")
		s.notify(chatError(ErrCodeFetchFailed, "Failed to load messages"))
		return
	}
	if s.store.ApplySnapshot(cmd.roomID, cmd.msgs) {
		s.emitMessages()
	}
}

func (s *Session) handleIncoming(cmd command) {
	if cmd.gen != s.gen || cmd.msg == nil {
		return
	}
	if s.store.ApplyIncoming(*cmd.msg) {
		s.emitMessages()
	}
}

func (s *Session) handleSend(ctx context.Context, cmd command) {
	if s.user == nil || s.current == nil {
		err := chatError(ErrCodeAuthRequired, "You must be logged in to send messages")
		s.notify(err)
		cmd.reply <- err
		return
	}

	roomID, userID := s.current.ID, s.user.ID
	go func() {
		if err := s.backend.InsertMessage(ctx, roomID, userID, cmd.content); err != nil {
			s.log.Error().Err(err).Str("room_id", roomID).Msg("send message")
			notice := chatError(ErrCodeSendFailed, "Failed to send message")
			s.notify(notice)
			cmd.reply <- notice
			return
		}
		cmd.reply <- nil
	}()
}

func (s *Session) emitMessages() {
	msgs := s.store.Messages()
	s.emit(Event{
		Kind:     EventMessagesUpdated,
		Room:     s.current,
		Messages: msgs,
		Groups:   GroupMessages(msgs),
	})
}

func (s *Session) notify(err *ChatError) {
	s.emit(Event{Kind: EventNotice, Notice: err})
}

func (s *Session) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
		// Drop if slow consumer.
	}
}
