package chat

import (
	"context"

	"github.com/rs/zerolog"
)

// subState tracks the lifecycle of the single live subscription.
type subState int

const (
	subDetached subState = iota
	subSubscribing
	subActive
	subTornDown
)

// subscriptionManager owns at most one active insert subscription. Attach
// tears the previous subscription down and waits for the unsubscribe to
// complete before opening the next one, so notices from a stale room can
// never be delivered after a room switch.
type subscriptionManager struct {
	backend Backend
	log     *zerolog.Logger
	state   subState
	sub     Subscription
	roomID  string
}

func newSubscriptionManager(backend Backend, logger *zerolog.Logger) *subscriptionManager {
	return &subscriptionManager{backend: backend, log: logger}
}

// Attach switches the live stream to roomID, fencing out the previous room
// first.
func (m *subscriptionManager) Attach(ctx context.Context, roomID string, onInsert func(InsertNotice)) error {
	m.Detach(ctx)

	m.state = subSubscribing
	m.roomID = roomID
	sub, err := m.backend.SubscribeInserts(ctx, roomID, onInsert)
	if err != nil {
		m.state = subDetached
		m.roomID = ""
		return err
	}
	m.sub = sub
	m.state = subActive
	m.log.Debug().Str("room_id", roomID).Msg("subscription active")
	return nil
}

// Detach unsubscribes and blocks until the stream is closed. Safe to call in
// any state.
func (m *subscriptionManager) Detach(ctx context.Context) {
	if m.sub != nil {
		if err := m.sub.Unsubscribe(ctx); err != nil {
			m.log.Warn().Err(err).Str("room_id", m.roomID).Msg("unsubscribe failed")
		}
		m.sub = nil
	}
	m.state = subTornDown
	m.roomID = ""
}
