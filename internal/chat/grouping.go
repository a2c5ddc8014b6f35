package chat

import "time"

// GroupWindow is the largest gap between consecutive messages from the same
// author that still collapses into one group.
const GroupWindow = 5 * time.Minute

// MessageGroup is a run of consecutive messages from one author within
// GroupWindow. Groups are a pure projection over the message list: they hold
// no identity of their own and are recomputed whenever the list changes.
type MessageGroup struct {
	AuthorID    string
	DisplayName string
	Messages    []Message
}

// GroupMessages walks the ordered list once. A new group starts at the first
// message, on an author change, or when the gap to the previous message
// reaches GroupWindow.
func GroupMessages(msgs []Message) []MessageGroup {
	var groups []MessageGroup
	for i, m := range msgs {
		startNew := i == 0 ||
			msgs[i-1].AuthorID != m.AuthorID ||
			m.CreatedAt.Sub(msgs[i-1].CreatedAt) >= GroupWindow
		if startNew {
			groups = append(groups, MessageGroup{
				AuthorID:    m.AuthorID,
				DisplayName: m.DisplayName(),
				Messages:    []Message{m},
			})
			continue
		}
		last := &groups[len(groups)-1]
		last.Messages = append(last.Messages, m)
	}
	return groups
}
