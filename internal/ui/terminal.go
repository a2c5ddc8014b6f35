package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-client/internal/chat"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	descColor   = color.New(color.Faint)
	nameColor   = color.New(color.FgGreen, color.Bold)
	ownColor    = color.New(color.FgMagenta, color.Bold)
	timeColor   = color.New(color.Faint)
	errColor    = color.New(color.FgRed)
)

// engine is the slice of the chat session the UI consumes.
type engine interface {
	Events() <-chan chat.Event
	SendMessage(ctx context.Context, content string) error
}

// UI renders the chat feed to out and drives the composer from line input on
// in. Each line submitted on its own is a send; there is no multi-line
// draft.
type UI struct {
	engine engine
	user   *chat.User
	in     io.Reader
	out    io.Writer
	log    *zerolog.Logger

	composer chat.Composer
	rendered int
}

// New constructs the terminal UI. user may be nil when nobody is
// authenticated; own messages are then not marked.
func New(eng engine, user *chat.User, in io.Reader, out io.Writer, logger *zerolog.Logger) *UI {
	return &UI{
		engine: eng,
		user:   user,
		in:     in,
		out:    out,
		log:    logger,
	}
}

// Run consumes engine events and stdin until ctx is done.
func (u *UI) Run(ctx context.Context) error {
	go u.inputLoop(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-u.engine.Events():
			u.render(ev)
		}
	}
}

func (u *UI) inputLoop(ctx context.Context) {
	scanner := bufio.NewScanner(u.in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		u.composer.SetDraft(scanner.Text())
		err := u.composer.Submit(func(content string) error {
			return u.engine.SendMessage(ctx, content)
		})
		if err != nil {
			// The engine already surfaced a notice; the draft survives for
			// a retry.
			u.log.Debug().Err(err).Msg("send failed")
		}
	}
}

func (u *UI) render(ev chat.Event) {
	switch ev.Kind {
	case chat.EventRoomChanged:
		u.rendered = 0
		desc := "Welcome to the chat!"
		if ev.Room.Description != "" {
			desc = ev.Room.Description
		}
		fmt.Fprintf(u.out, "%s\n%s\n", headerColor.Sprintf("# %s", ev.Room.Name), descColor.Sprint(desc))
	case chat.EventLoading:
		fmt.Fprintln(u.out, "Loading chat...")
	case chat.EventMessagesUpdated:
		u.renderMessages(ev)
	case chat.EventNotice:
		fmt.Fprintln(u.out, errColor.Sprint("Error: "+ev.Notice.Message))
	}
}

// renderMessages prints only messages not yet shown. The author line is
// printed once per group; messages that extend an already-printed group get
// no new header.
func (u *UI) renderMessages(ev chat.Event) {
	if len(ev.Messages) == 0 {
		if u.rendered == 0 {
			fmt.Fprintln(u.out, "Be the first to start the conversation")
		}
		return
	}

	idx := 0
	for _, group := range ev.Groups {
		for gi, msg := range group.Messages {
			if idx >= u.rendered {
				if gi == 0 {
					u.printGroupHeader(group, msg)
				}
				fmt.Fprintf(u.out, "  %s\n", msg.Content)
			}
			idx++
		}
	}
	u.rendered = idx
}

func (u *UI) printGroupHeader(group chat.MessageGroup, first chat.Message) {
	name := group.DisplayName
	ts := timeColor.Sprint(first.CreatedAt.Local().Format("15:04"))
	if u.user != nil && group.AuthorID == u.user.ID {
		fmt.Fprintf(u.out, "%s %s\n", ownColor.Sprint(name+" (you)"), ts)
		return
	}
	fmt.Fprintf(u.out, "%s %s\n", nameColor.Sprint(name), ts)
}
