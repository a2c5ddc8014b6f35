package chat

import "strings"

// Composer holds the pending draft for the message input.
type Composer struct {
	draft    string
	disabled bool
}

// SetDisabled toggles whether submissions are accepted.
func (c *Composer) SetDisabled(disabled bool) {
	c.disabled = disabled
}

// Disabled reports whether submissions are currently rejected.
func (c *Composer) Disabled() bool {
	return c.disabled
}

// Draft returns the pending draft text.
func (c *Composer) Draft() string {
	return c.draft
}

// SetDraft replaces the draft. Characters beyond MaxMessageLength are not
// accepted.
func (c *Composer) SetDraft(text string) {
	if r := []rune(text); len(r) > MaxMessageLength {
		text = string(r[:MaxMessageLength])
	}
	c.draft = text
}

// Submit trims the draft and hands the result to send. Whitespace-only
// drafts and disabled composers are a no-op. The draft is cleared only when
// send succeeds, so a failed send can be retried as-is.
func (c *Composer) Submit(send func(content string) error) error {
	content := strings.TrimSpace(c.draft)
	if content == "" || c.disabled {
		return nil
	}
	if err := send(content); err != nil {
		return err
	}
	c.draft = ""
	return nil
}
