package capture

import (
	"sync"

	"github.com/slack-go/slack"
)

// Reaction holds an emoji and the message it was added to or removed from
type Reaction struct {
	Emoji     string
	Channel   string
	Timestamp string
}

// EmojiReactionCaptor captures emoji reactions added and removed. It is safe for concurrent use
type EmojiReactionCaptor struct {
	lock    sync.Mutex
	added   []Reaction
	removed []Reaction

	// AddErr is returned by AddReaction when set
	AddErr error

	// RemoveErr is returned by RemoveReaction when set
	RemoveErr error
}

// NewEmojiReactionCaptor returns a new EmojiReactionCaptor
func NewEmojiReactionCaptor() (e *EmojiReactionCaptor) {
	return &EmojiReactionCaptor{added: make([]Reaction, 0), removed: make([]Reaction, 0)}
}

// AddReaction captures an added reaction
func (e *EmojiReactionCaptor) AddReaction(name string, item slack.ItemRef) error {
	e.lock.Lock()
	defer e.lock.Unlock()

	if e.AddErr != nil {
		return e.AddErr
	}

	e.added = append(e.added, Reaction{Emoji: name, Channel: item.Channel, Timestamp: item.Timestamp})
	return nil
}

// RemoveReaction captures a removed reaction
func (e *EmojiReactionCaptor) RemoveReaction(name string, item slack.ItemRef) error {
	e.lock.Lock()
	defer e.lock.Unlock()

	if e.RemoveErr != nil {
		return e.RemoveErr
	}

	e.removed = append(e.removed, Reaction{Emoji: name, Channel: item.Channel, Timestamp: item.Timestamp})
	return nil
}

// Added returns a copy of all added reactions
func (e *EmojiReactionCaptor) Added() []Reaction {
	e.lock.Lock()
	defer e.lock.Unlock()

	return append([]Reaction{}, e.added...)
}

// Removed returns a copy of all removed reactions
func (e *EmojiReactionCaptor) Removed() []Reaction {
	e.lock.Lock()
	defer e.lock.Unlock()

	return append([]Reaction{}, e.removed...)
}

// Emojis returns the names of all added reactions
func (e *EmojiReactionCaptor) Emojis() (emojis []string) {
	emojis = make([]string, 0)
	for _, r := range e.Added() {
		emojis = append(emojis, r.Emoji)
	}

	return emojis
}
