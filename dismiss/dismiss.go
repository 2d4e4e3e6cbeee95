// Package dismiss tracks posted messages that humans may delete by reacting with a marker
// emoji during a limited window.
//
// Registering a message adds the marker reaction and opens the window. When the window
// closes the marker is removed and the message stays. A human reacting with the marker
// while the window is open deletes the message. Whichever of the two happens first wins
// and the other does nothing.
package dismiss

import (
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/slack-go/slack"
)

const (
	// DefaultTimeout is the default length of the dismiss window
	DefaultTimeout = 60 * time.Second

	// DefaultMarker is the default name of the dismiss emoji
	DefaultMarker = "wastebasket"
)

// MessageID identifies a posted message
type MessageID struct {
	Channel   string
	Timestamp string
}

// ItemRef returns the slack item reference of the message
func (id MessageID) ItemRef() slack.ItemRef {
	return slack.NewRefToMessage(id.Channel, id.Timestamp)
}

func (id MessageID) String() string {
	return fmt.Sprintf("%s/%s", id.Channel, id.Timestamp)
}

// EmojiReactor adds and removes emoji reactions on messages
type EmojiReactor interface {
	AddReaction(name string, item slack.ItemRef) error
	RemoveReaction(name string, item slack.ItemRef) error
}

// MessageDeleter deletes messages
type MessageDeleter interface {
	DeleteMessage(channelID string, timestamp string) (rChannelID string, rTimestamp string, err error)
}

// Logger is the logging interface used by the registry
type Logger interface {
	Printf(format string, v ...interface{})
	Debugf(format string, v ...interface{})
}

type nopLogger struct{}

func (nopLogger) Printf(format string, v ...interface{}) {}
func (nopLogger) Debugf(format string, v ...interface{}) {}

type entry struct {
	id        MessageID
	createdAt time.Time
	timer     *time.Timer
	reactor   EmojiReactor
}

// Registry holds the messages whose dismiss window is open
type Registry struct {
	timeout time.Duration
	marker  string
	logger  Logger

	mu      sync.Mutex
	entries map[MessageID]*entry
	closed  bool
}

// Option defines an option for a Registry
type Option func(*Registry)

// OptionTimeout sets the length of the dismiss window
func OptionTimeout(timeout time.Duration) Option {
	return func(r *Registry) {
		r.timeout = timeout
	}
}

// OptionMarker sets the name of the dismiss emoji (i.e. wastebasket rather than :wastebasket:)
func OptionMarker(marker string) Option {
	return func(r *Registry) {
		r.marker = marker
	}
}

// OptionLogger sets the logger
func OptionLogger(logger Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// New creates a new Registry
func New(options ...Option) (r *Registry) {
	r = &Registry{timeout: DefaultTimeout, marker: DefaultMarker, logger: nopLogger{}, entries: make(map[MessageID]*entry)}
	for _, option := range options {
		option(r)
	}

	return r
}

// Marker returns the name of the dismiss emoji
func (r *Registry) Marker() string {
	return r.marker
}

// Register adds the marker reaction to the message and opens its dismiss window. If the
// reaction can't be added, the message isn't registered
func (r *Registry) Register(reactor EmojiReactor, id MessageID) (err error) {
	if r.isClosed() {
		return fmt.Errorf("Can't register message [%s] on a closed registry", id)
	}

	if err = reactor.AddReaction(r.marker, id.ItemRef()); err != nil {
		return errors.Wrapf(err, "Error adding dismiss reaction to message [%s]", id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return fmt.Errorf("Can't register message [%s] on a closed registry", id)
	}

	if existing, ok := r.entries[id]; ok {
		existing.timer.Stop()
	}

	e := &entry{id: id, createdAt: time.Now(), reactor: reactor}
	e.timer = time.AfterFunc(r.timeout, func() {
		r.expire(e)
	})
	r.entries[id] = e

	r.logger.Debugf("Registered dismissible message [%s] for %s\n", id, r.timeout)

	return nil
}

// expire closes the window of an entry if it is still open and then removes the marker reaction
func (r *Registry) expire(e *entry) {
	r.mu.Lock()
	if current, ok := r.entries[e.id]; !ok || current != e {
		r.mu.Unlock()
		return
	}
	delete(r.entries, e.id)
	r.mu.Unlock()

	r.logger.Debugf("Dismiss window of message [%s] expired after %s\n", e.id, time.Since(e.createdAt))

	if err := e.reactor.RemoveReaction(r.marker, e.id.ItemRef()); err != nil {
		r.logger.Printf("Error removing dismiss reaction from message [%s]: %v\n", e.id, err)
	}
}

// OnReaction handles a reaction added to a message. The message is deleted when the reaction is
// the marker, its author isn't a bot and the message's window is still open. Returns true
// if the message was deleted
func (r *Registry) OnReaction(deleter MessageDeleter, emoji string, id MessageID, actorIsBot bool) (deleted bool, err error) {
	if actorIsBot || emoji != r.marker {
		return false, nil
	}

	r.mu.Lock()
	e, ok := r.entries[id]
	if ok {
		delete(r.entries, id)
		e.timer.Stop()
	}
	r.mu.Unlock()

	if !ok {
		return false, nil
	}

	if _, _, err = deleter.DeleteMessage(id.Channel, id.Timestamp); err != nil {
		return false, errors.Wrapf(err, "Error deleting dismissed message [%s]", id)
	}

	r.logger.Debugf("Deleted dismissed message [%s]\n", id)

	return true, nil
}

// Pending returns true if the message's dismiss window is open
func (r *Registry) Pending(id MessageID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.entries[id]
	return ok
}

// Len returns the number of messages with an open dismiss window
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.entries)
}

// Close stops all timers and drops every pending message. Marker reactions are left in place
func (r *Registry) Close() (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		e.timer.Stop()
	}
	r.entries = make(map[MessageID]*entry)
	r.closed = true

	return nil
}

func (r *Registry) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.closed
}
