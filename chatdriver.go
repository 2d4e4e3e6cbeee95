package omegabot

import (
	"github.com/slack-go/slack"
)

// MessageSender is implemented by any value that has the SendMessage method. It is synchronous and
// returns the information identifying the sent message.
//
// slack.Client implements this interface
type MessageSender interface {
	SendMessage(channelID string, options ...slack.MsgOption) (rChannelID string, rTimestamp string, rText string, err error)
}

// MessageDeleter is implemented by any value that has the DeleteMessage method.
//
// slack.Client implements this interface
type MessageDeleter interface {
	DeleteMessage(channelID string, timestamp string) (rChannelID string, rTimestamp string, err error)
}

// ChatDriver sends and deletes messages. It is injected in plugins that post or delete messages
// outside of the regular answer flow.
//
// slack.Client implements this interface
type ChatDriver interface {
	MessageSender
	MessageDeleter
}

// EmojiReactor adds and removes emoji reactions on messages. Emoji names are given without colons
// (i.e. wastebasket rather than :wastebasket:).
//
// slack.Client implements this interface
type EmojiReactor interface {
	AddReaction(name string, item slack.ItemRef) error
	RemoveReaction(name string, item slack.ItemRef) error
}
